package web

import (
	"bytes"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/nmashkov/yatube-project/internal/core/ports"
	"github.com/nmashkov/yatube-project/internal/telemetry"
)

const sessionCookie = "yatube_session"

// session résout le cookie de session en Caller et l'injecte dans le contexte.
func session(identity ports.IdentityService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(sessionCookie); err == nil {
				token = c.Value
			}
			caller := identity.Authenticate(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(withCaller(r.Context(), caller)))
		})
	}
}

// loginRequired redirige les anonymes vers la page de connexion avec ?next=
func loginRequired(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !CallerFrom(r.Context()).IsAuthenticated() {
			redirectToLogin(w, r)
			return
		}
		next(w, r)
	}
}

func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	target := "/auth/login/?next=" + url.QueryEscape(r.URL.RequestURI())
	http.Redirect(w, r, target, http.StatusFound)
}

// cachePage keeps successful GET responses for the cache's TTL. The key carries the
// authenticated user so one user's navigation bar is never served to another.
func cachePage(cache ports.PageCache, metrics *telemetry.Metrics, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next(w, r)
			return
		}

		key := pageCacheKey(r)
		page, ok, err := cache.Get(r.Context(), key)
		switch {
		case err != nil:
			metrics.PageCacheLookup("error")
			slog.WarnContext(r.Context(), "page cache read failed", "error", err)
		case ok:
			metrics.PageCacheLookup("hit")
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("X-Page-Cache", "hit")
			_, _ = w.Write(page)
			return
		default:
			metrics.PageCacheLookup("miss")
		}

		rec := &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		if rec.status == http.StatusOK {
			if err := cache.Set(r.Context(), key, rec.buf.Bytes()); err != nil {
				slog.WarnContext(r.Context(), "page cache write failed", "error", err)
			}
		}
	}
}

// pageCacheKey varie selon l'utilisateur authentifié, jamais selon le cookie brut :
// un jeton invalide retombe sur l'entrée anonyme.
func pageCacheKey(r *http.Request) string {
	vary := "anon"
	if c := CallerFrom(r.Context()); c.IsAuthenticated() {
		vary = "user:" + strconv.FormatUint(uint64(c.UserID), 10)
	}
	return r.Method + " " + r.URL.RequestURI() + " " + vary
}

// bufferedWriter écrit la réponse tout en gardant une copie du corps
type bufferedWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (b *bufferedWriter) WriteHeader(code int) {
	b.status = code
	b.ResponseWriter.WriteHeader(code)
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	b.buf.Write(p)
	return b.ResponseWriter.Write(p)
}

const (
	maxLimiterKeys = 10000
	limiterIdleTTL = 10 * time.Minute
)

// RateLimiter throttles state-changing requests per user, or per client IP for guests.
// Buckets live in a bounded LRU: the least recently seen client is evicted first.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *expirable.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return newRateLimiter(rps, burst, maxLimiterKeys, limiterIdleTTL)
}

func newRateLimiter(rps float64, burst, size int, ttl time.Duration) *RateLimiter {
	return &RateLimiter{
		limiters: expirable.NewLRU[string, *rate.Limiter](size, nil, ttl),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if l, ok := rl.limiters.Get(key); ok {
		return l
	}
	l := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters.Add(key, l)
	return l
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		key := clientIP(r)
		if c := CallerFrom(r.Context()); c.IsAuthenticated() {
			key = "user:" + strconv.FormatUint(uint64(c.UserID), 10)
		}

		if !rl.limiter(key).Allow() {
			slog.WarnContext(r.Context(), "rate limit exceeded", "key", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

const requestIDHeader = "X-Request-ID"

// requestLogger logue chaque requête au niveau debug et renvoie son identifiant
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, reqID)

		rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		attrs := []any{
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		}
		if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
			attrs = append(attrs, "trace_id", sc.TraceID().String())
		}
		slog.DebugContext(r.Context(), "http request", attrs...)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (s *statusWriter) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
