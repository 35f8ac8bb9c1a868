package web

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/nmashkov/yatube-project/internal/core/ports"
	"github.com/nmashkov/yatube-project/internal/telemetry"
)

// Services groups the driving ports the handlers call.
type Services struct {
	Listing   ports.ListingService
	Authoring ports.AuthoringService
	Follows   ports.FollowService
	Identity  ports.IdentityService
}

type Options struct {
	ServiceName    string
	MediaRoot      string
	CORSOrigins    []string
	RateLimitRPS   float64 // <= 0 désactive la limite
	RateLimitBurst int
	SecureCookies  bool
}

type Server struct {
	Services
	cache    ports.PageCache
	metrics  *telemetry.Metrics
	renderer Renderer
	opts     Options
	router   *mux.Router
}

func NewServer(svc Services, cache ports.PageCache, metrics *telemetry.Metrics, renderer Renderer, opts Options) *Server {
	s := &Server{
		Services: svc,
		cache:    cache,
		metrics:  metrics,
		renderer: renderer,
		opts:     opts,
		router:   mux.NewRouter().StrictSlash(true),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	// Hors chaîne applicative : sondes et métriques
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	app := r.NewRoute().Subrouter()
	app.Use(s.metrics.Instrument, requestLogger, session(s.Identity))
	if s.opts.RateLimitRPS > 0 {
		app.Use(NewRateLimiter(s.opts.RateLimitRPS, s.opts.RateLimitBurst).Middleware)
	}

	// --- POSTS ---
	app.HandleFunc("/", cachePage(s.cache, s.metrics, s.index)).Methods(http.MethodGet)
	app.HandleFunc("/group/{slug}/", s.groupPosts).Methods(http.MethodGet)
	app.HandleFunc("/profile/{username}/", s.profile).Methods(http.MethodGet)
	app.HandleFunc("/posts/{id:[0-9]+}/", s.postDetail).Methods(http.MethodGet)
	app.HandleFunc("/create/", loginRequired(s.postCreate)).Methods(http.MethodGet, http.MethodPost)
	app.HandleFunc("/posts/{id:[0-9]+}/edit/", loginRequired(s.postEdit)).Methods(http.MethodGet, http.MethodPost)
	app.HandleFunc("/posts/{id:[0-9]+}/comment/", loginRequired(s.addComment)).Methods(http.MethodPost)

	// --- ABONNEMENTS ---
	app.HandleFunc("/follow/", loginRequired(s.followIndex)).Methods(http.MethodGet)
	app.HandleFunc("/profile/{username}/follow/", loginRequired(s.profileFollow)).Methods(http.MethodPost)
	app.HandleFunc("/profile/{username}/unfollow/", loginRequired(s.profileUnfollow)).Methods(http.MethodPost)

	// --- AUTH ---
	app.HandleFunc("/auth/signup/", s.signUp).Methods(http.MethodGet, http.MethodPost)
	app.HandleFunc("/auth/login/", s.login).Methods(http.MethodGet, http.MethodPost)
	app.HandleFunc("/auth/logout/", s.logout).Methods(http.MethodPost)

	// --- MEDIA ---
	app.PathPrefix("/media/").Handler(http.StripPrefix("/media/", mediaFiles(s.opts.MediaRoot))).Methods(http.MethodGet)

	// Les middlewares du routeur ne tournent pas sur les routes non trouvées
	r.NotFoundHandler = session(s.Identity)(http.HandlerFunc(s.notFound))
}

// Handler returns the router wrapped in CORS and the root OTEL span.
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router

	c := cors.New(cors.Options{
		AllowedOrigins:   s.opts.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "baggage", "traceparent"},
		AllowCredentials: true,
	})
	h = c.Handler(h)

	name := s.opts.ServiceName
	if name == "" {
		name = "yatube"
	}
	return otelhttp.NewHandler(h, name, otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))
}

// mediaFiles serves uploads without directory listings.
func mediaFiles(root string) http.Handler {
	files := http.FileServer(http.Dir(root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	})
}
