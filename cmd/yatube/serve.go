package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/nmashkov/yatube-project/config"
	"github.com/nmashkov/yatube-project/internal/adapters/primary/web"
	"github.com/nmashkov/yatube-project/internal/adapters/secondary/cache"
	"github.com/nmashkov/yatube-project/internal/adapters/secondary/eventbroker"
	"github.com/nmashkov/yatube-project/internal/adapters/secondary/media"
	"github.com/nmashkov/yatube-project/internal/adapters/secondary/repository"
	"github.com/nmashkov/yatube-project/internal/adapters/secondary/security"
	"github.com/nmashkov/yatube-project/internal/core/ports"
	"github.com/nmashkov/yatube-project/internal/core/services"
	"github.com/nmashkov/yatube-project/internal/telemetry"
)

const memoryCacheSize = 512

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg config.Config) error {
	// 1. Logger
	telemetry.InitLogger(cfg.Env)
	slog.Info("🚀 Starting Yatube", "config", cfg, "version", version)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// 2. Télémétrie (Tracing)
	if cfg.OtelEndpoint != "" {
		tp, err := telemetry.InitTracer(ctx, cfg.ServiceName, cfg.Env, cfg.OtelEndpoint)
		if err != nil {
			slog.Error("Failed to init tracer", "error", err)
		} else {
			defer func() { _ = tp.Shutdown(context.Background()) }()
		}
	}

	// 3. Base de données + schéma
	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := repository.Migrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// 4. Cache de pages (Redis ou mémoire)
	pageCache, err := newPageCache(ctx, a, cfg)
	if err != nil {
		return err
	}

	// 5. Broker d'événements
	publisher, err := newPublisher(a, cfg)
	if err != nil {
		return err
	}

	// 6. Adapters techniques
	store, err := media.NewFileStore(cfg.MediaRoot)
	if err != nil {
		return err
	}
	tokens, err := security.NewJWTProvider(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}
	hasher := security.NewArgon2Hasher(nil)

	// 7. Core services
	svc := web.Services{
		Listing:   services.NewListingService(a.posts, a.groups, a.users, a.comments, a.follows, cfg.PageSize),
		Authoring: services.NewAuthoringService(a.posts, a.groups, a.comments, store, publisher),
		Follows:   services.NewFollowService(a.users, a.follows, publisher),
		Identity:  services.NewIdentityService(a.users, hasher, tokens, cfg.SessionTTL),
	}

	// 8. Serveur HTTP
	renderer, err := web.NewHTMLRenderer()
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	server := web.NewServer(svc, pageCache, telemetry.NewMetrics(), renderer, web.Options{
		ServiceName:    cfg.ServiceName,
		MediaRoot:      store.Root,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		SecureCookies:  cfg.Env == "prod",
	})

	srvHTTP := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("📡 Yatube listening", "port", cfg.Port)
		if err := srvHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 9. Arrêt Graceful
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}
	slog.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("👋 Server exited")
	return nil
}

func newPageCache(ctx context.Context, a *app, cfg config.Config) (ports.PageCache, error) {
	if cfg.RedisAddr == "" {
		slog.Info("Page cache in memory", "ttl", cfg.PageCacheTTL)
		return cache.NewMemoryPageCache(memoryCacheSize, cfg.PageCacheTTL), nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	a.closers = append(a.closers, func() { _ = rdb.Close() })
	if err := redisotel.InstrumentTracing(rdb); err != nil {
		slog.Warn("Failed to instrument redis", "error", err)
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	slog.Info("✅ Connected to Redis", "addr", cfg.RedisAddr)
	return cache.NewRedisPageCache(rdb, cfg.PageCacheTTL), nil
}

func newPublisher(a *app, cfg config.Config) (ports.EventPublisher, error) {
	if cfg.NatsURL == "" {
		return eventbroker.NoopPublisher{}, nil
	}

	nc, err := nats.Connect(cfg.NatsURL, nats.Name(cfg.ServiceName))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	a.closers = append(a.closers, func() { _ = nc.Drain() })
	slog.Info("✅ Connected to NATS", "url", cfg.NatsURL)
	return eventbroker.NewNatsPublisher(nc), nil
}
