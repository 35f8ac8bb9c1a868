package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const devSessionSecret = "local-dev-session-secret"

type Config struct {
	Env         string // "local", "test" ou "prod"
	ServiceName string
	Port        string

	DBDriver string // "sqlite" ou "postgres"
	DBURL    string

	RedisAddr string // vide : cache de pages en mémoire
	NatsURL   string // vide : pas de publication d'événements

	FollowStore   string // "sql" ou "neo4j"
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	OtelEndpoint string // vide : tracing désactivé

	MediaRoot     string
	SessionSecret string
	SessionTTL    time.Duration

	PageCacheTTL   time.Duration
	PageSize       int
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

func Load() Config {
	return Config{
		Env:         getEnv("APP_ENV", "local"),
		ServiceName: getEnv("SERVICE_NAME", "yatube"),
		Port:        getEnv("HTTP_PORT", "8000"),

		DBDriver: getEnv("DB_DRIVER", "sqlite"),
		DBURL:    getEnv("DB_URL", "yatube.db"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		NatsURL:   getEnv("NATS_URL", ""),

		FollowStore:   getEnv("FOLLOW_STORE", "sql"),
		Neo4jURI:      getEnv("NEO4J_URI", ""),
		Neo4jUser:     getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword: getEnv("NEO4J_PASSWORD", ""),

		OtelEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		MediaRoot:     getEnv("MEDIA_ROOT", "media"),
		SessionSecret: getEnv("SESSION_SECRET", devSessionSecret),
		SessionTTL:    getEnvDuration("SESSION_TTL", 14*24*time.Hour),

		PageCacheTTL:   getEnvDuration("PAGE_CACHE_TTL", 20*time.Second),
		PageSize:       getEnvInt("PAGE_SIZE", 10),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:8000"}),
	}
}

// Validate rejects combinations the server cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.DBDriver))
	}
	switch c.FollowStore {
	case "sql":
	case "neo4j":
		if c.Neo4jURI == "" {
			errs = append(errs, errors.New("NEO4J_URI is required when FOLLOW_STORE=neo4j"))
		}
	default:
		errs = append(errs, fmt.Errorf("FOLLOW_STORE must be sql or neo4j, got %q", c.FollowStore))
	}
	if c.PageSize <= 0 {
		errs = append(errs, errors.New("PAGE_SIZE must be positive"))
	}
	if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 bytes"))
	}

	if c.Env == "prod" {
		if c.SessionSecret == devSessionSecret {
			errs = append(errs, errors.New("SESSION_SECRET must be set in prod"))
		}
		if os.Getenv("DB_URL") == "" {
			errs = append(errs, errors.New("DB_URL must be set in prod"))
		}
	}
	return errors.Join(errs...)
}

// LogValue masque les secrets quand la config est loguée au démarrage
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("env", c.Env),
		slog.String("service", c.ServiceName),
		slog.String("port", c.Port),
		slog.String("db_driver", c.DBDriver),
		slog.Bool("redis", c.RedisAddr != ""),
		slog.Bool("nats", c.NatsURL != ""),
		slog.String("follow_store", c.FollowStore),
		slog.Bool("tracing", c.OtelEndpoint != ""),
		slog.String("media_root", c.MediaRoot),
		slog.Duration("page_cache_ttl", c.PageCacheTTL),
		slog.Int("page_size", c.PageSize),
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return f
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
