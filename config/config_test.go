package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "DB_DRIVER", "PAGE_CACHE_TTL", "PAGE_SIZE", "CORS_ORIGINS", "SESSION_SECRET"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 20*time.Second, cfg.PageCacheTTL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, []string{"http://localhost:8000"}, cfg.CORSOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PAGE_CACHE_TTL", "1m")
	t.Setenv("PAGE_SIZE", "25")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,")

	cfg := Load()
	assert.Equal(t, time.Minute, cfg.PageCacheTTL)
	assert.Equal(t, 25, cfg.PageSize)
	assert.InDelta(t, 0.5, cfg.RateLimitRPS, 1e-9)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Setenv("PAGE_SIZE", "ten")
	t.Setenv("SESSION_TTL", "forever")

	cfg := Load()
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 14*24*time.Hour, cfg.SessionTTL)
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("SESSION_SECRET", "")

	cfg := Load()
	cfg.Env = "prod"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET must be set in prod")
	assert.Contains(t, err.Error(), "DB_URL must be set in prod")

	cfg = Load()
	cfg.FollowStore = "neo4j"
	cfg.DBDriver = "mysql"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NEO4J_URI")
	assert.Contains(t, err.Error(), "DB_DRIVER")
}
