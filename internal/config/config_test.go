package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"APP_ENV", "APP_HOST", "APP_PORT", "HTTP_REQUEST_TIMEOUT_SECONDS", "POSTGRES_DSN", "REDIS_ADDR",
		"REPORT_CACHE_ENABLED", "REPORT_STORE_TIMEOUT_SECONDS", "LIFECYCLE_ALLOW_BACKFILL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, 10*time.Second, cfg.Report.StoreTimeout())
	assert.Zero(t, cfg.Report.CacheTTL())
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Lifecycle.AllowBackfill)
	assert.Empty(t, cfg.Postgres.DSN)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("REPORT_CACHE_ENABLED", "true")
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "15")
	t.Setenv("REPORT_STORE_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("LIFECYCLE_ALLOW_BACKFILL", "1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 15*time.Second, cfg.Report.CacheTTL())
	assert.Equal(t, 10*time.Second, cfg.Report.StoreTimeout(), "invalid values fall back to defaults")
	assert.True(t, cfg.Lifecycle.AllowBackfill)
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "x")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("AUTH_JWT_SECRET", "prod-secret")
	_, err = Load()
	assert.NoError(t, err)
}
