package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, ":8000", cfg.ListenAddr)
	assert.Equal(t, int64(10000), cfg.MaxBodyBytes)
	assert.Equal(t, 120, cfg.IngestRatePerMin)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ANALYTICS_TOKEN", "s3cret")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := Load()
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "s3cret", cfg.AnalyticsToken)
	assert.Equal(t, int64(2048), cfg.MaxBodyBytes)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiresStoreAndSecret(t *testing.T) {
	cfg := &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDIS_URL")
	assert.Contains(t, err.Error(), "ANALYTICS_TOKEN")

	cfg = &Config{RedisURL: "redis://x"}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANALYTICS_TOKEN")
}
