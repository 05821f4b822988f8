package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/45ck/Portarium-sub005/pkg/config"
)

// TestLoad_Defaults verifies that Load() returns sensible defaults
// when no environment variables are set.
// Invariant: System must boot with safe defaults in dev mode.
func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("OUTBOX_SWEEP_INTERVAL", "")
	t.Setenv("OUTBOX_BATCH_SIZE", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RATE_LIMIT_PER_SECOND", "")

	cfg := config.Load()

	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Contains(t, cfg.DatabaseURL, "sqlite:")
	assert.Equal(t, time.Second, cfg.OutboxSweepInterval)
	assert.Equal(t, 50, cfg.OutboxBatchSize)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 25.0, cfg.RateLimitPerSecond)
}

// TestLoad_Overrides verifies that environment variables correctly
// override default values.
// Invariant: Ops can control config via standard 12-factor env vars.
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("DATABASE_URL", "postgres://production:5432/portarium")
	t.Setenv("OUTBOX_SWEEP_INTERVAL", "250ms")
	t.Setenv("OUTBOX_BATCH_SIZE", "10")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("OTLP_ENDPOINT", "otel-collector:4317")

	cfg := config.Load()

	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "postgres://production:5432/portarium", cfg.DatabaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.OutboxSweepInterval)
	assert.Equal(t, 10, cfg.OutboxBatchSize)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "otel-collector:4317", cfg.OTLPEndpoint)
}

// TestLoad_BadValuesFallBack verifies malformed numeric values fall back
// to defaults instead of failing the boot.
func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("OUTBOX_SWEEP_INTERVAL", "soon")
	t.Setenv("OUTBOX_BATCH_SIZE", "many")

	cfg := config.Load()

	assert.Equal(t, time.Second, cfg.OutboxSweepInterval)
	assert.Equal(t, 50, cfg.OutboxBatchSize)
}
