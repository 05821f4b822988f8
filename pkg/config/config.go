// Package config loads the control plane's runtime configuration from
// environment variables, with an optional YAML deployment profile for the
// settings operators tune per installation.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds daemon configuration.
type Config struct {
	LogLevel    string
	DatabaseURL string

	// Outbox dispatcher.
	OutboxSweepInterval time.Duration
	OutboxBatchSize     int

	// Optional Redis idempotency backend. Empty selects the SQL backend.
	RedisAddr string

	// Evidence WORM payload store.
	EvidenceBucket string
	S3Region       string
	S3Endpoint     string

	// Trust boundary.
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	Policy      string

	// Per-tenant command rate limit.
	RateLimitPerSecond float64
	RateLimitBurst     int

	// Telemetry. Empty disables the OTLP exporters.
	OTLPEndpoint string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		LogLevel:            envDefault("LOG_LEVEL", "INFO"),
		DatabaseURL:         envDefault("DATABASE_URL", "sqlite:portarium.db"),
		OutboxSweepInterval: envDuration("OUTBOX_SWEEP_INTERVAL", time.Second),
		OutboxBatchSize:     envInt("OUTBOX_BATCH_SIZE", 50),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		EvidenceBucket:      envDefault("EVIDENCE_BUCKET", "portarium-evidence"),
		S3Region:            envDefault("S3_REGION", "us-east-1"),
		S3Endpoint:          os.Getenv("S3_ENDPOINT"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		JWTIssuer:           envDefault("JWT_ISSUER", "https://idp.portarium.local"),
		JWTAudience:         envDefault("JWT_AUDIENCE", "portarium"),
		Policy:              envDefault("AUTHZ_POLICY", "true"),
		RateLimitPerSecond:  envFloat("RATE_LIMIT_PER_SECOND", 25),
		RateLimitBurst:      envInt("RATE_LIMIT_BURST", 50),
		OTLPEndpoint:        os.Getenv("OTLP_ENDPOINT"),
	}
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
