package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Identity resolution modes.
const (
	IdentityModeHeader = "header"
	IdentityModeBearer = "bearer"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port            int           `env:"PORT" envDefault:"3333"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Identity
	IdentityMode   string `env:"IDENTITY_MODE" envDefault:"header"`
	IdentityHeader string `env:"IDENTITY_HEADER" envDefault:"cpf"`
	JWTSecret      string `env:"JWT_SECRET"`

	// Cache
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`

	// Traffic shaping
	MaxConcurrency int     `env:"MAX_CONCURRENCY" envDefault:"100"`
	RateLimit      RateLimitConfig

	// Observability
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	// Webhooks (empty = disabled)
	WebhookURLs    []string      `env:"WEBHOOK_URLS" envSeparator:","`
	HTTPTimeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"5s"`
	MaxRetries     int           `env:"MAX_RETRIES" envDefault:"3"`
	InitialBackoff time.Duration `env:"INITIAL_BACKOFF" envDefault:"100ms"`
}

// RateLimitConfig configures the per-client token bucket.
type RateLimitConfig struct {
	Enabled bool    `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RPS     float64 `env:"RATE_LIMIT_RPS" envDefault:"50"`
	Burst   int     `env:"RATE_LIMIT_BURST" envDefault:"100"`
}

// Load reads configuration from environment variables with defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations env tags cannot express.
func (c *Config) Validate() error {
	switch c.IdentityMode {
	case IdentityModeHeader:
		if c.IdentityHeader == "" {
			return fmt.Errorf("IDENTITY_HEADER must not be empty in %q mode", c.IdentityMode)
		}
	case IdentityModeBearer:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in %q mode", c.IdentityMode)
		}
	default:
		return fmt.Errorf("unknown IDENTITY_MODE %q", c.IdentityMode)
	}
	if c.MaxConcurrency <= 0 {
		return fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}
