package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/GriffinCanCode/fsgate/internal/providers/filesystem"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port      string `envconfig:"PORT" default:"3000"`
	Host      string `envconfig:"HOST" default:"0.0.0.0"`
	StaticDir string `envconfig:"STATIC_DIR"`
	// TrustedProxies may set X-Forwarded-For; empty trusts none
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`
}

// StorageConfig holds the sandbox root and write limits.
type StorageConfig struct {
	DataDir         string `envconfig:"DATA_DIR" default:"data"`
	MaxUploadBytes  int64  `envconfig:"MAX_UPLOAD_BYTES" default:"52428800"`
	TraversalPolicy string `envconfig:"TRAVERSAL_POLICY" default:"basename"`
	ListConcurrency int    `envconfig:"LIST_CONCURRENCY" default:"8"`
}

// AuthConfig holds the optional pre-configured bearer token.
type AuthConfig struct {
	Token string `envconfig:"AUTH_TOKEN"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "3000",
			Host: "0.0.0.0",
		},
		Storage: StorageConfig{
			DataDir:         "data",
			MaxUploadBytes:  filesystem.DefaultMaxUploadBytes,
			TraversalPolicy: string(filesystem.PolicyBasename),
			ListConcurrency: 8,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Policy returns the parsed traversal policy.
func (c *Config) Policy() filesystem.TraversalPolicy {
	p, err := filesystem.ParsePolicy(c.Storage.TraversalPolicy)
	if err != nil {
		return filesystem.PolicyBasename
	}
	return p
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("invalid config: PORT is required")
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		return fmt.Errorf("invalid config: DATA_DIR is required")
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid config: MAX_UPLOAD_BYTES must be positive, got %d", c.Storage.MaxUploadBytes)
	}
	if c.Storage.ListConcurrency <= 0 {
		return fmt.Errorf("invalid config: LIST_CONCURRENCY must be positive, got %d", c.Storage.ListConcurrency)
	}
	if _, err := filesystem.ParsePolicy(c.Storage.TraversalPolicy); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid config: rate limit requires positive RATE_LIMIT_RPS and RATE_LIMIT_BURST")
	}
	return nil
}
