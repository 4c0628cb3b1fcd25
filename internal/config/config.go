// Package config loads the scheduler service's environment-driven
// configuration, using the teacher's internal/env reflection-based loader
// generalized to this service's settings.
package config

import (
	"fmt"
	"time"

	"github.com/ostepan8/scheduled/internal/env"
)

// Config holds every environment-tunable setting the server binary needs
// at bring-up. Fields left unset by the environment keep their Go zero
// value; defaults are applied explicitly in Load, following internal/env's
// documented "defaults are the consuming code's job" contract.
type Config struct {
	HTTPPort string `env:"HTTP_PORT"`
	DBPath   string `env:"DB_PATH"`

	APIKey   string `env:"API_KEY"`
	AdminKey string `env:"ADMIN_KEY"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE"`

	UserTimezone string `env:"USER_TIMEZONE"`

	OTelEnabled bool `env:"OTEL_ENABLED"`

	ShutdownTimeoutSeconds int `env:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// Load reads Config from the environment and fills in defaults for every
// field left unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.HTTPPort == "" {
		cfg.HTTPPort = "8080"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./scheduled.db"
	}
	if cfg.APIKey == "" {
		cfg.APIKey = "dev-api-key"
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 120
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		cfg.ShutdownTimeoutSeconds = 10
	}

	return cfg, nil
}

// ShutdownTimeout returns ShutdownTimeoutSeconds as a time.Duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// Location resolves UserTimezone via time.LoadLocation, falling back to
// time.Local when unset or unresolvable.
func (c *Config) Location() *time.Location {
	if c.UserTimezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.UserTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}
