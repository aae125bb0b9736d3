// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	SessionSecret string `env:"JANDASH_SESSION_SECRET,required"`
	DBPath        string `env:"JANDASH_DB_PATH" envDefault:"./data/jandash.db"`
	ServerHost    string `env:"JANDASH_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"JANDASH_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"JANDASH_ENV" envDefault:"development"`
	LogLevel      string `env:"JANDASH_LOG_LEVEL" envDefault:"info"`

	// SiteURL is the public base URL of this dashboard. It is used for the
	// best-effort referer check on the create-user form.
	SiteURL string `env:"JANDASH_SITE_URL" envDefault:"http://localhost:8080"`

	// Backend API configuration. The backend is the external document store
	// that owns all user records.
	BackendURL    string `env:"JANDASH_BACKEND_URL,required"`
	BackendSecret string `env:"JANDASH_BACKEND_SECRET"`

	// IdPLoginURL is where the landing page sends unauthenticated visitors.
	// Session issuance is entirely the identity provider's business.
	IdPLoginURL string `env:"JANDASH_IDP_LOGIN_URL" envDefault:"/dev/login"`

	// Cache configuration
	RedisURL     string `env:"JANDASH_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"JANDASH_CACHE_PREFIX" envDefault:"jandash:"` // Redis key prefix
	CacheTTL     int    `env:"JANDASH_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"JANDASH_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// RefreshSchedule is the cron spec for the background users-listing
	// refresh job. Empty disables the job.
	RefreshSchedule string `env:"JANDASH_REFRESH_SCHEDULE" envDefault:"@every 5m"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("JANDASH_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	if _, err := url.ParseRequestURI(cfg.BackendURL); err != nil {
		return nil, fmt.Errorf("JANDASH_BACKEND_URL is not a valid URL: %w", err)
	}
	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	return cfg, nil
}
