// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// config file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Backend: the catalogue REST service records are fetched from
//  2. Server: HTTP server for the view API and live search
//  3. View: page sizes, ranking and sampling defaults, search debounce
//  4. Live: WebSocket session limits
//  5. Security: CORS and inbound rate limiting
//  6. Logging: Log levels and output formats
//  7. Resources: per-resource search field overrides
//
// Example - Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
//	client := backend.NewClient(&cfg.Backend)
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access from multiple goroutines.
type Config struct {
	Backend   BackendConfig             `koanf:"backend"`
	Server    ServerConfig              `koanf:"server"`
	View      ViewConfig                `koanf:"view"`
	Live      LiveConfig                `koanf:"live"`
	Security  SecurityConfig            `koanf:"security"`
	Logging   LoggingConfig             `koanf:"logging"`
	Resources map[string]ResourceConfig `koanf:"resources"`
}

// BackendConfig holds the catalogue REST backend connection settings.
//
// Environment Variables:
//   - BACKEND_URL: Base URL of the backend, e.g. http://localhost:8000 (required)
//   - BACKEND_TIMEOUT: Per-request timeout (default: 10s)
//   - BACKEND_MAX_RETRIES: Retries for HTTP 429 responses (default: 3)
//   - BACKEND_RETRY_DELAY: Base delay of the 429 backoff (default: 1s)
//   - BACKEND_RATE_LIMIT: Outgoing requests per second, 0 disables (default: 20)
//   - BACKEND_RATE_BURST: Outgoing burst size (default: 40)
//   - BACKEND_BREAKER_ENABLED: Wrap the client in a circuit breaker (default: true)
type BackendConfig struct {
	URL            string        `koanf:"url"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxRetries     int           `koanf:"max_retries"`
	RetryBaseDelay time.Duration `koanf:"retry_base_delay"`
	RateLimitRPS   float64       `koanf:"rate_limit_rps"`
	RateLimitBurst int           `koanf:"rate_limit_burst"`
	UserAgent      string        `koanf:"user_agent"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the backend circuit breaker.
type BreakerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxRequests uint32        `koanf:"max_requests"` // probes allowed while half-open
	Interval    time.Duration `koanf:"interval"`     // closed-state counter reset period
	Timeout     time.Duration `koanf:"timeout"`      // open duration before half-open
	MinRequests uint32        `koanf:"min_requests"`
	FailureRate float64       `koanf:"failure_rate"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development" or "production"
}

// ViewConfig holds defaults for the derived collection views.
//
// Environment Variables:
//   - VIEW_PAGE_SIZE: Items per "show more" step (default: 20)
//   - VIEW_MAX_PAGE_SIZE: Upper bound for page_size query params (default: 100)
//   - VIEW_SAMPLE_SIZE: Random picks per dashboard shelf (default: 4)
//   - VIEW_TOP_N: Groups in top-N rankings (default: 4)
//   - VIEW_RECENT_N: Records in recent additions (default: 8)
//   - SEARCH_DEBOUNCE: Live search quiescence window (default: 300ms)
//   - SEARCH_MAX_QUERY_LENGTH: Longest accepted query (default: 200)
type ViewConfig struct {
	PageSize       int           `koanf:"page_size"`
	MaxPageSize    int           `koanf:"max_page_size"`
	SampleSize     int           `koanf:"sample_size"`
	TopN           int           `koanf:"top_n"`
	RecentN        int           `koanf:"recent_n"`
	Debounce       time.Duration `koanf:"debounce"`
	MaxQueryLength int           `koanf:"max_query_length"`
}

// LiveConfig holds WebSocket live search settings.
type LiveConfig struct {
	Enabled        bool          `koanf:"enabled"`
	MaxSessions    int           `koanf:"max_sessions"`
	SendBuffer     int           `koanf:"send_buffer"`
	MaxMessageSize int64         `koanf:"max_message_size"`
	SearchTimeout  time.Duration `koanf:"search_timeout"`
}

// SecurityConfig holds CORS and inbound rate limiting settings. Shelfmark has
// no user accounts; it is meant to run next to the backend on a trusted network.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// ResourceConfig overrides the built-in schema of one resource.
type ResourceConfig struct {
	SearchFields []string `koanf:"search_fields"`
}

// SearchOverrides returns the configured search field overrides keyed by resource.
func (c *Config) SearchOverrides() map[string][]string {
	out := make(map[string][]string, len(c.Resources))
	for name, rc := range c.Resources {
		if len(rc.SearchFields) > 0 {
			out[name] = rc.SearchFields
		}
	}
	return out
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from all sources in order of precedence:
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
