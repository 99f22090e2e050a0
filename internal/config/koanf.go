// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/shelfmark/internal/models"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/shelfmark/config.yaml",
	"/etc/shelfmark/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:            "http://localhost:8000",
			Timeout:        10 * time.Second,
			MaxRetries:     3,
			RetryBaseDelay: time.Second,
			RateLimitRPS:   20,
			RateLimitBurst: 40,
			UserAgent:      "Shelfmark/1.0",
			Breaker: BreakerConfig{
				Enabled:     true,
				MaxRequests: 3,
				Interval:    time.Minute,
				Timeout:     2 * time.Minute,
				MinRequests: 10,
				FailureRate: 0.6,
			},
		},
		Server: ServerConfig{
			Port:            8085,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		View: ViewConfig{
			PageSize:       20,
			MaxPageSize:    100,
			SampleSize:     4,
			TopN:           4,
			RecentN:        8,
			Debounce:       300 * time.Millisecond,
			MaxQueryLength: 200,
		},
		Live: LiveConfig{
			Enabled:        true,
			MaxSessions:    256,
			SendBuffer:     32,
			MaxMessageSize: 4096,
			SearchTimeout:  15 * time.Second,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// BACKEND_URL -> backend.url
	// FILMS_SEARCH_FIELDS -> resources.films.search_fields
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices.
// Per-resource search_fields are handled separately in processSliceFields.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	paths := append([]string(nil), sliceConfigPaths...)
	for _, name := range k.MapKeys("resources") {
		paths = append(paths, "resources."+name+".search_fields")
	}

	for _, path := range paths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		if err := k.Set(path, splitList(strVal)); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Backend mappings
	"backend_url":              "backend.url",
	"backend_timeout":          "backend.timeout",
	"backend_max_retries":      "backend.max_retries",
	"backend_retry_delay":      "backend.retry_base_delay",
	"backend_rate_limit":       "backend.rate_limit_rps",
	"backend_rate_burst":       "backend.rate_limit_burst",
	"backend_user_agent":       "backend.user_agent",
	"backend_breaker_enabled":  "backend.breaker.enabled",
	"backend_breaker_timeout":  "backend.breaker.timeout",
	"backend_breaker_interval": "backend.breaker.interval",

	// Server mappings
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// View mappings
	"view_page_size":          "view.page_size",
	"view_max_page_size":      "view.max_page_size",
	"view_sample_size":        "view.sample_size",
	"view_top_n":              "view.top_n",
	"view_recent_n":           "view.recent_n",
	"search_debounce":         "view.debounce",
	"search_max_query_length": "view.max_query_length",

	// Live search mappings
	"live_enabled":        "live.enabled",
	"live_max_sessions":   "live.max_sessions",
	"live_send_buffer":    "live.send_buffer",
	"live_search_timeout": "live.search_timeout",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// searchFieldsSuffix marks per-resource search field overrides, e.g.
// BOOK_COPIES_SEARCH_FIELDS=edition,isbn.
const searchFieldsSuffix = "_search_fields"

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - BACKEND_URL -> backend.url
//   - HTTP_PORT -> server.port
//   - SEARCH_DEBOUNCE -> view.debounce
//   - FILMS_SEARCH_FIELDS -> resources.films.search_fields
//   - BOOK_COPIES_SEARCH_FIELDS -> resources.book-copies.search_fields
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	if strings.HasSuffix(key, searchFieldsSuffix) {
		resource := strings.ReplaceAll(strings.TrimSuffix(key, searchFieldsSuffix), "_", "-")
		if models.DefaultRegistry().Has(resource) {
			return "resources." + resource + ".search_fields"
		}
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}
