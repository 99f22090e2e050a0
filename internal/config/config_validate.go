// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/shelfmark/internal/models"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateBackend(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateView(); err != nil {
		return err
	}

	if err := c.validateLive(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateResources(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateBackend validates the backend connection settings
func (c *Config) validateBackend() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("BACKEND_URL is required")
	}
	if err := validateBaseURL(c.Backend.URL); err != nil {
		return fmt.Errorf("BACKEND_URL is invalid: %w", err)
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		return fmt.Errorf("BACKEND_MAX_RETRIES must be between 0 and 10")
	}
	if c.Backend.RateLimitRPS < 0 {
		return fmt.Errorf("BACKEND_RATE_LIMIT must not be negative")
	}
	if c.Backend.RateLimitRPS > 0 && c.Backend.RateLimitBurst < 1 {
		return fmt.Errorf("BACKEND_RATE_BURST must be at least 1 when rate limiting is enabled")
	}
	if c.Backend.Breaker.Enabled {
		b := c.Backend.Breaker
		if b.FailureRate <= 0 || b.FailureRate > 1 {
			return fmt.Errorf("backend.breaker.failure_rate must be in (0, 1]")
		}
		if b.Timeout <= 0 {
			return fmt.Errorf("BACKEND_BREAKER_TIMEOUT must be positive")
		}
	}
	return nil
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development or production, got: %s", c.Server.Environment)
	}
	return nil
}

// validateView validates the view defaults
func (c *Config) validateView() error {
	v := c.View
	if v.PageSize < 1 {
		return fmt.Errorf("VIEW_PAGE_SIZE must be at least 1")
	}
	if v.MaxPageSize < v.PageSize {
		return fmt.Errorf("VIEW_MAX_PAGE_SIZE (%d) must be at least VIEW_PAGE_SIZE (%d)", v.MaxPageSize, v.PageSize)
	}
	if v.SampleSize < 1 {
		return fmt.Errorf("VIEW_SAMPLE_SIZE must be at least 1")
	}
	if v.TopN < 1 {
		return fmt.Errorf("VIEW_TOP_N must be at least 1")
	}
	if v.RecentN < 1 {
		return fmt.Errorf("VIEW_RECENT_N must be at least 1")
	}
	if v.Debounce <= 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must be positive")
	}
	if v.MaxQueryLength < 1 {
		return fmt.Errorf("SEARCH_MAX_QUERY_LENGTH must be at least 1")
	}
	return nil
}

// validateLive validates live search settings (only if enabled)
func (c *Config) validateLive() error {
	if !c.Live.Enabled {
		return nil
	}
	if c.Live.MaxSessions < 1 {
		return fmt.Errorf("LIVE_MAX_SESSIONS must be at least 1")
	}
	if c.Live.SendBuffer < 1 {
		return fmt.Errorf("LIVE_SEND_BUFFER must be at least 1")
	}
	if c.Live.MaxMessageSize < 64 {
		return fmt.Errorf("live.max_message_size must be at least 64 bytes")
	}
	if c.Live.SearchTimeout <= 0 {
		return fmt.Errorf("LIVE_SEARCH_TIMEOUT must be positive")
	}
	return nil
}

// validateSecurity validates CORS and rate limit settings
func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	if c.IsProduction() {
		for _, origin := range c.Security.CORSOrigins {
			if origin == "*" {
				return fmt.Errorf("CORS_ORIGINS must list explicit origins in production")
			}
		}
	}
	return nil
}

// validateResources checks that overrides only name registered resources
func (c *Config) validateResources() error {
	if _, err := models.NewRegistry(c.SearchOverrides()); err != nil {
		return fmt.Errorf("resources: %w", err)
	}
	for name, rc := range c.Resources {
		if len(rc.SearchFields) == 0 {
			return fmt.Errorf("resources.%s.search_fields must not be empty", name)
		}
	}
	return nil
}

// validLogLevels are the accepted LOG_LEVEL values
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got: %s", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
	return nil
}

// validateBaseURL checks an http(s) base URL. A path prefix is allowed for
// backends mounted below the root; query strings and fragments are not.
func validateBaseURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %s", parsed.Scheme)
	}
	if parsed.Host == "" {
		return fmt.Errorf("host is required")
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("should not contain query parameters or a fragment")
	}
	return nil
}
