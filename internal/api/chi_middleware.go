// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/middleware"
)

// ChiMiddlewareConfig holds configuration for the CORS and rate limiting
// middleware factories.
type ChiMiddlewareConfig struct {
	// CORS configuration
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSExposedHeaders []string
	CORSMaxAge         int // seconds

	// Rate limiting configuration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool
}

// NewChiMiddlewareConfig maps the security section of the configuration.
// An empty origin list allows no cross-origin requests.
func NewChiMiddlewareConfig(sec config.SecurityConfig) *ChiMiddlewareConfig {
	return &ChiMiddlewareConfig{
		CORSAllowedOrigins: sec.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", middleware.RequestIDHeader, ConfirmDeleteHeader},
		CORSExposedHeaders: []string{middleware.RequestIDHeader},
		CORSMaxAge:         86400,

		RateLimitRequests: sec.RateLimitReqs,
		RateLimitWindow:   sec.RateLimitWindow,
		RateLimitDisabled: sec.RateLimitDisabled,
	}
}

// ChiMiddleware provides Chi-compatible middleware factories backed by
// go-chi/cors and go-chi/httprate.
type ChiMiddleware struct {
	config *ChiMiddlewareConfig
	cors   func(http.Handler) http.Handler
}

// NewChiMiddleware creates the middleware factory.
func NewChiMiddleware(cfg *ChiMiddlewareConfig) *ChiMiddleware {
	if cfg == nil {
		cfg = NewChiMiddlewareConfig(config.SecurityConfig{RateLimitReqs: 100, RateLimitWindow: time.Minute})
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: cfg.CORSAllowedMethods,
		AllowedHeaders: cfg.CORSAllowedHeaders,
		ExposedHeaders: cfg.CORSExposedHeaders,
		MaxAge:         cfg.CORSMaxAge,
	})

	return &ChiMiddleware{
		config: cfg,
		cors:   corsHandler,
	}
}

// CORS returns the go-chi/cors middleware.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit limits requests per client IP using the configured budget.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.limit("api", m.config.RateLimitRequests, m.config.RateLimitWindow)
}

// healthRateMultiplier scales the budget for probes, which monitoring tools
// call far more often than a person browsing.
const healthRateMultiplier = 10

// RateLimitHealth is the permissive limiter for health endpoints.
func (m *ChiMiddleware) RateLimitHealth() func(http.Handler) http.Handler {
	return m.limit("health", m.config.RateLimitRequests*healthRateMultiplier, m.config.RateLimitWindow)
}

// limit builds an httprate limiter keyed by client IP. group labels
// rejections in api_rate_limit_hits_total.
func (m *ChiMiddleware) limit(group string, requests int, window time.Duration) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled || requests <= 0 || window <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			metrics.APIRateLimitHits.WithLabelValues(group).Inc()
			respondError(w, http.StatusTooManyRequests, ErrCodeRateLimited, "Too many requests, slow down", nil)
		}),
	)
}

// APISecurityHeaders adds security headers to API responses.
//
// Headers added:
//   - X-Content-Type-Options: nosniff
//   - X-Frame-Options: DENY
//   - Referrer-Policy: strict-origin-when-cross-origin
//   - Strict-Transport-Security when served over HTTPS (directly or via proxy)
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
