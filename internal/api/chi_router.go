// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/shelfmark/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router for handler using the CORS and rate limit
// settings of its configuration.
func NewRouter(handler *Handler) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(NewChiMiddlewareConfig(handler.cfg.Security)),
	}
}

// SetupChi builds the HTTP handler.
//
// Middleware order (outermost first):
//  1. RequestID: request and correlation ids for logging.Ctx
//  2. RealIP: client address from X-Forwarded-For / X-Real-IP
//  3. Recoverer: panics become 500s
//  4. AccessLog: one line per request, warn when slow or 5xx
//  5. CORS
//
// Route groups then add rate limiting, security headers and Prometheus
// instrumentation. The live endpoint skips the security headers middleware
// so the upgrade response is untouched.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog(middleware.DefaultSlowRequestThreshold))
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// One budget shared by the live endpoint and the views.
	apiLimit := router.chiMiddleware.RateLimit()

	r.Group(func(r chi.Router) {
		r.Use(apiLimit)
		r.Use(middleware.PrometheusMetrics)

		r.Get("/api/v1/live", router.handler.LiveSearch)
	})

	r.Group(func(r chi.Router) {
		r.Use(apiLimit)
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Get("/api/v1/resources", router.handler.Resources)
		r.Get("/api/v1/highlight", router.handler.Highlight)

		r.Route("/api/v1/collections/{resource}", func(r chi.Router) {
			// Views
			r.Get("/", router.handler.ListCollection)
			r.Get("/search", router.handler.SearchCollection)
			r.Get("/groups", router.handler.Groups)
			r.Get("/top", router.handler.Top)
			r.Get("/sample", router.handler.Sample)
			r.Get("/recent", router.handler.Recent)
			r.Get("/stats", router.handler.Stats)
			r.Get("/dashboard", router.handler.Dashboard)

			// Records
			r.Post("/", router.handler.CreateRecord)
			r.Get("/{id}", router.handler.GetRecord)
			r.Put("/{id}", router.handler.UpdateRecord)
			r.Patch("/{id}", router.handler.PatchRecord)
			r.Delete("/{id}", router.handler.DeleteRecord)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
