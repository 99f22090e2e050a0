// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tomtom215/shelfmark/internal/metrics"
)

// unmatchedRoute labels requests that did not resolve to a chi route so raw
// paths never become label values.
const unmatchedRoute = "unmatched"

// PrometheusMetrics creates middleware for recording Prometheus metrics.
// The endpoint label is the chi route pattern (e.g. /api/v1/collections/{resource}).
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		metrics.RecordAPIRequest(
			r.Method,
			routePattern(r),
			strconv.Itoa(responseStatus(ww, r)),
			time.Since(start),
		)
	})
}

// routePattern returns the matched chi route pattern for r.
func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}

// responseStatus resolves the status of a wrapped response. Handlers that
// never call WriteHeader implicitly answer 200; hijacked WebSocket upgrades
// answer 101 on the raw connection.
func responseStatus(ww chimiddleware.WrapResponseWriter, r *http.Request) int {
	if status := ww.Status(); status != 0 {
		return status
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return http.StatusSwitchingProtocols
	}
	return http.StatusOK
}
