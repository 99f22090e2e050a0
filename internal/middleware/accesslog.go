// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfmark/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which AccessLog warns.
const DefaultSlowRequestThreshold = time.Second

// AccessLog returns middleware that writes one structured log line per
// request through logging.Ctx, so request_id and correlation_id are attached
// when RequestID runs first. Requests slower than slow are logged at warn
// level; 5xx responses at error level. slow <= 0 uses DefaultSlowRequestThreshold.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequestThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			duration := time.Since(start)
			status := responseStatus(ww, r)

			logger := logging.Ctx(r.Context())
			var event *zerolog.Event
			switch {
			case status >= http.StatusInternalServerError:
				event = logger.Error()
			case duration > slow:
				event = logger.Warn().Bool("slow", true)
			default:
				event = logger.Debug()
			}

			event.
				Str("method", r.Method).
				Str("path", logging.SanitizeValue(r.URL.Path)).
				Str("route", routePattern(r)).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", duration).
				Str("remote_addr", r.RemoteAddr).
				Msg("HTTP request")
		})
	}
}
