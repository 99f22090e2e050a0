// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package middleware provides HTTP middleware components for the application.

Key Components:

  - RequestID: UUID request ids, echoed in X-Request-ID and stored for logging.Ctx
  - PrometheusMetrics: request count, latency and in-flight instrumentation
  - AccessLog: one structured zerolog line per request, warn on slow requests

All three follow the standard func(http.Handler) http.Handler shape and are
mounted by the chi router in internal/api:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.AccessLog(time.Second))
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics labels requests with the chi route pattern rather than the
raw path, so /api/v1/collections/films and /api/v1/collections/books share one
series. It must be mounted on the router (not wrapped around it) for the
pattern to be available.

Response writers are wrapped with chi's WrapResponseWriter, which keeps
http.Hijacker available for the live search WebSocket upgrade.

See Also:

  - internal/api: router and handlers wrapped by this middleware
  - internal/metrics: Prometheus metric definitions
  - internal/logging: context-aware logging
*/
package middleware
