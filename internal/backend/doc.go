// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package backend is the HTTP client for the catalogue REST backend.

The backend owns storage and validation; Shelfmark only reads collections and
forwards writes. Every resource lives at /api/<resource>/ with records at
/api/<resource>/<id>/:

	GET    /api/films/?q=dark     List
	GET    /api/films/7/          Get
	POST   /api/films/            Create
	PUT    /api/films/7/          Update
	PATCH  /api/films/7/          Patch
	DELETE /api/films/7/          Delete

Lists may be a bare JSON array or a paginated {"results": [...]} envelope.

# Resilience

  - HTTP 429 is retried up to BackendConfig.MaxRetries times with exponential
    backoff from RetryBaseDelay; a Retry-After header (seconds or HTTP date)
    overrides the schedule. Nothing else is retried.
  - Outgoing requests pass through a golang.org/x/time/rate token bucket.
  - CircuitBreakerClient (sony/gobreaker) opens once the failure ratio over at
    least MinRequests reaches FailureRate, and reports its state to Prometheus.

# Errors

  - *HTTPError for any non-2xx response; errors.Is(err, ErrNotFound) matches 404
  - ErrUnknownResource before any request for unregistered resources
  - ErrRateLimited when the 429 retry budget is spent
  - gobreaker.ErrOpenState while the breaker is open

Use New to get an API with or without the breaker according to configuration:

	api, err := backend.New(&cfg.Backend)
	films, err := api.List(ctx, "films", url.Values{"q": {"nolan"}})
*/
package backend
