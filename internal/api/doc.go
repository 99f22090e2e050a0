// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package api provides the HTTP view API for Shelfmark.

Every endpoint returns the standard models.APIResponse envelope. The API does
not store anything: reads are served by the collection service, which fetches
from the catalogue backend and shapes the result, and writes are forwarded to
the backend unchanged.

# Routes

	GET    /api/v1/health/live
	GET    /api/v1/health/ready
	GET    /api/v1/resources
	GET    /api/v1/highlight?text=&q=
	GET    /api/v1/live                              (WebSocket)
	GET    /api/v1/collections/{resource}            ?q&sort&order&page&page_size&owned
	POST   /api/v1/collections/{resource}
	GET    /api/v1/collections/{resource}/search     ?q
	GET    /api/v1/collections/{resource}/groups     ?by
	GET    /api/v1/collections/{resource}/top        ?by&score&n
	GET    /api/v1/collections/{resource}/sample     ?flag&n
	GET    /api/v1/collections/{resource}/recent     ?field&n
	GET    /api/v1/collections/{resource}/stats      ?field&owned
	GET    /api/v1/collections/{resource}/dashboard
	GET    /api/v1/collections/{resource}/{id}
	PUT    /api/v1/collections/{resource}/{id}
	PATCH  /api/v1/collections/{resource}/{id}
	DELETE /api/v1/collections/{resource}/{id}       ?confirm=true or X-Confirm-Delete: true
	GET    /metrics

Unrecognised query parameters on the list route (author, category, ...) are
passed through to the backend as filters.

# Errors

	400 BAD_REQUEST               malformed JSON body, or the backend rejected a write
	400 VALIDATION_ERROR          bad query parameters or record id
	404 NOT_FOUND                 unknown resource or record
	409 CONFIRMATION_REQUIRED     DELETE without confirmation, backend not contacted
	429 RATE_LIMIT_EXCEEDED       go-chi/httprate limit
	502 EXTERNAL_SERVICE_FAILED   backend failed a write or lookup

A failed backend fetch on a read view is not an error: the view is computed
over an empty collection and metadata.degraded is set.

# Middleware

Global: request id with logging context, real IP, panic recovery, access log,
CORS (go-chi/cors). Route groups add httprate limits, security headers and
Prometheus instrumentation keyed by chi route pattern.
*/
package api
