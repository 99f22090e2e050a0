// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Command server runs the Shelfmark HTTP API in front of a catalogue REST
backend.

Shelfmark keeps no database of its own. Every view (lists, search, groups,
top-N rankings, random shelves, recent additions, stats and the dashboard)
is computed from a fresh backend fetch, and writes go straight through to
the backend.

# Process Layout

	shelfmark (root)
	├── messaging-layer
	│   ├── live-hub        WebSocket live search (LIVE_ENABLED)
	│   └── uptime          app_uptime_seconds
	└── api-layer
	    └── http-server     chi router, /api/v1 and /metrics

Start-up order:

 1. Configuration: koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Resource registry with per-resource search field overrides
 4. Backend client, rate limited and wrapped in a circuit breaker
 5. Collection service and live search hub
 6. Supervisor tree

An unreachable backend at start-up is logged and tolerated; views come
back degraded until it answers.

# Configuration

The most common environment variables:

	BACKEND_URL=http://localhost:8000   catalogue backend
	HTTP_PORT=8085                      listen port
	CORS_ORIGINS=https://shelf.example  comma-separated
	SEARCH_DEBOUNCE=300ms               live search quiet period
	LOG_LEVEL=info                      trace, debug, info, warn, error
	FILMS_SEARCH_FIELDS=title,director  per-resource search fields

# Signals

SIGINT and SIGTERM cancel the tree. The HTTP server drains for
SHUTDOWN_TIMEOUT and live sessions receive a shutdown message before
their connections close.

Build with a version:

	go build -ldflags "-X main.version=1.0.0" ./cmd/server
*/
package main
