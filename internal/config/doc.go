// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package config provides centralized configuration management for Shelfmark.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. Later layers win.

# Configuration File

The first existing file among CONFIG_PATH, config.yaml, config.yml,
/etc/shelfmark/config.yaml and /etc/shelfmark/config.yml is loaded:

	backend:
	  url: http://localhost:8000
	  timeout: 10s
	  breaker:
	    enabled: true
	view:
	  page_size: 20
	  debounce: 300ms
	resources:
	  music:
	    search_fields: [title, artist, genre, label]

# Environment Variables

Backend:
  - BACKEND_URL: Catalogue REST backend base URL (default: http://localhost:8000)
  - BACKEND_TIMEOUT, BACKEND_MAX_RETRIES, BACKEND_RETRY_DELAY
  - BACKEND_RATE_LIMIT, BACKEND_RATE_BURST: outgoing token bucket
  - BACKEND_BREAKER_ENABLED, BACKEND_BREAKER_TIMEOUT, BACKEND_BREAKER_INTERVAL

Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8085), HTTP_TIMEOUT, SHUTDOWN_TIMEOUT
  - ENVIRONMENT: development or production

Views and search:
  - VIEW_PAGE_SIZE, VIEW_MAX_PAGE_SIZE, VIEW_SAMPLE_SIZE, VIEW_TOP_N, VIEW_RECENT_N
  - SEARCH_DEBOUNCE, SEARCH_MAX_QUERY_LENGTH
  - <RESOURCE>_SEARCH_FIELDS: comma-separated override, e.g. FILMS_SEARCH_FIELDS=title,director

Live search:
  - LIVE_ENABLED, LIVE_MAX_SESSIONS, LIVE_SEND_BUFFER, LIVE_SEARCH_TIMEOUT

Security:
  - CORS_ORIGINS: comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Load validates the merged configuration and fails fast on malformed URLs,
non-positive sizes or durations, unknown log levels, wildcard CORS in
production and search field overrides for unregistered resources.
*/
package config
