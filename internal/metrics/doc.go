// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered with the default registry through promauto at
package init, so importing the package is enough to make them visible on the
/metrics endpoint.

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Inbound rate limit rejections (counter)
    Labels: endpoint

Backend Metrics:
  - backend_requests_total: Requests to the catalogue backend (counter)
    Labels: resource, method, status_code ("error" when no response arrived)
  - backend_request_duration_seconds: Backend latency (histogram)
    Labels: resource, method
  - backend_rate_limit_retries_total: Retries after HTTP 429 (counter)
    Labels: resource

Collection Metrics:
  - collection_degraded_fetches_total: Failed fetches served empty (counter)
    Labels: resource
  - collection_mutations_total: Forwarded writes (counter)
    Labels: resource, operation, result
  - collection_deletes_declined_total: Unconfirmed deletes (counter)
    Labels: source (api, cli)

View Metrics:
  - view_compute_duration_seconds: View derivation time (histogram)
    Labels: view (list, groups, top, sample, recent, stats, dashboard)
  - view_records_processed_total: Records fed through views (counter)
    Labels: view

Live Search Metrics:
  - live_sessions: Open sessions (gauge)
  - live_messages_sent_total, live_messages_received_total (counter)
    Labels: type
  - live_searches_fired_total: Debounced searches executed (counter)
  - live_stale_results_total: Superseded results dropped (counter)
  - live_errors_total (counter)
    Labels: error_type

Circuit Breaker Metrics:
  - circuit_breaker_state: 0=closed, 1=half-open, 2=open (gauge)
    Labels: name
  - circuit_breaker_requests_total (counter)
    Labels: name, result (success, failure, rejected)
  - circuit_breaker_consecutive_failures (gauge)
    Labels: name
  - circuit_breaker_state_transitions_total (counter)
    Labels: name, from_state, to_state

# Usage Example

	start := time.Now()
	recs, err := client.List(ctx, "films", nil)
	metrics.RecordBackendRequest("films", http.MethodGet, status, time.Since(start))

Example PromQL queries:

	# Stale live results per minute
	rate(live_stale_results_total[1m]) * 60

	# Backend p95 latency per resource
	histogram_quantile(0.95, sum by (le, resource) (rate(backend_request_duration_seconds_bucket[5m])))

# Cardinality Management

Endpoint labels use the chi route pattern rather than the raw path, and the
resource label is bounded by the schema registry. Record IDs and query strings
never become label values.

# Thread Safety

All recording functions are safe for concurrent use; the Prometheus client
synchronizes internally.
*/
package metrics
