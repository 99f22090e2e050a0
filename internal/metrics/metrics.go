// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Backend Client Metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Total number of requests sent to the catalogue backend",
		},
		[]string{"resource", "method", "status_code"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Catalogue backend request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"resource", "method"},
	)

	BackendRateLimitRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_rate_limit_retries_total",
			Help: "Total number of retries after HTTP 429 from the backend",
		},
		[]string{"resource"},
	)

	// Collection Service Metrics
	CollectionDegradedFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_degraded_fetches_total",
			Help: "Collection fetches that failed and were served as an empty collection",
		},
		[]string{"resource"},
	)

	CollectionMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_mutations_total",
			Help: "Create, update, patch and delete operations forwarded to the backend",
		},
		[]string{"resource", "operation", "result"}, // result: "success", "failure"
	)

	DeletesDeclined = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collection_deletes_declined_total",
			Help: "Delete requests refused because confirmation was missing",
		},
		[]string{"source"}, // source: "api", "cli"
	)

	// View Engine Metrics
	ViewComputeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "view_compute_duration_seconds",
			Help:    "Time spent deriving a view from a fetched collection",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"view"},
	)

	ViewRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "view_records_processed_total",
			Help: "Records fed through view computations",
		},
		[]string{"view"},
	)

	// Live Search Metrics
	LiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_sessions",
			Help: "Current number of live search sessions",
		},
	)

	LiveMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_messages_sent_total",
			Help: "Total number of live search messages sent",
		},
		[]string{"type"},
	)

	LiveMessagesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_messages_received_total",
			Help: "Total number of live search messages received",
		},
		[]string{"type"},
	)

	LiveSearchesFired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_searches_fired_total",
			Help: "Debounced searches that reached the collection service",
		},
	)

	LiveStaleResults = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_stale_results_total",
			Help: "Search results discarded because a newer search superseded them",
		},
	)

	LiveErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_errors_total",
			Help: "Total number of live search session errors",
		},
		[]string{"error_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordBackendRequest records one round trip to the catalogue backend.
// A zero status means the request never produced a response.
func RecordBackendRequest(resource, method string, status int, duration time.Duration) {
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	BackendRequestsTotal.WithLabelValues(resource, method, code).Inc()
	BackendRequestDuration.WithLabelValues(resource, method).Observe(duration.Seconds())
}

// RecordMutation records a forwarded create/update/patch/delete.
func RecordMutation(resource, operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	CollectionMutations.WithLabelValues(resource, operation, result).Inc()
}

// RecordViewComputation records how long a view took over n records.
func RecordViewComputation(view string, records int, duration time.Duration) {
	ViewComputeDuration.WithLabelValues(view).Observe(duration.Seconds())
	ViewRecordsProcessed.WithLabelValues(view).Add(float64(records))
}

// SetAppInfo publishes the build version.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// UpdateUptime sets the uptime gauge from the process start time.
func UpdateUptime(started time.Time) {
	AppUptime.Set(time.Since(started).Seconds())
}
