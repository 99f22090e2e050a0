// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRecordAPIRequest tests API request metric recording
func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{"list view", "GET", "/api/v1/collections/{resource}", "200", 25 * time.Millisecond},
		{"dashboard", "GET", "/api/v1/collections/{resource}/dashboard", "200", 150 * time.Millisecond},
		{"unknown resource", "GET", "/api/v1/collections/{resource}", "404", 2 * time.Millisecond},
		{"unconfirmed delete", "DELETE", "/api/v1/collections/{resource}/{id}", "409", time.Millisecond},
		{"backend down", "POST", "/api/v1/collections/{resource}", "502", 500 * time.Millisecond},
		{"rate limited", "GET", "/api/v1/highlight", "429", time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after-before != 1 {
				t.Errorf("api_requests_total delta = %v, want 1", after-before)
			}
		})
	}
}

// TestTrackActiveRequest_RequestLifecycle simulates realistic request lifecycle
func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 5; i++ {
		TrackActiveRequest(false)
	}
	if got := testutil.ToFloat64(APIActiveRequests) - base; got != 5 {
		t.Errorf("active requests = %v, want 5", got)
	}

	for i := 0; i < 5; i++ {
		TrackActiveRequest(false)
	}
	if got := testutil.ToFloat64(APIActiveRequests) - base; got != 0 {
		t.Errorf("active requests after drain = %v, want 0", got)
	}
}

func TestRecordBackendRequest(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantCode string
	}{
		{"ok", 200, "200"},
		{"not found", 404, "404"},
		{"throttled", 429, "429"},
		{"transport error", 0, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := BackendRequestsTotal.WithLabelValues("books", "GET", tt.wantCode)
			before := testutil.ToFloat64(c)
			RecordBackendRequest("books", "GET", tt.status, 10*time.Millisecond)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("backend_requests_total{status_code=%q} delta = %v, want 1", tt.wantCode, got)
			}
		})
	}
}

func TestRecordMutation(t *testing.T) {
	ok := CollectionMutations.WithLabelValues("watches", "create", "success")
	failed := CollectionMutations.WithLabelValues("watches", "create", "failure")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordMutation("watches", "create", nil)
	RecordMutation("watches", "create", errors.New("backend returned 500"))
	RecordMutation("watches", "create", nil)

	if got := testutil.ToFloat64(ok) - okBefore; got != 2 {
		t.Errorf("success delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(failed) - failedBefore; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
}

func TestRecordViewComputation(t *testing.T) {
	c := ViewRecordsProcessed.WithLabelValues("top")
	before := testutil.ToFloat64(c)

	RecordViewComputation("top", 45, 300*time.Microsecond)

	if got := testutil.ToFloat64(c) - before; got != 45 {
		t.Errorf("view_records_processed_total delta = %v, want 45", got)
	}
}

// TestCircuitBreakerMetrics tests circuit breaker metric recording
func TestCircuitBreakerMetrics(t *testing.T) {
	cbName := "test-backend"

	CircuitBreakerState.WithLabelValues(cbName).Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues(cbName)); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}

	CircuitBreakerRequests.WithLabelValues(cbName, "success").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "failure").Inc()
	CircuitBreakerRequests.WithLabelValues(cbName, "rejected").Inc()
	CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(5)
	CircuitBreakerTransitions.WithLabelValues(cbName, "closed", "open").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "open", "half-open").Inc()
	CircuitBreakerTransitions.WithLabelValues(cbName, "half-open", "closed").Inc()

	if got := testutil.CollectAndCount(CircuitBreakerTransitions); got < 3 {
		t.Errorf("transition series = %d, want at least 3", got)
	}
}

func TestLiveMetrics(t *testing.T) {
	firedBefore := testutil.ToFloat64(LiveSearchesFired)
	staleBefore := testutil.ToFloat64(LiveStaleResults)

	LiveSessions.Inc()
	LiveSessions.Dec()
	LiveMessagesReceived.WithLabelValues("search").Inc()
	LiveMessagesSent.WithLabelValues("results").Inc()
	LiveSearchesFired.Inc()
	LiveStaleResults.Add(2)
	LiveErrors.WithLabelValues("read").Inc()

	if got := testutil.ToFloat64(LiveSearchesFired) - firedBefore; got != 1 {
		t.Errorf("fired delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(LiveStaleResults) - staleBefore; got != 2 {
		t.Errorf("stale delta = %v, want 2", got)
	}
}

// TestAppMetrics tests application-level metrics
func TestAppMetrics(t *testing.T) {
	SetAppInfo("1.0.0", "go1.24")
	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "go1.24")); got != 1 {
		t.Errorf("app_info = %v, want 1", got)
	}

	UpdateUptime(time.Now().Add(-time.Hour))
	if got := testutil.ToFloat64(AppUptime); got < 3600 {
		t.Errorf("uptime = %v, want >= 3600", got)
	}
}

// TestConcurrentMetricRecording tests thread-safety of metric recording
func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 50
	operationsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordAPIRequest("GET", "/api/v1/test", "200", time.Duration(j)*time.Millisecond)
				RecordBackendRequest("films", "GET", 200, time.Millisecond)
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}

	wg.Wait()
}

func TestMetricsRegistration(t *testing.T) {
	collectors := []prometheus.Collector{
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		APIRateLimitHits,
		BackendRequestsTotal,
		BackendRequestDuration,
		BackendRateLimitRetries,
		CollectionDegradedFetches,
		CollectionMutations,
		DeletesDeclined,
		ViewComputeDuration,
		ViewRecordsProcessed,
		LiveSessions,
		LiveMessagesSent,
		LiveMessagesReceived,
		LiveSearchesFired,
		LiveStaleResults,
		LiveErrors,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerConsecutiveFailures,
		CircuitBreakerTransitions,
		AppInfo,
		AppUptime,
	}

	for _, m := range collectors {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("collector has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/collections/{resource}", "200", 25*time.Millisecond)
	}
}

func BenchmarkTrackActiveRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		TrackActiveRequest(true)
		TrackActiveRequest(false)
	}
}
