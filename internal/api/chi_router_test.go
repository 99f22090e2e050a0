// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/live"
	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/middleware"
	"github.com/tomtom215/shelfmark/internal/models"
)

func TestHealthLive(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend()
	fb.pingErr = errors.New("down")
	server := newTestServer(t, fb)

	status, env := get(t, server.URL+"/api/v1/health/live")
	if status != http.StatusOK || env.Status != "success" {
		t.Errorf("live = %d %q, want 200 success even with the backend down", status, env.Status)
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantState  string
	}{
		{"backend up", nil, http.StatusOK, "ready"},
		{"backend down", errors.New("connection refused"), http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fb := newFakeBackend()
			fb.pingErr = tt.pingErr
			server := newTestServer(t, fb, WithBreaker(fixedBreaker("closed")), WithVersion("1.2.3"))

			status, env := get(t, server.URL+"/api/v1/health/ready")
			if status != tt.wantStatus || env.Status != tt.wantState {
				t.Fatalf("ready = %d %q, want %d %q", status, env.Status, tt.wantStatus, tt.wantState)
			}
			var health models.HealthStatus
			decodeData(t, env, &health)
			if health.BackendURL != "http://catalogue.local:8000" {
				t.Errorf("backend url = %q, want credentials and path masked", health.BackendURL)
			}
			if health.BreakerState != "closed" || health.Version != "1.2.3" {
				t.Errorf("health = %+v", health)
			}
			if health.BackendHealthy != (tt.pingErr == nil) {
				t.Errorf("backend healthy = %v", health.BackendHealthy)
			}
		})
	}
}

func TestMaskURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"http://user:pw@host:8000/api?token=x": "http://host:8000",
		"https://catalogue.example":            "https://catalogue.example",
		"not a url":                            "",
		"":                                     "",
	}
	for in, want := range tests {
		if got := maskURL(in); got != want {
			t.Errorf("maskURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSecurityHeadersAndRequestID(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, newFakeBackend())
	resp, err := http.Get(server.URL + "/api/v1/resources")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if resp.Header.Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}

func TestCORS(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, newFakeBackend())

	preflight := func(origin string) *http.Response {
		t.Helper()
		req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/collections/films/1", nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
		req.Header.Set("Access-Control-Request-Headers", ConfirmDeleteHeader)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		return resp
	}

	if got := preflight("http://shelf.local").Header.Get("Access-Control-Allow-Origin"); got != "http://shelf.local" {
		t.Errorf("allowed origin header = %q", got)
	}
	if got := preflight("http://evil.example").Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got allow header %q", got)
	}
}

// Not parallel: reads the global rate limit counter.
func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimitDisabled = false
	cfg.Security.RateLimitReqs = 2
	cfg.Security.RateLimitWindow = time.Minute
	server := newTestServerWithConfig(t, newFakeBackend(), cfg)

	hits := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("api"))

	for i := 0; i < 2; i++ {
		if status, _ := get(t, server.URL+"/api/v1/resources"); status != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i+1, status)
		}
	}
	status, env := get(t, server.URL+"/api/v1/highlight?text=a")
	if status != http.StatusTooManyRequests || errorCode(env) != ErrCodeRateLimited {
		t.Errorf("third request = %d %q, want 429 %s", status, errorCode(env), ErrCodeRateLimited)
	}
	if got := testutil.ToFloat64(metrics.APIRateLimitHits.WithLabelValues("api")) - hits; got != 1 {
		t.Errorf("rate limit hits delta = %v, want 1", got)
	}

	// Probes have their own, larger budget.
	if status, _ := get(t, server.URL+"/api/v1/health/live"); status != http.StatusOK {
		t.Errorf("health after api limit = %d, want 200", status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, newFakeBackend())
	if status, _ := get(t, server.URL+"/api/v1/health/live"); status != http.StatusOK {
		t.Fatalf("health status = %d", status)
	}

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "api_requests_total") {
		t.Errorf("metrics = %d, missing api_requests_total", resp.StatusCode)
	}
}

func TestCheckWebSocketOrigin(t *testing.T) {
	t.Parallel()

	h := newTestHandler(newFakeBackend(), testConfig())
	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"no origin (cli)", "", true},
		{"same origin", "http://shelfmark.local:3857", true},
		{"configured origin", "http://shelf.local", true},
		{"foreign origin", "http://evil.example", false},
		{"scheme mismatch on configured origin", "https://shelf.local", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "http://shelfmark.local:3857/api/v1/live", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(r); got != tt.want {
				t.Errorf("checkWebSocketOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestLiveSearch_DisabledWithoutHub(t *testing.T) {
	t.Parallel()

	server := newTestServer(t, newFakeBackend())
	status, env := get(t, server.URL+"/api/v1/live")
	if status != http.StatusServiceUnavailable || errorCode(env) != ErrCodeServiceUnavailable {
		t.Errorf("live without hub = %d %q, want 503", status, errorCode(env))
	}
}

func TestLiveSearch_OverRouter(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend()
	fb.data[models.ResourceFilms] = filmsFixture()
	cfg := testConfig()
	svc := collection.NewService(fb, nil, cfg.View)
	hub := live.NewHub(svc, live.NewConfig(cfg))
	svc.SetNotifier(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	server := httptest.NewServer(NewRouter(NewHandler(svc, cfg, WithLiveHub(hub))).SetupChi())
	t.Cleanup(server.Close)

	header := http.Header{"Origin": {"http://shelf.local"}}
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http")+"/api/v1/live", header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	read := func() (string, json.RawMessage) {
		t.Helper()
		if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			t.Fatal(err)
		}
		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		return msg.Type, msg.Data
	}

	if err := conn.WriteJSON(map[string]any{"type": "search", "resource": "films", "query": "nolan"}); err != nil {
		t.Fatal(err)
	}
	typ, data := read()
	if typ != live.MessageTypeResults || !strings.Contains(string(data), `"total":2`) {
		t.Fatalf("got %s %s, want results with 2 matches", typ, data)
	}

	// A write through the API is broadcast to live sessions.
	status, _ := do(t, http.MethodDelete, server.URL+"/api/v1/collections/films/1?confirm=true", "", nil)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	typ, data = read()
	if typ != live.MessageTypeCollectionChanged || !strings.Contains(string(data), `"films"`) {
		t.Errorf("got %s %s, want collection_changed for films", typ, data)
	}
}
