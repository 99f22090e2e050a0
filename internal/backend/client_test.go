// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/models"
)

func testConfig(serverURL string) *config.BackendConfig {
	return &config.BackendConfig{
		URL:            serverURL,
		Timeout:        5 * time.Second,
		MaxRetries:     3,
		RetryBaseDelay: time.Millisecond,
		UserAgent:      "Shelfmark-Test/1.0",
		Breaker: config.BreakerConfig{
			Enabled:     true,
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     time.Minute,
			MinRequests: 3,
			FailureRate: 0.6,
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestClient_List(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotPath, gotQuery, gotUA string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath, gotQuery, gotUA = r.URL.Path, r.URL.RawQuery, r.UserAgent()
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 1, "title": "The Dark Knight", "price": "12.50"}, {"id": 2, "title": "Heat"}]`))
	})

	params := url.Values{}
	params.Set("q", "dark")
	recs, err := client.List(context.Background(), "films", params)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/api/films/" {
		t.Errorf("path = %q, want /api/films/", gotPath)
	}
	if gotQuery != "q=dark" {
		t.Errorf("query = %q, want q=dark", gotQuery)
	}
	if gotUA != "Shelfmark-Test/1.0" {
		t.Errorf("user agent = %q", gotUA)
	}
	if len(recs) != 2 || recs[0].ID != 1 || recs[1].String("title") != "Heat" {
		t.Fatalf("records = %+v", recs)
	}
	if price, ok := recs[0].Number("price"); !ok || price != 12.5 {
		t.Errorf("numeric string price = %v, %v; want 12.5", price, ok)
	}
}

func TestClient_ListPaginatedEnvelope(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count": 1, "next": null, "results": [{"id": 9, "name": "Favourites"}]}`))
	})

	recs, err := client.List(context.Background(), "lists", nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != 9 {
		t.Errorf("records = %+v", recs)
	}
}

func TestClient_ListFollowsNextLinks(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var queries []string
	var server *httptest.Server
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.RawQuery)
		mu.Unlock()
		switch r.URL.Query().Get("page") {
		case "":
			_, _ = w.Write([]byte(`{"count": 3, "next": "` + server.URL + `/api/films/?q=nolan&page=2", "results": [{"id": 1}]}`))
		case "2":
			_, _ = w.Write([]byte(`{"count": 3, "next": "/api/films/?q=nolan&page=3", "results": [{"id": 2}]}`))
		default:
			_, _ = w.Write([]byte(`{"count": 3, "next": null, "results": [{"id": 3}]}`))
		}
	})

	params := url.Values{}
	params.Set("q", "nolan")
	recs, err := client.List(context.Background(), "films", params)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	ids := make([]int64, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, rec.ID)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Errorf("ids = %v, want [1 2 3] across three pages", ids)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"q=nolan", "q=nolan&page=2", "q=nolan&page=3"}
	if len(queries) != len(want) {
		t.Fatalf("requests = %v, want %v", queries, want)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("request %d query = %q, want %q", i+1, queries[i], want[i])
		}
	}
}

func TestClient_ListRejectsForeignNextLink(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"next": "http://elsewhere.example/api/films/?page=2", "results": [{"id": 1}]}`))
	})

	if _, err := client.List(context.Background(), "films", nil); err == nil {
		t.Fatal("List followed a next link to another host")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}
}

func TestClient_ListStopsAtPageLimit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"next": "/api/films/?page=again", "results": [{"id": 1}]}`))
	})

	recs, err := client.List(context.Background(), "films", nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got := calls.Load(); got != maxListPages {
		t.Errorf("backend calls = %d, want %d", got, maxListPages)
	}
	if len(recs) != maxListPages {
		t.Errorf("records = %d, want %d", len(recs), maxListPages)
	}
}

func TestClient_ListEmptyIsNonNil(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`[]`, `null`, `{"results": null}`} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		recs, err := client.List(context.Background(), "books", nil)
		if err != nil {
			t.Fatalf("List(%s): %v", body, err)
		}
		if recs == nil || len(recs) != 0 {
			t.Errorf("List(%s) = %#v, want empty non-nil slice", body, recs)
		}
	}
}

func TestClient_BaseURLPathPrefix(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotPath = r.URL.Path
		mu.Unlock()
		_, _ = w.Write([]byte(`{"id": 3}`))
	}))
	defer server.Close()

	client, err := NewClient(testConfig(server.URL + "/catalogue/"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Get(context.Background(), "book-copies", 3); err != nil {
		t.Fatalf("Get: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if gotPath != "/catalogue/api/book-copies/3/" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestClient_Mutations(t *testing.T) {
	t.Parallel()

	type seen struct {
		method string
		path   string
		body   map[string]any
		ctype  string
	}
	var (
		mu   sync.Mutex
		last seen
	)

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got := seen{method: r.Method, path: r.URL.Path, ctype: r.Header.Get("Content-Type")}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &got.body)
		}
		mu.Lock()
		last = got
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id": 5, "title": "Saved"}`))
	})
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() error
		wantMethod string
		wantPath   string
		wantBody   bool
	}{
		{"create", func() error {
			_, err := client.Create(ctx, "watches", map[string]any{"title": "Speedmaster"})
			return err
		}, http.MethodPost, "/api/watches/", true},
		{"update", func() error {
			_, err := client.Update(ctx, "watches", 5, map[string]any{"title": "Seamaster"})
			return err
		}, http.MethodPut, "/api/watches/5/", true},
		{"patch", func() error {
			_, err := client.Patch(ctx, "watches", 5, map[string]any{"owned": true})
			return err
		}, http.MethodPatch, "/api/watches/5/", true},
		{"delete", func() error {
			return client.Delete(ctx, "watches", 5)
		}, http.MethodDelete, "/api/watches/5/", false},
	}

	for _, tt := range tests {
		if err := tt.call(); err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		mu.Lock()
		last := last
		mu.Unlock()
		if last.method != tt.wantMethod || last.path != tt.wantPath {
			t.Errorf("%s: got %s %s, want %s %s", tt.name, last.method, last.path, tt.wantMethod, tt.wantPath)
		}
		if tt.wantBody && (last.body == nil || last.ctype != "application/json") {
			t.Errorf("%s: body = %v, content-type = %q", tt.name, last.body, last.ctype)
		}
		if !tt.wantBody && last.body != nil {
			t.Errorf("%s: unexpected body %v", tt.name, last.body)
		}
	}
}

func TestClient_NotFound(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Not found."}`, http.StatusNotFound)
	})

	_, err := client.Get(context.Background(), "films", 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %T, want *HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusNotFound || httpErr.Body != `{"detail": "Not found."}` {
		t.Errorf("HTTPError = %+v", httpErr)
	}
}

func TestClient_ServerErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.List(context.Background(), "music", nil)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 500 {
		t.Fatalf("err = %v, want HTTPError 500", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 5xx)", calls.Load())
	}
}

func TestClient_UnknownResource(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	_, err := client.List(context.Background(), "spaceships", nil)
	if !errors.Is(err, ErrUnknownResource) || !errors.Is(err, models.ErrUnknownResource) {
		t.Fatalf("err = %v, want ErrUnknownResource", err)
	}
	if calls.Load() != 0 {
		t.Error("request sent for unknown resource")
	}
}

func TestClient_InvalidID(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})
	ctx := context.Background()

	if _, err := client.Get(ctx, models.ResourceBooks, 0); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Get(0) err = %v, want ErrInvalidID", err)
	}
	if _, err := client.Patch(ctx, models.ResourceBooks, -4, map[string]any{"rating": 3}); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Patch(-4) err = %v, want ErrInvalidID", err)
	}
	if err := client.Delete(ctx, models.ResourceBooks, 0); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Delete(0) err = %v, want ErrInvalidID", err)
	}
	if calls.Load() != 0 {
		t.Errorf("calls = %d, want 0", calls.Load())
	}
}

func TestClient_RateLimitRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) <= 2 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[{"id": 1}]`))
	})

	recs, err := client.List(context.Background(), "art", nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 {
		t.Errorf("records = %d, want 1", len(recs))
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestClient_RateLimitExhausted(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.List(context.Background(), "games", nil)
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("err = %v, want ErrRateLimited", err)
	}
	if calls.Load() != 4 {
		t.Errorf("calls = %d, want 4 (1 + 3 retries)", calls.Load())
	}
}

func TestClient_RateLimitWaitCancelled(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "20")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.List(ctx, "games", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("backoff wait ignored context cancellation")
	}
}

func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	tests := []struct {
		name       string
		attempt    int
		retryAfter string
		want       time.Duration
	}{
		{"first attempt", 0, "", time.Second},
		{"exponential", 3, "", 8 * time.Second},
		{"retry-after seconds", 2, "7", 7 * time.Second},
		{"retry-after zero", 1, "0", 0},
		{"retry-after date", 0, now.Add(5 * time.Second).Format(http.TimeFormat), 5 * time.Second},
		{"retry-after past date", 0, now.Add(-time.Hour).Format(http.TimeFormat), 0},
		{"garbage falls back", 1, "soon", 2 * time.Second},
		{"capped", 10, "", maxRetryDelay},
		{"retry-after capped", 0, "3600", maxRetryDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := backoffDelay(time.Second, tt.attempt, tt.retryAfter, now); got != tt.want {
				t.Errorf("backoffDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_Ping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{"ok", http.StatusOK, false},
		{"client error still alive", http.StatusForbidden, false},
		{"server error", http.StatusServiceUnavailable, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/lists/" {
					t.Errorf("ping path = %q", r.URL.Path)
				}
				w.WriteHeader(tt.status)
			})
			err := client.Ping(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Ping() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClient_PingUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	serverURL := server.URL
	server.Close()

	client, err := NewClient(testConfig(serverURL))
	if err != nil {
		t.Fatal(err)
	}
	if err := client.Ping(context.Background()); err == nil {
		t.Error("Ping() against closed server should fail")
	}
}
