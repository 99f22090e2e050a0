// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/shelfmark/internal/logging"
)

func newWrapped(w http.ResponseWriter, r *http.Request) chimiddleware.WrapResponseWriter {
	return chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
}

// captureLogs swaps the global logger for one writing to a buffer.
// Tests using it must not run in parallel.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := logging.Logger()
	prevLevel := zerolog.GlobalLevel()
	logging.SetLogger(logging.NewTestLogger(&buf))
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		logging.SetLogger(prev)
		zerolog.SetGlobalLevel(prevLevel)
	})
	return &buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestAccessLog_Levels(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		delay     time.Duration
		slow      time.Duration
		wantLevel string
	}{
		{"fast success at debug", http.StatusOK, 0, time.Second, "debug"},
		{"server error", http.StatusBadGateway, 0, time.Second, "error"},
		{"slow request", http.StatusOK, 20 * time.Millisecond, 5 * time.Millisecond, "warn"},
		{"client error stays debug", http.StatusNotFound, 0, time.Second, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)

			handler := RequestID(AccessLog(tt.slow)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				time.Sleep(tt.delay)
				w.WriteHeader(tt.status)
			})))
			req := httptest.NewRequest(http.MethodGet, "/api/v1/collections/films", nil)
			req.Header.Set(RequestIDHeader, "req-123")
			handler.ServeHTTP(httptest.NewRecorder(), req)

			entry := lastLogLine(t, buf)
			if entry["level"] != tt.wantLevel {
				t.Errorf("level = %v, want %s", entry["level"], tt.wantLevel)
			}
			if entry["status"] != float64(tt.status) {
				t.Errorf("status = %v, want %d", entry["status"], tt.status)
			}
			if entry["request_id"] != "req-123" {
				t.Errorf("request_id = %v, want req-123", entry["request_id"])
			}
			if entry["path"] != "/api/v1/collections/films" {
				t.Errorf("path = %v", entry["path"])
			}
		})
	}
}

func TestAccessLog_DefaultThreshold(t *testing.T) {
	buf := captureLogs(t)

	handler := AccessLog(0)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if entry := lastLogLine(t, buf); entry["level"] != "debug" {
		t.Errorf("level = %v, want debug with the default threshold", entry["level"])
	}
}
