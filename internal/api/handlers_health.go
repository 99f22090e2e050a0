// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/tomtom215/shelfmark/internal/models"
)

// readyProbeTimeout bounds the backend ping of the readiness probe.
const readyProbeTimeout = 3 * time.Second

// HealthLive handles liveness probes. It never touches the backend.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probes: 200 when the backend answers,
// 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
	defer cancel()

	healthy := h.svc.Ping(ctx) == nil

	health := models.HealthStatus{
		Status:         "ready",
		Version:        h.version,
		BackendURL:     maskURL(h.cfg.Backend.URL),
		BackendHealthy: healthy,
		Uptime:         time.Since(h.startTime).Seconds(),
		CheckedAt:      time.Now(),
	}
	if h.breaker != nil {
		health.BreakerState = h.breaker.State()
	}

	statusCode := http.StatusOK
	if !healthy {
		statusCode = http.StatusServiceUnavailable
		health.Status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: health.Status,
		Data:   health,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(started).Milliseconds(),
		},
	})
}

// maskURL drops credentials, path and query from a URL for display.
func maskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// Resources lists the registered resource schemas.
func (h *Handler) Resources(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.svc.Resources().All(), time.Now(), false, nil)
}
