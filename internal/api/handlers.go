// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/live"
	"github.com/tomtom215/shelfmark/internal/logging"
)

// BreakerStater reports the backend circuit breaker state for readiness.
type BreakerStater interface {
	State() string
}

// Handler serves the view API.
type Handler struct {
	svc       *collection.Service
	hub       *live.Hub
	breaker   BreakerStater
	cfg       *config.Config
	version   string
	startTime time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithLiveHub enables /api/v1/live. Without a hub the endpoint answers 503.
func WithLiveHub(hub *live.Hub) HandlerOption {
	return func(h *Handler) { h.hub = hub }
}

// WithBreaker exposes the breaker state on the readiness probe.
func WithBreaker(b BreakerStater) HandlerOption {
	return func(h *Handler) { h.breaker = b }
}

// WithVersion sets the version reported by the readiness probe.
func WithVersion(version string) HandlerOption {
	return func(h *Handler) { h.version = version }
}

// NewHandler creates the API handler.
func NewHandler(svc *collection.Service, cfg *config.Config, opts ...HandlerOption) *Handler {
	h := &Handler{
		svc:       svc,
		cfg:       cfg,
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// getUpgrader returns a WebSocket upgrader that checks Origin against the
// configured CORS origins.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts same-origin requests, "*" and configured
// origins. Browsers always send Origin on WebSocket handshakes; a missing
// header is accepted so shelfctl and scripts can connect.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	for _, allowed := range h.cfg.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Ctx(r.Context()).Warn().
		Str("origin", logging.SanitizeValue(origin)).
		Msg("Rejected WebSocket connection from unauthorized origin")
	return false
}

// LiveSearch upgrades the connection and hands it to the live hub.
func (h *Handler) LiveSearch(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Live search is disabled", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	// The session outlives this handler; keep the request's logging values
	// but not its cancellation.
	if _, err := h.hub.Accept(context.WithoutCancel(r.Context()), conn); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Live session rejected")
	}
}
