// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package live

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/metrics"
)

// ErrTooManySessions is returned by Accept when MaxSessions are open.
var ErrTooManySessions = errors.New("too many live sessions")

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful path (SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline means the context deadline passed.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Hub tracks live connections and broadcasts collection changes to them.
// Registration is synchronous; broadcasts are queued and delivered by
// RunWithContext, which runs under the supervisor.
type Hub struct {
	searcher  Searcher
	cfg       Config
	broadcast chan Message

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates a hub whose sessions search through searcher.
func NewHub(searcher Searcher, cfg Config) *Hub {
	return &Hub{
		searcher:  searcher,
		cfg:       cfg.withDefaults(),
		broadcast: make(chan Message, 256),
		clients:   make(map[*Client]struct{}),
	}
}

// Accept registers an upgraded connection and starts its pumps. ctx supplies
// logging values and bounds the session's searches; it must outlive the HTTP
// handler (use context.WithoutCancel on a request context). When the hub is
// full the connection is closed with a policy violation frame.
func (h *Hub) Accept(ctx context.Context, conn *websocket.Conn) (*Client, error) {
	c := newClient(ctx, h, conn)

	h.mu.Lock()
	if h.cfg.MaxSessions > 0 && len(h.clients) >= h.cfg.MaxSessions {
		h.mu.Unlock()
		c.session.Close()
		metrics.LiveErrors.WithLabelValues("session_limit").Inc()
		closeFrame := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many sessions")
		_ = conn.WriteControl(websocket.CloseMessage, closeFrame, time.Now().Add(writeWait))
		_ = conn.Close()
		return nil, ErrTooManySessions
	}
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	metrics.LiveSessions.Inc()
	logging.Ctx(ctx).Info().Uint64("client_id", c.id).Int("total_clients", count).Msg("live client connected")

	c.start()
	return c, nil
}

// unregister removes c and closes its send channel. Safe to call twice.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	c.closeSend()
	if ok {
		metrics.LiveSessions.Dec()
		logging.Info().Uint64("client_id", c.id).Int("total_clients", count).Msg("live client disconnected")
	}
}

// CollectionChanged queues a collection_changed broadcast. It never blocks;
// when the queue is full the notification is dropped.
func (h *Hub) CollectionChanged(resource string) {
	msg := Message{Type: MessageTypeCollectionChanged, Data: CollectionChangedData{Resource: resource}}
	select {
	case h.broadcast <- msg:
	default:
		metrics.LiveErrors.WithLabelValues("broadcast_dropped").Inc()
		logging.Warn().Str("resource", resource).Msg("broadcast channel full, dropping collection_changed")
	}
}

// RunWithContext delivers broadcasts until ctx is cancelled, then closes every
// client. Designed to run under suture supervision.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Shutdown takes priority over pending broadcasts.
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// sortedClients returns the clients in id order. Caller holds h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

func (h *Hub) broadcastToClients(msg Message) {
	h.mu.RLock()
	clients := h.sortedClients()
	h.mu.RUnlock()

	for _, c := range clients {
		c.enqueue(msg)
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.RLock()
	clients := h.sortedClients()
	h.mu.RUnlock()

	for _, c := range clients {
		c.closeSend()
	}

	logging.Info().
		Str("component", "live-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", len(clients)).
		Msg("live hub stopped")
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
