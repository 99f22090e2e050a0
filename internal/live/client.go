// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package live

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// clientIDCounter gives clients increasing ids so broadcasts visit them in a
// stable order.
var clientIDCounter atomic.Uint64

// Client is a middleman between one websocket connection, its search session
// and the hub.
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	session *Session

	mu     sync.Mutex
	send   chan Message
	closed bool

	done chan struct{}
}

func newClient(ctx context.Context, hub *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan Message, hub.cfg.SendBuffer),
		done: make(chan struct{}),
	}
	c.session = NewSession(ctx, hub.searcher, hub.cfg, c.enqueue)
	return c
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// Done is closed once both pumps have exited.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// enqueue queues msg without blocking. A client that cannot keep up is
// disconnected rather than silently missing results.
func (c *Client) enqueue(msg Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		metrics.LiveMessagesSent.WithLabelValues(msg.Type).Inc()
		return true
	default:
		metrics.LiveErrors.WithLabelValues("slow_consumer").Inc()
		logging.Warn().Uint64("client_id", c.id).Msg("Live client send buffer full, disconnecting")
		c.closed = true
		close(c.send)
		return false
	}
}

// closeSend closes the send channel once; the write pump then sends a close
// frame and drops the connection.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump feeds client frames into the session until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.session.Close()
		c.hub.unregister(c)
		_ = c.conn.Close() //nolint:errcheck // best-effort cleanup
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				metrics.LiveErrors.WithLabelValues("read").Inc()
				logging.Warn().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close error")
			}
			return
		}
		c.session.Handle(data)
	}
}

// writePump writes queued messages and keep-alive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() //nolint:errcheck // best-effort cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")) //nolint:errcheck // closing anyway
				return
			}

			payload, err := json.Marshal(message)
			if err != nil {
				metrics.LiveErrors.WithLabelValues("encode").Inc()
				logging.Error().Err(err).Str("message_type", message.Type).Msg("failed to encode live message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				metrics.LiveErrors.WithLabelValues("write").Inc()
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// start runs both pumps; Done closes when they have exited.
func (c *Client) start() {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.writePump()
	}()
	go func() {
		defer wg.Done()
		c.readPump()
	}()
	go func() {
		wg.Wait()
		close(c.done)
	}()
}
