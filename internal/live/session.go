// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"

	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/view"
)

// Searcher materialises the filtered, sorted sequence a search paginates
// over. Implemented by *collection.Service.
type Searcher interface {
	Materialize(ctx context.Context, resource string, q collection.ListQuery) (collection.Collection, string, error)
	Resources() *models.Registry
}

// Config holds per-session limits.
type Config struct {
	MaxSessions    int
	SendBuffer     int
	MaxMessageSize int64
	SearchTimeout  time.Duration
	Debounce       time.Duration
	PageSize       int
	MaxQueryLength int
}

// NewConfig collects the live and view settings a session needs.
func NewConfig(cfg *config.Config) Config {
	return Config{
		MaxSessions:    cfg.Live.MaxSessions,
		SendBuffer:     cfg.Live.SendBuffer,
		MaxMessageSize: cfg.Live.MaxMessageSize,
		SearchTimeout:  cfg.Live.SearchTimeout,
		Debounce:       cfg.View.Debounce,
		PageSize:       cfg.View.PageSize,
		MaxQueryLength: cfg.View.MaxQueryLength,
	}
}

func (c Config) withDefaults() Config {
	if c.SendBuffer <= 0 {
		c.SendBuffer = 64
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = 64 * 1024
	}
	if c.SearchTimeout <= 0 {
		c.SearchTimeout = 10 * time.Second
	}
	if c.Debounce <= 0 {
		c.Debounce = view.DefaultDebounceWindow
	}
	if c.PageSize <= 0 {
		c.PageSize = view.DefaultPageSize
	}
	return c
}

// activeSearch is the last applied search result.
type activeSearch struct {
	generation uint64
	msg        ClientMessage
	items      []models.Record
	degraded   bool
}

// Session is the live search state of one connection.
//
// Every search message takes a new generation and re-arms the debouncer.
// When the debouncer fires the collection is loaded and the result applied
// only if no newer search arrived in the meantime; superseded results are
// dropped and counted. "more" and "reset" page over the applied sequence
// without fetching.
type Session struct {
	searcher  Searcher
	send      func(Message) bool
	cfg       Config
	debouncer *view.Debouncer
	gen       view.Generation

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	inflight context.CancelFunc
	active   *activeSearch
	pager    *view.Paginator[models.Record]
}

// NewSession creates a session. send must not block; it reports whether the
// message was queued. ctx bounds every search the session runs.
func NewSession(ctx context.Context, searcher Searcher, cfg Config, send func(Message) bool) *Session {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(ctx)
	return &Session{
		searcher:  searcher,
		send:      send,
		cfg:       cfg,
		debouncer: view.NewDebouncer(cfg.Debounce),
		ctx:       ctx,
		cancel:    cancel,
		pager:     view.NewPaginator[models.Record](cfg.PageSize),
	}
}

// Handle decodes and dispatches one client frame.
func (s *Session) Handle(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		metrics.LiveMessagesReceived.WithLabelValues("invalid").Inc()
		s.sendError(ErrCodeBadMessage, "message is not valid JSON")
		return
	}
	s.Dispatch(msg)
}

// Dispatch handles one decoded client message.
func (s *Session) Dispatch(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSearch:
		metrics.LiveMessagesReceived.WithLabelValues(msg.Type).Inc()
		s.search(msg)
	case MessageTypeMore:
		metrics.LiveMessagesReceived.WithLabelValues(msg.Type).Inc()
		s.more()
	case MessageTypeReset:
		metrics.LiveMessagesReceived.WithLabelValues(msg.Type).Inc()
		s.reset()
	case MessageTypePing:
		metrics.LiveMessagesReceived.WithLabelValues(msg.Type).Inc()
		s.send(Message{Type: MessageTypePong})
	default:
		metrics.LiveMessagesReceived.WithLabelValues("unknown").Inc()
		s.sendError(ErrCodeUnknownType, fmt.Sprintf("unknown message type %q", logging.SanitizeValue(msg.Type)))
	}
}

func (s *Session) validate(msg ClientMessage) (string, error) {
	if msg.Resource == "" {
		return ErrCodeInvalidSearch, errors.New("resource is required")
	}
	if !s.searcher.Resources().Has(msg.Resource) {
		return ErrCodeUnknownResource, fmt.Errorf("unknown resource %q", logging.SanitizeValue(msg.Resource))
	}
	if s.cfg.MaxQueryLength > 0 && utf8.RuneCountInString(msg.Query) > s.cfg.MaxQueryLength {
		return ErrCodeInvalidSearch, fmt.Errorf("query longer than %d characters", s.cfg.MaxQueryLength)
	}
	if _, err := collection.ParseOwnedFilter(msg.Owned); err != nil {
		return ErrCodeInvalidSearch, err
	}
	return "", nil
}

func (s *Session) search(msg ClientMessage) {
	if code, err := s.validate(msg); err != nil {
		s.sendError(code, err.Error())
		return
	}

	id := s.gen.Next()

	s.mu.Lock()
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.mu.Unlock()

	s.debouncer.Trigger(func() { s.run(id, msg) })
}

// run executes a debounced search and applies it if still current.
func (s *Session) run(id uint64, msg ClientMessage) {
	if !s.gen.IsCurrent(id) {
		metrics.LiveStaleResults.Inc()
		return
	}
	metrics.LiveSearchesFired.Inc()

	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.SearchTimeout)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight = cancel
	s.mu.Unlock()

	owned, _ := collection.ParseOwnedFilter(msg.Owned) //nolint:errcheck // validated in search
	seq, _, err := s.searcher.Materialize(ctx, msg.Resource, collection.ListQuery{
		Query: msg.Query,
		Sort:  msg.Sort,
		Desc:  msg.Desc,
		Owned: owned,
	})
	timedOut := errors.Is(ctx.Err(), context.DeadlineExceeded)

	applied := s.gen.Apply(id, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.inflight = nil
		if s.closed {
			return
		}
		if err != nil {
			s.failSearch(ctx, msg, err, timedOut)
			return
		}
		s.active = &activeSearch{generation: id, msg: msg, items: seq.Items, degraded: seq.Degraded}
		s.pager.Reset()
		visible, _ := s.pager.Window(seq.Items)
		s.send(s.resultsLocked(visible))
	})
	if !applied {
		metrics.LiveStaleResults.Inc()
		logging.Ctx(s.ctx).Debug().
			Uint64("generation", id).
			Str("resource", msg.Resource).
			Msg("Dropped stale live search result")
	}
}

// failSearch reports a search error. Caller holds s.mu.
func (s *Session) failSearch(ctx context.Context, msg ClientMessage, err error, timedOut bool) {
	switch {
	case timedOut:
		metrics.LiveErrors.WithLabelValues("search_timeout").Inc()
		s.sendErrorLocked(ErrCodeSearchTimeout, "search timed out")
	case errors.Is(err, collection.ErrUnknownResource):
		s.sendErrorLocked(ErrCodeUnknownResource, err.Error())
	default:
		metrics.LiveErrors.WithLabelValues("search").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("resource", msg.Resource).Msg("Live search failed")
		s.sendErrorLocked(ErrCodeSearchFailed, "search failed")
	}
}

func (s *Session) more() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		s.sendErrorLocked(ErrCodeNoSearch, "send a search before asking for more")
		return
	}
	if !s.pager.HasMore(s.active.items) {
		return
	}
	s.pager.Advance()
	if visible, changed := s.pager.Window(s.active.items); changed {
		s.send(s.resultsLocked(visible))
	}
}

func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		s.sendErrorLocked(ErrCodeNoSearch, "send a search before resetting")
		return
	}
	s.pager.Reset()
	if visible, changed := s.pager.Window(s.active.items); changed {
		s.send(s.resultsLocked(visible))
	}
}

func (s *Session) resultsLocked(visible []models.Record) Message {
	return Message{
		Type: MessageTypeResults,
		Data: ResultsData{
			Generation: s.active.generation,
			Resource:   s.active.msg.Resource,
			Query:      s.active.msg.Query,
			Items:      visible,
			Total:      len(s.active.items),
			Visible:    len(visible),
			HasMore:    s.pager.HasMore(s.active.items),
			Degraded:   s.active.degraded,
		},
	}
}

func (s *Session) sendError(code, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendErrorLocked(code, message)
}

func (s *Session) sendErrorLocked(code, message string) {
	if s.closed {
		return
	}
	s.send(Message{Type: MessageTypeError, Data: ErrorData{Code: code, Message: message}})
}

// Close cancels any pending or running search and waits for a running one to
// return. The session sends nothing afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
	s.mu.Unlock()

	s.cancel()
	s.debouncer.Stop()
}
