// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
service.go - Collection Service Construction and Fetching

The Service composes the backend client with the view engine. It holds no
collection state between calls: every view fetches the resource fresh, derives
what the page needs and returns it.

Components:
  - backend.API: catalogue REST backend (usually wrapped in the circuit breaker)
  - models.Registry: resource schemas (search fields, group/rank/flag fields)
  - config.ViewConfig: page, sample, top-N and recent sizes
  - ChangeNotifier: optional hook told about every successful mutation

Thread Safety:
  - Safe for concurrent use. The notifier is guarded by notifierMu because the
    live hub is attached after the service is built.
*/

//nolint:staticcheck // File documentation, not package doc
package collection

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/tomtom215/shelfmark/internal/backend"
	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/view"
)

var (
	// ErrConfirmationRequired is returned by Delete when the caller did not
	// confirm. No request reaches the backend.
	ErrConfirmationRequired = errors.New("delete requires explicit confirmation")

	// ErrFieldRequired is returned when a view needs a field the caller did
	// not name and the resource schema has no default for.
	ErrFieldRequired = errors.New("field required")

	// ErrUnknownResource aliases the registry sentinel.
	ErrUnknownResource = models.ErrUnknownResource
)

// ChangeNotifier is told when a resource changed through the service.
// Implemented by internal/live.Hub.
type ChangeNotifier interface {
	CollectionChanged(resource string)
}

// Collection is a fetched (and possibly filtered) sequence of records.
type Collection struct {
	Resource string          `json:"resource"`
	Query    string          `json:"query,omitempty"`
	Items    []models.Record `json:"items"`
	Degraded bool            `json:"degraded,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithRandomSource makes sampling deterministic.
func WithRandomSource(rnd view.RandomSource) Option {
	return func(s *Service) { s.rnd = rnd }
}

// WithNotifier attaches a change notifier at construction.
func WithNotifier(n ChangeNotifier) Option {
	return func(s *Service) { s.notifier = n }
}

// Service derives collection views from the backend.
type Service struct {
	api       backend.API
	resources *models.Registry
	cfg       config.ViewConfig
	rnd       view.RandomSource

	notifierMu sync.RWMutex
	notifier   ChangeNotifier
}

// NewService creates a collection service. A nil registry uses the built-in
// schemas.
func NewService(api backend.API, resources *models.Registry, cfg config.ViewConfig, opts ...Option) *Service {
	if resources == nil {
		resources = models.DefaultRegistry()
	}
	s := &Service{
		api:       api,
		resources: resources,
		cfg:       cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetNotifier replaces the change notifier. nil disables notifications.
func (s *Service) SetNotifier(n ChangeNotifier) {
	s.notifierMu.Lock()
	defer s.notifierMu.Unlock()
	s.notifier = n
}

func (s *Service) notify(resource string) {
	s.notifierMu.RLock()
	n := s.notifier
	s.notifierMu.RUnlock()
	if n != nil {
		n.CollectionChanged(resource)
	}
}

// Resources returns the schema registry the service validates against.
func (s *Service) Resources() *models.Registry {
	return s.resources
}

// Config returns the view sizes the service applies.
func (s *Service) Config() config.ViewConfig {
	return s.cfg
}

// Schema looks up a resource schema.
func (s *Service) Schema(resource string) (models.Schema, error) {
	return s.resources.Get(resource)
}

func (s *Service) checkResource(resource string) error {
	if !s.resources.Has(resource) {
		return fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	return nil
}

// fetch loads a resource from the backend. Backend failures are logged and
// served as an empty, degraded collection. An unregistered resource or a
// cancelled ctx is an error.
func (s *Service) fetch(ctx context.Context, resource string, params url.Values) ([]models.Record, bool, error) {
	if err := s.checkResource(resource); err != nil {
		return nil, false, err
	}

	recs, err := s.api.List(ctx, resource, params)
	if err != nil {
		if errors.Is(err, ErrUnknownResource) {
			return nil, false, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("resource", resource).
			Msg("Backend fetch failed, serving empty collection")
		metrics.CollectionDegradedFetches.WithLabelValues(resource).Inc()
		return []models.Record{}, true, nil
	}
	if recs == nil {
		recs = []models.Record{}
	}
	return recs, false, nil
}

// Get fetches one record. Errors are returned as-is so callers can map 404s.
func (s *Service) Get(ctx context.Context, resource string, id int64) (models.Record, error) {
	if err := s.checkResource(resource); err != nil {
		return models.Record{}, err
	}
	return s.api.Get(ctx, resource, id)
}

// Ping reports whether the backend is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.api.Ping(ctx)
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
