// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package collection

import (
	"context"

	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
)

// MutationResult is the backend's copy of the written record plus the
// re-fetched collection it now belongs to.
type MutationResult struct {
	Record     *models.Record `json:"record,omitempty"`
	Collection Collection     `json:"collection"`
}

// Create posts a new record.
func (s *Service) Create(ctx context.Context, resource string, body map[string]any) (MutationResult, error) {
	return s.mutate(ctx, resource, "create", func() (*models.Record, error) {
		rec, err := s.api.Create(ctx, resource, body)
		return &rec, err
	})
}

// Update replaces a record.
func (s *Service) Update(ctx context.Context, resource string, id int64, body map[string]any) (MutationResult, error) {
	return s.mutate(ctx, resource, "update", func() (*models.Record, error) {
		rec, err := s.api.Update(ctx, resource, id, body)
		return &rec, err
	})
}

// Patch changes only the fields in partial.
func (s *Service) Patch(ctx context.Context, resource string, id int64, partial map[string]any) (MutationResult, error) {
	return s.mutate(ctx, resource, "patch", func() (*models.Record, error) {
		rec, err := s.api.Patch(ctx, resource, id, partial)
		return &rec, err
	})
}

// Delete removes a record. Without confirmed it returns
// ErrConfirmationRequired and the backend is never contacted.
func (s *Service) Delete(ctx context.Context, resource string, id int64, confirmed bool) (MutationResult, error) {
	if err := s.checkResource(resource); err != nil {
		return MutationResult{}, err
	}
	if !confirmed {
		return MutationResult{}, ErrConfirmationRequired
	}
	return s.mutate(ctx, resource, "delete", func() (*models.Record, error) {
		return nil, s.api.Delete(ctx, resource, id)
	})
}

// mutate runs a write, then re-fetches the list and notifies listeners. The
// collection is never patched locally.
func (s *Service) mutate(ctx context.Context, resource, op string, write func() (*models.Record, error)) (MutationResult, error) {
	if err := s.checkResource(resource); err != nil {
		return MutationResult{}, err
	}

	rec, err := write()
	metrics.RecordMutation(resource, op, err)
	if err != nil {
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("resource", resource).
			Str("operation", op).
			Msg("Backend rejected mutation")
		return MutationResult{}, err
	}

	logging.Ctx(ctx).Info().
		Str("resource", resource).
		Str("operation", op).
		Msg("Collection mutated")

	s.notify(resource)

	recs, degraded, err := s.fetch(ctx, resource, nil)
	if err != nil {
		return MutationResult{}, err
	}
	return MutationResult{
		Record:     rec,
		Collection: Collection{Resource: resource, Items: recs, Degraded: degraded},
	}, nil
}
