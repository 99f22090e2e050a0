// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package collection

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/view"
)

// GroupsView partitions a collection by one field.
type GroupsView struct {
	Resource string                      `json:"resource"`
	Field    string                      `json:"field"`
	Groups   []view.Group[models.Record] `json:"groups"`
	Sizes    map[string]int              `json:"sizes"`
	Degraded bool                        `json:"degraded,omitempty"`
}

// TopView ranks groups by their average score.
type TopView struct {
	Resource string             `json:"resource"`
	By       string             `json:"by"`
	Score    string             `json:"score"`
	Groups   []view.RankedGroup `json:"groups"`
	Degraded bool               `json:"degraded,omitempty"`
}

// SampleView is a random pick of flagged records.
type SampleView struct {
	Resource string          `json:"resource"`
	Flag     string          `json:"flag"`
	Field    string          `json:"field"`
	Items    []models.Record `json:"items"`
	Degraded bool            `json:"degraded,omitempty"`
}

// RecentView lists the newest records by a date field.
type RecentView struct {
	Resource string          `json:"resource"`
	Field    string          `json:"field"`
	Items    []models.Record `json:"items"`
	Degraded bool            `json:"degraded,omitempty"`
}

// StatsView summarises one numeric field and the owned/wishlist split.
type StatsView struct {
	Resource  string         `json:"resource"`
	Summary   view.Summary   `json:"summary"`
	Ownership view.Ownership `json:"ownership"`
	Degraded  bool           `json:"degraded,omitempty"`
}

// defaultGroupField is the first group field, falling back to the rank key.
func defaultGroupField(schema models.Schema) string {
	if len(schema.GroupFields) > 0 {
		return schema.GroupFields[0]
	}
	return schema.RankKey
}

func fieldOr(field, def, what string) (string, error) {
	if field != "" {
		return field, nil
	}
	if def == "" {
		return "", fmt.Errorf("%w: %s", ErrFieldRequired, what)
	}
	return def, nil
}

// Groups partitions the collection by field, or by the schema's first group
// field when field is empty.
func (s *Service) Groups(ctx context.Context, resource, field string) (GroupsView, error) {
	schema, err := s.Schema(resource)
	if err != nil {
		return GroupsView{}, err
	}
	if field, err = fieldOr(field, defaultGroupField(schema), "group field"); err != nil {
		return GroupsView{}, err
	}

	recs, degraded, err := s.fetch(ctx, resource, nil)
	if err != nil {
		return GroupsView{}, err
	}

	start := time.Now()
	grouping := view.GroupByField(recs, field)
	metrics.RecordViewComputation("groups", len(recs), time.Since(start))

	return GroupsView{
		Resource: resource,
		Field:    field,
		Groups:   grouping.Groups(),
		Sizes:    grouping.Sizes(),
		Degraded: degraded,
	}, nil
}

// Top ranks groups of by (default: rank key) by the average of score
// (default: rating field).
func (s *Service) Top(ctx context.Context, resource, by, score string, n int) (TopView, error) {
	schema, err := s.Schema(resource)
	if err != nil {
		return TopView{}, err
	}
	if by, err = fieldOr(by, schema.RankKey, "rank key"); err != nil {
		return TopView{}, err
	}
	if score, err = fieldOr(score, schema.RatingField, "score field"); err != nil {
		return TopView{}, err
	}

	recs, degraded, err := s.fetch(ctx, resource, nil)
	if err != nil {
		return TopView{}, err
	}

	start := time.Now()
	ranked := view.TopN(recs, by, score, orDefault(n, s.cfg.TopN))
	metrics.RecordViewComputation("top", len(recs), time.Since(start))

	return TopView{Resource: resource, By: by, Score: score, Groups: ranked, Degraded: degraded}, nil
}

// Sample picks n random records whose flag is set. flag may be an alias
// ("favourite", "watchlist", "owned") or a field name.
func (s *Service) Sample(ctx context.Context, resource, flag string, n int) (SampleView, error) {
	schema, err := s.Schema(resource)
	if err != nil {
		return SampleView{}, err
	}
	field := schema.Flag(flag)
	if field == "" {
		return SampleView{}, fmt.Errorf("%w: %s has no %q flag", ErrFieldRequired, resource, flag)
	}

	recs, degraded, err := s.fetch(ctx, resource, nil)
	if err != nil {
		return SampleView{}, err
	}

	start := time.Now()
	picked := view.Sample(recs, view.FlagSet(field), orDefault(n, orDefault(s.cfg.SampleSize, view.DefaultSampleSize)), s.rnd)
	metrics.RecordViewComputation("sample", len(recs), time.Since(start))

	return SampleView{Resource: resource, Flag: flag, Field: field, Items: picked, Degraded: degraded}, nil
}

// Recent returns the n newest records by field (default: the schema's date
// field).
func (s *Service) Recent(ctx context.Context, resource, field string, n int) (RecentView, error) {
	schema, err := s.Schema(resource)
	if err != nil {
		return RecentView{}, err
	}
	if field, err = fieldOr(field, schema.DateField, "date field"); err != nil {
		return RecentView{}, err
	}

	recs, degraded, err := s.fetch(ctx, resource, nil)
	if err != nil {
		return RecentView{}, err
	}

	start := time.Now()
	items := view.MostRecent(recs, field, orDefault(n, orDefault(s.cfg.RecentN, view.DefaultSampleSize)))
	metrics.RecordViewComputation("recent", len(recs), time.Since(start))

	return RecentView{Resource: resource, Field: field, Items: items, Degraded: degraded}, nil
}

// Stats summarises field (default: price) over the collection, or over owned
// records only when ownedOnly is set.
func (s *Service) Stats(ctx context.Context, resource, field string, ownedOnly bool) (StatsView, error) {
	schema, err := s.Schema(resource)
	if err != nil {
		return StatsView{}, err
	}
	if field == "" {
		field = schema.PriceField
	}

	recs, degraded, err := s.fetch(ctx, resource, nil)
	if err != nil {
		return StatsView{}, err
	}

	start := time.Now()
	var filter view.Predicate
	if ownedOnly {
		filter = OwnedOnly.predicate(schema.OwnedField)
	}
	stats := StatsView{
		Resource:  resource,
		Summary:   view.Summarize(recs, field, filter),
		Ownership: view.CountOwnership(recs, schema.OwnedField),
		Degraded:  degraded,
	}
	metrics.RecordViewComputation("stats", len(recs), time.Since(start))
	return stats, nil
}
