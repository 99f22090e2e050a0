// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package collection

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/view"
)

// OwnedFilter narrows a list to owned items, wishlist items or both.
type OwnedFilter string

const (
	OwnedAll      OwnedFilter = "all"
	OwnedOnly     OwnedFilter = "owned"
	OwnedWishlist OwnedFilter = "wishlist"
)

// ParseOwnedFilter accepts "", "all", "owned" and "wishlist" in any case.
func ParseOwnedFilter(s string) (OwnedFilter, error) {
	switch f := OwnedFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OwnedAll:
		return OwnedAll, nil
	case OwnedOnly, OwnedWishlist:
		return f, nil
	default:
		return "", fmt.Errorf("invalid owned filter %q: want all, owned or wishlist", s)
	}
}

// predicate returns nil for OwnedAll. Resources without an owned field treat
// everything as owned.
func (f OwnedFilter) predicate(ownedField string) view.Predicate {
	switch f {
	case OwnedOnly:
		if ownedField == "" {
			return nil
		}
		return view.FlagSet(ownedField)
	case OwnedWishlist:
		if ownedField == "" {
			return func(models.Record) bool { return false }
		}
		return view.FlagUnset(ownedField)
	default:
		return nil
	}
}

// ListQuery describes one list view.
type ListQuery struct {
	Query    string
	Sort     string
	Desc     bool
	Page     int
	PageSize int
	Owned    OwnedFilter

	// Filters are passed to the backend as query parameters.
	Filters url.Values
}

// ListPage is the visible prefix of a filtered, sorted collection.
type ListPage struct {
	Resource string          `json:"resource"`
	Query    string          `json:"query,omitempty"`
	Sort     string          `json:"sort,omitempty"`
	Desc     bool            `json:"desc,omitempty"`
	Items    []models.Record `json:"items"`
	Total    int             `json:"total"`
	Visible  int             `json:"visible"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	HasMore  bool            `json:"has_more"`
	Degraded bool            `json:"degraded,omitempty"`
}

// PageSize resolves a requested page size against the configured default and
// maximum.
func (s *Service) PageSize(requested int) int {
	size := orDefault(requested, orDefault(s.cfg.PageSize, view.DefaultPageSize))
	if s.cfg.MaxPageSize > 0 && size > s.cfg.MaxPageSize {
		size = s.cfg.MaxPageSize
	}
	return size
}

// Materialize fetches a resource and returns the full filtered and sorted
// sequence a list view paginates over. The live search keeps this sequence
// so "show more" needs no further fetch.
func (s *Service) Materialize(ctx context.Context, resource string, q ListQuery) (Collection, string, error) {
	schema, err := s.Schema(resource)
	if err != nil {
		return Collection{}, "", err
	}

	recs, degraded, err := s.fetch(ctx, resource, q.Filters)
	if err != nil {
		return Collection{}, "", err
	}

	start := time.Now()
	if pred := q.Owned.predicate(schema.OwnedField); pred != nil {
		kept := make([]models.Record, 0, len(recs))
		for _, rec := range recs {
			if pred(rec) {
				kept = append(kept, rec)
			}
		}
		recs = kept
	}

	matched := view.NewMatcher(schema.SearchFields...).Filter(recs, q.Query)

	sortField := q.Sort
	if sortField == "" {
		sortField = schema.DefaultSort
	}
	if sortField != "" {
		matched = view.Sort(matched, view.SortSpec{Field: sortField, Desc: q.Desc})
	}
	metrics.RecordViewComputation("list", len(recs), time.Since(start))

	return Collection{
		Resource: resource,
		Query:    q.Query,
		Items:    matched,
		Degraded: degraded,
	}, sortField, nil
}

// List returns page q.Page of the filtered, sorted collection. The page is
// cumulative: it holds every item up to and including that page.
func (s *Service) List(ctx context.Context, resource string, q ListQuery) (ListPage, error) {
	seq, sortField, err := s.Materialize(ctx, resource, q)
	if err != nil {
		return ListPage{}, err
	}

	pager := view.NewPaginator[models.Record](s.PageSize(q.PageSize))
	pager.GoTo(q.Page)
	visible := pager.Visible(seq.Items)

	return ListPage{
		Resource: resource,
		Query:    q.Query,
		Sort:     sortField,
		Desc:     q.Desc,
		Items:    visible,
		Total:    len(seq.Items),
		Visible:  len(visible),
		Page:     pager.Page(),
		PageSize: pager.PageSize(),
		HasMore:  pager.HasMore(seq.Items),
		Degraded: seq.Degraded,
	}, nil
}

// Search asks the backend to filter with ?q= instead of matching locally.
// The result is in backend order.
func (s *Service) Search(ctx context.Context, resource, query string) (Collection, error) {
	params := url.Values{}
	if query = strings.TrimSpace(query); query != "" {
		params.Set("q", query)
	}
	recs, degraded, err := s.fetch(ctx, resource, params)
	if err != nil {
		return Collection{}, err
	}
	return Collection{Resource: resource, Query: query, Items: recs, Degraded: degraded}, nil
}
