// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"slices"
)

// DefaultPageSize is the number of items revealed per "show more" step.
const DefaultPageSize = 20

// Identified is implemented by items with a stable identifier.
type Identified interface {
	RecordID() int64
}

// Paginator reveals a sequence one page at a time. The visible window always
// starts at the first item and holds min(page*pageSize, len(seq)) items, so
// growing the page never drops or reorders items of a fixed sequence.
//
// A Paginator belongs to one view and is not safe for concurrent use.
type Paginator[T Identified] struct {
	pageSize int
	page     int

	lastIDs  []int64
	returned bool
}

// NewPaginator creates a paginator on page 1. A non-positive pageSize uses
// DefaultPageSize.
func NewPaginator[T Identified](pageSize int) *Paginator[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Paginator[T]{pageSize: pageSize, page: 1}
}

// PageSize returns the configured page size.
func (p *Paginator[T]) PageSize() int { return p.pageSize }

// Page returns the current page, starting at 1.
func (p *Paginator[T]) Page() int { return p.page }

// VisibleCount is page * pageSize, before capping at the sequence length.
func (p *Paginator[T]) VisibleCount() int { return p.page * p.pageSize }

// Advance reveals one more page.
func (p *Paginator[T]) Advance() { p.page++ }

// Reset returns to page 1. Call it whenever the filter or sort changes.
func (p *Paginator[T]) Reset() { p.page = 1 }

// GoTo jumps to page. Values below 1 are treated as 1.
func (p *Paginator[T]) GoTo(page int) {
	if page < 1 {
		page = 1
	}
	p.page = page
}

// Visible returns the current window over seq without touching change tracking.
func (p *Paginator[T]) Visible(seq []T) []T {
	n := min(p.VisibleCount(), len(seq))
	return seq[:n:n]
}

// Window returns the current window over seq and whether the ids in it differ,
// in order, from the window returned by the previous call. The first call
// always reports a change.
func (p *Paginator[T]) Window(seq []T) ([]T, bool) {
	visible := p.Visible(seq)
	ids := make([]int64, len(visible))
	for i, item := range visible {
		ids[i] = item.RecordID()
	}
	changed := !p.returned || !slices.Equal(ids, p.lastIDs)
	p.lastIDs = ids
	p.returned = true
	return visible, changed
}

// HasMore reports whether seq extends beyond the current window.
func (p *Paginator[T]) HasMore(seq []T) bool {
	return len(seq) > p.VisibleCount()
}
