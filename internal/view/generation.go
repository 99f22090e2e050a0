// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"sync"
)

// Generation issues increasing request ids so that a result is applied only
// when no newer request has started since. The zero value is ready to use.
type Generation struct {
	mu      sync.Mutex
	current uint64
}

// Next starts a new request and returns its id.
func (g *Generation) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return g.current
}

// Current returns the latest issued id, or 0 before the first Next.
func (g *Generation) Current() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// IsCurrent reports whether id is still the latest request.
func (g *Generation) IsCurrent(id uint64) bool {
	return g.Current() == id
}

// Apply runs fn only if id is still the latest request and reports whether it
// ran. Next blocks while fn runs, so a newer request can't start mid-apply.
// fn must not call back into g.
func (g *Generation) Apply(id uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current != id {
		return false
	}
	fn()
	return true
}
