// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"strings"

	"github.com/tomtom215/shelfmark/internal/models"
)

// Matcher decides whether a record matches a free-text query across a fixed
// set of candidate fields. A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	fields []string
}

// NewMatcher creates a matcher over the given candidate fields.
func NewMatcher(fields ...string) *Matcher {
	return &Matcher{fields: append([]string(nil), fields...)}
}

// Fields returns the candidate fields.
func (m *Matcher) Fields() []string {
	return append([]string(nil), m.fields...)
}

// NormalizeQuery trims and lower-cases a query. An empty result means "match all".
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Match reports whether any candidate field of rec contains query,
// case-insensitively. Array fields match if any element contains it.
// Empty and whitespace-only queries match every record.
func (m *Matcher) Match(rec models.Record, query string) bool {
	q := NormalizeQuery(query)
	if q == "" {
		return true
	}
	return m.matchNormalized(rec, q)
}

func (m *Matcher) matchNormalized(rec models.Record, q string) bool {
	for _, field := range m.fields {
		for _, value := range rec.Strings(field) {
			if strings.Contains(strings.ToLower(value), q) {
				return true
			}
		}
	}
	return false
}

// Filter returns the records matching query, in input order. The result is a
// new slice; an empty query returns a copy of recs.
func (m *Matcher) Filter(recs []models.Record, query string) []models.Record {
	q := NormalizeQuery(query)
	if q == "" {
		return append(make([]models.Record, 0, len(recs)), recs...)
	}
	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		if m.matchNormalized(rec, q) {
			out = append(out, rec)
		}
	}
	return out
}
