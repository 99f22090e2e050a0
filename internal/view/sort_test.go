// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/shelfmark/internal/models"
)

func TestSort(t *testing.T) {
	t.Parallel()

	recs := []models.Record{
		rec(1, map[string]any{"title": "banana", "year": "1999", "added": "2024-03-01"}),
		rec(2, map[string]any{"title": "Apple", "year": 2005, "added": "2023-01-10"}),
		rec(3, map[string]any{"year": 1980}),
		rec(4, map[string]any{"title": "cherry", "year": "", "added": "2025-02-02T10:00:00Z"}),
		rec(5, map[string]any{"title": "apple", "year": 300}),
	}

	tests := []struct {
		name string
		spec SortSpec
		want []int64
	}{
		{"text ascending, case-insensitive, stable", SortSpec{Field: "title"}, []int64{2, 5, 1, 4, 3}},
		{"text descending keeps missing last", SortSpec{Field: "title", Desc: true}, []int64{4, 1, 2, 5, 3}},
		{"numeric strings compare as numbers", SortSpec{Field: "year"}, []int64{5, 3, 1, 2, 4}},
		{"numeric descending", SortSpec{Field: "year", Desc: true}, []int64{2, 1, 3, 5, 4}},
		{"dates chronological", SortSpec{Field: "added"}, []int64{2, 1, 4, 3, 5}},
		{"no field keeps input order", SortSpec{}, []int64{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sort(recs, tt.spec)
			if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
				t.Errorf("Sort(%+v) mismatch (-want +got):\n%s", tt.spec, diff)
			}
		})
	}

	if diff := cmp.Diff([]int64{1, 2, 3, 4, 5}, ids(recs)); diff != "" {
		t.Errorf("Sort modified its input (-want +got):\n%s", diff)
	}
}

func TestSort_MixedNumericField(t *testing.T) {
	t.Parallel()

	recs := []models.Record{
		rec(1, map[string]any{"rating": 10}),
		rec(2, map[string]any{"rating": true}),
		rec(3, map[string]any{"rating": "9"}),
		rec(4, map[string]any{"rating": "n/a"}),
		rec(5, map[string]any{}),
		rec(6, map[string]any{"rating": 8.5}),
	}

	tests := []struct {
		name string
		spec SortSpec
		want []int64
	}{
		{"numbers ascending ahead of text", SortSpec{Field: "rating"}, []int64{6, 3, 1, 4, 2, 5}},
		{"descending reverses both, missing last", SortSpec{Field: "rating", Desc: true}, []int64{2, 4, 1, 3, 6, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(Sort(recs, tt.spec))); diff != "" {
				t.Errorf("Sort(%+v) mismatch (-want +got):\n%s", tt.spec, diff)
			}
		})
	}
}
