// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/shelfmark/internal/models"
)

var filmFields = []string{"title", "alt_title", "director", "alt_name"}

func TestMatcher_FilmScenario(t *testing.T) {
	t.Parallel()

	film := rec(1, map[string]any{"title": "The Dark Knight", "director": "Nolan"})
	m := NewMatcher(filmFields...)

	tests := []struct {
		query string
		want  bool
	}{
		{"dark", true},
		{"nolan", true},
		{"NOLAN", true},
		{"  knight ", true},
		{"xyz", false},
		{"", true},
		{"   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := m.Match(film, tt.query); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestMatcher_ArrayAndMissingFields(t *testing.T) {
	t.Parallel()

	m := NewMatcher("title", "artist", "genre")
	album := rec(1, map[string]any{"title": "Kind of Blue", "genre": []any{"Jazz", "Modal"}})
	bare := rec(2, map[string]any{"year": 1959})

	if !m.Match(album, "moda") {
		t.Error("Expected array element to match")
	}
	if m.Match(album, "miles") {
		t.Error("Missing artist field must not match")
	}
	if m.Match(bare, "jazz") {
		t.Error("Record without candidate fields must not match a non-empty query")
	}
	if !m.Match(bare, "") {
		t.Error("Empty query must match every record")
	}
}

func TestMatcher_FilterProperties(t *testing.T) {
	t.Parallel()

	recs := []models.Record{
		rec(1, map[string]any{"title": "Alien", "director": "Scott"}),
		rec(2, map[string]any{"title": "Blade Runner", "director": "Scott"}),
		rec(3, map[string]any{"title": "Arrival", "director": "Villeneuve"}),
		rec(4, map[string]any{"alt_title": "Le Samouraï"}),
		rec(5, map[string]any{}),
	}
	m := NewMatcher(filmFields...)

	all := m.Filter(recs, "")
	if diff := cmp.Diff(ids(recs), ids(all)); diff != "" {
		t.Errorf("Filter with empty query changed the collection (-want +got):\n%s", diff)
	}

	for _, q := range []string{"scott", "AR", "samouraï", "e", "zzz"} {
		got := m.Filter(recs, q)
		lower := strings.ToLower(q)
		for _, r := range got {
			found := false
			for _, f := range filmFields {
				for _, v := range r.Strings(f) {
					if strings.Contains(strings.ToLower(v), lower) {
						found = true
					}
				}
			}
			if !found {
				t.Errorf("Filter(%q) returned record %d without a matching field", q, r.ID)
			}
		}
	}

	if diff := cmp.Diff([]int64{1, 2}, ids(m.Filter(recs, "Scott"))); diff != "" {
		t.Errorf("Filter(Scott) mismatch (-want +got):\n%s", diff)
	}
}

func TestMatcher_FilterDoesNotAliasInput(t *testing.T) {
	t.Parallel()

	recs := []models.Record{rec(1, map[string]any{"title": "A"}), rec(2, map[string]any{"title": "B"})}
	out := NewMatcher("title").Filter(recs, "")
	out[0] = rec(99, nil)
	if recs[0].ID != 1 {
		t.Error("Filter result aliases the input slice")
	}
}

func TestHighlight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		text  string
		query string
		want  []Segment
	}{
		{
			name:  "single match",
			text:  "The Dark Knight",
			query: "dark",
			want:  []Segment{{Text: "The "}, {Text: "Dark", Match: true}, {Text: " Knight"}},
		},
		{
			name:  "repeated matches",
			text:  "banana",
			query: "AN",
			want:  []Segment{{Text: "b"}, {Text: "an", Match: true}, {Text: "an", Match: true}, {Text: "a"}},
		},
		{
			name:  "whole text",
			text:  "Heat",
			query: "heat",
			want:  []Segment{{Text: "Heat", Match: true}},
		},
		{
			name:  "no match",
			text:  "Heat",
			query: "cold",
			want:  []Segment{{Text: "Heat"}},
		},
		{
			name:  "empty query",
			text:  "Heat",
			query: "  ",
			want:  []Segment{{Text: "Heat"}},
		},
		{
			name:  "regex metacharacters are literal",
			text:  "What? (1999)",
			query: "(1999)",
			want:  []Segment{{Text: "What? "}, {Text: "(1999)", Match: true}},
		},
		{
			name:  "dotted capital I lower-cases to i",
			text:  "İstanbul",
			query: "i",
			want:  []Segment{{Text: "İ", Match: true}, {Text: "stanbul"}},
		},
		{
			name:  "multibyte runes keep their boundaries",
			text:  "Amélie AMÉLIE",
			query: "élie",
			want:  []Segment{{Text: "Am"}, {Text: "élie", Match: true}, {Text: " AM"}, {Text: "ÉLIE", Match: true}},
		},
		{
			name:  "empty text",
			text:  "",
			query: "a",
			want:  []Segment{{Text: ""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Highlight(tt.text, tt.query)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Highlight mismatch (-want +got):\n%s", diff)
			}
			if Join(got) != tt.text {
				t.Errorf("Join(segments) = %q, want %q", Join(got), tt.text)
			}
			if diff := cmp.Diff(got, Highlight(tt.text, tt.query)); diff != "" {
				t.Errorf("Highlight is not repeatable (-first +second):\n%s", diff)
			}
		})
	}
}

func TestHighlight_AgreesWithMatcher(t *testing.T) {
	t.Parallel()

	m := NewMatcher("title")
	titles := []string{"İstanbul", "Straße", "ΣΊΣΥΦΟΣ", "Kelvin \u212A", "Amélie", "plain"}
	queries := []string{"i", "İ", "straße", "σίσυφος", "k", "ÉLIE", "lai", "z"}

	for _, title := range titles {
		for _, query := range queries {
			matched := m.Match(rec(1, map[string]any{"title": title}), query)
			segments := Highlight(title, query)

			highlighted := false
			for _, seg := range segments {
				highlighted = highlighted || seg.Match
			}
			if matched != highlighted {
				t.Errorf("title %q query %q: match = %v, highlighted = %v", title, query, matched, highlighted)
			}
			if Join(segments) != title {
				t.Errorf("title %q query %q: Join = %q", title, query, Join(segments))
			}
		}
	}
}
