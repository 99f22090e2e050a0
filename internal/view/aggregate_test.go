// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/shelfmark/internal/models"
)

func TestGroupByField_Partition(t *testing.T) {
	t.Parallel()

	recs := []models.Record{
		rec(1, map[string]any{"language": "English"}),
		rec(2, map[string]any{"language": "French"}),
		rec(3, map[string]any{}),
		rec(4, map[string]any{"language": "English"}),
		rec(5, map[string]any{"language": ""}),
		rec(6, map[string]any{"language": nil}),
	}

	g := GroupByField(recs, "language")

	if diff := cmp.Diff([]string{"English", "French", models.UnknownKey}, g.Keys()); diff != "" {
		t.Errorf("key order mismatch (-want +got):\n%s", diff)
	}

	total := 0
	seen := make(map[int64]int)
	for _, grp := range g.Groups() {
		total += len(grp.Items)
		for _, r := range grp.Items {
			seen[r.ID]++
		}
	}
	if total != len(recs) {
		t.Errorf("bucket sizes sum to %d, want %d", total, len(recs))
	}
	for _, r := range recs {
		if seen[r.ID] != 1 {
			t.Errorf("record %d appears in %d buckets", r.ID, seen[r.ID])
		}
	}
	if diff := cmp.Diff([]int64{3, 5, 6}, ids(g.Get(models.UnknownKey))); diff != "" {
		t.Errorf("Unknown bucket mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupBy_Empty(t *testing.T) {
	t.Parallel()

	g := GroupBy([]int(nil), func(int) string { return "x" })
	if g.Len() != 0 || len(g.Groups()) != 0 || len(g.Sizes()) != 0 {
		t.Error("Expected empty grouping for empty input")
	}
}

func TestTopN_BookScenario(t *testing.T) {
	t.Parallel()

	books := []models.Record{
		rec(1, map[string]any{"author": "A", "rating": 8}),
		rec(2, map[string]any{"author": "A", "rating": 6}),
		rec(3, map[string]any{"author": "B", "rating": 10}),
	}

	got := TopN(books, "author", "rating", DefaultTopN)
	if len(got) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(got))
	}
	if got[0].Key != "B" || got[0].Average != 10 {
		t.Errorf("first = %s:%v, want B:10", got[0].Key, got[0].Average)
	}
	if got[1].Key != "A" || got[1].Average != 7 {
		t.Errorf("second = %s:%v, want A:7", got[1].Key, got[1].Average)
	}
}

func TestTopN_Rules(t *testing.T) {
	t.Parallel()

	recs := []models.Record{
		rec(1, map[string]any{"director": "Kubrick", "rating": "9"}),
		rec(2, map[string]any{"director": "Lynch", "rating": 7}),
		rec(3, map[string]any{"director": "Tati"}),
		rec(4, map[string]any{"director": "Ozu", "rating": 9}),
		rec(5, map[string]any{"director": "Lynch"}),
		rec(6, map[string]any{"director": "Varda", "rating": "n/a"}),
		rec(7, map[string]any{"rating": 5}),
	}

	t.Run("zero-rated groups excluded", func(t *testing.T) {
		got := TopN(recs, "director", "rating", 10)
		keys := make([]string, len(got))
		for i, g := range got {
			keys[i] = g.Key
			if math.IsNaN(g.Average) {
				t.Errorf("group %s has NaN average", g.Key)
			}
		}
		if diff := cmp.Diff([]string{"Kubrick", "Ozu", "Lynch", models.UnknownKey}, keys); diff != "" {
			t.Errorf("ranking mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("average ignores unrated members", func(t *testing.T) {
		got := TopN(recs, "director", "rating", 10)
		for _, g := range got {
			if g.Key == "Lynch" && (g.Average != 7 || g.Rated != 1 || len(g.Members) != 2) {
				t.Errorf("Lynch = %+v, want average 7 over 1 of 2 members", g)
			}
		}
	})

	t.Run("n caps the result", func(t *testing.T) {
		if got := TopN(recs, "director", "rating", 2); len(got) != 2 {
			t.Errorf("Expected 2 groups, got %d", len(got))
		}
	})

	t.Run("non-positive n uses default", func(t *testing.T) {
		if got := TopN(recs, "director", "rating", 0); len(got) != DefaultTopN {
			t.Errorf("Expected %d groups, got %d", DefaultTopN, len(got))
		}
	})

	t.Run("sorted descending", func(t *testing.T) {
		got := TopN(recs, "director", "rating", 10)
		for i := 1; i < len(got); i++ {
			if got[i-1].Average < got[i].Average {
				t.Errorf("ranking not descending at %d: %v < %v", i, got[i-1].Average, got[i].Average)
			}
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := TopN(nil, "director", "rating", 4); len(got) != 0 {
			t.Errorf("Expected no groups, got %d", len(got))
		}
	})
}

func TestSample_WatchlistScenario(t *testing.T) {
	t.Parallel()

	films := []models.Record{
		rec(1, map[string]any{"watchlist": true}),
		rec(2, map[string]any{"watchlist": false}),
		rec(3, map[string]any{"watchlist": true}),
		rec(4, map[string]any{}),
		rec(5, map[string]any{"watchlist": true}),
	}

	got := Sample(films, FlagSet("watchlist"), 4, rand.New(rand.NewPCG(1, 2)))
	if len(got) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(got))
	}
	seen := make(map[int64]bool)
	for _, r := range got {
		if !r.Bool("watchlist") {
			t.Errorf("record %d is not on the watchlist", r.ID)
		}
		if seen[r.ID] {
			t.Errorf("record %d sampled twice", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestSample_Size(t *testing.T) {
	t.Parallel()

	recs := make([]models.Record, 10)
	for i := range recs {
		recs[i] = rec(int64(i+1), map[string]any{"favourite": i%2 == 0})
	}
	rnd := rand.New(rand.NewPCG(7, 7))

	for _, n := range []int{0, 1, 3, 5, 6, 100} {
		got := Sample(recs, FlagSet("favourite"), n, rnd)
		if want := min(n, 5); len(got) != want {
			t.Errorf("Sample(n=%d) returned %d records, want %d", n, len(got), want)
		}
	}
	if got := Sample(recs, nil, 10, nil); len(got) != 10 {
		t.Errorf("Sample with nil predicate returned %d records, want 10", len(got))
	}
	if got := Sample(nil, nil, 4, nil); got == nil || len(got) != 0 {
		t.Errorf("Sample(nil) = %v, want empty non-nil slice", got)
	}
}

func TestSample_DeterministicWithSeed(t *testing.T) {
	t.Parallel()

	recs := make([]models.Record, 20)
	for i := range recs {
		recs[i] = rec(int64(i+1), nil)
	}
	a := Sample(recs, nil, 4, rand.New(rand.NewPCG(42, 0)))
	b := Sample(recs, nil, 4, rand.New(rand.NewPCG(42, 0)))
	if diff := cmp.Diff(ids(a), ids(b)); diff != "" {
		t.Errorf("same seed produced different samples (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(ids(recs)[:3], []int64{1, 2, 3}); diff != "" {
		t.Errorf("Sample modified its input (-got +want):\n%s", diff)
	}
}

func TestMostRecent(t *testing.T) {
	t.Parallel()

	recs := []models.Record{
		rec(1, map[string]any{"created_at": "2024-01-05"}),
		rec(2, map[string]any{}),
		rec(3, map[string]any{"created_at": "2025-06-01T08:00:00Z"}),
		rec(4, map[string]any{"created_at": "2024-01-05"}),
		rec(5, map[string]any{"created_at": "not a date"}),
		rec(6, map[string]any{"created_at": "2023-12-31"}),
	}

	if diff := cmp.Diff([]int64{3, 1, 4}, ids(MostRecent(recs, "created_at", 3))); diff != "" {
		t.Errorf("MostRecent mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int64{3, 1, 4, 6}, ids(MostRecent(recs, "created_at", 50))); diff != "" {
		t.Errorf("MostRecent must exclude undated records (-want +got):\n%s", diff)
	}
	if got := MostRecent(recs, "created_at", 0); len(got) != 0 {
		t.Errorf("Expected empty result for n=0, got %d", len(got))
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	recs := []models.Record{
		rec(1, map[string]any{"price": "10.50", "owned": true}),
		rec(2, map[string]any{"price": 4.5, "owned": false}),
		rec(3, map[string]any{"owned": true}),
		rec(4, map[string]any{"price": "??", "owned": true}),
	}

	tests := []struct {
		name   string
		recs   []models.Record
		field  string
		filter Predicate
		want   Summary
	}{
		{"all", recs, "price", nil, Summary{Field: "price", Count: 4, Sum: 15, Mean: 3.75}},
		{"owned only", recs, "price", FlagSet("owned"), Summary{Field: "price", Count: 3, Sum: 10.5, Mean: 3.5}},
		{"field absent everywhere", recs, "weight", nil, Summary{Field: "weight", Count: 4}},
		{"empty", nil, "price", nil, Summary{Field: "price"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.recs, tt.field, tt.filter)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
			}
			if math.IsNaN(got.Mean) {
				t.Error("Mean must never be NaN")
			}
		})
	}
}

func TestCountOwnership(t *testing.T) {
	t.Parallel()

	recs := []models.Record{
		rec(1, map[string]any{"owned": true}),
		rec(2, map[string]any{"owned": false}),
		rec(3, map[string]any{}),
	}
	if diff := cmp.Diff(Ownership{Total: 3, Owned: 1, Wishlist: 2}, CountOwnership(recs, "owned")); diff != "" {
		t.Errorf("CountOwnership mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Ownership{Total: 3, Owned: 3}, CountOwnership(recs, "")); diff != "" {
		t.Errorf("CountOwnership without field mismatch (-want +got):\n%s", diff)
	}
}
