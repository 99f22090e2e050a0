// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"slices"

	"github.com/tomtom215/shelfmark/internal/models"
)

// DefaultTopN is the ranking size used when a caller asks for n <= 0.
const DefaultTopN = 4

// RankedGroup is a group key with the mean of a numeric field over the members
// that have it.
type RankedGroup struct {
	Key     string          `json:"key"`
	Average float64         `json:"average"`
	Rated   int             `json:"rated"`
	Members []models.Record `json:"members"`
}

// TopN groups recs by keyField, averages scoreField over the members that
// have a numeric value for it, and returns the n groups with the highest
// average. Groups with no rated member are left out. Ties keep the order in
// which their keys first appeared. n <= 0 means DefaultTopN; an n larger than
// the number of groups returns every rated group.
func TopN(recs []models.Record, keyField, scoreField string, n int) []RankedGroup {
	if n <= 0 {
		n = DefaultTopN
	}

	grouping := GroupByField(recs, keyField)
	ranked := make([]RankedGroup, 0, grouping.Len())
	for _, g := range grouping.Groups() {
		var sum float64
		rated := 0
		for _, rec := range g.Items {
			if v, ok := rec.Number(scoreField); ok {
				sum += v
				rated++
			}
		}
		if rated == 0 {
			continue
		}
		ranked = append(ranked, RankedGroup{
			Key:     g.Key,
			Average: sum / float64(rated),
			Rated:   rated,
			Members: g.Items,
		})
	}

	slices.SortStableFunc(ranked, func(a, b RankedGroup) int {
		switch {
		case a.Average > b.Average:
			return -1
		case a.Average < b.Average:
			return 1
		default:
			return 0
		}
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
