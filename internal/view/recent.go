// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"slices"
	"time"

	"github.com/tomtom215/shelfmark/internal/models"
)

// MostRecent returns up to n records that have dateField set, newest first.
// Records without a parseable date are excluded. Records with equal dates keep
// their input order. n <= 0 yields an empty result.
func MostRecent(recs []models.Record, dateField string, n int) []models.Record {
	if n <= 0 {
		return []models.Record{}
	}

	type dated struct {
		rec models.Record
		at  time.Time
	}
	withDate := make([]dated, 0, len(recs))
	for _, rec := range recs {
		if at, ok := rec.Time(dateField); ok {
			withDate = append(withDate, dated{rec: rec, at: at})
		}
	}

	slices.SortStableFunc(withDate, func(a, b dated) int {
		return b.at.Compare(a.at)
	})

	if len(withDate) > n {
		withDate = withDate[:n]
	}
	out := make([]models.Record, len(withDate))
	for i, d := range withDate {
		out[i] = d.rec
	}
	return out
}
