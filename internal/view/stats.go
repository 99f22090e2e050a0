// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"github.com/tomtom215/shelfmark/internal/models"
)

// Summary holds scalar statistics of one numeric field.
type Summary struct {
	Field string  `json:"field"`
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Mean  float64 `json:"mean"`
}

// Summarize counts the records selected by filter (nil selects all) and sums
// field over them. Missing or malformed values count as zero. The mean of an
// empty selection is 0.
func Summarize(recs []models.Record, field string, filter Predicate) Summary {
	s := Summary{Field: field}
	for _, rec := range recs {
		if filter != nil && !filter(rec) {
			continue
		}
		s.Count++
		s.Sum += rec.NumberOrZero(field)
	}
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}

// Ownership splits a collection into owned and wishlisted records.
type Ownership struct {
	Total    int `json:"total"`
	Owned    int `json:"owned"`
	Wishlist int `json:"wishlist"`
}

// CountOwnership counts records by ownedField. Without an owned field every
// record counts as owned.
func CountOwnership(recs []models.Record, ownedField string) Ownership {
	o := Ownership{Total: len(recs)}
	for _, rec := range recs {
		if ownedField == "" || rec.Bool(ownedField) {
			o.Owned++
		} else {
			o.Wishlist++
		}
	}
	return o
}
