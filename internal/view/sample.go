// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"math/rand/v2"

	"github.com/tomtom215/shelfmark/internal/models"
)

// DefaultSampleSize is the number of random picks a dashboard shows.
const DefaultSampleSize = 4

// RandomSource supplies randomness for Sample. *rand.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Predicate selects records.
type Predicate func(models.Record) bool

// FlagSet selects records whose boolean field is true.
func FlagSet(field string) Predicate {
	return func(r models.Record) bool { return r.Bool(field) }
}

// FlagUnset selects records whose boolean field is false or absent.
func FlagUnset(field string) Predicate {
	return func(r models.Record) bool { return !r.Bool(field) }
}

// Sample returns min(n, matches) records chosen at random from those matching
// pred, in random order. A nil pred matches everything and a nil rnd uses the
// process-wide generator. n <= 0 yields an empty result.
func Sample(recs []models.Record, pred Predicate, n int, rnd RandomSource) []models.Record {
	if n <= 0 {
		return []models.Record{}
	}
	if rnd == nil {
		rnd = globalSource{}
	}

	pool := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		if pred == nil || pred(rec) {
			pool = append(pool, rec)
		}
	}
	if n > len(pool) {
		n = len(pool)
	}

	// Partial Fisher-Yates: the first n slots end up a uniform random sample.
	for i := 0; i < n; i++ {
		j := i + rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n:n]
}
