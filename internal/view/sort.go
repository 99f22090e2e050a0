// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/tomtom215/shelfmark/internal/models"
)

// SortSpec names the field to order by and the direction.
type SortSpec struct {
	Field string
	Desc  bool
}

type sortKind int

const (
	sortText sortKind = iota
	sortNumeric
	sortChronological
	sortMixed
)

type sortKey struct {
	rec     models.Record
	present bool
	isNum   bool
	num     float64
	at      time.Time
	text    string
}

// Sort returns a stably sorted copy of recs. The comparison is chosen once for
// the whole field: numeric when every present value is a number, chronological
// when every present value is a date, case-insensitive text when no value is a
// number. A field mixing numbers with other values orders the numbers
// numerically ahead of the rest, which compare as text; descending reverses
// both. Records without the field sort last in either direction. An empty
// Field returns the records in input order.
func Sort(recs []models.Record, spec SortSpec) []models.Record {
	out := append(make([]models.Record, 0, len(recs)), recs...)
	if spec.Field == "" || len(out) < 2 {
		return out
	}

	kind := detectKind(recs, spec.Field)
	keys := make([]sortKey, len(recs))
	for i, rec := range recs {
		keys[i] = buildKey(rec, spec.Field, kind)
	}

	slices.SortStableFunc(keys, func(a, b sortKey) int {
		switch {
		case !a.present && !b.present:
			return 0
		case !a.present:
			return 1
		case !b.present:
			return -1
		}
		var c int
		switch kind {
		case sortNumeric:
			c = cmp.Compare(a.num, b.num)
		case sortChronological:
			c = a.at.Compare(b.at)
		case sortMixed:
			c = compareMixed(a, b)
		default:
			c = strings.Compare(a.text, b.text)
		}
		if spec.Desc {
			return -c
		}
		return c
	})

	for i, k := range keys {
		out[i] = k.rec
	}
	return out
}

func detectKind(recs []models.Record, field string) sortKind {
	allNumeric, allDates, anyNumeric, seen := true, true, false, false
	for _, rec := range recs {
		if !present(rec, field) {
			continue
		}
		seen = true
		if _, ok := rec.Number(field); ok {
			anyNumeric = true
		} else {
			allNumeric = false
		}
		if _, ok := rec.Time(field); !ok {
			allDates = false
		}
	}
	switch {
	case !seen:
		return sortText
	case allNumeric:
		return sortNumeric
	case allDates:
		return sortChronological
	case anyNumeric:
		return sortMixed
	default:
		return sortText
	}
}

func buildKey(rec models.Record, field string, kind sortKind) sortKey {
	k := sortKey{rec: rec, present: present(rec, field)}
	if !k.present {
		return k
	}
	switch kind {
	case sortNumeric:
		k.num, _ = rec.Number(field)
	case sortChronological:
		k.at, _ = rec.Time(field)
	case sortMixed:
		k.num, k.isNum = rec.Number(field)
		if !k.isNum {
			k.text = strings.ToLower(rec.Key(field))
		}
	default:
		k.text = strings.ToLower(rec.Key(field))
	}
	return k
}

func compareMixed(a, b sortKey) int {
	switch {
	case a.isNum && b.isNum:
		return cmp.Compare(a.num, b.num)
	case a.isNum:
		return -1
	case b.isNum:
		return 1
	default:
		return strings.Compare(a.text, b.text)
	}
}

// present treats blank strings and empty arrays as missing.
func present(rec models.Record, field string) bool {
	return rec.Key(field) != models.UnknownKey || rec.String(field) == models.UnknownKey
}
