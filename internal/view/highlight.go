// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segment is a run of text that either matched the query or did not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Highlight splits text around every case-insensitive occurrence of query.
// Case is folded exactly as Matcher folds it, so any text a Matcher accepts
// has at least one matched segment. Occurrences are found left to right
// without overlap. Joining the segment texts always reproduces text exactly.
// An empty query yields a single unmatched segment.
func Highlight(text, query string) []Segment {
	q := NormalizeQuery(query)
	if q == "" {
		return []Segment{{Text: text}}
	}

	folded, origin := foldWithOffsets(text)
	var segments []Segment
	last := 0
	for from := 0; ; {
		i := strings.Index(folded[from:], q)
		if i < 0 {
			break
		}
		lo, hi := origin[from+i], origin[from+i+len(q)]
		if lo > last {
			segments = append(segments, Segment{Text: text[last:lo]})
		}
		segments = append(segments, Segment{Text: text[lo:hi], Match: true})
		last = hi
		from += i + len(q)
	}
	if last < len(text) || len(segments) == 0 {
		segments = append(segments, Segment{Text: text[last:]})
	}
	return segments
}

// foldWithOffsets lower-cases text rune by rune, the way strings.ToLower
// does, and records for every byte of the result the offset in text of the
// rune it came from. origin has one extra entry equal to len(text).
func foldWithOffsets(text string) (string, []int) {
	var b strings.Builder
	b.Grow(len(text))
	origin := make([]int, 0, len(text)+1)
	var buf [utf8.UTFMax]byte
	for i, r := range text {
		n := utf8.EncodeRune(buf[:], unicode.ToLower(r))
		b.Write(buf[:n])
		for range n {
			origin = append(origin, i)
		}
	}
	origin = append(origin, len(text))
	return b.String(), origin
}

// Join concatenates segment texts.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
