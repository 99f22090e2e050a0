// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package view turns a flat slice of catalogue records into the derived views a
collection page displays.

# Overview

The package is a set of independent, in-memory operations. None of them
performs I/O and none of them shares mutable state with another:

  - Matcher: case-insensitive substring search across a configurable set of
    fields, plus Highlight for rendering matched segments
  - Aggregation: GroupBy, TopN, Sample, MostRecent and Summarize
  - Sort: stable ordering by one field with missing values last
  - Paginator: "show more" windows over a filtered, sorted sequence with
    change detection by record id
  - Debouncer and Generation: the timing primitives live search is built on

Every aggregation is total: empty input, absent fields and malformed numbers
produce empty or zero results, never a panic or an error. Operations never
modify the slice they are given or the records in it.

# Usage Example

	films, _ := client.List(ctx, "films", nil)

	matcher := view.NewMatcher("title", "alt_title", "director", "alt_name")
	hits := view.Sort(matcher.Filter(films, "nolan"), view.SortSpec{Field: "year", Desc: true})

	pager := view.NewPaginator[models.Record](20)
	visible, changed := pager.Window(hits)

	top := view.TopN(films, "director", "rating", view.DefaultTopN)
	picks := view.Sample(films, view.FlagSet("watchlist"), 4, nil)

# Thread Safety

Matcher, and the aggregation and sort functions, are safe for concurrent use.
A Paginator belongs to a single view and must not be shared between
goroutines. Debouncer and Generation are safe for concurrent use.
*/
package view
