// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package models defines the data structures shared across Shelfmark.

Key Components:

  - Record: one catalogued item as the backend returns it, with lenient
    typed accessors (Number, Bool, Time, Key, Strings)
  - Schema: how a resource type is searched, grouped, ranked and flagged
  - Registry: the known resources, with per-resource search field overrides
  - APIResponse: the JSON envelope of every HTTP response

Records:

The backend is loose about types. A price may arrive as 12.5 or "12.50", a
flag as true, "true" or 1. Accessors coerce on read and never fail; a
missing or malformed value is reported as absent:

	rec := models.NewRecord(7, map[string]any{"title": "Brazil", "rating": "8.5"})
	rating, ok := rec.Number("rating") // 8.5, true
	genre := rec.Key("genre")          // models.UnknownKey

Records are immutable once built. Views read them and build new slices.

Registry:

	reg, err := models.NewRegistry(map[string][]string{
	    models.ResourceFilms: {"title", "director"},
	})
	schema, err := reg.Get("films")
	field := schema.Flag("watchlist") // "watchlist"

Looking up a name that is not registered returns ErrUnknownResource.

Thread Safety:

Records, schemas and a built Registry are read-only and safe for
concurrent use.
*/
package models
