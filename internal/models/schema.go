// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownResource is returned when a resource name is not registered.
var ErrUnknownResource = errors.New("unknown resource")

// Schema describes how one resource type is searched, grouped and ranked.
// Empty field names disable the corresponding view (for example a resource
// without a RankKey has no top-N ranking).
type Schema struct {
	Name           string   `json:"name"`
	Label          string   `json:"label"`
	SearchFields   []string `json:"search_fields"`
	GroupFields    []string `json:"group_fields,omitempty"`
	RankKey        string   `json:"rank_key,omitempty"`
	RatingField    string   `json:"rating_field,omitempty"`
	PriceField     string   `json:"price_field,omitempty"`
	DateField      string   `json:"date_field,omitempty"`
	OwnedField     string   `json:"owned_field,omitempty"`
	FavouriteField string   `json:"favourite_field,omitempty"`
	WatchlistField string   `json:"watchlist_field,omitempty"`
	DefaultSort    string   `json:"default_sort,omitempty"`
}

// HasField reports whether field is one of the schema's known fields.
func (s Schema) HasField(field string) bool {
	if field == "" {
		return false
	}
	for _, f := range s.SearchFields {
		if f == field {
			return true
		}
	}
	for _, f := range s.GroupFields {
		if f == field {
			return true
		}
	}
	switch field {
	case "id", s.RankKey, s.RatingField, s.PriceField, s.DateField,
		s.OwnedField, s.FavouriteField, s.WatchlistField, s.DefaultSort:
		return true
	}
	return false
}

// Flag resolves a named flag ("favourite", "watchlist", "owned") to the
// schema's boolean field. Any other name is returned unchanged.
func (s Schema) Flag(name string) string {
	switch strings.ToLower(name) {
	case "favourite", "favorite":
		return s.FavouriteField
	case "watchlist", "wishlist":
		return s.WatchlistField
	case "owned":
		return s.OwnedField
	default:
		return name
	}
}

// clone returns a deep copy so registry callers can't alias its slices.
func (s Schema) clone() Schema {
	s.SearchFields = append([]string(nil), s.SearchFields...)
	s.GroupFields = append([]string(nil), s.GroupFields...)
	return s
}

// Resource names served by the catalogue backend.
const (
	ResourceFilms       = "films"
	ResourceBooks       = "books"
	ResourceMusic       = "music"
	ResourceWatches     = "watches"
	ResourceArt         = "art"
	ResourceGames       = "games"
	ResourceInstruments = "instruments"
	ResourceWardrobe    = "wardrobe"
	ResourceExtras      = "extras"
	ResourcePerformance = "performances"
	ResourceBookCopies  = "book-copies"
	ResourceFilmCopies  = "film-copies"
	ResourceLists       = "lists"
)

// DefaultSchemas returns the built-in schema for every resource.
func DefaultSchemas() []Schema {
	return []Schema{
		{
			Name:           ResourceFilms,
			Label:          "Films",
			SearchFields:   []string{"title", "alt_title", "director", "alt_name"},
			GroupFields:    []string{"genre", "language", "format", "decade"},
			RankKey:        "director",
			RatingField:    "rating",
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "watchlist",
			DefaultSort:    "title",
		},
		{
			Name:           ResourceBooks,
			Label:          "Books",
			SearchFields:   []string{"title", "author", "alt_title", "alt_name"},
			GroupFields:    []string{"genre", "language", "series", "publisher"},
			RankKey:        "author",
			RatingField:    "rating",
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "to_read",
			DefaultSort:    "title",
		},
		{
			Name:           ResourceMusic,
			Label:          "Music",
			SearchFields:   []string{"title", "artist", "genre"},
			GroupFields:    []string{"genre", "format", "label"},
			RankKey:        "artist",
			RatingField:    "rating",
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "wishlist",
			DefaultSort:    "artist",
		},
		{
			Name:           ResourceWatches,
			Label:          "Watches",
			SearchFields:   []string{"brand", "model", "reference"},
			GroupFields:    []string{"brand", "movement", "category"},
			RankKey:        "brand",
			RatingField:    "rating",
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "wishlist",
			DefaultSort:    "brand",
		},
		{
			Name:           ResourceArt,
			Label:          "Art",
			SearchFields:   []string{"title", "artist", "medium"},
			GroupFields:    []string{"artist", "medium", "theme"},
			RankKey:        "artist",
			RatingField:    "rating",
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "wishlist",
			DefaultSort:    "title",
		},
		{
			Name:           ResourceGames,
			Label:          "Games",
			SearchFields:   []string{"title", "platform", "developer"},
			GroupFields:    []string{"platform", "genre"},
			RankKey:        "developer",
			RatingField:    "rating",
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "wishlist",
			DefaultSort:    "title",
		},
		{
			Name:           ResourceInstruments,
			Label:          "Instruments",
			SearchFields:   []string{"name", "brand", "model", "type"},
			GroupFields:    []string{"type", "brand"},
			RankKey:        "brand",
			RatingField:    "rating",
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "wishlist",
			DefaultSort:    "name",
		},
		{
			Name:           ResourceWardrobe,
			Label:          "Wardrobe",
			SearchFields:   []string{"name", "brand", "category", "colour"},
			GroupFields:    []string{"category", "brand", "season"},
			RankKey:        "brand",
			RatingField:    "rating",
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "wishlist",
			DefaultSort:    "name",
		},
		{
			Name:           ResourceExtras,
			Label:          "Extras",
			SearchFields:   []string{"name", "category", "description"},
			GroupFields:    []string{"category"},
			PriceField:     "price",
			DateField:      "created_at",
			OwnedField:     "owned",
			FavouriteField: "favourite",
			WatchlistField: "wishlist",
			DefaultSort:    "name",
		},
		{
			Name:         ResourcePerformance,
			Label:        "Performances",
			SearchFields: []string{"title", "venue", "performer"},
			GroupFields:  []string{"venue", "type"},
			RankKey:      "performer",
			RatingField:  "rating",
			PriceField:   "price",
			DateField:    "date",
			DefaultSort:  "date",
		},
		{
			Name:         ResourceBookCopies,
			Label:        "Book copies",
			SearchFields: []string{"edition", "isbn", "publisher"},
			GroupFields:  []string{"book", "format", "condition"},
			PriceField:   "price",
			DateField:    "created_at",
			OwnedField:   "owned",
			DefaultSort:  "edition",
		},
		{
			Name:         ResourceFilmCopies,
			Label:        "Film copies",
			SearchFields: []string{"edition", "format", "region"},
			GroupFields:  []string{"film", "format", "region"},
			PriceField:   "price",
			DateField:    "created_at",
			OwnedField:   "owned",
			DefaultSort:  "edition",
		},
		{
			Name:         ResourceLists,
			Label:        "Lists",
			SearchFields: []string{"name", "description"},
			GroupFields:  []string{"category"},
			DateField:    "created_at",
			DefaultSort:  "name",
		},
	}
}

// Registry is a read-only lookup of resource schemas. It is built once at
// startup and safe for concurrent use.
type Registry struct {
	schemas map[string]Schema
	names   []string
}

// NewRegistry builds a registry from the built-in schemas, replacing the search
// fields of any resource named in searchOverrides. Overrides for unknown
// resources are an error.
func NewRegistry(searchOverrides map[string][]string) (*Registry, error) {
	r := &Registry{schemas: make(map[string]Schema)}
	for _, s := range DefaultSchemas() {
		r.schemas[s.Name] = s
		r.names = append(r.names, s.Name)
	}
	for name, fields := range searchOverrides {
		s, ok := r.schemas[name]
		if !ok {
			return nil, fmt.Errorf("search field override for %q: %w", name, ErrUnknownResource)
		}
		cleaned := make([]string, 0, len(fields))
		for _, f := range fields {
			if f = strings.TrimSpace(f); f != "" {
				cleaned = append(cleaned, f)
			}
		}
		if len(cleaned) == 0 {
			return nil, fmt.Errorf("search field override for %q is empty", name)
		}
		s.SearchFields = cleaned
		r.schemas[name] = s
	}
	sort.Strings(r.names)
	return r, nil
}

// DefaultRegistry returns a registry with only the built-in schemas.
func DefaultRegistry() *Registry {
	r, _ := NewRegistry(nil) //nolint:errcheck // no overrides, cannot fail
	return r
}

// Get returns the schema for a resource.
func (r *Registry) Get(name string) (Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownResource, name)
	}
	return s.clone(), nil
}

// Has reports whether a resource is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.schemas[name]
	return ok
}

// Names returns the registered resource names in alphabetical order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// All returns every schema in alphabetical order of name.
func (r *Registry) All() []Schema {
	out := make([]Schema, 0, len(r.names))
	for _, name := range r.names {
		out = append(out, r.schemas[name].clone())
	}
	return out
}
