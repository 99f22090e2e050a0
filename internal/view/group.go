// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package view

import (
	"github.com/tomtom215/shelfmark/internal/models"
)

// Group is one bucket of a Grouping.
type Group[T any] struct {
	Key   string `json:"key"`
	Items []T    `json:"items"`
}

// Grouping is an ordered partition of items by key. Keys are ordered by first
// appearance in the input.
type Grouping[T any] struct {
	keys    []string
	buckets map[string][]T
}

// GroupBy partitions items by key in a single pass. Every item lands in
// exactly one bucket.
func GroupBy[T any](items []T, key func(T) string) *Grouping[T] {
	g := &Grouping[T]{buckets: make(map[string][]T)}
	for _, item := range items {
		k := key(item)
		if _, seen := g.buckets[k]; !seen {
			g.keys = append(g.keys, k)
		}
		g.buckets[k] = append(g.buckets[k], item)
	}
	return g
}

// GroupByField groups records by the value of field. Records without a value
// go into the models.UnknownKey bucket.
func GroupByField(recs []models.Record, field string) *Grouping[models.Record] {
	return GroupBy(recs, func(r models.Record) string { return r.Key(field) })
}

// Keys returns the bucket keys in first-appearance order.
func (g *Grouping[T]) Keys() []string {
	return append([]string(nil), g.keys...)
}

// Get returns the items under key.
func (g *Grouping[T]) Get(key string) []T {
	return g.buckets[key]
}

// Len returns the number of buckets.
func (g *Grouping[T]) Len() int {
	return len(g.keys)
}

// Groups returns all buckets in key order.
func (g *Grouping[T]) Groups() []Group[T] {
	out := make([]Group[T], 0, len(g.keys))
	for _, k := range g.keys {
		out = append(out, Group[T]{Key: k, Items: g.buckets[k]})
	}
	return out
}

// Sizes returns the bucket sizes keyed by group key.
func (g *Grouping[T]) Sizes() map[string]int {
	out := make(map[string]int, len(g.keys))
	for k, items := range g.buckets {
		out[k] = len(items)
	}
	return out
}
