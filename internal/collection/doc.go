// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package collection composes the catalogue backend and the view engine into the
views each collection page needs.

Every call fetches the resource fresh from the backend and derives its result
from that snapshot; the service keeps no collection state of its own.

# Views

  - List: local search (Matcher) over the schema's search fields, owned filter,
    sort, and a cumulative page from the Paginator
  - Search: server-side ?q= passthrough in backend order
  - Groups, Top, Sample, Recent, Stats: one aggregator each
  - Dashboard: main list and related user lists fetched concurrently with
    errgroup, then recent additions, favourite and watchlist samples, top-N,
    groups and ownership statistics

# Error Policy

A failed fetch is logged, counted in collection_degraded_fetches_total and
served as an empty collection with Degraded set. There is no retry here (the
backend client retries only HTTP 429). Unregistered resources, missing fields
and cancelled contexts are returned as errors.

Mutations are different: a backend rejection is returned to the caller. After
a successful write the list is re-fetched (never patched locally) and the
ChangeNotifier is told so live sessions can re-query.

# Deletes

Delete takes an explicit confirmed flag. Without it the call returns
ErrConfirmationRequired before anything is sent:

	_, err := svc.Delete(ctx, "books", 42, false)
	errors.Is(err, collection.ErrConfirmationRequired) // true

# Usage

	api, _ := backend.New(&cfg.Backend)
	svc := collection.NewService(api, registry, cfg.View)
	page, err := svc.List(ctx, "films", collection.ListQuery{Query: "nolan", Page: 2})
*/
package collection
