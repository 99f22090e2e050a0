// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package live provides debounced search-as-you-type over WebSocket.

Each connection gets a Session that owns its query, paginator, debouncer and
generation counter. Nothing is shared between connections except the Hub,
which tracks them and broadcasts collection_changed after mutations.

Key Components:

  - Hub: connection registry and broadcast loop (RunWithContext, supervised)
  - Client: one gorilla/websocket connection with read and write pumps
  - Session: search state machine, usable without a connection in tests

# Protocol

Client to server:

	{"type":"search","resource":"films","query":"nolan","sort":"title","desc":false,"owned":"all"}
	{"type":"more"}
	{"type":"reset"}
	{"type":"ping"}

Server to client:

	{"type":"results","data":{"generation":3,"resource":"films","query":"nolan","items":[...],"total":2,"visible":2,"has_more":false}}
	{"type":"collection_changed","data":{"resource":"films"}}
	{"type":"error","data":{"code":"unknown_resource","message":"..."}}
	{"type":"pong"}

# Search Lifecycle

 1. A search message resets the page, takes a new generation and re-arms the
    debouncer (view.debounce, default 300ms). A search still running for an
    older generation has its context cancelled.
 2. When the debouncer fires, the collection is materialised through the
    collection service (fetch, match, sort).
 3. The result is applied only if its generation is still current. Otherwise
    it is dropped and counted in live_stale_results_total.
 4. more and reset move the paginator over the applied sequence without a
    fetch; a results message is sent only when the visible ids changed.

# Shutdown

Closing a connection closes its session: the pending debounce timer is
cancelled and a running search is cancelled and waited for. Cancelling the
hub's context closes every client.

See Also:

  - internal/view: Debouncer, Generation, Paginator
  - internal/collection: Materialize
  - internal/supervisor/services: LiveHubService
*/
package live
