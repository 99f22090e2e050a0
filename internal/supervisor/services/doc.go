// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package services adapts Shelfmark's long-running components to suture's
Serve(ctx) error contract.

# Available Services

HTTPServerService wraps *http.Server. ListenAndServe runs in a goroutine
and context cancellation triggers Shutdown with a bounded timeout.

LiveHubService wraps live.Hub. The hub's RunWithContext already has the
right shape, so the wrapper only names it for the supervisor's logs.

UptimeService refreshes the app_uptime_seconds gauge on a ticker.

# Usage

	tree.AddMessagingService(services.NewLiveHubService(hub))
	tree.AddMessagingService(services.NewUptimeService(started, 15*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

Every wrapper implements fmt.Stringer so suture events carry a readable
service name.
*/
package services
