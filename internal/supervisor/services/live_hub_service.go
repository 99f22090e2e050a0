// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package services

import (
	"context"
)

// ContextHub is satisfied by *live.Hub.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// LiveHubService supervises the live search hub. Sessions are closed by
// the hub itself when ctx is canceled.
type LiveHubService struct {
	hub ContextHub
}

// NewLiveHubService wraps hub.
func NewLiveHubService(hub ContextHub) *LiveHubService {
	return &LiveHubService{hub: hub}
}

// Serve delegates to the hub.
func (l *LiveHubService) Serve(ctx context.Context) error {
	return l.hub.RunWithContext(ctx)
}

func (l *LiveHubService) String() string {
	return "live-hub"
}
