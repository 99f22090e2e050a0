// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Package supervisor runs Shelfmark's long-lived components under a suture v4
supervisor tree.

	shelfmark (root)
	├── messaging-layer
	│   ├── live-hub
	│   └── uptime
	└── api-layer
	    └── http-server

Each layer restarts its own children with suture's failure backoff, so a
live hub crash leaves the HTTP API serving. Supervisor events are routed
through sutureslog into the zerolog-backed slog logger from
internal/logging.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewLiveHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = tree.Serve(ctx)

After Serve returns, UnstoppedServiceReport names any service that did
not stop within the shutdown timeout.
*/
package supervisor
