// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

/*
Command shelfctl browses and edits a Shelfmark catalogue from the terminal.

It talks to the catalogue backend directly and computes the same views as
the HTTP API:

	shelfctl list films --owned wishlist --sort rating --desc
	shelfctl search books "le guin"
	shelfctl top films --by director --n 5
	shelfctl sample films --flag watchlist
	shelfctl stats watches --field price --owned
	shelfctl delete films 42

delete asks for confirmation unless --yes is given. Declining sends
nothing to the backend.

Global flags --backend and --timeout override BACKEND_URL and
BACKEND_TIMEOUT. Logs go to stderr at --log-level (default warn).
*/
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
