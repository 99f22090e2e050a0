// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/shelfmark/internal/backend"
	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/models"
)

// dialFunc builds the backend API. Tests replace it with an in-memory fake.
type dialFunc func(cfg *config.BackendConfig) (backend.API, error)

// cli holds the streams, global flags and the lazily built service shared by
// every subcommand.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	backendURL string
	timeout    time.Duration
	logLevel   string

	dial   dialFunc
	svc    *collection.Service
	styles styles
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{
		in:     in,
		out:    out,
		errOut: errOut,
		dial:   backend.New,
		styles: newStyles(out),
	}
}

// run executes args and returns the process exit code.
func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	c := newCLI(in, out, errOut)
	return c.execute(ctx, args)
}

func (c *cli) execute(ctx context.Context, args []string) int {
	root := c.rootCommand()
	root.SetArgs(args)
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(c.errOut, c.styles.errorText.Render("error: "+err.Error()))
		return 1
	}
	return 0
}

func (c *cli) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               "shelfctl",
		Short:             "Browse and edit a Shelfmark catalogue",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.backendURL, "backend", "", "catalogue backend URL (default $BACKEND_URL)")
	flags.DurationVar(&c.timeout, "timeout", 0, "per-request backend timeout (default $BACKEND_TIMEOUT)")
	flags.StringVar(&c.logLevel, "log-level", "warn", "trace, debug, info, warn or error")

	root.AddCommand(
		c.listCommand(),
		c.searchCommand(),
		c.groupsCommand(),
		c.topCommand(),
		c.sampleCommand(),
		c.recentCommand(),
		c.statsCommand(),
		c.deleteCommand(),
	)
	return root
}

// setup loads configuration, applies flag overrides and builds the
// collection service.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if !logging.ValidLevel(c.logLevel) {
		return fmt.Errorf("invalid --log-level %q", c.logLevel)
	}
	logging.Init(logging.Config{Level: c.logLevel, Format: "console", Output: c.errOut})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend.URL = c.backendURL
	}
	if cmd.Flags().Changed("timeout") {
		if c.timeout <= 0 {
			return fmt.Errorf("--timeout must be positive, got %s", c.timeout)
		}
		cfg.Backend.Timeout = c.timeout
	}

	registry, err := models.NewRegistry(cfg.SearchOverrides())
	if err != nil {
		return fmt.Errorf("build resource registry: %w", err)
	}
	api, err := c.dial(&cfg.Backend)
	if err != nil {
		return fmt.Errorf("create backend client: %w", err)
	}

	logging.Debug().Dur("timeout", cfg.Backend.Timeout).Bool("breaker", cfg.Backend.Breaker.Enabled).Msg("Backend configured")
	c.svc = collection.NewService(api, registry, cfg.View)
	return nil
}
