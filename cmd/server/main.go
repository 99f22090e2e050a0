// Shelfmark - Personal Collection Catalogue
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/shelfmark

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/shelfmark/internal/api"
	"github.com/tomtom215/shelfmark/internal/backend"
	"github.com/tomtom215/shelfmark/internal/collection"
	"github.com/tomtom215/shelfmark/internal/config"
	"github.com/tomtom215/shelfmark/internal/live"
	"github.com/tomtom215/shelfmark/internal/logging"
	"github.com/tomtom215/shelfmark/internal/metrics"
	"github.com/tomtom215/shelfmark/internal/models"
	"github.com/tomtom215/shelfmark/internal/supervisor"
	"github.com/tomtom215/shelfmark/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Shelfmark stopped with an error")
	}
}

func run() error {
	started := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.SetAppInfo(version, runtime.Version())

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Bool("breaker", cfg.Backend.Breaker.Enabled).
		Bool("live", cfg.Live.Enabled).
		Msg("Starting Shelfmark")

	if cfg.IsProduction() && len(cfg.Security.CORSOrigins) == 1 && cfg.Security.CORSOrigins[0] == "*" {
		logging.Warn().Msg("CORS allows any origin (CORS_ORIGINS=*); any website can call this API")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Inbound rate limiting is disabled (DISABLE_RATE_LIMIT=true)")
	}

	registry, err := models.NewRegistry(cfg.SearchOverrides())
	if err != nil {
		return fmt.Errorf("build resource registry: %w", err)
	}

	client, err := backend.New(&cfg.Backend)
	if err != nil {
		return fmt.Errorf("create backend client: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(context.Background(), cfg.Backend.Timeout)
	if err := client.Ping(pingCtx); err != nil {
		logging.Warn().Err(err).Msg("Backend not reachable yet, views will be degraded until it is")
	} else {
		logging.Info().Msg("Connected to backend")
	}
	cancelPing()

	svc := collection.NewService(client, registry, cfg.View)

	opts := []api.HandlerOption{api.WithVersion(version)}
	if breaker, ok := client.(*backend.CircuitBreakerClient); ok {
		opts = append(opts, api.WithBreaker(breaker))
	}

	var hub *live.Hub
	if cfg.Live.Enabled {
		hub = live.NewHub(svc, live.NewConfig(cfg))
		svc.SetNotifier(hub)
		opts = append(opts, api.WithLiveHub(hub))
	}

	// Live sessions outlive any server write timeout; the hub sets its own
	// per-message write deadlines.
	writeTimeout := cfg.Server.Timeout
	if hub != nil {
		writeTimeout = 0
	}

	handler := api.NewHandler(svc, cfg, opts...)
	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler).SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if hub != nil {
		tree.AddMessagingService(services.NewLiveHubService(hub))
	}
	tree.AddMessagingService(services.NewUptimeService(started, 15*time.Second))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, u := range unstopped {
			logging.Warn().Str("service", u.Name).Msg("Service failed to stop within timeout")
		}
	}

	logging.Info().Dur("uptime", time.Since(started)).Msg("Shelfmark stopped")
	return nil
}
