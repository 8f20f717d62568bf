// Assembly Lights - Lighting Sensor Playback and Floor-Plan Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assemblylights

// Package main is the entry point for the Assembly Lights server.
//
// The server loads the brightness, position and name tables once, derives
// the fixture layout, and serves the mean view, the timeline heatmap and
// per-viewer day playback over a REST API with a WebSocket frame stream.
//
// # Startup
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Snapshot: read and resample the input tables
//  3. Fixtures: project positions onto the floor-plan canvas
//  4. Views and playback: the read-only view service and the session manager
//  5. Supervisor tree: cache janitor, WebSocket hub, sessions, HTTP server
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
// server first; in-flight requests get server.shutdown_timeout to finish.
//
// # Example Usage
//
//	export BRIGHTNESS_PATH=Tables/LIGHT_LEVELS.csv
//	export POSITIONS_PATH="light positions/light_positions.txt"
//	export HTTP_PORT=8050
//	./assemblylights
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/assemblylights/internal/api"
	"github.com/tomtom215/assemblylights/internal/cache"
	"github.com/tomtom215/assemblylights/internal/config"
	"github.com/tomtom215/assemblylights/internal/fixtures"
	"github.com/tomtom215/assemblylights/internal/floorplan"
	"github.com/tomtom215/assemblylights/internal/loader"
	"github.com/tomtom215/assemblylights/internal/logging"
	"github.com/tomtom215/assemblylights/internal/playback"
	"github.com/tomtom215/assemblylights/internal/supervisor"
	"github.com/tomtom215/assemblylights/internal/supervisor/services"
	"github.com/tomtom215/assemblylights/internal/views"
	ws "github.com/tomtom215/assemblylights/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingConfig())

	logging.Info().
		Str("version", version).
		Str("brightness", cfg.Data.BrightnessPath).
		Str("positions", cfg.Data.PositionsPath).
		Str("timezone", cfg.Data.Timezone).
		Msg("Starting Assembly Lights")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("Server exited with error")
		stop()
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config) error {
	opts, err := cfg.Data.LoaderOptions()
	if err != nil {
		return err
	}
	snap, err := loader.LoadSnapshot(ctx, cfg.Data.Files(), opts)
	if err != nil {
		return err
	}
	placed, err := fixtures.Build(snap.Positions, cfg.Plan.Layout())
	if err != nil {
		return err
	}
	logging.Info().
		Int("fixtures", len(placed)).
		Int("rows", snap.Points.Len()).
		Msg("Reference data loaded")

	viewSvc, err := views.New(snap, placed, cfg.ViewsConfig(opts.Location, api.FloorplanPath))
	if err != nil {
		return err
	}

	hub := ws.NewHub()
	sessions, err := playback.NewManager(snap.Points, placed, cfg.PlaybackConfig(), hub)
	if err != nil {
		return err
	}

	var fp *floorplan.Fetcher
	if cfg.FloorplanEnabled() {
		fp, err = floorplan.New(cfg.FloorplanConfig(), nil)
		if err != nil {
			return err
		}
	} else {
		logging.Info().Msg("Floor-plan proxy disabled")
	}

	handler := api.NewHandler(viewSvc, sessions, hub, fp, api.HandlerConfig{
		AllowedWSOrigins: cfg.WebSocketOrigins(),
		Version:          version,
	})
	router := api.NewRouter(handler, api.NewChiMiddleware(middlewareConfig(cfg))).SetupChi()

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}
	tree.AddDataService(cache.NewJanitorService(viewSvc.Cache(), cfg.Views.CacheSweep))
	tree.AddPlaybackService(services.NewWebSocketHubService(hub))
	tree.AddPlaybackService(sessions)
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree")
	err = tree.Serve(ctx)

	if unstopped, reportErr := tree.UnstoppedServiceReport(); reportErr == nil {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// middlewareConfig maps the security settings onto the router middleware.
func middlewareConfig(cfg *config.Config) *api.ChiMiddlewareConfig {
	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitRequests = cfg.Security.RateLimitReqs
	mw.RateLimitWindow = cfg.Security.RateLimitWindow
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled
	return mw
}
