// AudienceGrid - Streaming CRM Synthesis and Viewership Analytics
// Copyright 2026 AudienceGrid contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/audiencegrid/audiencegrid

// Package main is the entry point for the AudienceGrid server.
//
// AudienceGrid synthesizes a streaming platform's CRM population with
// controlled identity overlap against an external reference dataset,
// generates a matching viewing log, and serves reconciled engagement
// analytics over a REST API backed by DuckDB.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered load from environment variables and config
//     files (Koanf v2)
//  2. Database: DuckDB with the CRM, viewing-log, and derived analytics
//     tables
//  3. Analytics refresher: profile composition and SQL rollup refresh
//  4. HTTP API: generation, refresh, and reporting endpoints (chi)
//  5. Supervisor tree: suture-managed refresh, checkpoint, and HTTP
//     services with automatic restart on panic
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins): environment variables, config file (config.yaml),
// built-in defaults. See internal/config for the full key set.
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP
// server stops accepting connections and drains in-flight requests
// (10s timeout), then the database is checkpointed and closed.
//
// # Example Usage
//
// Development with periodic refresh:
//
//	export DATABASE_PATH=audiencegrid.db
//	export ANALYTICS_REFRESH_INTERVAL=15m
//	export ANALYTICS_REFRESH_ON_STARTUP=true
//	./audiencegrid-server
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/audiencegrid/audiencegrid/internal/analytics"
	"github.com/audiencegrid/audiencegrid/internal/api"
	"github.com/audiencegrid/audiencegrid/internal/config"
	"github.com/audiencegrid/audiencegrid/internal/database"
	"github.com/audiencegrid/audiencegrid/internal/logging"
	"github.com/audiencegrid/audiencegrid/internal/supervisor"
	"github.com/audiencegrid/audiencegrid/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting AudienceGrid with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("environment", cfg.Server.Environment).
		Dur("refresh_interval", cfg.Analytics.RefreshInterval).
		Msg("Configuration loaded")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	refresher := analytics.NewRefresher(db, cfg.Analytics.Workers)
	handler := api.NewHandler(db, cfg, refresher)
	router := api.NewRouter(handler, cfg)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree := supervisor.NewTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})

	// Data layer services
	if cfg.Analytics.RefreshInterval > 0 {
		tree.AddDataService(services.NewRefreshService(
			refresher,
			cfg.Analytics.RefreshInterval,
			cfg.Analytics.RefreshOnStartup,
		))
		logging.Info().
			Dur("interval", cfg.Analytics.RefreshInterval).
			Bool("on_startup", cfg.Analytics.RefreshOnStartup).
			Msg("Periodic analytics refresh enabled")
	} else if cfg.Analytics.RefreshOnStartup {
		// One-shot startup refresh without a periodic schedule.
		go func() {
			if _, err := refresher.Refresh(ctx); err != nil && ctx.Err() == nil {
				logging.Error().Err(err).Msg("Startup analytics refresh failed")
			}
		}()
		logging.Info().Msg("Startup analytics refresh scheduled (no periodic interval)")
	}
	tree.AddDataService(services.NewCheckpointService(db, 0))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain the error channel until the supervisor finishes
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
