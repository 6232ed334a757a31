// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package main is the storefront recommendation server.
//
// # Application Architecture
//
// The server initializes components in this order:
//
//  1. Configuration: .env (godotenv), then koanf defaults, config.yaml and
//     environment variables
//  2. Catalog: DuckDB product repository
//  3. Profiles: BadgerDB user profile store
//  4. Engine: ranking pipelines, result cache and the profile accumulator
//  5. Embedding (optional): external image embedding client and index sync
//  6. Events: embedded NATS (optional), transport, publisher and router
//  7. HTTP: chi router with the JSON API, health probes and /metrics
//
// Long-running parts run under a suture supervisor tree (see
// internal/supervisor) and stop on SIGINT or SIGTERM.
//
// # Example Usage
//
//	export DUCKDB_PATH=/var/lib/storefront/catalog.duckdb
//	export PROFILE_STORE_PATH=/var/lib/storefront/profiles
//	export ML_SERVICE_URL=http://ml:8200 EMBEDDING_ENABLED=true
//	./storefront
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tomtom215/storefront/internal/api"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/middleware"
	"github.com/tomtom215/storefront/internal/supervisor"
	"github.com/tomtom215/storefront/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Server failed")
	}
}

func run() error {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Service:   "storefront-server",
		Timestamp: true,
		Output:    os.Stderr,
	})
	logger := logging.Logger()
	logger.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("events_driver", cfg.Events.Driver).
		Bool("embedding_enabled", cfg.Embedding.Enabled).
		Msg("Starting storefront")
	metrics.SetAppInfo(version, runtime.Version())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	core, err := initCore(cfg, logger, tree)
	if err != nil {
		return err
	}
	defer core.Close()

	events, err := initEvents(ctx, cfg, core, logger, tree)
	if err != nil {
		return err
	}
	defer events.Close()

	if core.Cached != nil {
		prometheus.MustRegister(metrics.NewCacheCollector("results", core.Cached.Stats))
	}

	handler := api.NewHandler(api.Deps{
		Ranker:              core.Ranker,
		Catalog:             core.CatalogService,
		Profiles:            core.Accumulator,
		Users:               core.Profiles,
		Events:              events.Publisher,
		AsyncImageEmbedding: cfg.Embedding.Enabled,
		HealthChecks:        healthChecks(core, events),
		Performance:         middleware.NewPerformanceMonitor(1000, cfg.Server.Timeout/2),
		RequestTimeout:      cfg.Server.Timeout,
		MaxUploadBytes:      cfg.Security.MaxUploadBytes,
		Version:             version,
	})
	router := api.NewRouter(handler, api.NewMiddleware(api.MiddlewareConfigFrom(&cfg.Security)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       2 * cfg.Server.Timeout,
		WriteTimeout:      2 * cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	logger.Info().Str("addr", server.Addr).Msg("Supervisor tree starting")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor tree: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logger.Warn().Str("unstopped_service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	logger.Info().Msg("Storefront stopped")
	return nil
}

// healthChecks lists readiness checks. The embedding service and the event
// bus are optional: recommendations keep working without them.
func healthChecks(core *coreComponents, events *eventComponents) []api.HealthCheck {
	checks := []api.HealthCheck{
		{Name: "catalog", Check: core.DB.Ping},
		{Name: "profiles", Check: core.Profiles.Ping},
	}
	if core.Embedding != nil {
		checks = append(checks, api.HealthCheck{Name: "embedding", Check: core.Embedding.Health, Optional: true})
	}
	if events.Server != nil {
		checks = append(checks, api.HealthCheck{Name: "nats", Optional: true, Check: func(context.Context) error {
			if !events.Server.IsRunning() {
				return fmt.Errorf("embedded NATS server is not running")
			}
			return nil
		}})
	}
	return checks
}
