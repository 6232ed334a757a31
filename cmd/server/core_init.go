// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/database"
	"github.com/tomtom215/storefront/internal/embedding"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/profilestore"
	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/supervisor"
	"github.com/tomtom215/storefront/internal/supervisor/services"
	"github.com/tomtom215/storefront/internal/vector"
)

// coreComponents holds storage, the ranking engine and the services built
// on it.
type coreComponents struct {
	DB             *database.DB
	Profiles       *profilestore.Store
	Engine         *recommend.Engine
	Cached         *recommend.CachedRanker // nil when result caching is off
	Ranker         recommend.Ranker
	CatalogService *recommend.CatalogService
	Accumulator    *recommend.Accumulator
	Embedding      *embedding.Client // nil when the embedding service is off
}

// Close releases storage handles.
func (c *coreComponents) Close() {
	if err := c.Profiles.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing profile store")
	}
	if err := c.DB.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}

// initCore opens storage and wires the engine. Background workers are added
// to the data layer of tree.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func initCore(cfg *config.Config, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*coreComponents, error) {
	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	profiles, err := profilestore.Open(&cfg.Profiles)
	if err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("open profile store: %w", err)
	}
	core := &coreComponents{DB: db, Profiles: profiles}

	// Catalog writes always store the pseudo image vector. The service
	// embedding replaces it through the image_uploaded event.
	folding := vector.NewFoldingSource(cfg.Vector.Dimension)
	var source vector.Source = folding
	if cfg.Embedding.Enabled {
		core.Embedding = embedding.NewClient(&cfg.Embedding, logger)
		source = embedding.NewSource(core.Embedding, cfg.Vector.Dimension, logger)
		logger.Info().Str("url", cfg.Embedding.URL).Msg("Embedding service enabled")
	}

	engineCfg := cfg.EngineConfig()
	core.Engine, err = recommend.NewEngine(engineCfg, db, profiles, source, logger)
	if err != nil {
		core.Close()
		return nil, fmt.Errorf("create ranking engine: %w", err)
	}
	core.Engine.SetRecorder(metrics.Recorder{})
	if core.Embedding != nil {
		core.Engine.SetImageSearcher(embedding.NewImageSearcher(core.Embedding))
	}

	core.CatalogService = recommend.NewCatalogService(db, folding, logger)
	core.Accumulator = recommend.NewAccumulator(db, profiles, engineCfg.Profile, logger)

	core.Ranker = core.Engine
	if engineCfg.Cache.Enabled {
		core.Cached = recommend.NewCachedRanker(core.Engine, engineCfg.Cache)
		core.CatalogService.AddListener(core.Cached)
		core.Accumulator.AddListener(core.Cached)
		core.Ranker = core.Cached
	}

	if !cfg.Profiles.InMemory {
		tree.AddDataService(services.NewWorkerService("profile-compactor",
			profilestore.NewCompactor(profiles, cfg.Profiles.GCInterval)))
	}
	if core.Embedding != nil && cfg.Embedding.SyncIndex {
		syncer := embedding.NewIndexSyncer(core.Embedding, db, cfg.Embedding.Timeout, logger)
		core.CatalogService.AddListener(syncer)
		tree.AddDataService(services.NewWorkerService("embedding-index-syncer", syncer))
	}

	return core, nil
}

func closeQuietly(db *database.DB) {
	if err := db.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing database")
	}
}
