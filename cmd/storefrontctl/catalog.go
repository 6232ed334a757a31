// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/database"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/profilestore"
	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/vector"
)

func newReindexCmd(opts *options) *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "reindex",
		Short: "Recompute every stored text vector with the configured dimension",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, dbPath)
			if err != nil {
				return err
			}
			db, err := database.New(&cfg.Database)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer func() { _ = db.Close() }()

			n, err := reindex(cmd.Context(), db, cfg.Vector.Dimension)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d products (dimension %d)\n", n, cfg.Vector.Dimension)
			return err
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB catalog file (default from config)")
	return cmd
}

// reindex rewrites the text vector of every product, active or not.
func reindex(ctx context.Context, db *database.DB, dim int) (int, error) {
	products, err := db.AllProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}
	svc := recommend.NewCatalogService(db, vector.NewFoldingSource(dim), logging.Logger())
	for _, p := range products {
		if err := svc.Reindex(ctx, p); err != nil {
			return 0, fmt.Errorf("reindex %s: %w", p.ID, err)
		}
	}
	return len(products), nil
}

func newSimilarCmd(opts *options) *cobra.Command {
	var (
		dbPath string
		k      int
	)
	cmd := &cobra.Command{
		Use:   "similar [product-id]",
		Short: "Rank the products most similar to one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, dbPath)
			if err != nil {
				return err
			}
			db, err := database.New(&cfg.Database)
			if err != nil {
				return fmt.Errorf("open catalog: %w", err)
			}
			defer func() { _ = db.Close() }()

			res, err := similar(cmd.Context(), cfg, db, recommend.ProductID(args[0]), k)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "DuckDB catalog file (default from config)")
	cmd.Flags().IntVarP(&k, "k", "k", 0, "number of results (default from config)")
	return cmd
}

// similar runs SimilarToEntity over db. Profiles are not needed, so an
// in-memory store stands in for the user repository.
func similar(ctx context.Context, cfg *config.Config, db *database.DB, id recommend.ProductID, k int) (*recommend.Result, error) {
	users, err := profilestore.Open(&config.ProfilesConfig{InMemory: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = users.Close() }()

	engine, err := recommend.NewEngine(cfg.EngineConfig(), db, users,
		vector.NewFoldingSource(cfg.Vector.Dimension), logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("create ranking engine: %w", err)
	}
	return engine.SimilarToEntity(ctx, id, k)
}
