// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
database_schema.go - Database Schema Management

Tables:
  - products: catalog entities with their image and text vectors (DOUBLE[])
    and the popularity counters maintained by ApplyPopularity
  - schema_migrations: applied versioned migrations (see migrations.go)

Index Strategy:
Indexes cover the candidate pool filters: active flag with category, price
for the price band, and popularity for trending and cold start.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range db.getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func (db *DB) getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS products (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			price DOUBLE NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,

			-- Vectors
			image_vector DOUBLE[],
			text_vector DOUBLE[],

			-- Popularity
			views_count BIGINT NOT NULL DEFAULT 0,
			add_to_cart_count BIGINT NOT NULL DEFAULT 0,
			purchase_count BIGINT NOT NULL DEFAULT 0,
			popularity_score DOUBLE NOT NULL DEFAULT 0,

			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		);`,
	}
}

// createIndexes creates indexes for the candidate pool queries
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_products_active_category ON products(is_active, category);`,
		`CREATE INDEX IF NOT EXISTS idx_products_price ON products(price);`,
		`CREATE INDEX IF NOT EXISTS idx_products_popularity ON products(popularity_score);`,
	}

	for _, idx := range indexes {
		if _, err := db.conn.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", idx, err)
		}
	}
	return nil
}
