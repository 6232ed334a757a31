// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Command storefrontctl is the operator CLI: it prints vectors, compares
// them and runs maintenance against a local DuckDB catalog file.
//
//	storefrontctl vectorize text "canvas tote bag"
//	storefrontctl vectorize image ./tote.jpg
//	storefrontctl similarity "canvas tote" "leather tote"
//	storefrontctl reindex --db ./data/catalog.duckdb
//	storefrontctl similar tote-01 --db ./data/catalog.duckdb -k 5
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
