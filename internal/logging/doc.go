// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package logging provides the process-wide zerolog logger for Storefront.
//
// JSON output is the default; console output is available for development.
// Adapters expose the same stream to slog consumers (suture's event hook)
// and to watermill.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("product_id", id).Msg("Vector recomputed")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Embedding upgrade failed")
//
// Always terminate event chains with Msg or Send, otherwise nothing is written.
package logging
