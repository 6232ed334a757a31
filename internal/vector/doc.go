// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package vector builds and compares product feature vectors.
//
// The folding vectorizer is deterministic and position sensitive: the i-th
// input unit lands in bucket i mod D. It is not semantic. Persisted vectors
// depend on the exact scheme, so changes to TextVector or PseudoImageVector
// invalidate stored data (see storefrontctl reindex).
package vector
