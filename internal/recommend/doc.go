// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package recommend implements the product similarity and recommendation engine.
//
// # Pipelines
//
// The Engine exposes five ranking pipelines over a CatalogRepository and a
// UserRepository:
//
//   - SimilarToEntity: same-category products ranked by cosine similarity of
//     their preferred vector (image, else text), thresholded at 0.40
//   - HybridSimilarToEntity: category-or-price-band products ranked by a
//     weighted sum of image, text, category and price signals
//   - PersonalizedForUser: products ranked against the normalized mean of the
//     user's recent views, with a relaxed threshold and cold-start and
//     trending fallbacks
//   - Trending: popularity ordering
//   - SearchByImage: image-vector search for an uploaded picture
//
// # Candidate Pools
//
// CandidatePool bounds the set scored by each pipeline. It re-checks whatever
// the repository returns, so inactive products and the base product never
// reach scoring.
//
// # Ordering
//
// Scored lists are ordered by score descending, then product ID ascending, so
// equal inputs always produce identical outputs.
//
// # Profiles
//
// Accumulator folds interaction events into UserProfile state: view history,
// wishlist and the incremental interaction vector. Updates to a single user are
// serialized; different users proceed in parallel.
//
// # Caching
//
// CachedRanker memoizes trending and similar results and drops them when the
// Accumulator reports a popularity change.
//
// # Usage
//
//	engine, err := recommend.NewEngine(cfg, catalog, users, source, logger)
//	if err != nil {
//	    return err
//	}
//	res, err := engine.SimilarToEntity(ctx, "p-123", 8)
package recommend
