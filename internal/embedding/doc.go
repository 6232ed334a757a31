// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package embedding integrates the external image embedding service.

Client speaks the service's HTTP API:

	POST /embed-image      multipart field "image"    -> {"embedding": [...]}
	POST /search?k=N       {"embedding", "items"}     -> {"results": [...]}
	POST /add-vector       {"productId", "embedding"}
	POST /remove-vector    {"productId"}
	GET  /health

Calls are rate limited with golang.org/x/time/rate and guarded by a
sony/gobreaker circuit breaker. When the breaker is open calls fail fast
with ErrUnavailable.

Source adapts the client to vector.Source and falls back to the folding
pseudo image vector on failure. IndexSyncer keeps the service's own index in
step with catalog writes.
*/
package embedding
