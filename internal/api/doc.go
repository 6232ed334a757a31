// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package api serves the storefront HTTP API on a chi router.

Routes fall into four groups:

  - Recommendations: similar, hybrid, personalized, trending and image search.
  - Catalog: product create, read, update, deactivate and image upload.
  - Shoppers: interactions (view, cart, purchase), history and wishlist.
  - Operations: liveness and readiness probes, Prometheus metrics and
    per-route latency statistics.

Every JSON response uses the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "error": {"code": "NOT_FOUND", "message": "..."},
	  "meta": {"timestamp": "...", "request_id": "..."}
	}

Interactions are published to the event bus and acknowledged with 202
Accepted; the event router applies them to shopper profiles. When no
publisher is configured they are applied synchronously instead.

Domain errors map to status codes in one place (respondServiceError):
recommend.ErrNotFound is 404, recommend.ErrInvalidInput and validation
failures are 400, recommend.ErrAlreadyInWishlist is 409 and anything else
is 500.
*/
package api
