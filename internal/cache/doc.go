// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package cache provides a thread-safe TTL LRU cache.

It backs two things in Storefront:
  - ranking result caching (trending and similar-product lists)
  - event de-duplication in the watermill router (SeenBefore)

Entries expire lazily. Call CleanupExpired periodically when the key space is
large and mostly cold.
*/
package cache
