// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import (
	"context"
	"fmt"

	"github.com/tomtom215/storefront/internal/cache"
	"github.com/tomtom215/storefront/internal/vector"
)

const (
	trendingKeyPrefix = "trending:"
	similarKeyPrefix  = "similar:"
)

// CachedRanker memoizes Trending and SimilarToEntity results of an inner
// Ranker. Personalized, hybrid and image-search requests always pass through.
//
// Register it as a ProfileListener on the Accumulator so popularity changes
// evict stale lists.
type CachedRanker struct {
	inner Ranker
	lru   *cache.LRU[*Result]
}

// NewCachedRanker wraps inner with a result cache configured by cfg.
func NewCachedRanker(inner Ranker, cfg CacheConfig) *CachedRanker {
	return &CachedRanker{
		inner: inner,
		lru:   cache.NewLRU[*Result](cfg.Capacity, cfg.TTL),
	}
}

// SimilarToEntity returns a cached result when one exists for (id, k).
func (c *CachedRanker) SimilarToEntity(ctx context.Context, id ProductID, k int) (*Result, error) {
	key := fmt.Sprintf("%s%s:%d", similarKeyPrefix, id, k)
	if res, ok := c.lru.Get(key); ok {
		return res, nil
	}
	res, err := c.inner.SimilarToEntity(ctx, id, k)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, res)
	return res, nil
}

// HybridSimilarToEntity is not cached; per-request weights make keys sparse.
func (c *CachedRanker) HybridSimilarToEntity(ctx context.Context, id ProductID, k int, override *WeightsOverride) (*Result, error) {
	return c.inner.HybridSimilarToEntity(ctx, id, k, override)
}

// PersonalizedForUser is not cached.
func (c *CachedRanker) PersonalizedForUser(ctx context.Context, userID UserID, k int) (*Result, error) {
	return c.inner.PersonalizedForUser(ctx, userID, k)
}

// Trending returns a cached result when one exists for k.
func (c *CachedRanker) Trending(ctx context.Context, k int) (*Result, error) {
	key := fmt.Sprintf("%s%d", trendingKeyPrefix, k)
	if res, ok := c.lru.Get(key); ok {
		return res, nil
	}
	res, err := c.inner.Trending(ctx, k)
	if err != nil {
		return nil, err
	}
	c.lru.Add(key, res)
	return res, nil
}

// SearchByImage is not cached.
func (c *CachedRanker) SearchByImage(ctx context.Context, image []byte, k int) (*Result, error) {
	return c.inner.SearchByImage(ctx, image, k)
}

// UserEmbedding is not cached.
func (c *CachedRanker) UserEmbedding(ctx context.Context, userID UserID) (vector.Vector, error) {
	return c.inner.UserEmbedding(ctx, userID)
}

// ProfileChanged implements ProfileListener. No cached result depends on a profile.
func (c *CachedRanker) ProfileChanged(UserID) {}

// ProductChanged implements ProfileListener and ProductListener. Every cached
// list is dropped: the product may appear as a candidate in any similar list,
// and a deactivated product must never be served.
func (c *CachedRanker) ProductChanged(ProductID) {
	c.lru.RemovePrefix(trendingKeyPrefix)
	c.lru.RemovePrefix(similarKeyPrefix)
}

// Invalidate drops every cached result. Call it after catalog writes.
func (c *CachedRanker) Invalidate() {
	c.lru.Clear()
}

// Stats returns the cache counters.
func (c *CachedRanker) Stats() cache.Stats {
	return c.lru.Stats()
}
