// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import (
	"fmt"
	"time"
)

// Config contains all configuration for the ranking engine.
type Config struct {
	// Weights are the default hybrid weights. Callers may override them per request.
	Weights Weights `json:"weights"`

	// Thresholds holds the similarity cut-offs.
	Thresholds ThresholdConfig `json:"thresholds"`

	// Limits holds scan caps and result sizes.
	Limits LimitsConfig `json:"limits"`

	// Profile holds the user history bounds.
	Profile ProfileConfig `json:"profile"`

	// Cache holds result caching parameters.
	Cache CacheConfig `json:"cache"`
}

// ThresholdConfig holds similarity thresholds.
type ThresholdConfig struct {
	// Similar drops single-signal candidates scoring below it.
	// Default: 0.40.
	Similar float64 `json:"similar"`

	// Personalized is the first-pass personalized threshold.
	// Default: 0.35.
	Personalized float64 `json:"personalized"`

	// PersonalizedRelaxed is used when fewer than MinPersonalized items pass.
	// Default: 0.25.
	PersonalizedRelaxed float64 `json:"personalized_relaxed"`

	// MinPersonalized is the pass count below which the threshold is relaxed.
	// Default: 3.
	MinPersonalized int `json:"min_personalized"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// HybridScan caps the category-or-price-band pool.
	// Default: 1000.
	HybridScan int `json:"hybrid_scan"`

	// PersonalizedScan caps the user-profile pool.
	// Default: 200.
	PersonalizedScan int `json:"personalized_scan"`

	// SearchScan caps the image search pool.
	// Default: 2000.
	SearchScan int `json:"search_scan"`

	// RecentViews is how many recent views feed the personalized profile.
	// Default: 30.
	RecentViews int `json:"recent_views"`

	// EmbeddingViews is how many recent views feed UserEmbedding.
	// Default: 50.
	EmbeddingViews int `json:"embedding_views"`

	// PriceBandLow and PriceBandHigh bound the price band as multiples of the base price.
	// Default: 0.5 and 1.5.
	PriceBandLow  float64 `json:"price_band_low"`
	PriceBandHigh float64 `json:"price_band_high"`

	// Default result sizes per pipeline.
	DefaultSimilarK      int `json:"default_similar_k"`
	DefaultHybridK       int `json:"default_hybrid_k"`
	DefaultPersonalizedK int `json:"default_personalized_k"`
	DefaultTrendingK     int `json:"default_trending_k"`
	DefaultSearchK       int `json:"default_search_k"`

	// MaxK caps any requested result size.
	// Default: 100.
	MaxK int `json:"max_k"`
}

// ProfileConfig bounds per-user history.
type ProfileConfig struct {
	// MaxViewed caps the view history.
	// Default: 50.
	MaxViewed int `json:"max_viewed"`

	// MaxWishlist caps the wishlist.
	// Default: 200.
	MaxWishlist int `json:"max_wishlist"`
}

// CacheConfig contains result caching parameters.
type CacheConfig struct {
	// Enabled turns on caching of trending and similar results.
	Enabled bool `json:"enabled"`

	// TTL is how long cached results stay valid.
	// Default: 1 minute.
	TTL time.Duration `json:"ttl"`

	// Capacity is the maximum number of cached results.
	// Default: 1024.
	Capacity int `json:"capacity"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		Weights: DefaultWeights(),
		Thresholds: ThresholdConfig{
			Similar:             0.40,
			Personalized:        0.35,
			PersonalizedRelaxed: 0.25,
			MinPersonalized:     3,
		},
		Limits: LimitsConfig{
			HybridScan:           1000,
			PersonalizedScan:     200,
			SearchScan:           2000,
			RecentViews:          30,
			EmbeddingViews:       50,
			PriceBandLow:         0.5,
			PriceBandHigh:        1.5,
			DefaultSimilarK:      8,
			DefaultHybridK:       12,
			DefaultPersonalizedK: 12,
			DefaultTrendingK:     8,
			DefaultSearchK:       12,
			MaxK:                 100,
		},
		Profile: ProfileConfig{
			MaxViewed:   50,
			MaxWishlist: 200,
		},
		Cache: CacheConfig{
			Enabled:  true,
			TTL:      time.Minute,
			Capacity: 1024,
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	for name, th := range map[string]float64{
		"thresholds.similar":              c.Thresholds.Similar,
		"thresholds.personalized":         c.Thresholds.Personalized,
		"thresholds.personalized_relaxed": c.Thresholds.PersonalizedRelaxed,
	} {
		if th < -1 || th > 1 {
			return fmt.Errorf("%s must be in [-1, 1], got %f", name, th)
		}
	}
	if c.Thresholds.PersonalizedRelaxed > c.Thresholds.Personalized {
		return fmt.Errorf("thresholds.personalized_relaxed (%f) must not exceed thresholds.personalized (%f)",
			c.Thresholds.PersonalizedRelaxed, c.Thresholds.Personalized)
	}
	if c.Thresholds.MinPersonalized < 0 {
		return fmt.Errorf("thresholds.min_personalized must be non-negative, got %d", c.Thresholds.MinPersonalized)
	}

	if c.Limits.HybridScan < 1 || c.Limits.PersonalizedScan < 1 || c.Limits.SearchScan < 1 {
		return fmt.Errorf("limits scan caps must be positive, got hybrid=%d personalized=%d search=%d",
			c.Limits.HybridScan, c.Limits.PersonalizedScan, c.Limits.SearchScan)
	}
	if c.Limits.RecentViews < 1 {
		return fmt.Errorf("limits.recent_views must be positive, got %d", c.Limits.RecentViews)
	}
	if c.Limits.EmbeddingViews < 1 {
		return fmt.Errorf("limits.embedding_views must be positive, got %d", c.Limits.EmbeddingViews)
	}
	if c.Limits.PriceBandLow < 0 || c.Limits.PriceBandHigh < c.Limits.PriceBandLow {
		return fmt.Errorf("limits price band must satisfy 0 <= low <= high, got [%f, %f]",
			c.Limits.PriceBandLow, c.Limits.PriceBandHigh)
	}
	if c.Limits.MaxK < 1 {
		return fmt.Errorf("limits.max_k must be positive, got %d", c.Limits.MaxK)
	}
	for name, k := range map[string]int{
		"limits.default_similar_k":      c.Limits.DefaultSimilarK,
		"limits.default_hybrid_k":       c.Limits.DefaultHybridK,
		"limits.default_personalized_k": c.Limits.DefaultPersonalizedK,
		"limits.default_trending_k":     c.Limits.DefaultTrendingK,
		"limits.default_search_k":       c.Limits.DefaultSearchK,
	} {
		if k < 1 || k > c.Limits.MaxK {
			return fmt.Errorf("%s must be in [1, %d], got %d", name, c.Limits.MaxK, k)
		}
	}

	if c.Profile.MaxViewed < 1 {
		return fmt.Errorf("profile.max_viewed must be positive, got %d", c.Profile.MaxViewed)
	}
	if c.Profile.MaxWishlist < 1 {
		return fmt.Errorf("profile.max_wishlist must be positive, got %d", c.Profile.MaxWishlist)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive when caching is enabled, got %v", c.Cache.TTL)
		}
		if c.Cache.Capacity < 1 {
			return fmt.Errorf("cache.capacity must be positive when caching is enabled, got %d", c.Cache.Capacity)
		}
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// clampK applies the default and the upper bound to a requested result size.
func (c *Config) clampK(k, def int) int {
	if k <= 0 {
		k = def
	}
	if k > c.Limits.MaxK {
		k = c.Limits.MaxK
	}
	return k
}
