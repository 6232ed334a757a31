// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package config

import (
	"time"

	"github.com/tomtom215/storefront/internal/recommend"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Profiles  ProfilesConfig  `koanf:"profiles"`
	Vector    VectorConfig    `koanf:"vector"`
	Recommend RecommendConfig `koanf:"recommend"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`          // Per-request handler timeout
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"` // Graceful shutdown budget
	Environment     string        `koanf:"environment"`      // "development", "staging", "production"
}

// DatabaseConfig holds DuckDB catalog settings
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = use NumCPU
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
}

// ProfilesConfig holds the BadgerDB user profile store settings and history bounds.
type ProfilesConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps profiles in memory only (tests, demos).
	InMemory bool `koanf:"in_memory"`

	// GCInterval is how often value-log garbage collection runs.
	// Default: 10m
	GCInterval time.Duration `koanf:"gc_interval"`

	// MaxViewed caps the view history per user.
	// Default: 50
	MaxViewed int `koanf:"max_viewed"`

	// MaxWishlist caps the wishlist per user.
	// Default: 200
	MaxWishlist int `koanf:"max_wishlist"`
}

// VectorConfig holds vectorizer settings.
type VectorConfig struct {
	// Dimension is the length of folded text and pseudo-image vectors.
	// Changing it invalidates stored vectors until a reindex runs.
	// Default: 64
	Dimension int `koanf:"dimension"`
}

// WeightsConfig holds the default hybrid weights.
type WeightsConfig struct {
	Image         float64 `koanf:"image"`
	Text          float64 `koanf:"text"`
	CategoryBoost float64 `koanf:"category_boost"`
	PriceDecay    float64 `koanf:"price_decay"`
}

// RecommendConfig holds ranking engine settings.
//
// Environment Variables:
//   - RECOMMEND_SIMILAR_THRESHOLD: single-signal cut-off (default: 0.40)
//   - RECOMMEND_PERSONALIZED_THRESHOLD: first-pass personalized cut-off (default: 0.35)
//   - RECOMMEND_RELAXED_THRESHOLD: relaxed personalized cut-off (default: 0.25)
//   - RECOMMEND_CACHE_ENABLED / RECOMMEND_CACHE_TTL: result caching
type RecommendConfig struct {
	Weights WeightsConfig `koanf:"weights"`

	SimilarThreshold             float64 `koanf:"similar_threshold"`
	PersonalizedThreshold        float64 `koanf:"personalized_threshold"`
	PersonalizedRelaxedThreshold float64 `koanf:"personalized_relaxed_threshold"`
	MinPersonalized              int     `koanf:"min_personalized"`

	HybridScan       int     `koanf:"hybrid_scan"`
	PersonalizedScan int     `koanf:"personalized_scan"`
	SearchScan       int     `koanf:"search_scan"`
	RecentViews      int     `koanf:"recent_views"`
	EmbeddingViews   int     `koanf:"embedding_views"`
	PriceBandLow     float64 `koanf:"price_band_low"`
	PriceBandHigh    float64 `koanf:"price_band_high"`

	DefaultSimilarK      int `koanf:"default_similar_k"`
	DefaultHybridK       int `koanf:"default_hybrid_k"`
	DefaultPersonalizedK int `koanf:"default_personalized_k"`
	DefaultTrendingK     int `koanf:"default_trending_k"`
	DefaultSearchK       int `koanf:"default_search_k"`
	MaxK                 int `koanf:"max_k"`

	CacheEnabled  bool          `koanf:"cache_enabled"`
	CacheTTL      time.Duration `koanf:"cache_ttl"`
	CacheCapacity int           `koanf:"cache_capacity"`
}

// EmbeddingConfig holds the external embedding service client settings.
//
// When disabled, image vectors come from the deterministic folding scheme only.
type EmbeddingConfig struct {
	Enabled bool          `koanf:"enabled"`
	URL     string        `koanf:"url"`
	Timeout time.Duration `koanf:"timeout"`

	// SyncIndex pushes vectors to the service's own index on product writes.
	SyncIndex bool `koanf:"sync_index"`

	// Client-side rate limit (requests per second, burst).
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// Circuit breaker settings.
	BreakerMaxRequests      uint32        `koanf:"breaker_max_requests"`
	BreakerInterval         time.Duration `koanf:"breaker_interval"`
	BreakerTimeout          time.Duration `koanf:"breaker_timeout"`
	BreakerFailureThreshold uint32        `koanf:"breaker_failure_threshold"`
}

// EventsConfig holds the interaction event pipeline settings.
type EventsConfig struct {
	// Driver selects the transport: "memory" (watermill gochannel) or "nats".
	Driver string `koanf:"driver"`

	// NATS settings, used when Driver is "nats".
	NATSURL          string `koanf:"nats_url"`
	EmbeddedServer   bool   `koanf:"embedded_server"`
	StoreDir         string `koanf:"store_dir"`
	MaxMemory        int64  `koanf:"max_memory"`
	MaxStore         int64  `koanf:"max_store"`
	SubscribersCount int    `koanf:"subscribers_count"`
	DurableName      string `koanf:"durable_name"`
	QueueGroup       string `koanf:"queue_group"`

	// Router middleware settings.
	RetryCount           int           `koanf:"retry_count"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	DeduplicationEnabled bool          `koanf:"deduplication_enabled"`
	DeduplicationTTL     time.Duration `koanf:"deduplication_ttl"`
	PoisonQueueEnabled   bool          `koanf:"poison_queue_enabled"`
	PoisonQueueTopic     string        `koanf:"poison_queue_topic"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// SecurityConfig holds CORS, rate limiting and upload limits.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// MaxUploadBytes caps multipart image uploads.
	// Default: 10MB
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// EngineConfig converts the recommend and profile sections into the ranking
// engine's configuration.
func (c *Config) EngineConfig() *recommend.Config {
	r := c.Recommend
	return &recommend.Config{
		Weights: recommend.Weights{
			Image:         r.Weights.Image,
			Text:          r.Weights.Text,
			CategoryBoost: r.Weights.CategoryBoost,
			PriceDecay:    r.Weights.PriceDecay,
		},
		Thresholds: recommend.ThresholdConfig{
			Similar:             r.SimilarThreshold,
			Personalized:        r.PersonalizedThreshold,
			PersonalizedRelaxed: r.PersonalizedRelaxedThreshold,
			MinPersonalized:     r.MinPersonalized,
		},
		Limits: recommend.LimitsConfig{
			HybridScan:           r.HybridScan,
			PersonalizedScan:     r.PersonalizedScan,
			SearchScan:           r.SearchScan,
			RecentViews:          r.RecentViews,
			EmbeddingViews:       r.EmbeddingViews,
			PriceBandLow:         r.PriceBandLow,
			PriceBandHigh:        r.PriceBandHigh,
			DefaultSimilarK:      r.DefaultSimilarK,
			DefaultHybridK:       r.DefaultHybridK,
			DefaultPersonalizedK: r.DefaultPersonalizedK,
			DefaultTrendingK:     r.DefaultTrendingK,
			DefaultSearchK:       r.DefaultSearchK,
			MaxK:                 r.MaxK,
		},
		Profile: recommend.ProfileConfig{
			MaxViewed:   c.Profiles.MaxViewed,
			MaxWishlist: c.Profiles.MaxWishlist,
		},
		Cache: recommend.CacheConfig{
			Enabled:  r.CacheEnabled,
			TTL:      r.CacheTTL,
			Capacity: r.CacheCapacity,
		},
	}
}
