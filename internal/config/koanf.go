// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/storefront/config.yaml",
	"/etc/storefront/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         10 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/storefront.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
		},
		Profiles: ProfilesConfig{
			Path:        "/data/profiles",
			InMemory:    false,
			GCInterval:  10 * time.Minute,
			MaxViewed:   50,
			MaxWishlist: 200,
		},
		Vector: VectorConfig{
			Dimension: 64,
		},
		Recommend: RecommendConfig{
			Weights: WeightsConfig{
				Image:         0.6,
				Text:          0.3,
				CategoryBoost: 0.08,
				PriceDecay:    0.5,
			},
			SimilarThreshold:             0.40,
			PersonalizedThreshold:        0.35,
			PersonalizedRelaxedThreshold: 0.25,
			MinPersonalized:              3,
			HybridScan:                   1000,
			PersonalizedScan:             200,
			SearchScan:                   2000,
			RecentViews:                  30,
			EmbeddingViews:               50,
			PriceBandLow:                 0.5,
			PriceBandHigh:                1.5,
			DefaultSimilarK:              8,
			DefaultHybridK:               12,
			DefaultPersonalizedK:         12,
			DefaultTrendingK:             8,
			DefaultSearchK:               12,
			MaxK:                         100,
			CacheEnabled:                 true,
			CacheTTL:                     time.Minute,
			CacheCapacity:                1024,
		},
		Embedding: EmbeddingConfig{
			Enabled:                 false, // Folding vectors only by default
			URL:                     "http://localhost:8200",
			Timeout:                 20 * time.Second,
			SyncIndex:               true,
			RateLimit:               20,
			RateBurst:               5,
			BreakerMaxRequests:      3,
			BreakerInterval:         time.Minute,
			BreakerTimeout:          30 * time.Second,
			BreakerFailureThreshold: 5,
		},
		Events: EventsConfig{
			Driver:               "memory",
			NATSURL:              "nats://127.0.0.1:4222",
			EmbeddedServer:       false,
			StoreDir:             "/data/nats/jetstream",
			MaxMemory:            256 << 20, // 256MB
			MaxStore:             1 << 30,   // 1GB
			SubscribersCount:     4,
			DurableName:          "storefront-profiles",
			QueueGroup:           "profiles",
			RetryCount:           3,
			RetryInitialInterval: 100 * time.Millisecond,
			DeduplicationEnabled: true,
			DeduplicationTTL:     5 * time.Minute,
			PoisonQueueEnabled:   true,
			PoisonQueueTopic:     "storefront.poison",
			CloseTimeout:         30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			MaxUploadBytes:    10 << 20, // 10MB
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Default returns the default configuration without reading files or the environment.
func Default() *Config {
	return defaultConfig()
}

// LoadWithKoanf loads configuration using Koanf with layered sources:
//  1. Struct defaults
//  2. YAML config file (CONFIG_PATH or DefaultConfigPaths), optional
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// EMBEDDING_DIM -> vector.dimension, ML_SERVICE_URL -> embedding.url
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file path, or "" when none exists.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are koanf paths holding string slices that may arrive as
// comma-separated environment values.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated strings into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	// Profiles
	"profile_store_path":      "profiles.path",
	"profile_store_in_memory": "profiles.in_memory",
	"profile_gc_interval":     "profiles.gc_interval",
	"profile_max_viewed":      "profiles.max_viewed",
	"profile_max_wishlist":    "profiles.max_wishlist",

	// Vectors
	"embedding_dim": "vector.dimension",

	// Recommendation engine
	"recommend_weight_image":           "recommend.weights.image",
	"recommend_weight_text":            "recommend.weights.text",
	"recommend_weight_category":        "recommend.weights.category_boost",
	"recommend_weight_price":           "recommend.weights.price_decay",
	"recommend_similar_threshold":      "recommend.similar_threshold",
	"recommend_personalized_threshold": "recommend.personalized_threshold",
	"recommend_relaxed_threshold":      "recommend.personalized_relaxed_threshold",
	"recommend_min_personalized":       "recommend.min_personalized",
	"recommend_hybrid_scan":            "recommend.hybrid_scan",
	"recommend_personalized_scan":      "recommend.personalized_scan",
	"recommend_search_scan":            "recommend.search_scan",
	"recommend_recent_views":           "recommend.recent_views",
	"recommend_max_k":                  "recommend.max_k",
	"recommend_cache_enabled":          "recommend.cache_enabled",
	"recommend_cache_ttl":              "recommend.cache_ttl",
	"recommend_cache_capacity":         "recommend.cache_capacity",

	// Embedding service
	"ml_service_enabled":           "embedding.enabled",
	"ml_service_url":               "embedding.url",
	"ml_service_timeout":           "embedding.timeout",
	"ml_service_sync_index":        "embedding.sync_index",
	"ml_service_rate_limit":        "embedding.rate_limit",
	"ml_service_rate_burst":        "embedding.rate_burst",
	"ml_service_breaker_timeout":   "embedding.breaker_timeout",
	"ml_service_breaker_failures":  "embedding.breaker_failure_threshold",
	"ml_service_breaker_interval":  "embedding.breaker_interval",
	"ml_service_breaker_half_open": "embedding.breaker_max_requests",

	// Events
	"events_driver":         "events.driver",
	"nats_url":              "events.nats_url",
	"nats_embedded":         "events.embedded_server",
	"nats_store_dir":        "events.store_dir",
	"nats_max_memory":       "events.max_memory",
	"nats_max_store":        "events.max_store",
	"nats_subscribers":      "events.subscribers_count",
	"nats_durable_name":     "events.durable_name",
	"nats_queue_group":      "events.queue_group",
	"events_retry_count":    "events.retry_count",
	"events_retry_interval": "events.retry_initial_interval",
	"events_dedup_enabled":  "events.deduplication_enabled",
	"events_dedup_ttl":      "events.deduplication_ttl",
	"events_poison_enabled": "events.poison_queue_enabled",
	"events_poison_topic":   "events.poison_queue_topic",
	"events_close_timeout":  "events.close_timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"max_upload_bytes":    "security.max_upload_bytes",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
