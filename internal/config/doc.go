// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package config provides centralized configuration management for Storefront.

# Configuration Sources

Configuration is layered with Koanf, later layers overriding earlier ones:
  - Struct defaults (defaultConfig)
  - YAML file: CONFIG_PATH, else config.yaml / /etc/storefront/config.yaml
  - Environment variables through an explicit mapping (envTransformFunc)

The binaries load a .env file into the process environment before calling
LoadWithKoanf, so local development can keep settings next to the code.

# Configuration Structure

  - ServerConfig: HTTP listener and timeouts
  - DatabaseConfig: DuckDB catalog
  - ProfilesConfig: BadgerDB user profiles and history bounds
  - VectorConfig: folding vector dimension
  - RecommendConfig: weights, thresholds, scan caps, result sizes, caching
  - EmbeddingConfig: external embedding service client
  - EventsConfig: watermill transport and router middleware
  - SecurityConfig: CORS, rate limiting, upload size
  - LoggingConfig: zerolog level and format

# Environment Variables

Server:
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_TIMEOUT: Per-request timeout (default: 10s)

Storage:
  - DUCKDB_PATH: Catalog database file (default: /data/storefront.duckdb)
  - PROFILE_STORE_PATH: BadgerDB directory (default: /data/profiles)

Vectors and ranking:
  - EMBEDDING_DIM: Folding vector dimension (default: 64)
  - RECOMMEND_SIMILAR_THRESHOLD: Similar-product cut-off (default: 0.40)
  - RECOMMEND_CACHE_TTL: Result cache TTL (default: 1m)

Embedding service:
  - ML_SERVICE_ENABLED: Use the external service for image vectors (default: false)
  - ML_SERVICE_URL: Service base URL (default: http://localhost:8200)

Events:
  - EVENTS_DRIVER: memory or nats (default: memory)
  - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
  - NATS_EMBEDDED: Run an embedded NATS server (default: false)

Security and logging:
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Per-IP limit (default: 100 per 1m)
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
*/
package config
