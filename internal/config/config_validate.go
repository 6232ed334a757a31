// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package config

import (
	"fmt"
	"net/url"
	"time"
)

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

var validEventDrivers = map[string]bool{
	"memory": true,
	"nats":   true,
}

// Rate limit bounds
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Vector dimension bounds
const (
	minVectorDimension = 2
	maxVectorDimension = 4096
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateProfiles,
		c.validateVector,
		c.validateRecommend,
		c.validateEmbedding,
		c.validateEvents,
		c.validateSecurity,
		c.validateLogging,
	}

	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative")
	}
	return nil
}

func (c *Config) validateProfiles() error {
	if !c.Profiles.InMemory && c.Profiles.Path == "" {
		return fmt.Errorf("PROFILE_STORE_PATH is required unless PROFILE_STORE_IN_MEMORY=true")
	}
	if c.Profiles.MaxViewed < 1 {
		return fmt.Errorf("PROFILE_MAX_VIEWED must be positive")
	}
	if c.Profiles.MaxWishlist < 1 {
		return fmt.Errorf("PROFILE_MAX_WISHLIST must be positive")
	}
	return nil
}

func (c *Config) validateVector() error {
	if c.Vector.Dimension < minVectorDimension || c.Vector.Dimension > maxVectorDimension {
		return fmt.Errorf("EMBEDDING_DIM must be between %d and %d", minVectorDimension, maxVectorDimension)
	}
	return nil
}

// validateRecommend delegates range checks to the engine's own validation.
func (c *Config) validateRecommend() error {
	if err := c.EngineConfig().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	if !c.Embedding.Enabled {
		return nil
	}
	if err := validateHTTPURL(c.Embedding.URL); err != nil {
		return fmt.Errorf("ML_SERVICE_URL is invalid: %w", err)
	}
	if c.Embedding.Timeout <= 0 {
		return fmt.Errorf("ML_SERVICE_TIMEOUT must be positive")
	}
	if c.Embedding.RateLimit < 0 || c.Embedding.RateBurst < 0 {
		return fmt.Errorf("ML_SERVICE_RATE_LIMIT and ML_SERVICE_RATE_BURST must be non-negative")
	}
	if c.Embedding.BreakerFailureThreshold == 0 {
		return fmt.Errorf("ML_SERVICE_BREAKER_FAILURES must be positive")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if !validEventDrivers[c.Events.Driver] {
		return fmt.Errorf("EVENTS_DRIVER must be one of: memory, nats")
	}
	if c.Events.RetryCount < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must be non-negative")
	}
	if c.Events.DeduplicationEnabled && c.Events.DeduplicationTTL <= 0 {
		return fmt.Errorf("EVENTS_DEDUP_TTL must be positive when deduplication is enabled")
	}
	if c.Events.PoisonQueueEnabled && c.Events.PoisonQueueTopic == "" {
		return fmt.Errorf("EVENTS_POISON_TOPIC is required when the poison queue is enabled")
	}
	if c.Events.Driver != "nats" {
		return nil
	}
	if err := validateNATSURL(c.Events.NATSURL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	if c.Events.SubscribersCount < 1 || c.Events.SubscribersCount > 32 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be between 1 and 32")
	}
	if c.Events.EmbeddedServer && c.Events.StoreDir == "" {
		return fmt.Errorf("NATS_STORE_DIR is required for the embedded server")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateCORS(); err != nil {
		return err
	}
	if c.Security.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive")
	}
	return c.validateRateLimits()
}

// validateCORS rejects wildcard origins in production.
func (c *Config) validateCORS() error {
	if c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production; " +
			"set specific origins, e.g. CORS_ORIGINS=https://shop.example.com")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func validateNATSURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	validSchemes := map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("scheme must be nats, tls, ws, or wss, got: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:4222)")
	}
	return nil
}

func validateHTTPURL(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got: %s", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("host is required (e.g., localhost:8200)")
	}
	return nil
}
