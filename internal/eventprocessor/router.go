// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/storefront/internal/cache"
	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/metrics"
)

// RouterConfig holds configuration for the Watermill Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	// Retry configuration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonQueueTopic receives messages that fail after all retries.
	// Empty disables the poison queue.
	PoisonQueueTopic string

	// Deduplication configuration
	DeduplicationEnabled  bool
	DeduplicationTTL      time.Duration
	DeduplicationCapacity int
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:          30 * time.Second,
		RetryMaxRetries:       3,
		RetryInitialInterval:  100 * time.Millisecond,
		RetryMaxInterval:      10 * time.Second,
		RetryMultiplier:       2.0,
		PoisonQueueTopic:      "dlq.storefront",
		DeduplicationEnabled:  true,
		DeduplicationTTL:      5 * time.Minute,
		DeduplicationCapacity: 10000,
	}
}

// RouterConfigFrom maps the events config section onto a RouterConfig.
func RouterConfigFrom(cfg *config.EventsConfig) RouterConfig {
	rc := DefaultRouterConfig()
	if cfg.CloseTimeout > 0 {
		rc.CloseTimeout = cfg.CloseTimeout
	}
	if cfg.RetryCount >= 0 {
		rc.RetryMaxRetries = cfg.RetryCount
	}
	if cfg.RetryInitialInterval > 0 {
		rc.RetryInitialInterval = cfg.RetryInitialInterval
	}
	rc.DeduplicationEnabled = cfg.DeduplicationEnabled
	if cfg.DeduplicationTTL > 0 {
		rc.DeduplicationTTL = cfg.DeduplicationTTL
	}
	rc.PoisonQueueTopic = ""
	if cfg.PoisonQueueEnabled {
		rc.PoisonQueueTopic = cfg.PoisonQueueTopic
	}
	return rc
}

// Deduplicator implements middleware.ExpiringKeyRepository on an LRU cache.
// Keys have the form "<topic>|<event id>".
type Deduplicator struct {
	seen *cache.LRU[struct{}]
}

// NewDeduplicator creates a deduplicator remembering up to capacity keys for ttl.
func NewDeduplicator(capacity int, ttl time.Duration) *Deduplicator {
	if capacity <= 0 {
		capacity = 10000
	}
	return &Deduplicator{seen: cache.NewLRU[struct{}](capacity, ttl)}
}

// IsDuplicate reports whether key was seen within the TTL and records it otherwise.
func (d *Deduplicator) IsDuplicate(_ context.Context, key string) (bool, error) {
	dup := d.seen.SeenBefore(key)
	if dup {
		topic, _, _ := strings.Cut(key, "|")
		metrics.RecordEventDuplicate(topic)
	}
	return dup, nil
}

// dedupKey prefers the event ID metadata and falls back to the message UUID.
func dedupKey(msg *message.Message) (string, error) {
	id := msg.Metadata.Get(MetadataEventID)
	if id == "" {
		id = msg.UUID
	}
	return message.SubscribeTopicFromCtx(msg.Context()) + "|" + id, nil
}

// Router wraps the Watermill Router with pre-configured middleware.
// Middleware order, outer to inner: deduplicator, poison queue, recoverer,
// retry. Retry attempts never pass through the deduplicator. Handler errors are retried with backoff; messages
// that still fail go to the poison queue when one is configured.
type Router struct {
	router   *message.Router
	config   RouterConfig
	logger   watermill.LoggerAdapter
	handlers map[string]*message.Handler
	running  atomic.Bool
}

// NewRouter creates a Router. poisonPublisher may be nil.
func NewRouter(cfg *RouterConfig, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*Router, error) {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	if cfg == nil {
		defaultCfg := DefaultRouterConfig()
		cfg = &defaultCfg
	}

	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	r := &Router{
		router:   wmRouter,
		config:   *cfg,
		logger:   logger,
		handlers: make(map[string]*message.Handler),
	}

	if cfg.DeduplicationEnabled {
		dedup := middleware.Deduplicator{
			KeyFactory: dedupKey,
			Repository: NewDeduplicator(cfg.DeduplicationCapacity, cfg.DeduplicationTTL),
		}
		wmRouter.AddMiddleware(dedup.Middleware)
	}

	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPublisher, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	wmRouter.AddMiddleware(middleware.Recoverer)

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware)

	return r, nil
}

// AddConsumerHandler registers a handler that produces no output messages.
func (r *Router) AddConsumerHandler(name, topic string, subscriber message.Subscriber, handler message.NoPublishHandlerFunc) *message.Handler {
	h := r.router.AddConsumerHandler(name, topic, subscriber, handler)
	r.handlers[name] = h
	return h
}

// Handlers returns the registered handler names.
func (r *Router) Handlers() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// Run starts the router and blocks until ctx is canceled or Close is called.
func (r *Router) Run(ctx context.Context) error {
	r.running.Store(true)
	defer r.running.Store(false)
	return r.router.Run(ctx)
}

// Running returns a channel that closes when the router is running.
func (r *Router) Running() <-chan struct{} {
	return r.router.Running()
}

// Close gracefully stops the router, waiting up to CloseTimeout for
// in-flight messages.
func (r *Router) Close() error {
	return r.router.Close()
}

// IsRunning reports whether the router is processing messages.
func (r *Router) IsRunning() bool {
	return r.running.Load()
}
