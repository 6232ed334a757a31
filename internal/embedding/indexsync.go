// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/vector"
)

// VectorIndex is the remote index the syncer keeps up to date.
type VectorIndex interface {
	AddVector(ctx context.Context, productID string, v vector.Vector) error
	RemoveVector(ctx context.Context, productID string) error
}

// ProductReader loads products regardless of their active flag.
type ProductReader interface {
	FindByID(ctx context.Context, id recommend.ProductID) (*recommend.Product, error)
}

const defaultSyncQueueSize = 256

// IndexSyncer mirrors product image vectors into the service's own index.
// It is a recommend.ProductListener: changes are queued and pushed by a
// background worker, so catalog writes never wait on the service. Active
// products with an image vector are added; anything else is removed.
type IndexSyncer struct {
	index    VectorIndex
	products ProductReader
	timeout  time.Duration
	logger   zerolog.Logger

	queue chan recommend.ProductID

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewIndexSyncer creates a syncer with a bounded queue.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewIndexSyncer(index VectorIndex, products ProductReader, timeout time.Duration, logger zerolog.Logger) *IndexSyncer {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &IndexSyncer{
		index:    index,
		products: products,
		timeout:  timeout,
		logger:   logger.With().Str("component", "index-sync").Logger(),
		queue:    make(chan recommend.ProductID, defaultSyncQueueSize),
	}
}

// ProductChanged implements recommend.ProductListener. The change is dropped
// with a warning when the queue is full.
func (s *IndexSyncer) ProductChanged(id recommend.ProductID) {
	select {
	case s.queue <- id:
	default:
		s.logger.Warn().Str("product_id", string(id)).Msg("Index sync queue full, dropping change")
	}
}

// Start launches the sync worker.
func (s *IndexSyncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("index syncer already running")
	}

	workerCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	go s.worker(workerCtx)
	return nil
}

// Stop stops the worker and waits for it to exit. Queued changes remain
// queued for the next Start.
func (s *IndexSyncer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

// IsRunning reports whether the worker is active.
func (s *IndexSyncer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *IndexSyncer) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.queue:
			if err := s.Sync(ctx, id); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Str("product_id", string(id)).Msg("Index sync failed")
			}
		}
	}
}

// Sync pushes the current state of one product to the index.
func (s *IndexSyncer) Sync(ctx context.Context, id recommend.ProductID) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.products.FindByID(ctx, id)
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		return s.index.RemoveVector(ctx, string(id))
	case err != nil:
		return fmt.Errorf("load product: %w", err)
	}

	if !p.Active || p.ImageVector.IsEmpty() {
		return s.index.RemoveVector(ctx, string(id))
	}
	return s.index.AddVector(ctx, string(id), p.ImageVector)
}
