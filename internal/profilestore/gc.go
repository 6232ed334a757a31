// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package profilestore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/storefront/internal/logging"
)

// Compactor periodically runs value log GC on a Store.
type Compactor struct {
	store    *Store
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewCompactor creates a compactor running every interval (default 10m).
func NewCompactor(store *Store, interval time.Duration) *Compactor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Compactor{store: store, interval: interval}
}

// Start launches the compaction loop.
func (c *Compactor) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("compactor already running")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.wg.Add(1)
	go c.loop(loopCtx)
	return nil
}

func (c *Compactor) loop(ctx context.Context) {
	defer c.wg.Done()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.store.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Profile store GC failed")
			}
		}
	}
}

// Stop stops the loop and waits for it to exit.
func (c *Compactor) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
}

// IsRunning reports whether the loop is active.
func (c *Compactor) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
