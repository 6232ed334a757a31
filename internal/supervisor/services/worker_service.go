// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package services

import (
	"context"
	"fmt"
)

// StartStopper is a background worker with a Start/Stop lifecycle.
//
// Satisfied by *profilestore.Compactor and *embedding.IndexSyncer.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// WorkerService runs a StartStopper under supervision:
//  1. Start(ctx) spawns the worker goroutine
//  2. Serve blocks until ctx is canceled
//  3. Stop() waits for the goroutine to exit
type WorkerService struct {
	worker StartStopper
	name   string
}

// NewWorkerService wraps worker under the given service name.
func NewWorkerService(name string, worker StartStopper) *WorkerService {
	return &WorkerService{worker: worker, name: name}
}

// Serve implements suture.Service.
func (s *WorkerService) Serve(ctx context.Context) error {
	if err := s.worker.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()
	s.worker.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for suture's log messages.
func (s *WorkerService) String() string {
	return s.name
}
