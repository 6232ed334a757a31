// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// EmbeddedServer is the in-process NATS server lifecycle.
//
// Satisfied by *eventprocessor.EmbeddedServer.
type EmbeddedServer interface {
	Start(ctx context.Context) error
	Shutdown()
	IsRunning() bool
}

// EmbeddedNATSService keeps the embedded NATS server up. The server may
// already be running when Serve is called, since publishers need it before
// the tree starts. A server that stops on its own is reported as a failure
// so suture restarts it; clients reconnect on their own.
type EmbeddedNATSService struct {
	server        EmbeddedServer
	checkInterval time.Duration
	name          string
}

// NewEmbeddedNATSService wraps server. A non-positive checkInterval uses 5s.
func NewEmbeddedNATSService(server EmbeddedServer, checkInterval time.Duration) *EmbeddedNATSService {
	if checkInterval <= 0 {
		checkInterval = 5 * time.Second
	}
	return &EmbeddedNATSService{server: server, checkInterval: checkInterval, name: "nats-server"}
}

// Serve implements suture.Service.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	if !s.server.IsRunning() {
		if err := s.server.Start(ctx); err != nil {
			return fmt.Errorf("NATS server start failed: %w", err)
		}
	}

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.server.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			if !s.server.IsRunning() {
				s.server.Shutdown()
				return errors.New("NATS server stopped unexpectedly")
			}
		}
	}
}

// String implements fmt.Stringer for suture's log messages.
func (s *EmbeddedNATSService) String() string {
	return s.name
}

// EventRouter is a runnable event router.
//
// Satisfied by *eventprocessor.Router.
type EventRouter interface {
	Run(ctx context.Context) error
	Close() error
}

// RouterFactory builds a router with its handlers registered.
type RouterFactory func() (EventRouter, error)

// EventRouterService runs an event router built fresh on every start.
type EventRouterService struct {
	build RouterFactory
	name  string
}

// NewEventRouterService creates the service around build.
func NewEventRouterService(build RouterFactory) *EventRouterService {
	return &EventRouterService{build: build, name: "event-router"}
}

// Serve implements suture.Service.
func (s *EventRouterService) Serve(ctx context.Context) error {
	router, err := s.build()
	if err != nil {
		return fmt.Errorf("build event router: %w", err)
	}

	runErr := router.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	_ = router.Close()
	if runErr != nil {
		return fmt.Errorf("event router failed: %w", runErr)
	}
	return errors.New("event router stopped unexpectedly")
}

// String implements fmt.Stringer for suture's log messages.
func (s *EventRouterService) String() string {
	return s.name
}
