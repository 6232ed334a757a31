// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"

	"github.com/tomtom215/storefront/internal/config"
)

// EmbeddedServer runs an in-process NATS JetStream server for single-node
// deployments.
type EmbeddedServer struct {
	opts *server.Options

	mu        sync.Mutex
	server    *server.Server
	clientURL string
}

// NewEmbeddedServer prepares a server listening on the host and port of
// cfg.NATSURL. Start launches it.
func NewEmbeddedServer(cfg *config.EventsConfig) (*EmbeddedServer, error) {
	host, port, err := hostPort(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	return &EmbeddedServer{
		opts: &server.Options{
			ServerName:         "storefront-events",
			Host:               host,
			Port:               port,
			JetStream:          true,
			StoreDir:           cfg.StoreDir,
			JetStreamMaxMemory: cfg.MaxMemory,
			JetStreamMaxStore:  cfg.MaxStore,
			NoSigs:             true,
			MaxPayload:         8 * 1024 * 1024, // image upload events carry the image
		},
	}, nil
}

// Start launches the server and waits up to 30 seconds for it to accept
// connections.
func (s *EmbeddedServer) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return fmt.Errorf("NATS server already running")
	}

	ns, err := server.NewServer(s.opts)
	if err != nil {
		return fmt.Errorf("create NATS server: %w", err)
	}
	ns.ConfigureLogger()

	go ns.Start()

	if !ns.ReadyForConnections(30 * time.Second) {
		ns.Shutdown()
		return fmt.Errorf("NATS server not ready within timeout")
	}
	s.server = ns
	s.clientURL = ns.ClientURL()
	return nil
}

// Shutdown stops the server and waits for it to exit.
func (s *EmbeddedServer) Shutdown() {
	s.mu.Lock()
	ns := s.server
	s.server = nil
	s.mu.Unlock()

	if ns == nil {
		return
	}
	ns.Shutdown()
	ns.WaitForShutdown()
}

// IsRunning reports server health.
func (s *EmbeddedServer) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.server != nil && s.server.Running()
}

// ClientURL returns the URL clients connect to, once started.
func (s *EmbeddedServer) ClientURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clientURL
}

func hostPort(rawURL string) (string, int, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", 0, fmt.Errorf("parse NATS URL: %w: %w", ErrInvalidConfig, err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		return "", 0, fmt.Errorf("NATS URL %q: %w", rawURL, ErrInvalidConfig)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("NATS URL port %q: %w", portStr, ErrInvalidConfig)
	}
	return host, port, nil
}
