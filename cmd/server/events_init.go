// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/eventprocessor"
	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/supervisor"
	"github.com/tomtom215/storefront/internal/supervisor/services"
)

// eventComponents holds the interaction event pipeline.
type eventComponents struct {
	Server    *eventprocessor.EmbeddedServer // nil unless events.embedded_server
	Transport *eventprocessor.Transport
	Publisher *eventprocessor.Publisher
}

// Close closes the publisher and the transport. The embedded server is
// shut down by its supervisor service.
func (e *eventComponents) Close() {
	e.Publisher.Close()
	if err := e.Transport.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing event transport")
	}
}

// initEvents starts the embedded NATS server when configured, connects the
// transport and adds the server and the event router to the messaging layer.
// The server must accept connections before the transport dials it, so it
// is started here and adopted by its supervisor service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func initEvents(ctx context.Context, cfg *config.Config, core *coreComponents, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*eventComponents, error) {
	ev := &eventComponents{}
	wmLogger := logging.NewWatermillAdapter(logger)

	natsURL := ""
	if cfg.Events.Driver == eventprocessor.DriverNATS && cfg.Events.EmbeddedServer {
		srv, err := eventprocessor.NewEmbeddedServer(&cfg.Events)
		if err != nil {
			return nil, fmt.Errorf("configure embedded NATS server: %w", err)
		}
		if err := srv.Start(ctx); err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		ev.Server = srv
		natsURL = srv.ClientURL()
		tree.AddMessagingService(services.NewEmbeddedNATSService(srv, 0))
		logger.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	}

	transport, err := eventprocessor.NewTransport(&cfg.Events, natsURL, wmLogger)
	if err != nil {
		if ev.Server != nil {
			ev.Server.Shutdown()
		}
		return nil, fmt.Errorf("create event transport: %w", err)
	}
	ev.Transport = transport
	ev.Publisher = eventprocessor.NewPublisher(transport.Publisher)

	var embedder eventprocessor.ImageEmbedder
	if core.Embedding != nil {
		embedder = core.Embedding
	}
	handlers := eventprocessor.NewHandlers(core.Accumulator, core.CatalogService, embedder, logger)
	routerCfg := eventprocessor.RouterConfigFrom(&cfg.Events)

	tree.AddMessagingService(services.NewEventRouterService(func() (services.EventRouter, error) {
		router, err := eventprocessor.NewRouter(&routerCfg, transport.Publisher, wmLogger)
		if err != nil {
			return nil, err
		}
		handlers.Register(router, transport.Subscriber)
		return router, nil
	}))

	logger.Info().
		Str("driver", transport.Driver()).
		Bool("deduplication", routerCfg.DeduplicationEnabled).
		Str("poison_topic", routerCfg.PoisonQueueTopic).
		Msg("Event pipeline configured")
	return ev, nil
}
