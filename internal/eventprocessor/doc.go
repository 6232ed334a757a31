// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

/*
Package eventprocessor carries shopper interactions and image uploads over a
Watermill message bus.

# Topics

	product.viewed          InteractionEvent{type: "view"}
	product.carted          InteractionEvent{type: "cart"}
	product.purchased       InteractionEvent{type: "purchase"}
	product.image_uploaded  ImageUploadedEvent

Payloads are JSON encoded with goccy/go-json. The event ID is used as the
message UUID, the "event_id" metadata value and the JetStream Nats-Msg-Id,
so redeliveries are dropped both by JetStream and by the router.

# Transports

The "memory" driver uses Watermill's gochannel pub/sub and needs nothing
else. The "nats" driver uses watermill-nats over JetStream, either against
an external server or against EmbeddedServer.

# Router

Router applies, outer to inner: PoisonQueue, Recoverer, Retry with
exponential backoff, and Deduplicator backed by an LRU cache. Handlers
acknowledge events that can never succeed (unknown product, invalid payload)
and return other errors for retry.

# Usage

	transport, _ := eventprocessor.NewTransport(&cfg.Events, "", wmLogger)
	rc := eventprocessor.RouterConfigFrom(&cfg.Events)
	router, _ := eventprocessor.NewRouter(&rc, transport.Publisher, wmLogger)
	eventprocessor.NewHandlers(accumulator, catalog, embedder, logger).Register(router, transport.Subscriber)
	go router.Run(ctx)

	pub := eventprocessor.NewPublisher(transport.Publisher)
	pub.PublishInteraction(ctx, eventprocessor.InteractionView, "u1", "p1")
*/
package eventprocessor
