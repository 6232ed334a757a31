// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/storefront/internal/metrics"
)

// MetadataEventID is the message metadata key carrying the event ID. The
// router deduplicates on it.
const MetadataEventID = "event_id"

// Publisher serializes events and publishes them on their topic.
type Publisher struct {
	publisher message.Publisher

	mu     sync.RWMutex
	closed bool
}

// NewPublisher wraps a watermill publisher.
func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{publisher: pub}
}

// Publish validates, encodes and publishes event. The event ID becomes the
// message UUID and the JetStream message ID.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	data, err := Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(event.ID(), data)
	msg.Metadata.Set(MetadataEventID, event.ID())
	msg.Metadata.Set(natsgo.MsgIdHdr, event.ID())
	msg.SetContext(ctx)

	topic := event.Topic()
	err = p.publisher.Publish(topic, msg)
	metrics.RecordEventPublished(topic, err)
	if err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishInteraction publishes a shopper interaction.
func (p *Publisher) PublishInteraction(ctx context.Context, t InteractionType, userID, productID string) (*InteractionEvent, error) {
	event := NewInteractionEvent(t, userID, productID)
	if err := p.Publish(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// PublishImageUploaded publishes an image for asynchronous embedding.
func (p *Publisher) PublishImageUploaded(ctx context.Context, productID string, image []byte) (*ImageUploadedEvent, error) {
	event := NewImageUploadedEvent(productID, image)
	if err := p.Publish(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Close marks the publisher closed. The underlying publisher is owned by
// its Transport.
func (p *Publisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
