// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/vector"
)

// ProfileRecorder applies shopper interactions.
type ProfileRecorder interface {
	EnsureProfile(ctx context.Context, id recommend.UserID) (*recommend.UserProfile, error)
	RecordView(ctx context.Context, userID recommend.UserID, productID recommend.ProductID) (*recommend.UserProfile, error)
	RecordCart(ctx context.Context, productID recommend.ProductID) error
	RecordPurchase(ctx context.Context, productID recommend.ProductID) error
}

// ImageEmbedder computes image embeddings.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, image []byte) (vector.Vector, error)
}

// ImageVectorWriter stores an externally computed image vector.
type ImageVectorWriter interface {
	ReplaceImageVector(ctx context.Context, id recommend.ProductID, v vector.Vector) error
}

// Handlers consume bus events into the profile accumulator and the catalog.
type Handlers struct {
	profiles ProfileRecorder
	images   ImageVectorWriter
	embedder ImageEmbedder
	logger   zerolog.Logger
}

// NewHandlers creates the event handlers. embedder may be nil, in which
// case image upload events are acknowledged without work.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandlers(profiles ProfileRecorder, images ImageVectorWriter, embedder ImageEmbedder, logger zerolog.Logger) *Handlers {
	return &Handlers{
		profiles: profiles,
		images:   images,
		embedder: embedder,
		logger:   logger.With().Str("component", "event-handlers").Logger(),
	}
}

// Register adds one consumer handler per interaction topic, plus the image
// upload handler when an embedder is configured.
func (h *Handlers) Register(r *Router, sub message.Subscriber) {
	for _, topic := range InteractionTopics {
		r.AddConsumerHandler("profile."+topic, topic, sub, h.HandleInteraction)
	}
	if h.embedder != nil {
		r.AddConsumerHandler("embedding."+TopicProductImageUploaded, TopicProductImageUploaded, sub, h.HandleImageUploaded)
	}
}

// permanent reports whether err can never succeed on redelivery.
func permanent(err error) bool {
	var ve *ValidationError
	return errors.Is(err, recommend.ErrNotFound) ||
		errors.Is(err, recommend.ErrInvalidInput) ||
		errors.As(err, &ve)
}

// settle turns a handler outcome into the value returned to the router:
// permanent failures are logged and acknowledged, others are returned for
// retry.
func (h *Handlers) settle(msg *message.Message, topic string, start time.Time, err error) error {
	metrics.RecordEventProcessed(topic, time.Since(start), err)
	if err == nil {
		return nil
	}
	if permanent(err) {
		h.logger.Warn().Err(err).
			Str("topic", topic).
			Str("event_id", msg.Metadata.Get(MetadataEventID)).
			Msg("Dropping event that cannot be applied")
		return nil
	}
	return err
}

// HandleInteraction applies a view, cart or purchase event. Views by a known
// shopper ID create the profile on first sight.
func (h *Handlers) HandleInteraction(msg *message.Message) error {
	start := time.Now()
	topic := message.SubscribeTopicFromCtx(msg.Context())

	var event InteractionEvent
	if err := Unmarshal(msg.Payload, &event); err != nil {
		return h.settle(msg, topic, start, err)
	}
	if topic == "" {
		topic = event.Topic()
	}

	err := h.applyInteraction(msg.Context(), &event)
	metrics.RecordProfileUpdate(string(event.Type), err)
	return h.settle(msg, topic, start, err)
}

func (h *Handlers) applyInteraction(ctx context.Context, event *InteractionEvent) error {
	productID := recommend.ProductID(event.ProductID)
	switch event.Type {
	case InteractionView:
		userID := recommend.UserID(event.UserID)
		if userID != "" {
			if _, err := h.profiles.EnsureProfile(ctx, userID); err != nil {
				return fmt.Errorf("ensure profile: %w", err)
			}
		}
		_, err := h.profiles.RecordView(ctx, userID, productID)
		return err
	case InteractionCart:
		return h.profiles.RecordCart(ctx, productID)
	case InteractionPurchase:
		return h.profiles.RecordPurchase(ctx, productID)
	default:
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown interaction %q", event.Type)}
	}
}

// HandleImageUploaded embeds an uploaded image with the external service
// and replaces the product's image vector. Service failures are retried.
func (h *Handlers) HandleImageUploaded(msg *message.Message) error {
	start := time.Now()
	topic := TopicProductImageUploaded

	var event ImageUploadedEvent
	if err := Unmarshal(msg.Payload, &event); err != nil {
		return h.settle(msg, topic, start, err)
	}

	ctx := msg.Context()
	v, err := h.embedder.EmbedImage(ctx, event.Image)
	if err != nil {
		return h.settle(msg, topic, start, fmt.Errorf("embed image: %w", err))
	}
	err = h.images.ReplaceImageVector(ctx, recommend.ProductID(event.ProductID), v)
	if err == nil {
		h.logger.Info().
			Str("product_id", event.ProductID).
			Int("dimension", len(v)).
			Msg("Image vector upgraded")
	}
	return h.settle(msg, topic, start, err)
}
