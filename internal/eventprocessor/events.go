// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion is the current event schema version.
const SchemaVersion = 1

// Topics carrying shopper interactions and image uploads.
const (
	TopicProductViewed        = "product.viewed"
	TopicProductCarted        = "product.carted"
	TopicProductPurchased     = "product.purchased"
	TopicProductImageUploaded = "product.image_uploaded"
)

// InteractionTopics lists the topics consumed by the profile handler.
var InteractionTopics = []string{TopicProductViewed, TopicProductCarted, TopicProductPurchased}

// InteractionType identifies the kind of shopper interaction.
type InteractionType string

const (
	InteractionView     InteractionType = "view"
	InteractionCart     InteractionType = "cart"
	InteractionPurchase InteractionType = "purchase"
)

// Topic returns the topic events of this type are published on.
func (t InteractionType) Topic() string {
	switch t {
	case InteractionView:
		return TopicProductViewed
	case InteractionCart:
		return TopicProductCarted
	case InteractionPurchase:
		return TopicProductPurchased
	default:
		return ""
	}
}

// InteractionEvent records that a shopper viewed, carted or bought a product.
// UserID is empty for anonymous interactions.
type InteractionEvent struct {
	SchemaVersion int             `json:"schema_version"`
	EventID       string          `json:"event_id"`
	Type          InteractionType `json:"type"`
	UserID        string          `json:"user_id,omitempty"`
	ProductID     string          `json:"product_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewInteractionEvent creates an event with a unique ID and timestamp.
func NewInteractionEvent(t InteractionType, userID, productID string) *InteractionEvent {
	return &InteractionEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		Type:          t,
		UserID:        userID,
		ProductID:     productID,
		Timestamp:     time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e *InteractionEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.Type.Topic() == "" {
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown interaction %q", e.Type)}
	}
	if e.ProductID == "" {
		return &ValidationError{Field: "product_id", Message: "required"}
	}
	return nil
}

// Topic returns the topic for this event.
func (e *InteractionEvent) Topic() string {
	return e.Type.Topic()
}

// ID returns the event ID.
func (e *InteractionEvent) ID() string {
	return e.EventID
}

// ImageUploadedEvent asks for an uploaded product image to be embedded by
// the external service.
type ImageUploadedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventID       string    `json:"event_id"`
	ProductID     string    `json:"product_id"`
	Image         []byte    `json:"image"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewImageUploadedEvent creates an event with a unique ID and timestamp.
func NewImageUploadedEvent(productID string, image []byte) *ImageUploadedEvent {
	return &ImageUploadedEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		ProductID:     productID,
		Image:         image,
		Timestamp:     time.Now().UTC(),
	}
}

// Validate checks required fields.
func (e *ImageUploadedEvent) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.ProductID == "" {
		return &ValidationError{Field: "product_id", Message: "required"}
	}
	if len(e.Image) == 0 {
		return &ValidationError{Field: "image", Message: "required"}
	}
	return nil
}

// Topic returns the topic for this event.
func (e *ImageUploadedEvent) Topic() string {
	return TopicProductImageUploaded
}

// ID returns the event ID.
func (e *ImageUploadedEvent) ID() string {
	return e.EventID
}
