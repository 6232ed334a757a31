// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/storefront/internal/eventprocessor"
	"github.com/tomtom215/storefront/internal/middleware"
	"github.com/tomtom215/storefront/internal/recommend"
)

var errEventsUnavailable = errors.New("event publisher unavailable")

// Catalog is the product write surface used by the catalog routes.
type Catalog interface {
	Get(ctx context.Context, id recommend.ProductID) (*recommend.Product, error)
	Create(ctx context.Context, in recommend.ProductInput) (*recommend.Product, error)
	Update(ctx context.Context, id recommend.ProductID, patch recommend.ProductPatch) (*recommend.Product, error)
	SetImage(ctx context.Context, id recommend.ProductID, data []byte) (*recommend.Product, error)
	Deactivate(ctx context.Context, id recommend.ProductID) error
}

// Profiles mutates shopper profiles.
type Profiles interface {
	EnsureProfile(ctx context.Context, id recommend.UserID) (*recommend.UserProfile, error)
	RecordView(ctx context.Context, userID recommend.UserID, productID recommend.ProductID) (*recommend.UserProfile, error)
	RecordCart(ctx context.Context, productID recommend.ProductID) error
	RecordPurchase(ctx context.Context, productID recommend.ProductID) error
	AddToWishlist(ctx context.Context, userID recommend.UserID, productID recommend.ProductID) (*recommend.UserProfile, error)
	RemoveFromWishlist(ctx context.Context, userID recommend.UserID, productID recommend.ProductID) (*recommend.UserProfile, error)
	ClearHistory(ctx context.Context, userID recommend.UserID) (*recommend.UserProfile, error)
}

// ProfileReader loads shopper profiles.
type ProfileReader interface {
	FindByID(ctx context.Context, id recommend.UserID) (*recommend.UserProfile, error)
}

// EventPublisher publishes interactions and image uploads to the bus.
type EventPublisher interface {
	PublishInteraction(ctx context.Context, t eventprocessor.InteractionType, userID, productID string) (*eventprocessor.InteractionEvent, error)
	PublishImageUploaded(ctx context.Context, productID string, image []byte) (*eventprocessor.ImageUploadedEvent, error)
}

// HealthCheck is a named readiness dependency.
type HealthCheck struct {
	Name string
	// Check returns nil when the dependency is usable.
	Check func(ctx context.Context) error
	// Optional checks are reported but do not fail readiness.
	Optional bool
}

// Deps are the collaborators of the API handlers. Events and Performance
// may be nil.
type Deps struct {
	Ranker   recommend.Ranker
	Catalog  Catalog
	Profiles Profiles
	Users    ProfileReader
	Events   EventPublisher

	// AsyncImageEmbedding publishes an image_uploaded event after each image
	// upload so the external service can replace the pseudo vector.
	AsyncImageEmbedding bool

	HealthChecks []HealthCheck
	Performance  *middleware.PerformanceMonitor

	// RequestTimeout bounds ranking and catalog work per request.
	RequestTimeout time.Duration
	// MaxUploadBytes caps multipart image uploads.
	MaxUploadBytes int64
	Version        string
}

// Handler serves the API routes.
type Handler struct {
	deps      Deps
	startTime time.Time
}

// NewHandler creates the API handler.
func NewHandler(deps Deps) *Handler {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 10 * time.Second
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 10 << 20
	}
	return &Handler{deps: deps, startTime: time.Now()}
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, h.deps.RequestTimeout)
}
