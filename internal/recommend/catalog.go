// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/vector"
)

// ProductListener is notified after a product is written.
type ProductListener interface {
	ProductChanged(productID ProductID)
}

// ProductInput carries the fields of a new product.
type ProductInput struct {
	ID          ProductID
	Title       string
	Description string
	Category    string
	Price       float64

	// Image, when present, is folded into a pseudo image vector.
	Image []byte
}

// ProductPatch carries optional field changes. Nil fields are left unchanged.
type ProductPatch struct {
	Title       *string
	Description *string
	Category    *string
	Price       *float64
	Active      *bool
}

// CatalogService owns product writes. It keeps the text vector in step with
// the title and description and derives a first image vector from uploaded
// bytes; a better image vector may replace it later through
// ReplaceImageVector.
type CatalogService struct {
	catalog   CatalogRepository
	source    vector.Source
	logger    zerolog.Logger
	now       func() time.Time
	listeners []ProductListener
}

// NewCatalogService creates a service computing vectors with source.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCatalogService(catalog CatalogRepository, source vector.Source, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		source:  source,
		logger:  logger.With().Str("component", "catalog").Logger(),
		now:     time.Now,
	}
}

// AddListener registers a change listener.
func (s *CatalogService) AddListener(l ProductListener) {
	s.listeners = append(s.listeners, l)
}

func (s *CatalogService) notify(id ProductID) {
	for _, l := range s.listeners {
		l.ProductChanged(id)
	}
}

// Get returns an active product.
func (s *CatalogService) Get(ctx context.Context, id ProductID) (*Product, error) {
	return s.catalog.FindActiveByID(ctx, id)
}

// Create stores a new active product. An empty ID is replaced by a UUID.
func (s *CatalogService) Create(ctx context.Context, in ProductInput) (*Product, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if in.Price < 0 {
		return nil, fmt.Errorf("price must be non-negative: %w", ErrInvalidInput)
	}

	id := in.ID
	if id == "" {
		id = ProductID(uuid.NewString())
	} else if _, err := s.catalog.FindByID(ctx, id); err == nil {
		return nil, fmt.Errorf("product %s already exists: %w", id, ErrInvalidInput)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get product: %w", err)
	}

	now := s.now()
	p := &Product{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.refreshTextVector(ctx, p); err != nil {
		return nil, err
	}
	if len(in.Image) > 0 {
		v, err := s.source.ImageVector(ctx, in.Image)
		if err != nil {
			return nil, fmt.Errorf("image vector: %w", err)
		}
		p.ImageVector = v
	}

	if err := s.catalog.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.notify(p.ID)

	s.logger.Info().
		Str("product_id", string(p.ID)).
		Str("category", p.Category).
		Bool("has_image", !p.ImageVector.IsEmpty()).
		Msg("Product created")
	return p, nil
}

// Update applies patch to an active product. The text vector is recomputed
// when the title or description changes.
func (s *CatalogService) Update(ctx context.Context, id ProductID, patch ProductPatch) (*Product, error) {
	p, err := s.catalog.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	textChanged := false
	if patch.Title != nil {
		if strings.TrimSpace(*patch.Title) == "" {
			return nil, fmt.Errorf("title must not be empty: %w", ErrInvalidInput)
		}
		textChanged = textChanged || *patch.Title != p.Title
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		textChanged = textChanged || *patch.Description != p.Description
		p.Description = *patch.Description
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, fmt.Errorf("price must be non-negative: %w", ErrInvalidInput)
		}
		p.Price = *patch.Price
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}

	if textChanged {
		if err := s.refreshTextVector(ctx, p); err != nil {
			return nil, err
		}
	}
	p.UpdatedAt = s.now()

	if err := s.catalog.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.notify(id)
	return p, nil
}

// SetImage replaces an active product's image vector with one derived from data.
func (s *CatalogService) SetImage(ctx context.Context, id ProductID, data []byte) (*Product, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image: %w", ErrInvalidInput)
	}
	p, err := s.catalog.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}

	v, err := s.source.ImageVector(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("image vector: %w", err)
	}
	p.ImageVector = v
	p.UpdatedAt = s.now()

	if err := s.catalog.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	s.notify(id)
	return p, nil
}

// ReplaceImageVector stores an externally computed image vector. Inactive
// products are updated too, so a later reactivation keeps the better vector.
func (s *CatalogService) ReplaceImageVector(ctx context.Context, id ProductID, v vector.Vector) error {
	if v.IsEmpty() {
		return fmt.Errorf("empty image vector: %w", ErrInvalidInput)
	}
	p, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p.ImageVector = v.Clone()
	p.UpdatedAt = s.now()

	if err := s.catalog.Save(ctx, p); err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	s.notify(id)
	return nil
}

// Deactivate hides a product from every pipeline.
func (s *CatalogService) Deactivate(ctx context.Context, id ProductID) error {
	inactive := false
	_, err := s.Update(ctx, id, ProductPatch{Active: &inactive})
	return err
}

// Reindex recomputes the text vector of p with the service's source.
func (s *CatalogService) Reindex(ctx context.Context, p *Product) error {
	if err := s.refreshTextVector(ctx, p); err != nil {
		return err
	}
	p.UpdatedAt = s.now()
	if err := s.catalog.Save(ctx, p); err != nil {
		return fmt.Errorf("save product: %w", err)
	}
	s.notify(p.ID)
	return nil
}

func (s *CatalogService) refreshTextVector(ctx context.Context, p *Product) error {
	v, err := s.source.TextVector(ctx, p.ContentText())
	if err != nil {
		return fmt.Errorf("text vector: %w", err)
	}
	p.TextVector = v
	return nil
}
