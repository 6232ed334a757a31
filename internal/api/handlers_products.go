// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/recommend"
)

// maxJSONBody caps JSON request bodies. Base64 images count against it.
const maxJSONBody = 16 << 20

// CreateProductRequest is the body of POST /api/v1/products. Image is an
// optional base64-encoded image.
type CreateProductRequest struct {
	ID          string  `json:"id" validate:"omitempty,entityid"`
	Title       string  `json:"title" validate:"required,max=500"`
	Description string  `json:"description" validate:"max=10000"`
	Category    string  `json:"category" validate:"max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	Image       string  `json:"image,omitempty" validate:"omitempty,base64"`
}

// UpdateProductRequest is the body of PUT /api/v1/products/{id}. Absent
// fields are left unchanged.
type UpdateProductRequest struct {
	Title       *string  `json:"title" validate:"omitempty,min=1,max=500"`
	Description *string  `json:"description" validate:"omitempty,max=10000"`
	Category    *string  `json:"category" validate:"omitempty,max=200"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Active      *bool    `json:"is_active"`
}

// decodeJSON decodes a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return maxBytes
		}
		return fmt.Errorf("malformed JSON body: %w", recommend.ErrInvalidInput)
	}
	return nil
}

// GetProduct serves GET /api/v1/products/{id}.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	p, err := h.deps.Catalog.Get(ctx, recommend.ProductID(id))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

// CreateProduct serves POST /api/v1/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	var image []byte
	if req.Image != "" {
		var err error
		if image, err = base64.StdEncoding.DecodeString(req.Image); err != nil {
			respondServiceError(w, r, fmt.Errorf("image is not valid base64: %w", recommend.ErrInvalidInput))
			return
		}
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	p, err := h.deps.Catalog.Create(ctx, recommend.ProductInput{
		ID:          recommend.ProductID(req.ID),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Image:       image,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if len(image) > 0 {
		h.requestImageEmbedding(ctx, p.ID, image)
	}

	w.Header().Set("Location", "/api/v1/products/"+string(p.ID))
	respondJSON(w, r, http.StatusCreated, p)
}

// UpdateProduct serves PUT /api/v1/products/{id}.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondServiceError(w, r, err)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	p, err := h.deps.Catalog.Update(ctx, recommend.ProductID(id), recommend.ProductPatch{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Active:      req.Active,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, p)
}

// DeactivateProduct serves DELETE /api/v1/products/{id}. Products are
// deactivated, never removed, so history and counters survive.
func (h *Handler) DeactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.deps.Catalog.Deactivate(ctx, recommend.ProductID(id)); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadProductImage serves POST /api/v1/products/{id}/image. The pseudo
// image vector is stored immediately; an external embedding replaces it
// asynchronously when configured.
func (h *Handler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	image, err := h.readImage(w, r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	p, err := h.deps.Catalog.SetImage(ctx, recommend.ProductID(id), image)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	h.requestImageEmbedding(ctx, p.ID, image)
	respondJSON(w, r, http.StatusOK, p)
}

// requestImageEmbedding publishes an image_uploaded event. Failure leaves
// the pseudo vector in place and is only logged.
func (h *Handler) requestImageEmbedding(ctx context.Context, id recommend.ProductID, image []byte) {
	if !h.deps.AsyncImageEmbedding || h.deps.Events == nil {
		return
	}
	if _, err := h.deps.Events.PublishImageUploaded(ctx, string(id), image); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("product_id", string(id)).Msg("Failed to queue image embedding")
	}
}
