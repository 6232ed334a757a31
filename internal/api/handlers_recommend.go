// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/validation"
	"github.com/tomtom215/storefront/internal/vector"
)

// sizeParams and limitParams bound result sizes. Zero selects the
// pipeline default.
type sizeParams struct {
	K int `query:"k" validate:"gte=0,lte=100"`
}

type limitParams struct {
	Limit int `query:"limit" validate:"gte=0,lte=100"`
}

// weightParams are the hybrid weight overrides.
type weightParams struct {
	Image         *float64 `query:"image" validate:"omitempty,gte=0,lte=10"`
	Text          *float64 `query:"text" validate:"omitempty,gte=0,lte=10"`
	CategoryBoost *float64 `query:"category_boost" validate:"omitempty,gte=0,lte=10"`
	PriceDecay    *float64 `query:"price_decay" validate:"omitempty,gte=0,lte=10"`
}

// embeddingResponse is the body of the user embedding route.
type embeddingResponse struct {
	UserID    recommend.UserID `json:"user_id"`
	Embedding vector.Vector    `json:"embedding"`
	Dimension int              `json:"dimension"`
}

// pathID reads and checks a path parameter holding a product or user ID.
func pathID(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	id := chi.URLParam(r, key)
	if !validation.IsEntityID(id) {
		respondError(w, r, http.StatusBadRequest, CodeValidation, fmt.Sprintf("%s is not a valid identifier", key), nil)
		return "", false
	}
	return id, true
}

// sizeParam reads the result size from key and validates it.
func sizeParam(w http.ResponseWriter, r *http.Request, key string) (int, bool) {
	k, err := intParam(r, key, 0)
	if err != nil {
		respondServiceError(w, r, err)
		return 0, false
	}
	var params interface{} = &sizeParams{K: k}
	if key == "limit" {
		params = &limitParams{Limit: k}
	}
	if !validateRequest(w, r, params) {
		return 0, false
	}
	return k, true
}

// SimilarProducts serves GET /api/v1/products/{id}/similar?limit=.
func (h *Handler) SimilarProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	k, ok := sizeParam(w, r, "limit")
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	res, err := h.deps.Ranker.SimilarToEntity(ctx, recommend.ProductID(id), k)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

// HybridSimilar serves GET /api/v1/recommendations/products/{id}/similar
// with optional weight overrides.
func (h *Handler) HybridSimilar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	k, ok := sizeParam(w, r, "k")
	if !ok {
		return
	}

	var params weightParams
	var err error
	for key, dst := range map[string]**float64{
		"image":          &params.Image,
		"text":           &params.Text,
		"category_boost": &params.CategoryBoost,
		"price_decay":    &params.PriceDecay,
	} {
		if *dst, err = floatParam(r, key); err != nil {
			respondServiceError(w, r, err)
			return
		}
	}
	if !validateRequest(w, r, &params) {
		return
	}
	override := &recommend.WeightsOverride{
		Image:         params.Image,
		Text:          params.Text,
		CategoryBoost: params.CategoryBoost,
		PriceDecay:    params.PriceDecay,
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	res, err := h.deps.Ranker.HybridSimilarToEntity(ctx, recommend.ProductID(id), k, override)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

// Personalized serves GET /api/v1/recommendations/users/{id}?k=.
func (h *Handler) Personalized(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	k, ok := sizeParam(w, r, "k")
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	res, err := h.deps.Ranker.PersonalizedForUser(ctx, recommend.UserID(id), k)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

// UserEmbedding serves GET /api/v1/recommendations/users/{id}/embedding.
// A shopper without usable history gets a null embedding.
func (h *Handler) UserEmbedding(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	v, err := h.deps.Ranker.UserEmbedding(ctx, recommend.UserID(id))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, embeddingResponse{
		UserID:    recommend.UserID(id),
		Embedding: v,
		Dimension: len(v),
	})
}

// Trending serves GET /api/v1/products/trending?limit=.
func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	k, ok := sizeParam(w, r, "limit")
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()
	res, err := h.deps.Ranker.Trending(ctx, k)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

// SearchByImage serves POST /api/v1/search/image?k= with a multipart
// "image" field.
func (h *Handler) SearchByImage(w http.ResponseWriter, r *http.Request) {
	k, ok := sizeParam(w, r, "k")
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
	res, err := h.deps.Ranker.SearchByImage(ctx, image, k)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, res)
}

// readImage reads the multipart "image" field within the upload limit.
func (h *Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.deps.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.deps.MaxUploadBytes); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, maxBytes
		}
		if errors.Is(err, multipart.ErrMessageTooLarge) {
			return nil, &http.MaxBytesError{Limit: h.deps.MaxUploadBytes}
		}
		return nil, fmt.Errorf("parse multipart form: %w", recommend.ErrInvalidInput)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("image field is required: %w", recommend.ErrInvalidInput)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image is empty: %w", recommend.ErrInvalidInput)
	}
	return data, nil
}
