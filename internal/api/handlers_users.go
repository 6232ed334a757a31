// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tomtom215/storefront/internal/eventprocessor"
	"github.com/tomtom215/storefront/internal/recommend"
)

// interactionAccepted is the 202 body of a queued interaction.
type interactionAccepted struct {
	EventID   string                         `json:"event_id"`
	Type      eventprocessor.InteractionType `json:"type"`
	UserID    string                         `json:"user_id,omitempty"`
	ProductID string                         `json:"product_id"`
}

// historyResponse lists a shopper's recent views, most recent first.
type historyResponse struct {
	UserID recommend.UserID      `json:"user_id"`
	Items  []recommend.ViewEntry `json:"items"`
}

// wishlistResponse lists a shopper's wishlist, most recent first.
type wishlistResponse struct {
	UserID recommend.UserID          `json:"user_id"`
	Items  []recommend.WishlistEntry `json:"items"`
}

// EnsureUser serves PUT /api/v1/users/{id}, creating an empty profile on
// first use.
func (h *Handler) EnsureUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	u, err := h.deps.Profiles.EnsureProfile(ctx, recommend.UserID(id))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, u)
}

// RecordView serves POST /api/v1/users/{id}/views/{productId}.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	h.interaction(w, r, eventprocessor.InteractionView, true)
}

// RecordAnonymousView serves POST /api/v1/products/{id}/views.
func (h *Handler) RecordAnonymousView(w http.ResponseWriter, r *http.Request) {
	h.interaction(w, r, eventprocessor.InteractionView, false)
}

// RecordCart serves POST /api/v1/users/{id}/cart/{productId}.
func (h *Handler) RecordCart(w http.ResponseWriter, r *http.Request) {
	h.interaction(w, r, eventprocessor.InteractionCart, true)
}

// RecordPurchase serves POST /api/v1/users/{id}/purchases/{productId}.
func (h *Handler) RecordPurchase(w http.ResponseWriter, r *http.Request) {
	h.interaction(w, r, eventprocessor.InteractionPurchase, true)
}

// interaction publishes an interaction event and answers 202. Without a
// publisher the interaction is applied in-line and answered with 200.
func (h *Handler) interaction(w http.ResponseWriter, r *http.Request, t eventprocessor.InteractionType, withUser bool) {
	var userID, productID string
	var ok bool
	if withUser {
		if userID, ok = pathID(w, r, "id"); !ok {
			return
		}
		if productID, ok = pathID(w, r, "productId"); !ok {
			return
		}
	} else if productID, ok = pathID(w, r, "id"); !ok {
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if h.deps.Events != nil {
		event, err := h.deps.Events.PublishInteraction(ctx, t, userID, productID)
		if err != nil {
			respondServiceError(w, r, fmt.Errorf("%w: %w", errEventsUnavailable, err))
			return
		}
		respondJSON(w, r, http.StatusAccepted, interactionAccepted{
			EventID:   event.EventID,
			Type:      t,
			UserID:    userID,
			ProductID: productID,
		})
		return
	}

	profile, err := h.applyInteraction(ctx, t, recommend.UserID(userID), recommend.ProductID(productID))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if profile != nil {
		respondJSON(w, r, http.StatusOK, profile)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{"recorded": true, "type": t, "product_id": productID})
}

func (h *Handler) applyInteraction(ctx context.Context, t eventprocessor.InteractionType, userID recommend.UserID, productID recommend.ProductID) (*recommend.UserProfile, error) {
	switch t {
	case eventprocessor.InteractionView:
		if userID != "" {
			if _, err := h.deps.Profiles.EnsureProfile(ctx, userID); err != nil {
				return nil, err
			}
		}
		return h.deps.Profiles.RecordView(ctx, userID, productID)
	case eventprocessor.InteractionCart:
		return nil, h.deps.Profiles.RecordCart(ctx, productID)
	case eventprocessor.InteractionPurchase:
		return nil, h.deps.Profiles.RecordPurchase(ctx, productID)
	default:
		return nil, fmt.Errorf("unknown interaction %q: %w", t, recommend.ErrInvalidInput)
	}
}

func (h *Handler) loadProfile(w http.ResponseWriter, r *http.Request) (*recommend.UserProfile, bool) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return nil, false
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	u, err := h.deps.Users.FindByID(ctx, recommend.UserID(id))
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}
	return u, true
}

// History serves GET /api/v1/users/{id}/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, historyResponse{UserID: u.ID, Items: nonNil(u.ViewedProducts)})
}

// ClearHistory serves DELETE /api/v1/users/{id}/history.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if _, err := h.deps.Profiles.ClearHistory(ctx, recommend.UserID(id)); err != nil {
		respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Wishlist serves GET /api/v1/users/{id}/wishlist.
func (h *Handler) Wishlist(w http.ResponseWriter, r *http.Request) {
	u, ok := h.loadProfile(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, wishlistResponse{UserID: u.ID, Items: nonNil(u.Wishlist)})
}

// AddToWishlist serves POST /api/v1/users/{id}/wishlist/{productId}. The
// profile is created on first use.
func (h *Handler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if _, err := h.deps.Profiles.EnsureProfile(ctx, recommend.UserID(userID)); err != nil {
		respondServiceError(w, r, err)
		return
	}
	u, err := h.deps.Profiles.AddToWishlist(ctx, recommend.UserID(userID), recommend.ProductID(productID))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, wishlistResponse{UserID: u.ID, Items: nonNil(u.Wishlist)})
}

// RemoveFromWishlist serves DELETE /api/v1/users/{id}/wishlist/{productId}.
func (h *Handler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	u, err := h.deps.Profiles.RemoveFromWishlist(ctx, recommend.UserID(userID), recommend.ProductID(productID))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, wishlistResponse{UserID: u.ID, Items: nonNil(u.Wishlist)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
