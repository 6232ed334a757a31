// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import (
	"time"

	"github.com/tomtom215/storefront/internal/vector"
)

// ProductID identifies a catalog entity. It is opaque to the engine.
type ProductID string

// UserID identifies a shopper profile. It is opaque to the engine.
type UserID string

// Product is a catalog entity as seen by the ranking code.
type Product struct {
	// ID is the unique product identifier.
	ID ProductID `json:"id"`

	// Title and Description feed the text vector.
	Title       string `json:"title"`
	Description string `json:"description"`

	// Category is the merchandising category used by candidate pools.
	Category string `json:"category"`

	// Price is non-negative. A negative price is treated as unknown by the price score.
	Price float64 `json:"price"`

	// Active controls visibility; inactive products never appear in results.
	Active bool `json:"is_active"`

	// ImageVector is the image-like signal (pseudo or externally supplied).
	ImageVector vector.Vector `json:"image_vector,omitempty"`

	// TextVector is the text-like signal computed from Title and Description.
	TextVector vector.Vector `json:"text_vector,omitempty"`

	// Popularity counters, mutated only through PopularityUpdate commands.
	ViewsCount      int64   `json:"views_count"`
	AddToCartCount  int64   `json:"add_to_cart_count"`
	PurchaseCount   int64   `json:"purchase_count"`
	PopularityScore float64 `json:"popularity_score"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PreferredVector returns the image vector when present, otherwise the text vector.
func (p *Product) PreferredVector() vector.Vector {
	if p == nil {
		return nil
	}
	if !p.ImageVector.IsEmpty() {
		return p.ImageVector
	}
	return p.TextVector
}

// HasVector reports whether the product carries any non-empty vector.
func (p *Product) HasVector() bool {
	return !p.PreferredVector().IsEmpty()
}

// ContentText is the text embedded into the product's text vector.
func (p *Product) ContentText() string {
	return p.Title + " " + p.Description
}

// PopularityScore is the weighted popularity of a product: views + 3*carts + 5*purchases.
func PopularityScore(views, carts, purchases int64) float64 {
	return float64(views + 3*carts + 5*purchases)
}

// PopularityUpdate is a delta applied to a product's counters by the catalog.
// The catalog recomputes PopularityScore in the same write.
type PopularityUpdate struct {
	ProductID ProductID `json:"product_id"`
	Views     int64     `json:"views"`
	Carts     int64     `json:"carts"`
	Purchases int64     `json:"purchases"`
}

// IsZero reports whether the update changes nothing.
func (u PopularityUpdate) IsZero() bool {
	return u.Views == 0 && u.Carts == 0 && u.Purchases == 0
}

// ViewEntry is one item of a user's view history.
type ViewEntry struct {
	ProductID ProductID `json:"product_id"`
	ViewedAt  time.Time `json:"viewed_at"`
}

// WishlistEntry is one item of a user's wishlist.
type WishlistEntry struct {
	ProductID ProductID `json:"product_id"`
	AddedAt   time.Time `json:"added_at"`
}

// UserProfile holds the personalization state of a shopper.
type UserProfile struct {
	ID UserID `json:"id"`

	// InteractionVector is the running mean of viewed product vectors (unnormalized).
	InteractionVector vector.Vector `json:"interaction_vector,omitempty"`

	// InteractionCount is the number of samples folded into InteractionVector.
	InteractionCount int `json:"interaction_count"`

	// ViewedProducts is most-recent-first and de-duplicated.
	ViewedProducts []ViewEntry `json:"viewed_products"`

	// Wishlist is most-recent-first and de-duplicated.
	Wishlist []WishlistEntry `json:"wishlist"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ViewedIDs returns up to limit product IDs from the view history, most recent first.
// A limit <= 0 returns all of them.
func (u *UserProfile) ViewedIDs(limit int) []ProductID {
	n := len(u.ViewedProducts)
	if limit > 0 && limit < n {
		n = limit
	}
	ids := make([]ProductID, 0, n)
	for _, v := range u.ViewedProducts[:n] {
		ids = append(ids, v.ProductID)
	}
	return ids
}

// ScoreBreakdown carries the individual hybrid signals.
type ScoreBreakdown struct {
	Total         float64 `json:"total"`
	ImageSim      float64 `json:"image_sim"`
	TextSim       float64 `json:"text_sim"`
	CategoryScore float64 `json:"category_score"`
	PriceScore    float64 `json:"price_score"`
}

// ScoredResult pairs a product with its ranking score.
type ScoredResult struct {
	Product   *Product        `json:"product"`
	Score     float64         `json:"_score"`
	Breakdown *ScoreBreakdown `json:"breakdown,omitempty"`
}

// Pipeline names used in results, logs and metrics.
const (
	PipelineSimilar      = "similar"
	PipelineHybrid       = "hybrid"
	PipelinePersonalized = "personalized"
	PipelineTrending     = "trending"
	PipelineImageSearch  = "image_search"
)

// FallbackTrending marks a personalized result that fell back to popularity.
const FallbackTrending = "trending"

// Result is the ranked output of a pipeline.
type Result struct {
	// Pipeline is the pipeline that produced the result.
	Pipeline string `json:"pipeline"`

	// Items are ordered by score descending.
	Items []ScoredResult `json:"items"`

	// ColdStart is set when a personalized request had no usable history.
	ColdStart bool `json:"cold_start,omitempty"`

	// Fallback names the fallback list served instead of ranked results, if any.
	Fallback string `json:"fallback,omitempty"`

	// Threshold is the similarity threshold that admitted the items (0 when unused).
	Threshold float64 `json:"threshold,omitempty"`

	// TotalCandidates is the size of the candidate pool that was scored.
	TotalCandidates int `json:"total_candidates"`
}

// Products returns the products of the result in order.
func (r *Result) Products() []*Product {
	out := make([]*Product, 0, len(r.Items))
	for _, it := range r.Items {
		out = append(out, it.Product)
	}
	return out
}

func emptyResult(pipeline string) *Result {
	return &Result{Pipeline: pipeline, Items: []ScoredResult{}}
}
