// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import (
	"math"
	"sort"

	"github.com/tomtom215/storefront/internal/vector"
)

// Weights are the hybrid signal weights.
type Weights struct {
	Image         float64 `json:"image"`
	Text          float64 `json:"text"`
	CategoryBoost float64 `json:"category_boost"`
	PriceDecay    float64 `json:"price_decay"`
}

// DefaultWeights returns image 0.6, text 0.3, categoryBoost 0.08, priceDecay 0.5.
func DefaultWeights() Weights {
	return Weights{
		Image:         0.6,
		Text:          0.3,
		CategoryBoost: 0.08,
		PriceDecay:    0.5,
	}
}

// WeightsOverride is a partial weight set; nil fields keep the base value.
type WeightsOverride struct {
	Image         *float64 `json:"image,omitempty"`
	Text          *float64 `json:"text,omitempty"`
	CategoryBoost *float64 `json:"category_boost,omitempty"`
	PriceDecay    *float64 `json:"price_decay,omitempty"`
}

// IsZero reports whether the override changes nothing.
func (o *WeightsOverride) IsZero() bool {
	return o == nil || (o.Image == nil && o.Text == nil && o.CategoryBoost == nil && o.PriceDecay == nil)
}

// Merge returns w with the non-nil fields of o applied.
//
//nolint:gocritic // value receiver keeps Weights immutable
func (w Weights) Merge(o *WeightsOverride) Weights {
	if o == nil {
		return w
	}
	if o.Image != nil {
		w.Image = *o.Image
	}
	if o.Text != nil {
		w.Text = *o.Text
	}
	if o.CategoryBoost != nil {
		w.CategoryBoost = *o.CategoryBoost
	}
	if o.PriceDecay != nil {
		w.PriceDecay = *o.PriceDecay
	}
	return w
}

// HybridScore combines image, text, category and price signals of candidate
// against base.
func HybridScore(base, candidate *Product, w Weights) ScoreBreakdown {
	b := ScoreBreakdown{
		ImageSim:   vector.CosineSimilarity(base.ImageVector, candidate.ImageVector),
		TextSim:    vector.CosineSimilarity(base.TextVector, candidate.TextVector),
		PriceScore: PriceScore(base.Price, candidate.Price),
	}
	if base.Category == candidate.Category {
		b.CategoryScore = 1
	}
	b.Total = w.Image*b.ImageSim +
		w.Text*b.TextSim +
		w.CategoryBoost*b.CategoryScore +
		w.PriceDecay*b.PriceScore
	return b
}

// PriceScore is 1 - min(1, |a-b| / max(1, max(a, b))). Unknown (negative or NaN)
// prices score 0.
func PriceScore(a, b float64) float64 {
	if a < 0 || b < 0 || math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	denom := math.Max(1, math.Max(a, b))
	return 1 - math.Min(1, math.Abs(a-b)/denom)
}

// SingleSignalScore compares two preferred vectors.
func SingleSignalScore(base, candidate vector.Vector) float64 {
	return vector.CosineSimilarity(base, candidate)
}

// sortScored orders results by score descending, then product ID ascending.
func sortScored(items []ScoredResult) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Product.ID < items[j].Product.ID
	})
}

// filterByThreshold returns the prefix-preserving subset of sorted items with Score >= min.
func filterByThreshold(items []ScoredResult, minScore float64) []ScoredResult {
	out := make([]ScoredResult, 0, len(items))
	for _, it := range items {
		if it.Score >= minScore {
			out = append(out, it)
		}
	}
	return out
}

func truncate(items []ScoredResult, k int) []ScoredResult {
	if k >= 0 && len(items) > k {
		return items[:k]
	}
	return items
}
