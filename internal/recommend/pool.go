// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import (
	"context"
	"fmt"
	"math"
)

// CandidateStrategy selects how similar-to candidates are retrieved.
type CandidateStrategy int

const (
	// StrategyCategory takes every active product in the base's category.
	StrategyCategory CandidateStrategy = iota

	// StrategyCategoryOrPriceBand takes active products in the base's category
	// or inside its price band, capped at the hybrid scan limit.
	StrategyCategoryOrPriceBand
)

// String returns a human-readable strategy name.
func (s CandidateStrategy) String() string {
	switch s {
	case StrategyCategory:
		return "category"
	case StrategyCategoryOrPriceBand:
		return "category_or_price_band"
	default:
		return "unknown"
	}
}

// CandidatePool narrows the catalog to a bounded set worth scoring.
//
// Repository results are re-checked against the pool's invariants: the base
// product and inactive products never survive, whatever the repository returns.
type CandidatePool struct {
	catalog CatalogRepository
	limits  LimitsConfig
}

// NewCandidatePool creates a pool over catalog.
//
//nolint:gocritic // LimitsConfig is copied once at construction
func NewCandidatePool(catalog CatalogRepository, limits LimitsConfig) *CandidatePool {
	return &CandidatePool{catalog: catalog, limits: limits}
}

// PriceBand returns the inclusive price band around price.
func (p *CandidatePool) PriceBand(price float64) (lo, hi float64) {
	return math.Max(0, p.limits.PriceBandLow*price), p.limits.PriceBandHigh * price
}

// ForSimilarTo returns candidates for base using strategy.
func (p *CandidatePool) ForSimilarTo(ctx context.Context, base *Product, strategy CandidateStrategy) ([]*Product, error) {
	var (
		candidates []*Product
		err        error
	)

	switch strategy {
	case StrategyCategory:
		candidates, err = p.catalog.FindActiveByCategory(ctx, base.Category, base.ID)
	case StrategyCategoryOrPriceBand:
		lo, hi := p.PriceBand(base.Price)
		candidates, err = p.catalog.FindActiveByCategoryOrPriceBand(ctx, PriceBandQuery{
			Category: base.Category,
			MinPrice: lo,
			MaxPrice: hi,
			Exclude:  base.ID,
			Limit:    p.limits.HybridScan,
		})
	default:
		return nil, fmt.Errorf("unknown candidate strategy %d", strategy)
	}
	if err != nil {
		return nil, fmt.Errorf("find candidates (%s): %w", strategy, err)
	}

	out := candidates[:0:0]
	for _, c := range candidates {
		if c == nil || !c.Active || c.ID == base.ID {
			continue
		}
		if strategy == StrategyCategory && c.Category != base.Category {
			continue
		}
		out = append(out, c)
	}
	if strategy == StrategyCategoryOrPriceBand && len(out) > p.limits.HybridScan {
		out = out[:p.limits.HybridScan]
	}
	return out, nil
}

// ForUserProfile returns active products not in exclude, restricted to
// categories when given, that carry at least one vector.
func (p *CandidatePool) ForUserProfile(ctx context.Context, exclude map[ProductID]struct{}, categories []string, limit int) ([]*Product, error) {
	if limit <= 0 {
		limit = p.limits.PersonalizedScan
	}

	ids := make([]ProductID, 0, len(exclude))
	for id := range exclude {
		ids = append(ids, id)
	}
	sortProductIDs(ids)

	candidates, err := p.catalog.FindActiveExcluding(ctx, ExclusionQuery{
		Exclude:       ids,
		Categories:    categories,
		RequireVector: true,
		Limit:         limit,
	})
	if err != nil {
		return nil, fmt.Errorf("find profile candidates: %w", err)
	}

	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}

	out := candidates[:0:0]
	for _, c := range candidates {
		if c == nil || !c.Active || !c.HasVector() {
			continue
		}
		if _, skip := exclude[c.ID]; skip {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[c.Category]; !ok {
				continue
			}
		}
		out = append(out, c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// ForImageSearch returns active products carrying an image vector.
func (p *CandidatePool) ForImageSearch(ctx context.Context) ([]*Product, error) {
	candidates, err := p.catalog.FindActiveWithImageVector(ctx, p.limits.SearchScan)
	if err != nil {
		return nil, fmt.Errorf("find image candidates: %w", err)
	}
	out := candidates[:0:0]
	for _, c := range candidates {
		if c != nil && c.Active && !c.ImageVector.IsEmpty() {
			out = append(out, c)
		}
	}
	return out, nil
}
