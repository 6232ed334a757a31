// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import "context"

// PopularityOrder selects the sort used by FindTopByPopularity.
// Every order ends with the product ID ascending.
type PopularityOrder int

const (
	// OrderTrending sorts by popularity, views and creation time, all descending.
	OrderTrending PopularityOrder = iota

	// OrderColdStart sorts by popularity and creation time, descending.
	OrderColdStart

	// OrderPopularity sorts by popularity only.
	OrderPopularity
)

// String returns a human-readable order name.
func (o PopularityOrder) String() string {
	switch o {
	case OrderTrending:
		return "trending"
	case OrderColdStart:
		return "cold_start"
	case OrderPopularity:
		return "popularity"
	default:
		return "unknown"
	}
}

// PriceBandQuery selects active products that share a category with the base
// or whose price lies in [MinPrice, MaxPrice].
type PriceBandQuery struct {
	Category string
	MinPrice float64
	MaxPrice float64
	Exclude  ProductID
	Limit    int
}

// ExclusionQuery selects active products outside Exclude, optionally restricted
// to Categories, and only those carrying a vector when RequireVector is set.
type ExclusionQuery struct {
	Exclude       []ProductID
	Categories    []string
	RequireVector bool
	Limit         int
}

// CatalogRepository is the catalog collaborator.
//
// Lookups that find nothing return ErrNotFound (single entity) or an empty
// slice (lists). All list methods return active products only.
type CatalogRepository interface {
	// FindByID returns a product regardless of its active flag.
	FindByID(ctx context.Context, id ProductID) (*Product, error)

	// FindActiveByID returns an active product or ErrNotFound.
	FindActiveByID(ctx context.Context, id ProductID) (*Product, error)

	// FindActiveByIDs returns the active products among ids, preserving the order of ids.
	FindActiveByIDs(ctx context.Context, ids []ProductID) ([]*Product, error)

	// FindActiveByCategory returns active products in category other than exclude.
	FindActiveByCategory(ctx context.Context, category string, exclude ProductID) ([]*Product, error)

	// FindActiveByCategoryOrPriceBand runs a PriceBandQuery.
	FindActiveByCategoryOrPriceBand(ctx context.Context, q PriceBandQuery) ([]*Product, error)

	// FindActiveExcluding runs an ExclusionQuery.
	FindActiveExcluding(ctx context.Context, q ExclusionQuery) ([]*Product, error)

	// FindActiveWithImageVector returns active products carrying an image vector.
	FindActiveWithImageVector(ctx context.Context, limit int) ([]*Product, error)

	// FindTopByPopularity returns the top active products in the given order.
	FindTopByPopularity(ctx context.Context, order PopularityOrder, limit int) ([]*Product, error)

	// Save inserts a product or replaces its content fields. Popularity
	// counters are written on insert only and otherwise left to ApplyPopularity.
	Save(ctx context.Context, p *Product) error

	// ApplyPopularity adds the counter deltas and recomputes the popularity score.
	ApplyPopularity(ctx context.Context, u PopularityUpdate) error
}

// UserRepository is the user profile collaborator.
type UserRepository interface {
	// FindByID returns the profile or ErrNotFound.
	FindByID(ctx context.Context, id UserID) (*UserProfile, error)

	// Save inserts or replaces a profile.
	Save(ctx context.Context, u *UserProfile) error
}
