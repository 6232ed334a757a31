// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend_test

import (
	"context"
	"testing"

	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/recommend/recommendtest"
	"github.com/tomtom215/storefront/internal/vector"
)

// leakyCatalog returns every stored product from list queries, ignoring filters,
// to check that the pool re-applies its own constraints.
type leakyCatalog struct {
	*recommendtest.Catalog
	all []*recommend.Product
}

func (l *leakyCatalog) FindActiveByCategory(context.Context, string, recommend.ProductID) ([]*recommend.Product, error) {
	return l.all, nil
}

func (l *leakyCatalog) FindActiveByCategoryOrPriceBand(context.Context, recommend.PriceBandQuery) ([]*recommend.Product, error) {
	return l.all, nil
}

func (l *leakyCatalog) FindActiveExcluding(context.Context, recommend.ExclusionQuery) ([]*recommend.Product, error) {
	return l.all, nil
}

func (l *leakyCatalog) FindActiveWithImageVector(context.Context, int) ([]*recommend.Product, error) {
	return l.all, nil
}

func poolIDs(ps []*recommend.Product) []recommend.ProductID {
	out := make([]recommend.ProductID, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func TestCandidatePool_ForSimilarTo(t *testing.T) {
	base := product("base", "shoes", 100, vector.Vector{1})
	catalog := recommendtest.NewCatalog(
		base,
		product("same-cat", "shoes", 900, nil),
		product("in-band-low", "bags", 50, nil),
		product("in-band-high", "bags", 150, nil),
		product("below-band", "bags", 49, nil),
		product("above-band", "bags", 151, nil),
	)
	pool := recommend.NewCandidatePool(catalog, recommend.DefaultConfig().Limits)
	ctx := context.Background()

	tests := []struct {
		name     string
		strategy recommend.CandidateStrategy
		want     []string
	}{
		{"category", recommend.StrategyCategory, []string{"same-cat"}},
		{"category or price band", recommend.StrategyCategoryOrPriceBand, []string{"in-band-high", "in-band-low", "same-cat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pool.ForSimilarTo(ctx, base, tt.strategy)
			if err != nil {
				t.Fatalf("ForSimilarTo() error = %v", err)
			}
			if !equalIDs(poolIDs(got), tt.want...) {
				t.Errorf("ForSimilarTo(%s) = %v, want %v", tt.strategy, poolIDs(got), tt.want)
			}
		})
	}

	lo, hi := pool.PriceBand(100)
	if lo != 50 || hi != 150 {
		t.Errorf("PriceBand(100) = [%v, %v], want [50, 150]", lo, hi)
	}
}

func TestCandidatePool_HybridScanCap(t *testing.T) {
	products := []*recommend.Product{product("base", "c", 10, nil)}
	for i := 0; i < 30; i++ {
		products = append(products, product(string(rune('A'+i)), "c", 10, nil))
	}
	limits := recommend.DefaultConfig().Limits
	limits.HybridScan = 10
	pool := recommend.NewCandidatePool(recommendtest.NewCatalog(products...), limits)

	got, err := pool.ForSimilarTo(context.Background(), products[0], recommend.StrategyCategoryOrPriceBand)
	if err != nil {
		t.Fatalf("ForSimilarTo() error = %v", err)
	}
	if len(got) != 10 {
		t.Errorf("len = %d, want scan cap 10", len(got))
	}
}

func TestCandidatePool_RefiltersRepositoryResults(t *testing.T) {
	base := product("base", "shoes", 100, vector.Vector{1})
	inactive := product("inactive", "shoes", 100, vector.Vector{1})
	inactive.Active = false
	all := []*recommend.Product{
		base,
		inactive,
		product("other-cat", "bags", 100, vector.Vector{1}),
		product("ok", "shoes", 100, vector.Vector{1}),
		product("novec", "shoes", 100, nil),
		nil,
	}
	pool := recommend.NewCandidatePool(&leakyCatalog{Catalog: recommendtest.NewCatalog(), all: all}, recommend.DefaultConfig().Limits)
	ctx := context.Background()

	got, err := pool.ForSimilarTo(ctx, base, recommend.StrategyCategory)
	if err != nil {
		t.Fatalf("ForSimilarTo() error = %v", err)
	}
	if !equalIDs(poolIDs(got), "ok", "novec") {
		t.Errorf("ForSimilarTo(category) = %v, want [ok novec]", poolIDs(got))
	}

	exclude := map[recommend.ProductID]struct{}{"ok": {}}
	got, err = pool.ForUserProfile(ctx, exclude, []string{"shoes"}, 10)
	if err != nil {
		t.Fatalf("ForUserProfile() error = %v", err)
	}
	if !equalIDs(poolIDs(got), "base") {
		t.Errorf("ForUserProfile() = %v, want [base]", poolIDs(got))
	}

	got, err = pool.ForImageSearch(ctx)
	if err != nil {
		t.Fatalf("ForImageSearch() error = %v", err)
	}
	if !equalIDs(poolIDs(got), "base", "other-cat", "ok") {
		t.Errorf("ForImageSearch() = %v, want [base other-cat ok]", poolIDs(got))
	}
}

func TestCandidatePool_ForUserProfileLimit(t *testing.T) {
	products := make([]*recommend.Product, 0, 10)
	for i := 0; i < 10; i++ {
		products = append(products, product(string(rune('a'+i)), "c", 1, vector.Vector{1}))
	}
	pool := recommend.NewCandidatePool(recommendtest.NewCatalog(products...), recommend.DefaultConfig().Limits)

	got, err := pool.ForUserProfile(context.Background(), nil, nil, 4)
	if err != nil {
		t.Fatalf("ForUserProfile() error = %v", err)
	}
	if len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}
}
