// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package database

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/vector"
)

func newProduct(id, category string, price float64) *recommend.Product {
	return &recommend.Product{
		ID:          recommend.ProductID(id),
		Title:       "Product " + id,
		Description: "A " + category + " item",
		Category:    category,
		Price:       price,
		Active:      true,
		TextVector:  vector.TextVector("Product "+id+" A "+category+" item", 8),
	}
}

func seed(t *testing.T, db *DB, products ...*recommend.Product) {
	t.Helper()
	for _, p := range products {
		if err := db.Save(context.Background(), p); err != nil {
			t.Fatalf("Save(%s) error = %v", p.ID, err)
		}
	}
}

func productIDs(ps []*recommend.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p.ID)
	}
	return out
}

func TestSaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := newProduct("p1", "shoes", 49.5)
	p.ImageVector = vector.Vector{0.25, -0.5, 1}
	seed(t, db, p)

	got, err := db.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Title != p.Title || got.Category != "shoes" || got.Price != 49.5 || !got.Active {
		t.Errorf("FindByID() = %+v, want fields of %+v", got, p)
	}
	if !reflect.DeepEqual(got.ImageVector, p.ImageVector) {
		t.Errorf("ImageVector = %v, want %v", got.ImageVector, p.ImageVector)
	}
	if len(got.TextVector) != 8 {
		t.Errorf("len(TextVector) = %d, want 8", len(got.TextVector))
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps were not set by Save")
	}

	t.Run("missing", func(t *testing.T) {
		if _, err := db.FindByID(ctx, "nope"); !errors.Is(err, recommend.ErrNotFound) {
			t.Errorf("FindByID(nope) error = %v, want ErrNotFound", err)
		}
	})

	t.Run("empty vector stored as null", func(t *testing.T) {
		q := newProduct("p2", "bags", 10)
		q.TextVector = nil
		seed(t, db, q)
		got, err := db.FindByID(ctx, "p2")
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if got.HasVector() {
			t.Errorf("HasVector() = true for a product saved without vectors")
		}
	})
}

func TestSavePreservesCounters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	p := newProduct("p1", "shoes", 10)
	p.ViewsCount = 4
	seed(t, db, p)

	if err := db.ApplyPopularity(ctx, recommend.PopularityUpdate{ProductID: "p1", Carts: 1}); err != nil {
		t.Fatalf("ApplyPopularity() error = %v", err)
	}

	edit := newProduct("p1", "boots", 12)
	edit.ViewsCount = 0
	seed(t, db, edit)

	got, err := db.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.Category != "boots" || got.Price != 12 {
		t.Errorf("content = %s %v, want boots 12", got.Category, got.Price)
	}
	if got.ViewsCount != 4 || got.AddToCartCount != 1 || got.PopularityScore != 7 {
		t.Errorf("counters = %d/%d score %v, want 4/1 score 7", got.ViewsCount, got.AddToCartCount, got.PopularityScore)
	}
}

func TestFindActiveByID(t *testing.T) {
	db := setupTestDB(t)
	inactive := newProduct("off", "shoes", 10)
	inactive.Active = false
	seed(t, db, newProduct("on", "shoes", 10), inactive)

	if _, err := db.FindActiveByID(context.Background(), "on"); err != nil {
		t.Errorf("FindActiveByID(on) error = %v", err)
	}
	if _, err := db.FindActiveByID(context.Background(), "off"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("FindActiveByID(off) error = %v, want ErrNotFound", err)
	}
}

func TestFindActiveByIDsPreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	inactive := newProduct("b", "shoes", 10)
	inactive.Active = false
	seed(t, db, newProduct("a", "shoes", 10), inactive, newProduct("c", "shoes", 10))

	got, err := db.FindActiveByIDs(context.Background(), []recommend.ProductID{"c", "missing", "b", "a"})
	if err != nil {
		t.Fatalf("FindActiveByIDs() error = %v", err)
	}
	if want := []string{"c", "a"}; !reflect.DeepEqual(productIDs(got), want) {
		t.Errorf("FindActiveByIDs() = %v, want %v", productIDs(got), want)
	}

	empty, err := db.FindActiveByIDs(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("FindActiveByIDs(nil) = %v, %v, want empty", empty, err)
	}
}

func TestCandidateQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	withImage := newProduct("s3", "shoes", 200)
	withImage.ImageVector = vector.Vector{1, 0}
	noVector := newProduct("s4", "shoes", 20)
	noVector.TextVector = nil
	inactive := newProduct("s5", "shoes", 20)
	inactive.Active = false
	inactive.ImageVector = vector.Vector{1, 0}
	seed(t, db,
		newProduct("s1", "shoes", 100),
		newProduct("s2", "shoes", 120),
		withImage, noVector, inactive,
		newProduct("b1", "bags", 60),
		newProduct("b2", "bags", 500),
	)

	tests := []struct {
		name string
		run  func() ([]*recommend.Product, error)
		want []string
	}{
		{
			name: "by category",
			run:  func() ([]*recommend.Product, error) { return db.FindActiveByCategory(ctx, "shoes", "s1") },
			want: []string{"s2", "s3", "s4"},
		},
		{
			name: "category or price band",
			run: func() ([]*recommend.Product, error) {
				return db.FindActiveByCategoryOrPriceBand(ctx, recommend.PriceBandQuery{
					Category: "bags", MinPrice: 50, MaxPrice: 150, Exclude: "b1",
				})
			},
			want: []string{"b2", "s1", "s2"},
		},
		{
			name: "category or price band limited",
			run: func() ([]*recommend.Product, error) {
				return db.FindActiveByCategoryOrPriceBand(ctx, recommend.PriceBandQuery{
					Category: "bags", MinPrice: 50, MaxPrice: 150, Exclude: "b1", Limit: 2,
				})
			},
			want: []string{"b2", "s1"},
		},
		{
			name: "excluding with categories and vectors",
			run: func() ([]*recommend.Product, error) {
				return db.FindActiveExcluding(ctx, recommend.ExclusionQuery{
					Exclude:       []recommend.ProductID{"s1"},
					Categories:    []string{"shoes"},
					RequireVector: true,
				})
			},
			want: []string{"s2", "s3"},
		},
		{
			name: "excluding everything else",
			run: func() ([]*recommend.Product, error) {
				return db.FindActiveExcluding(ctx, recommend.ExclusionQuery{Limit: 3})
			},
			want: []string{"b1", "b2", "s1"},
		},
		{
			name: "with image vector",
			run:  func() ([]*recommend.Product, error) { return db.FindActiveWithImageVector(ctx, 10) },
			want: []string{"s3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.run()
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if !reflect.DeepEqual(productIDs(got), tt.want) {
				t.Errorf("got %v, want %v", productIDs(got), tt.want)
			}
		})
	}
}

func TestFindTopByPopularity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := base
	db.now = func() time.Time { return clock }

	// a and b tie on popularity 10; b has more views, a is newer.
	// c has popularity 10 from purchases only and is the newest.
	a := newProduct("a", "x", 1)
	a.ViewsCount = 5
	a.AddToCartCount = 0
	a.PurchaseCount = 1
	clock = base.Add(2 * time.Hour)
	seed(t, db, a)

	b := newProduct("b", "x", 1)
	b.ViewsCount = 10
	clock = base.Add(time.Hour)
	seed(t, db, b)

	c := newProduct("c", "x", 1)
	c.PurchaseCount = 2
	clock = base.Add(3 * time.Hour)
	seed(t, db, c)

	d := newProduct("d", "x", 1)
	d.ViewsCount = 1
	clock = base.Add(4 * time.Hour)
	seed(t, db, d)

	tests := []struct {
		order recommend.PopularityOrder
		want  []string
	}{
		{recommend.OrderTrending, []string{"b", "a", "c", "d"}},
		{recommend.OrderColdStart, []string{"c", "a", "b", "d"}},
		{recommend.OrderPopularity, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.order.String(), func(t *testing.T) {
			got, err := db.FindTopByPopularity(ctx, tt.order, 10)
			if err != nil {
				t.Fatalf("FindTopByPopularity() error = %v", err)
			}
			if !reflect.DeepEqual(productIDs(got), tt.want) {
				t.Errorf("FindTopByPopularity(%s) = %v, want %v", tt.order, productIDs(got), tt.want)
			}
		})
	}

	if _, err := db.FindTopByPopularity(ctx, recommend.PopularityOrder(99), 1); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("FindTopByPopularity(99) error = %v, want ErrInvalidInput", err)
	}
}

func TestApplyPopularity(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seed(t, db, newProduct("p1", "x", 1))

	updates := []recommend.PopularityUpdate{
		{ProductID: "p1", Views: 1},
		{ProductID: "p1", Views: 1},
		{ProductID: "p1", Carts: 1},
		{ProductID: "p1", Purchases: 1},
	}
	for _, u := range updates {
		if err := db.ApplyPopularity(ctx, u); err != nil {
			t.Fatalf("ApplyPopularity(%+v) error = %v", u, err)
		}
	}

	got, err := db.FindByID(ctx, "p1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.ViewsCount != 2 || got.AddToCartCount != 1 || got.PurchaseCount != 1 {
		t.Errorf("counters = %d/%d/%d, want 2/1/1", got.ViewsCount, got.AddToCartCount, got.PurchaseCount)
	}
	if want := recommend.PopularityScore(2, 1, 1); got.PopularityScore != want {
		t.Errorf("PopularityScore = %v, want %v", got.PopularityScore, want)
	}

	if err := db.ApplyPopularity(ctx, recommend.PopularityUpdate{ProductID: "missing", Views: 1}); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("ApplyPopularity(missing) error = %v, want ErrNotFound", err)
	}
}

func TestAllProducts(t *testing.T) {
	db := setupTestDB(t)
	off := newProduct("b", "x", 1)
	off.Active = false
	seed(t, db, newProduct("c", "x", 1), off, newProduct("a", "x", 1))

	got, err := db.AllProducts(context.Background())
	if err != nil {
		t.Fatalf("AllProducts() error = %v", err)
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(productIDs(got), want) {
		t.Errorf("AllProducts() = %v, want %v", productIDs(got), want)
	}
}

func TestDecodeVector(t *testing.T) {
	tests := []struct {
		name    string
		raw     interface{}
		want    vector.Vector
		wantErr bool
	}{
		{"nil", nil, nil, false},
		{"empty list", []interface{}{}, nil, false},
		{"list", []interface{}{1.5, float32(2), nil}, vector.Vector{1.5, 2, 0}, false},
		{"float slice", []float64{1, 2}, vector.Vector{1, 2}, false},
		{"json text", "[0.5,1]", vector.Vector{0.5, 1}, false},
		{"bad element", []interface{}{"x"}, nil, true},
		{"bad type", 42, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeVector(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeVector() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeVector() = %v, want %v", got, tt.want)
			}
		})
	}
}
