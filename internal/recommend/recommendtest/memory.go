// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

// Package recommendtest provides in-memory repositories for tests.
package recommendtest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/storefront/internal/recommend"
)

// Catalog is an in-memory recommend.CatalogRepository.
type Catalog struct {
	mu       sync.RWMutex
	products map[recommend.ProductID]*recommend.Product

	// Err, when set, is returned by every method.
	Err error
}

// NewCatalog creates a catalog holding products.
func NewCatalog(products ...*recommend.Product) *Catalog {
	c := &Catalog{products: make(map[recommend.ProductID]*recommend.Product, len(products))}
	for _, p := range products {
		c.products[p.ID] = copyProduct(p)
	}
	return c
}

func copyProduct(p *recommend.Product) *recommend.Product {
	cp := *p
	cp.ImageVector = p.ImageVector.Clone()
	cp.TextVector = p.TextVector.Clone()
	return &cp
}

// sorted returns active products matching keep, ordered by ID.
func (c *Catalog) sorted(keep func(*recommend.Product) bool) []*recommend.Product {
	out := make([]*recommend.Product, 0, len(c.products))
	for _, p := range c.products {
		if p.Active && keep(p) {
			out = append(out, copyProduct(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func limited(ps []*recommend.Product, limit int) []*recommend.Product {
	if limit > 0 && len(ps) > limit {
		return ps[:limit]
	}
	return ps
}

func (c *Catalog) FindByID(_ context.Context, id recommend.ProductID) (*recommend.Product, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[id]
	if !ok {
		return nil, fmt.Errorf("product %s: %w", id, recommend.ErrNotFound)
	}
	return copyProduct(p), nil
}

func (c *Catalog) FindActiveByID(ctx context.Context, id recommend.ProductID) (*recommend.Product, error) {
	p, err := c.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, fmt.Errorf("product %s: %w", id, recommend.ErrNotFound)
	}
	return p, nil
}

func (c *Catalog) FindActiveByIDs(_ context.Context, ids []recommend.ProductID) ([]*recommend.Product, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*recommend.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := c.products[id]; ok && p.Active {
			out = append(out, copyProduct(p))
		}
	}
	return out, nil
}

func (c *Catalog) FindActiveByCategory(_ context.Context, category string, exclude recommend.ProductID) ([]*recommend.Product, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sorted(func(p *recommend.Product) bool {
		return p.Category == category && p.ID != exclude
	}), nil
}

func (c *Catalog) FindActiveByCategoryOrPriceBand(_ context.Context, q recommend.PriceBandQuery) ([]*recommend.Product, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return limited(c.sorted(func(p *recommend.Product) bool {
		if p.ID == q.Exclude {
			return false
		}
		return p.Category == q.Category || (p.Price >= q.MinPrice && p.Price <= q.MaxPrice)
	}), q.Limit), nil
}

func (c *Catalog) FindActiveExcluding(_ context.Context, q recommend.ExclusionQuery) ([]*recommend.Product, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	excluded := make(map[recommend.ProductID]struct{}, len(q.Exclude))
	for _, id := range q.Exclude {
		excluded[id] = struct{}{}
	}
	categories := make(map[string]struct{}, len(q.Categories))
	for _, cat := range q.Categories {
		categories[cat] = struct{}{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return limited(c.sorted(func(p *recommend.Product) bool {
		if _, skip := excluded[p.ID]; skip {
			return false
		}
		if len(categories) > 0 {
			if _, ok := categories[p.Category]; !ok {
				return false
			}
		}
		return !q.RequireVector || p.HasVector()
	}), q.Limit), nil
}

func (c *Catalog) FindActiveWithImageVector(_ context.Context, limit int) ([]*recommend.Product, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return limited(c.sorted(func(p *recommend.Product) bool {
		return !p.ImageVector.IsEmpty()
	}), limit), nil
}

func (c *Catalog) FindTopByPopularity(_ context.Context, order recommend.PopularityOrder, limit int) ([]*recommend.Product, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := c.sorted(func(*recommend.Product) bool { return true })
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PopularityScore != b.PopularityScore {
			return a.PopularityScore > b.PopularityScore
		}
		switch order {
		case recommend.OrderTrending:
			if a.ViewsCount != b.ViewsCount {
				return a.ViewsCount > b.ViewsCount
			}
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case recommend.OrderColdStart:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		case recommend.OrderPopularity:
		}
		return a.ID < b.ID
	})
	return limited(out, limit), nil
}

func (c *Catalog) Save(_ context.Context, p *recommend.Product) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := copyProduct(p)
	if prev, ok := c.products[p.ID]; ok {
		cp.ViewsCount = prev.ViewsCount
		cp.AddToCartCount = prev.AddToCartCount
		cp.PurchaseCount = prev.PurchaseCount
		cp.PopularityScore = prev.PopularityScore
		cp.CreatedAt = prev.CreatedAt
	}
	c.products[p.ID] = cp
	return nil
}

func (c *Catalog) ApplyPopularity(_ context.Context, u recommend.PopularityUpdate) error {
	if c.Err != nil {
		return c.Err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[u.ProductID]
	if !ok {
		return fmt.Errorf("product %s: %w", u.ProductID, recommend.ErrNotFound)
	}
	p.ViewsCount += u.Views
	p.AddToCartCount += u.Carts
	p.PurchaseCount += u.Purchases
	p.PopularityScore = recommend.PopularityScore(p.ViewsCount, p.AddToCartCount, p.PurchaseCount)
	return nil
}

// Users is an in-memory recommend.UserRepository.
type Users struct {
	mu    sync.RWMutex
	users map[recommend.UserID]*recommend.UserProfile

	// Err, when set, is returned by every method.
	Err error
}

// NewUsers creates a repository holding users.
func NewUsers(users ...*recommend.UserProfile) *Users {
	r := &Users{users: make(map[recommend.UserID]*recommend.UserProfile, len(users))}
	for _, u := range users {
		r.users[u.ID] = copyUser(u)
	}
	return r
}

func copyUser(u *recommend.UserProfile) *recommend.UserProfile {
	cp := *u
	cp.InteractionVector = u.InteractionVector.Clone()
	cp.ViewedProducts = append([]recommend.ViewEntry(nil), u.ViewedProducts...)
	cp.Wishlist = append([]recommend.WishlistEntry(nil), u.Wishlist...)
	return &cp
}

func (r *Users) FindByID(_ context.Context, id recommend.UserID) (*recommend.UserProfile, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, recommend.ErrNotFound)
	}
	return copyUser(u), nil
}

func (r *Users) Save(_ context.Context, u *recommend.UserProfile) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = copyUser(u)
	return nil
}
