// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/vector"
)

// ProfileListener is notified after a profile or product changes, so caches
// can drop stale results.
type ProfileListener interface {
	ProfileChanged(userID UserID)
	ProductChanged(productID ProductID)
}

// Accumulator maintains user profiles from interaction events: the incremental
// interaction vector, the view history and the wishlist. Updates to the same
// user are serialized.
type Accumulator struct {
	catalog   CatalogRepository
	users     UserRepository
	cfg       ProfileConfig
	logger    zerolog.Logger
	now       func() time.Time
	listeners []ProfileListener

	locksMu sync.Mutex
	locks   map[UserID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

// NewAccumulator creates an accumulator.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAccumulator(catalog CatalogRepository, users UserRepository, cfg ProfileConfig, logger zerolog.Logger) *Accumulator {
	if cfg.MaxViewed <= 0 {
		cfg.MaxViewed = DefaultConfig().Profile.MaxViewed
	}
	if cfg.MaxWishlist <= 0 {
		cfg.MaxWishlist = DefaultConfig().Profile.MaxWishlist
	}
	return &Accumulator{
		catalog: catalog,
		users:   users,
		cfg:     cfg,
		logger:  logger.With().Str("component", "profile").Logger(),
		now:     time.Now,
		locks:   make(map[UserID]*userLock),
	}
}

// AddListener registers a change listener.
func (a *Accumulator) AddListener(l ProfileListener) {
	a.listeners = append(a.listeners, l)
}

// lock serializes work on one user and returns the unlock function.
func (a *Accumulator) lock(id UserID) func() {
	a.locksMu.Lock()
	l, ok := a.locks[id]
	if !ok {
		l = &userLock{}
		a.locks[id] = l
	}
	l.refs++
	a.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		a.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(a.locks, id)
		}
		a.locksMu.Unlock()
	}
}

// EnsureProfile returns the profile for id, creating an empty one if needed.
func (a *Accumulator) EnsureProfile(ctx context.Context, id UserID) (*UserProfile, error) {
	if id == "" {
		return nil, fmt.Errorf("empty user id: %w", ErrInvalidInput)
	}
	unlock := a.lock(id)
	defer unlock()

	u, err := a.users.FindByID(ctx, id)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := a.now()
	u = &UserProfile{
		ID:             id,
		ViewedProducts: []ViewEntry{},
		Wishlist:       []WishlistEntry{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.users.Save(ctx, u); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return u, nil
}

// RecordView registers that userID viewed productID: the view history is
// updated, the product's preferred vector is folded into the user's
// interaction vector and the product's view counter is bumped. The counter
// moves only after the profile is saved, and a counter failure is logged
// without failing the view. An empty userID records an anonymous view and
// returns a nil profile.
func (a *Accumulator) RecordView(ctx context.Context, userID UserID, productID ProductID) (*UserProfile, error) {
	product, err := a.catalog.FindActiveByID(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if userID == "" {
		return nil, a.countView(ctx, productID)
	}

	unlock := a.lock(userID)
	defer unlock()

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := a.now()
	PushView(user, productID, now, a.cfg.MaxViewed)
	updated := AccumulateVector(user, product.PreferredVector())
	user.UpdatedAt = now

	if err := a.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	a.notifyProfile(userID)

	if err := a.countView(ctx, productID); err != nil {
		a.logger.Warn().Err(err).
			Str("user_id", string(userID)).
			Str("product_id", string(productID)).
			Msg("View saved but counter update failed")
	}

	a.logger.Debug().
		Str("user_id", string(userID)).
		Str("product_id", string(productID)).
		Bool("vector_updated", updated).
		Int("interaction_count", user.InteractionCount).
		Msg("View recorded")
	return user, nil
}

func (a *Accumulator) countView(ctx context.Context, productID ProductID) error {
	if err := a.catalog.ApplyPopularity(ctx, PopularityUpdate{ProductID: productID, Views: 1}); err != nil {
		return fmt.Errorf("apply view: %w", err)
	}
	a.notifyProduct(productID)
	return nil
}

// RecordCart bumps the product's add-to-cart counter.
func (a *Accumulator) RecordCart(ctx context.Context, productID ProductID) error {
	return a.applyCounter(ctx, PopularityUpdate{ProductID: productID, Carts: 1})
}

// RecordPurchase bumps the product's purchase counter.
func (a *Accumulator) RecordPurchase(ctx context.Context, productID ProductID) error {
	return a.applyCounter(ctx, PopularityUpdate{ProductID: productID, Purchases: 1})
}

func (a *Accumulator) applyCounter(ctx context.Context, u PopularityUpdate) error {
	if _, err := a.catalog.FindActiveByID(ctx, u.ProductID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("product %s: %w", u.ProductID, ErrNotFound)
		}
		return fmt.Errorf("get product: %w", err)
	}
	if err := a.catalog.ApplyPopularity(ctx, u); err != nil {
		return fmt.Errorf("apply popularity: %w", err)
	}
	a.notifyProduct(u.ProductID)
	return nil
}

// AddToWishlist prepends productID to the user's wishlist.
func (a *Accumulator) AddToWishlist(ctx context.Context, userID UserID, productID ProductID) (*UserProfile, error) {
	if _, err := a.catalog.FindActiveByID(ctx, productID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return a.mutate(ctx, userID, func(u *UserProfile, now time.Time) error {
		return PushWishlist(u, productID, now, a.cfg.MaxWishlist)
	})
}

// RemoveFromWishlist removes productID from the user's wishlist. Removing an
// absent product is not an error.
func (a *Accumulator) RemoveFromWishlist(ctx context.Context, userID UserID, productID ProductID) (*UserProfile, error) {
	return a.mutate(ctx, userID, func(u *UserProfile, _ time.Time) error {
		RemoveWishlist(u, productID)
		return nil
	})
}

// ClearHistory empties the user's view history. The interaction vector is kept.
func (a *Accumulator) ClearHistory(ctx context.Context, userID UserID) (*UserProfile, error) {
	return a.mutate(ctx, userID, func(u *UserProfile, _ time.Time) error {
		u.ViewedProducts = []ViewEntry{}
		return nil
	})
}

func (a *Accumulator) mutate(ctx context.Context, userID UserID, fn func(*UserProfile, time.Time) error) (*UserProfile, error) {
	unlock := a.lock(userID)
	defer unlock()

	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	now := a.now()
	if err := fn(user, now); err != nil {
		return nil, err
	}
	user.UpdatedAt = now

	if err := a.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	a.notifyProfile(userID)
	return user, nil
}

func (a *Accumulator) notifyProfile(id UserID) {
	for _, l := range a.listeners {
		l.ProfileChanged(id)
	}
}

func (a *Accumulator) notifyProduct(id ProductID) {
	for _, l := range a.listeners {
		l.ProductChanged(id)
	}
}

// AccumulateVector folds v into the user's running mean:
//
//	new[i] = (old[i]*n + v[i]) / (n + 1)
//
// The first sample is copied as is. The result is not renormalized. An empty v
// leaves the profile untouched and returns false. Components missing from v
// count as 0; the stored dimension never changes once set.
func AccumulateVector(u *UserProfile, v vector.Vector) bool {
	if v.IsEmpty() {
		return false
	}

	if u.InteractionVector.IsEmpty() {
		u.InteractionVector = v.Clone()
	} else {
		n := float64(u.InteractionCount)
		next := make(vector.Vector, len(u.InteractionVector))
		for i, old := range u.InteractionVector {
			var x float64
			if i < len(v) {
				x = v[i]
			}
			next[i] = (old*n + x) / (n + 1)
		}
		u.InteractionVector = next
	}
	u.InteractionCount++
	return true
}

// PushView moves or inserts productID at the front of the view history and
// trims it to maxLen entries.
func PushView(u *UserProfile, productID ProductID, at time.Time, maxLen int) {
	history := make([]ViewEntry, 0, len(u.ViewedProducts)+1)
	history = append(history, ViewEntry{ProductID: productID, ViewedAt: at})
	for _, v := range u.ViewedProducts {
		if v.ProductID != productID {
			history = append(history, v)
		}
	}
	if maxLen > 0 && len(history) > maxLen {
		history = history[:maxLen]
	}
	u.ViewedProducts = history
}

// PushWishlist prepends productID to the wishlist, trimming to maxLen entries.
// A product already present yields ErrAlreadyInWishlist.
func PushWishlist(u *UserProfile, productID ProductID, at time.Time, maxLen int) error {
	for _, w := range u.Wishlist {
		if w.ProductID == productID {
			return fmt.Errorf("product %s: %w", productID, ErrAlreadyInWishlist)
		}
	}
	list := make([]WishlistEntry, 0, len(u.Wishlist)+1)
	list = append(list, WishlistEntry{ProductID: productID, AddedAt: at})
	list = append(list, u.Wishlist...)
	if maxLen > 0 && len(list) > maxLen {
		list = list[:maxLen]
	}
	u.Wishlist = list
	return nil
}

// RemoveWishlist drops productID from the wishlist.
func RemoveWishlist(u *UserProfile, productID ProductID) {
	list := u.Wishlist[:0:0]
	for _, w := range u.Wishlist {
		if w.ProductID != productID {
			list = append(list, w)
		}
	}
	u.Wishlist = list
}
