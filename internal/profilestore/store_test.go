// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package profilestore

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/recommend/recommendtest"
	"github.com/tomtom215/storefront/internal/vector"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(&config.ProfilesConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return s
}

func testProfile(id string) *recommend.UserProfile {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &recommend.UserProfile{
		ID:                recommend.UserID(id),
		InteractionVector: vector.Vector{0.5, -0.25},
		InteractionCount:  2,
		ViewedProducts: []recommend.ViewEntry{
			{ProductID: "p2", ViewedAt: now},
			{ProductID: "p1", ViewedAt: now.Add(-time.Hour)},
		},
		Wishlist:  []recommend.WishlistEntry{{ProductID: "p9", AddedAt: now}},
		CreatedAt: now.Add(-24 * time.Hour),
		UpdatedAt: now,
	}
}

func TestSaveAndFindByID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := testProfile("u1")
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindByID() = %+v, want %+v", got, want)
	}

	// Overwrite
	want.InteractionCount = 3
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}
	got, err = s.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.InteractionCount != 3 {
		t.Errorf("InteractionCount = %d, want 3", got.InteractionCount)
	}
}

func TestFindByIDNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.FindByID(context.Background(), "ghost"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("FindByID(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestSaveRejectsEmptyID(t *testing.T) {
	s := openTestStore(t)
	if err := s.Save(context.Background(), &recommend.UserProfile{}); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("Save(empty id) error = %v, want ErrInvalidInput", err)
	}
}

func TestClosedStore(t *testing.T) {
	s, err := Open(&config.ProfilesConfig{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	ctx := context.Background()
	if err := s.Ping(ctx); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Ping() after Close error = %v, want ErrStoreClosed", err)
	}
	if _, err := s.FindByID(ctx, "u"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("FindByID() after Close error = %v, want ErrStoreClosed", err)
	}
	if err := s.Save(ctx, testProfile("u")); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Save() after Close error = %v, want ErrStoreClosed", err)
	}
	if err := s.RunGC(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("RunGC() after Close error = %v, want ErrStoreClosed", err)
	}
}

func TestOnDiskStoreGC(t *testing.T) {
	s, err := Open(&config.ProfilesConfig{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Save(context.Background(), testProfile("u1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestAccumulatorOverStore(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &recommend.Product{ID: "p1", Active: true, TextVector: vector.Vector{1, 0}}
	catalog := recommendtest.NewCatalog(p)
	acc := recommend.NewAccumulator(catalog, s, recommend.DefaultConfig().Profile, zerolog.Nop())

	if _, err := acc.EnsureProfile(ctx, "u1"); err != nil {
		t.Fatalf("EnsureProfile() error = %v", err)
	}
	if _, err := acc.RecordView(ctx, "u1", "p1"); err != nil {
		t.Fatalf("RecordView() error = %v", err)
	}

	got, err := s.FindByID(ctx, "u1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got.InteractionCount != 1 || len(got.ViewedProducts) != 1 {
		t.Errorf("profile = count %d views %d, want 1 and 1", got.InteractionCount, len(got.ViewedProducts))
	}
	if !reflect.DeepEqual(got.InteractionVector, vector.Vector{1, 0}) {
		t.Errorf("InteractionVector = %v, want [1 0]", got.InteractionVector)
	}
}

func TestCompactorLifecycle(t *testing.T) {
	s := openTestStore(t)
	c := NewCompactor(s, 10*time.Millisecond)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !c.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}
	if err := c.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded, want error")
	}

	time.Sleep(30 * time.Millisecond)
	c.Stop()
	if c.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	c.Stop() // idempotent
}
