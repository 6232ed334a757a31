// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package embedding

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/recommend/recommendtest"
	"github.com/tomtom215/storefront/internal/vector"
)

type fakeEmbedder struct {
	v   vector.Vector
	err error
}

func (f fakeEmbedder) EmbedImage(context.Context, []byte) (vector.Vector, error) {
	return f.v, f.err
}

func TestSourceImageVector(t *testing.T) {
	data := []byte("image")
	pseudo := vector.PseudoImageVector(data, 8)

	tests := []struct {
		name     string
		embedder ImageEmbedder
		want     vector.Vector
	}{
		{"service vector", fakeEmbedder{v: vector.Vector{0.1, 0.2}}, vector.Vector{0.1, 0.2}},
		{"service failure falls back", fakeEmbedder{err: ErrUnavailable}, pseudo},
		{"empty service vector falls back", fakeEmbedder{}, pseudo},
		{"no service", nil, pseudo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSource(tt.embedder, 8, zerolog.Nop())
			got, err := s.ImageVector(context.Background(), data)
			if err != nil {
				t.Fatalf("ImageVector() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ImageVector() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSourceCanceledContext(t *testing.T) {
	s := NewSource(fakeEmbedder{err: context.Canceled}, 8, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ImageVector(ctx, []byte{1}); !errors.Is(err, context.Canceled) {
		t.Errorf("ImageVector() error = %v, want context.Canceled", err)
	}
}

func TestSourceTextVector(t *testing.T) {
	s := NewSource(fakeEmbedder{v: vector.Vector{9}}, 8, zerolog.Nop())
	got, err := s.TextVector(context.Background(), "red boots")
	if err != nil {
		t.Fatalf("TextVector() error = %v", err)
	}
	if want := vector.TextVector("red boots", 8); !reflect.DeepEqual(got, want) {
		t.Errorf("TextVector() = %v, want %v", got, want)
	}
	if s.Dimension() != 8 {
		t.Errorf("Dimension() = %d, want 8", s.Dimension())
	}
}

type fakeIndex struct {
	mu      sync.Mutex
	added   map[string]vector.Vector
	removed []string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{added: map[string]vector.Vector{}}
}

func (f *fakeIndex) AddVector(_ context.Context, id string, v vector.Vector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.added[id] = v
	return nil
}

func (f *fakeIndex) RemoveVector(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, id)
	return nil
}

func (f *fakeIndex) snapshot() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.added), append([]string(nil), f.removed...)
}

func TestIndexSyncerSync(t *testing.T) {
	catalog := recommendtest.NewCatalog(
		&recommend.Product{ID: "img", Active: true, ImageVector: vector.Vector{1, 0}},
		&recommend.Product{ID: "text-only", Active: true, TextVector: vector.Vector{1}},
		&recommend.Product{ID: "hidden", Active: false, ImageVector: vector.Vector{0, 1}},
	)
	index := newFakeIndex()
	s := NewIndexSyncer(index, catalog, time.Second, zerolog.Nop())
	ctx := context.Background()

	for _, id := range []recommend.ProductID{"img", "text-only", "hidden", "gone"} {
		if err := s.Sync(ctx, id); err != nil {
			t.Fatalf("Sync(%s) error = %v", id, err)
		}
	}

	if !reflect.DeepEqual(index.added, map[string]vector.Vector{"img": {1, 0}}) {
		t.Errorf("added = %v, want only img", index.added)
	}
	if want := []string{"text-only", "hidden", "gone"}; !reflect.DeepEqual(index.removed, want) {
		t.Errorf("removed = %v, want %v", index.removed, want)
	}
}

func TestIndexSyncerWorker(t *testing.T) {
	catalog := recommendtest.NewCatalog(&recommend.Product{ID: "p1", Active: true, ImageVector: vector.Vector{1}})
	index := newFakeIndex()
	s := NewIndexSyncer(index, catalog, time.Second, zerolog.Nop())

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("second Start() succeeded, want error")
	}
	s.ProductChanged("p1")

	deadline := time.Now().Add(2 * time.Second)
	for {
		if added, _ := index.snapshot(); added == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("product was not synced")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
	s.Stop()
}
