// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/database"
	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/vector"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVectorizeText(t *testing.T) {
	out, err := execute(t, "vectorize", "text", "canvas tote", "--dim", "8")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var got vector.Vector
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
	want := vector.TextVector("canvas tote", 8)
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("component %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestVectorizeImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tote.jpg")
	if err := os.WriteFile(path, []byte("jpeg bytes"), 0o600); err != nil {
		t.Fatalf("write image: %v", err)
	}
	out, err := execute(t, "vectorize", "image", path, "--dim", "4")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	var got vector.Vector
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if len(got) != 4 {
		t.Errorf("len = %d, want 4", len(got))
	}

	if _, err := execute(t, "vectorize", "image", filepath.Join(t.TempDir(), "missing.jpg"), "--dim", "4"); err == nil {
		t.Error("missing file: error = nil")
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want string
	}{
		{"identical", "leather tote", "leather tote", "1.000000"},
		{"empty text", "", "leather tote", "0.000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "similarity", tt.a, tt.b, "--dim", "16")
			if err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Errorf("similarity = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := execute(t, "similarity", "only-one", "--dim", "16"); err == nil {
		t.Error("one argument: error = nil")
	}
}

func TestReindexAndSimilar(t *testing.T) {
	ctx := context.Background()
	db, err := database.New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
	if err != nil {
		t.Fatalf("database.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	for _, p := range []*recommend.Product{
		{ID: "tote-1", Title: "Canvas tote", Description: "bag", Category: "bags", Price: 20, Active: true, TextVector: vector.Vector{1}},
		{ID: "tote-2", Title: "Canvas tote", Description: "large bag", Category: "bags", Price: 25, Active: true, TextVector: vector.Vector{1}},
		{ID: "boot-1", Title: "Hiking boot", Description: "shoe", Category: "shoes", Price: 90, Active: true},
	} {
		if err := db.Save(ctx, p); err != nil {
			t.Fatalf("Save(%s) error = %v", p.ID, err)
		}
	}

	n, err := reindex(ctx, db, 16)
	if err != nil {
		t.Fatalf("reindex() error = %v", err)
	}
	if n != 3 {
		t.Errorf("reindexed = %d, want 3", n)
	}
	p, err := db.FindByID(ctx, "tote-1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if len(p.TextVector) != 16 {
		t.Errorf("TextVector len = %d, want 16", len(p.TextVector))
	}

	cfg := config.Default()
	cfg.Vector.Dimension = 16
	res, err := similar(ctx, cfg, db, "tote-1", 5)
	if err != nil {
		t.Fatalf("similar() error = %v", err)
	}
	if len(res.Items) == 0 || res.Items[0].Product.ID != "tote-2" {
		t.Errorf("similar(tote-1) = %v, want tote-2 first", res.Products())
	}
}
