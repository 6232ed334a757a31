// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package vector

import (
	"context"
	"math"
	"testing"
)

const epsilon = 1e-9

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestTextVector_Deterministic(t *testing.T) {
	t.Parallel()

	inputs := []string{"", "a", "Red leather shoes", "naïve café", "emoji 👟 sneaker"}
	for _, in := range inputs {
		a := TextVector(in, 64)
		b := TextVector(in, 64)
		if len(a) != 64 {
			t.Fatalf("len(TextVector(%q)) = %d, want 64", in, len(a))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("TextVector(%q)[%d] differs between calls: %v vs %v", in, i, a[i], b[i])
			}
		}
	}
}

func TestTextVector_Folding(t *testing.T) {
	t.Parallel()

	// "ab" with dim 1: both units fold into bucket 0, normalized to 1.
	v := TextVector("ab", 1)
	if !almostEqual(v[0], 1) {
		t.Errorf("TextVector(ab, 1) = %v, want [1]", v)
	}

	// "aa" with dim 2: equal buckets => 1/sqrt(2) each.
	v = TextVector("aa", 2)
	want := 1 / math.Sqrt2
	if !almostEqual(v[0], want) || !almostEqual(v[1], want) {
		t.Errorf("TextVector(aa, 2) = %v, want [%v %v]", v, want, want)
	}

	// "ab" with dim 4: bucket 0 = 97/255, bucket 1 = 98/255, normalized.
	v = TextVector("ab", 4)
	norm := math.Sqrt(97*97 + 98*98)
	if !almostEqual(v[0], 97/norm) || !almostEqual(v[1], 98/norm) || v[2] != 0 || v[3] != 0 {
		t.Errorf("TextVector(ab, 4) = %v", v)
	}
}

func TestTextVector_SurrogatePairs(t *testing.T) {
	t.Parallel()

	// U+1F45F encodes as two UTF-16 code units, so it occupies two buckets.
	v := TextVector("👟", 4)
	nonZero := 0
	for _, x := range v {
		if x != 0 {
			nonZero++
		}
	}
	if nonZero != 2 {
		t.Errorf("non-zero buckets = %d, want 2 (vector %v)", nonZero, v)
	}
}

func TestTextVector_EmptyIsZero(t *testing.T) {
	t.Parallel()

	v := TextVector("", 8)
	if len(v) != 8 {
		t.Fatalf("len = %d, want 8", len(v))
	}
	for i, x := range v {
		if x != 0 {
			t.Errorf("v[%d] = %v, want 0", i, x)
		}
	}
}

func TestPseudoImageVector(t *testing.T) {
	t.Parallel()

	data := []byte{255, 0, 255, 0}
	v := PseudoImageVector(data, 2)
	if !almostEqual(v[0], 1) || v[1] != 0 {
		t.Errorf("PseudoImageVector = %v, want [1 0]", v)
	}

	again := PseudoImageVector(data, 2)
	if v[0] != again[0] || v[1] != again[1] {
		t.Error("PseudoImageVector is not deterministic")
	}

	if got := PseudoImageVector(nil, 0); len(got) != DefaultDimension {
		t.Errorf("len(PseudoImageVector(nil, 0)) = %d, want %d", len(got), DefaultDimension)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       Vector
		wantNorm float64
	}{
		{"unit axis", Vector{3, 0}, 1},
		{"three four", Vector{3, 4}, 1},
		{"negative", Vector{-1, -1, -1}, 1},
		{"zero", Vector{0, 0, 0}, 0},
		{"empty", Vector{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Normalize(tt.in)
			if n := Norm(got); !almostEqual(n, tt.wantNorm) {
				t.Errorf("Norm(Normalize(%v)) = %v, want %v", tt.in, n, tt.wantNorm)
			}
			if len(got) != len(tt.in) {
				t.Errorf("len = %d, want %d", len(got), len(tt.in))
			}
		})
	}

	in := Vector{3, 4}
	_ = Normalize(in)
	if in[0] != 3 || in[1] != 4 {
		t.Errorf("Normalize mutated its input: %v", in)
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b Vector
		want float64
	}{
		{"identical", Vector{1, 2, 3}, Vector{1, 2, 3}, 1},
		{"scaled", Vector{1, 2}, Vector{2, 4}, 1},
		{"orthogonal", Vector{1, 0}, Vector{0, 1}, 0},
		{"opposite", Vector{1, 0}, Vector{-1, 0}, -1},
		{"empty a", Vector{}, Vector{1}, 0},
		{"nil b", Vector{1}, nil, 0},
		{"zero norm", Vector{0, 0}, Vector{1, 1}, 0},
		{"prefix only", Vector{1, 0, 99}, Vector{1, 0}, 1},
		{"zero prefix", Vector{0, 5}, Vector{1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CosineSimilarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("CosineSimilarity(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCosineSimilarity_Bounds(t *testing.T) {
	t.Parallel()

	texts := []string{"shoes", "bags", "red leather shoes", "SHOES", "x"}
	for _, a := range texts {
		va := TextVector(a, 16)
		if self := CosineSimilarity(va, va); !almostEqual(self, 1) {
			t.Errorf("CosineSimilarity(%q, itself) = %v, want 1", a, self)
		}
		for _, b := range texts {
			s := CosineSimilarity(va, TextVector(b, 16))
			if s < -1-epsilon || s > 1+epsilon {
				t.Errorf("CosineSimilarity(%q, %q) = %v out of [-1, 1]", a, b, s)
			}
		}
	}
}

func TestMean(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []Vector
		want Vector
	}{
		{"single", []Vector{{1, 2}}, Vector{1, 2}},
		{"two", []Vector{{1, 0}, {0, 1}}, Vector{0.5, 0.5}},
		{"skips mismatched", []Vector{{2, 2}, {1, 1, 1}, {0, 0}}, Vector{1, 1}},
		{"skips empty", []Vector{{}, {4, 4}}, Vector{4, 4}},
		{"nothing", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Mean(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("Mean = %v, want %v", got, tt.want)
			}
			for i := range got {
				if !almostEqual(got[i], tt.want[i]) {
					t.Errorf("Mean[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestFoldingSource(t *testing.T) {
	t.Parallel()

	src := NewFoldingSource(0)
	if src.Dimension() != DefaultDimension {
		t.Errorf("Dimension() = %d, want %d", src.Dimension(), DefaultDimension)
	}

	var s Source = NewFoldingSource(32)
	tv, err := s.TextVector(context.Background(), "Canvas tote")
	if err != nil {
		t.Fatalf("TextVector: %v", err)
	}
	if len(tv) != 32 {
		t.Errorf("len(TextVector) = %d, want 32", len(tv))
	}
	iv, err := s.ImageVector(context.Background(), []byte{1, 2, 3})
	if err != nil {
		t.Fatalf("ImageVector: %v", err)
	}
	if !almostEqual(Norm(iv), 1) {
		t.Errorf("Norm(ImageVector) = %v, want 1", Norm(iv))
	}
}
