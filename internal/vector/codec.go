// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package vector

import (
	"math"
	"unicode/utf16"
)

// DefaultDimension is the bucket count used by the folding vectorizer.
const DefaultDimension = 64

// Vector is a dense feature vector. A nil or zero-length Vector is "empty".
type Vector []float64

// IsEmpty reports whether v has no components.
func (v Vector) IsEmpty() bool {
	return len(v) == 0
}

// Clone returns a copy of v that shares no memory with it.
func (v Vector) Clone() Vector {
	if v == nil {
		return nil
	}
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// TextVector folds the UTF-16 code units of text into dim buckets
// (unit i adds code/255 to bucket i mod dim) and L2-normalizes the result.
// Empty text yields the zero vector of length dim.
func TextVector(text string, dim int) Vector {
	if dim <= 0 {
		dim = DefaultDimension
	}
	v := make(Vector, dim)
	for i, unit := range utf16.Encode([]rune(text)) {
		v[i%dim] += float64(unit) / 255
	}
	return normalizeInPlace(v)
}

// PseudoImageVector applies the same folding scheme to raw bytes.
func PseudoImageVector(data []byte, dim int) Vector {
	if dim <= 0 {
		dim = DefaultDimension
	}
	v := make(Vector, dim)
	for i, b := range data {
		v[i%dim] += float64(b) / 255
	}
	return normalizeInPlace(v)
}

// Norm returns the Euclidean length of v.
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length. A zero-norm vector is returned
// unchanged (as a copy).
func Normalize(v Vector) Vector {
	return normalizeInPlace(v.Clone())
}

func normalizeInPlace(v Vector) Vector {
	norm := Norm(v)
	if norm == 0 {
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

// CosineSimilarity compares a and b over their common prefix min(len(a), len(b)).
// Both norms are taken over that prefix. Empty operands and zero partial norms
// score 0.
func CosineSimilarity(a, b Vector) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / math.Sqrt(normA*normB)
}

// Mean returns the component-wise average of vs. Only vectors whose length
// matches the first non-empty vector contribute. The result is not normalized;
// nil is returned when nothing contributes.
func Mean(vs []Vector) Vector {
	var sum Vector
	count := 0
	for _, v := range vs {
		if v.IsEmpty() {
			continue
		}
		if sum == nil {
			sum = make(Vector, len(v))
		}
		if len(v) != len(sum) {
			continue
		}
		for i, x := range v {
			sum[i] += x
		}
		count++
	}
	if count == 0 {
		return nil
	}
	for i := range sum {
		sum[i] /= float64(count)
	}
	return sum
}
