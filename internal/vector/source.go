// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package vector

import "context"

// Source turns raw product content into feature vectors.
//
// Implementations may perform I/O (an external embedding service) and must
// honor ctx. Vectors produced by any Source are stored and compared the same
// way; the ranking code never asks where a vector came from.
type Source interface {
	// TextVector embeds product text (title and description).
	TextVector(ctx context.Context, text string) (Vector, error)

	// ImageVector embeds raw image bytes.
	ImageVector(ctx context.Context, data []byte) (Vector, error)

	// Dimension is the length of vectors produced by this source.
	Dimension() int
}

// FoldingSource is the deterministic byte-folding Source.
type FoldingSource struct {
	Dim int
}

// NewFoldingSource returns a FoldingSource with dim buckets (DefaultDimension if dim <= 0).
func NewFoldingSource(dim int) FoldingSource {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return FoldingSource{Dim: dim}
}

// TextVector implements Source.
func (s FoldingSource) TextVector(_ context.Context, text string) (Vector, error) {
	return TextVector(text, s.Dimension()), nil
}

// ImageVector implements Source.
func (s FoldingSource) ImageVector(_ context.Context, data []byte) (Vector, error) {
	return PseudoImageVector(data, s.Dimension()), nil
}

// Dimension implements Source.
func (s FoldingSource) Dimension() int {
	if s.Dim <= 0 {
		return DefaultDimension
	}
	return s.Dim
}
