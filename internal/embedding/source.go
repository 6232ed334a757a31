// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package embedding

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/vector"
)

// ImageEmbedder computes image embeddings.
type ImageEmbedder interface {
	EmbedImage(ctx context.Context, image []byte) (vector.Vector, error)
}

// Source is a vector.Source backed by the embedding service for images.
// Text always uses the folding scheme. When the service fails, images fall
// back to the pseudo image vector so callers keep getting a usable vector.
type Source struct {
	embedder ImageEmbedder
	fallback vector.FoldingSource
	logger   zerolog.Logger
}

var _ vector.Source = (*Source)(nil)

// NewSource wraps embedder. A nil embedder always uses the fallback.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSource(embedder ImageEmbedder, dim int, logger zerolog.Logger) *Source {
	return &Source{
		embedder: embedder,
		fallback: vector.NewFoldingSource(dim),
		logger:   logger.With().Str("component", "embedding-source").Logger(),
	}
}

// TextVector implements vector.Source.
func (s *Source) TextVector(ctx context.Context, text string) (vector.Vector, error) {
	return s.fallback.TextVector(ctx, text)
}

// ImageVector implements vector.Source.
func (s *Source) ImageVector(ctx context.Context, data []byte) (vector.Vector, error) {
	if s.embedder != nil && len(data) > 0 {
		v, err := s.embedder.EmbedImage(ctx, data)
		if err == nil && !v.IsEmpty() {
			return v, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger.Warn().Err(err).Int("bytes", len(data)).Msg("Image embedding failed, using pseudo image vector")
	}
	return s.fallback.ImageVector(ctx, data)
}

// Dimension implements vector.Source. It reports the fallback dimension;
// service vectors may be longer and are compared over the common prefix.
func (s *Source) Dimension() int {
	return s.fallback.Dimension()
}
