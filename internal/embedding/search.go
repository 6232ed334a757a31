// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package embedding

import (
	"context"

	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/vector"
)

// ImageSearcher ranks image search candidates through the service's /search
// endpoint.
type ImageSearcher struct {
	client *Client
}

var _ recommend.ImageSearcher = (*ImageSearcher)(nil)

// NewImageSearcher wraps client.
func NewImageSearcher(client *Client) *ImageSearcher {
	return &ImageSearcher{client: client}
}

// SearchImage implements recommend.ImageSearcher. Every candidate is sent
// with its image vector and the service scores all of them.
func (s *ImageSearcher) SearchImage(ctx context.Context, query vector.Vector, candidates []*recommend.Product) (map[recommend.ProductID]float64, error) {
	items := make([]SearchItem, 0, len(candidates))
	for _, p := range candidates {
		if p == nil || p.ImageVector.IsEmpty() {
			continue
		}
		items = append(items, SearchItem{ProductID: string(p.ID), Embedding: p.ImageVector})
	}
	if len(items) == 0 {
		return map[recommend.ProductID]float64{}, nil
	}

	hits, err := s.client.Search(ctx, query, items, len(items))
	if err != nil {
		return nil, err
	}
	scores := make(map[recommend.ProductID]float64, len(hits))
	for _, h := range hits {
		scores[recommend.ProductID(h.ProductID)] = h.Score
	}
	return scores, nil
}
