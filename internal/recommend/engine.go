// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/vector"
)

// Recorder receives per-request pipeline observations. The metrics package
// provides the Prometheus implementation.
type Recorder interface {
	ObservePipeline(pipeline string, duration time.Duration, candidates int, fallback string, err error)
}

// ImageSearcher scores candidates against a query image vector outside the
// process. Candidates missing from the returned map are treated as unscored.
type ImageSearcher interface {
	SearchImage(ctx context.Context, query vector.Vector, candidates []*Product) (map[ProductID]float64, error)
}

type nopRecorder struct{}

func (nopRecorder) ObservePipeline(string, time.Duration, int, string, error) {}

// Ranker is the read surface of the engine, implemented by Engine and CachedRanker.
type Ranker interface {
	SimilarToEntity(ctx context.Context, id ProductID, k int) (*Result, error)
	HybridSimilarToEntity(ctx context.Context, id ProductID, k int, override *WeightsOverride) (*Result, error)
	PersonalizedForUser(ctx context.Context, userID UserID, k int) (*Result, error)
	Trending(ctx context.Context, k int) (*Result, error)
	SearchByImage(ctx context.Context, image []byte, k int) (*Result, error)
	UserEmbedding(ctx context.Context, userID UserID) (vector.Vector, error)
}

// Engine runs the ranking pipelines. It holds no mutable ranking state and is
// safe for concurrent use.
type Engine struct {
	config   *Config
	catalog  CatalogRepository
	users    UserRepository
	source   vector.Source
	pool     *CandidatePool
	logger   zerolog.Logger
	recorder Recorder
	searcher ImageSearcher

	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewEngine creates a ranking engine. A nil cfg uses DefaultConfig.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg *Config, catalog CatalogRepository, users UserRepository, source vector.Source, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if catalog == nil {
		return nil, errors.New("catalog repository is required")
	}
	if users == nil {
		return nil, errors.New("user repository is required")
	}
	if source == nil {
		source = vector.NewFoldingSource(vector.DefaultDimension)
	}

	return &Engine{
		config:   cfg.Clone(),
		catalog:  catalog,
		users:    users,
		source:   source,
		pool:     NewCandidatePool(catalog, cfg.Limits),
		logger:   logger.With().Str("component", "recommend").Logger(),
		recorder: nopRecorder{},
	}, nil
}

// SetRecorder installs a pipeline observer. Passing nil disables observation.
func (e *Engine) SetRecorder(r Recorder) {
	if r == nil {
		r = nopRecorder{}
	}
	e.recorder = r
}

// SetImageSearcher routes SearchByImage scoring through s. Local cosine
// scoring is used when s is nil or fails.
func (e *Engine) SetImageSearcher(s ImageSearcher) {
	e.searcher = s
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

// Stats returns the request and error counters.
func (e *Engine) Stats() (requests, errs int64) {
	return e.requestCount.Load(), e.errorCount.Load()
}

func (e *Engine) observe(pipeline string, start time.Time, res *Result, err error) {
	e.requestCount.Add(1)
	if err != nil {
		e.errorCount.Add(1)
	}
	candidates, fallback := 0, ""
	if res != nil {
		candidates, fallback = res.TotalCandidates, res.Fallback
		if res.ColdStart {
			fallback = "cold_start"
		}
	}
	e.recorder.ObservePipeline(pipeline, time.Since(start), candidates, fallback, err)
}

// SimilarToEntity ranks products of the same category by single-signal cosine
// similarity against the base product's preferred vector. Candidates below the
// similar threshold are dropped.
func (e *Engine) SimilarToEntity(ctx context.Context, id ProductID, k int) (res *Result, err error) {
	start := time.Now()
	defer func() { e.observe(PipelineSimilar, start, res, err) }()

	k = e.config.clampK(k, e.config.Limits.DefaultSimilarK)

	base, err := e.catalog.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get base product: %w", err)
	}

	baseVec := base.PreferredVector()
	if baseVec.IsEmpty() {
		return emptyResult(PipelineSimilar), nil
	}

	candidates, err := e.pool.ForSimilarTo(ctx, base, StrategyCategory)
	if err != nil {
		return nil, err
	}

	threshold := e.config.Thresholds.Similar
	scored := make([]ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		v := c.PreferredVector()
		if v.IsEmpty() {
			continue
		}
		score := SingleSignalScore(baseVec, v)
		if score < threshold {
			continue
		}
		scored = append(scored, ScoredResult{Product: c, Score: score})
	}
	sortScored(scored)

	return &Result{
		Pipeline:        PipelineSimilar,
		Items:           truncate(scored, k),
		Threshold:       threshold,
		TotalCandidates: len(candidates),
	}, nil
}

// HybridSimilarToEntity ranks category-or-price-band candidates by the weighted
// hybrid score. Nothing is filtered by score. A missing base product yields an
// empty result rather than an error.
func (e *Engine) HybridSimilarToEntity(ctx context.Context, id ProductID, k int, override *WeightsOverride) (res *Result, err error) {
	start := time.Now()
	defer func() { e.observe(PipelineHybrid, start, res, err) }()

	k = e.config.clampK(k, e.config.Limits.DefaultHybridK)

	base, err := e.catalog.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return emptyResult(PipelineHybrid), nil
		}
		return nil, fmt.Errorf("get base product: %w", err)
	}

	candidates, err := e.pool.ForSimilarTo(ctx, base, StrategyCategoryOrPriceBand)
	if err != nil {
		return nil, err
	}

	weights := e.config.Weights.Merge(override)
	scored := make([]ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		b := HybridScore(base, c, weights)
		scored = append(scored, ScoredResult{Product: c, Score: b.Total, Breakdown: &b})
	}
	sortScored(scored)

	return &Result{
		Pipeline:        PipelineHybrid,
		Items:           truncate(scored, k),
		TotalCandidates: len(candidates),
	}, nil
}

// PersonalizedForUser ranks products against the mean vector of the user's
// recent views, escalating through cold-start, relaxed-threshold and trending
// fallbacks.
func (e *Engine) PersonalizedForUser(ctx context.Context, userID UserID, k int) (res *Result, err error) {
	start := time.Now()
	defer func() { e.observe(PipelinePersonalized, start, res, err) }()

	k = e.config.clampK(k, e.config.Limits.DefaultPersonalizedK)
	log := e.logger.With().Str("user_id", string(userID)).Logger()

	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	exclude := make(map[ProductID]struct{}, len(user.ViewedProducts)+len(user.Wishlist))
	for _, v := range user.ViewedProducts {
		exclude[v.ProductID] = struct{}{}
	}
	for _, w := range user.Wishlist {
		exclude[w.ProductID] = struct{}{}
	}

	viewed, err := e.catalog.FindActiveByIDs(ctx, user.ViewedIDs(e.config.Limits.RecentViews))
	if err != nil {
		return nil, fmt.Errorf("get viewed products: %w", err)
	}

	vectors := make([]vector.Vector, 0, len(viewed))
	for _, p := range viewed {
		if v := p.PreferredVector(); !v.IsEmpty() {
			vectors = append(vectors, v)
		}
	}
	if len(vectors) == 0 {
		log.Debug().Msg("No usable history, serving cold start")
		return e.coldStart(ctx, OrderColdStart, k)
	}

	profile := vector.Normalize(vector.Mean(vectors))
	if profile.IsEmpty() {
		log.Debug().Msg("Empty profile vector, serving cold start")
		return e.coldStart(ctx, OrderPopularity, k)
	}

	candidates, err := e.pool.ForUserProfile(ctx, exclude, categoriesOf(viewed), e.config.Limits.PersonalizedScan)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		var score float64
		if v := c.PreferredVector(); !v.IsEmpty() {
			score = SingleSignalScore(profile, v)
		}
		scored = append(scored, ScoredResult{Product: c, Score: score})
	}
	sortScored(scored)

	threshold := e.config.Thresholds.Personalized
	filtered := filterByThreshold(scored, threshold)
	if len(filtered) < e.config.Thresholds.MinPersonalized {
		threshold = e.config.Thresholds.PersonalizedRelaxed
		filtered = filterByThreshold(scored, threshold)
	}

	if len(filtered) == 0 {
		log.Debug().Int("candidates", len(candidates)).Msg("Nothing passed relaxed threshold, serving trending")
		top, err := e.catalog.FindTopByPopularity(ctx, OrderPopularity, k)
		if err != nil {
			return nil, fmt.Errorf("get trending fallback: %w", err)
		}
		return &Result{
			Pipeline:        PipelinePersonalized,
			Items:           unscored(top),
			Fallback:        FallbackTrending,
			TotalCandidates: len(candidates),
		}, nil
	}

	return &Result{
		Pipeline:        PipelinePersonalized,
		Items:           truncate(filtered, k),
		Threshold:       threshold,
		TotalCandidates: len(candidates),
	}, nil
}

func (e *Engine) coldStart(ctx context.Context, order PopularityOrder, k int) (*Result, error) {
	top, err := e.catalog.FindTopByPopularity(ctx, order, k)
	if err != nil {
		return nil, fmt.Errorf("get cold start products: %w", err)
	}
	return &Result{
		Pipeline:  PipelinePersonalized,
		Items:     unscored(top),
		ColdStart: true,
	}, nil
}

// Trending returns the most popular active products.
func (e *Engine) Trending(ctx context.Context, k int) (res *Result, err error) {
	start := time.Now()
	defer func() { e.observe(PipelineTrending, start, res, err) }()

	k = e.config.clampK(k, e.config.Limits.DefaultTrendingK)
	top, err := e.catalog.FindTopByPopularity(ctx, OrderTrending, k)
	if err != nil {
		return nil, fmt.Errorf("get trending products: %w", err)
	}
	return &Result{Pipeline: PipelineTrending, Items: unscored(top)}, nil
}

// SearchByImage embeds image with the configured source and ranks products by
// image similarity, dropping candidates below the similar threshold. Scores
// come from the image searcher when one is set, else from local cosine.
func (e *Engine) SearchByImage(ctx context.Context, image []byte, k int) (res *Result, err error) {
	start := time.Now()
	defer func() { e.observe(PipelineImageSearch, start, res, err) }()

	if len(image) == 0 {
		return nil, fmt.Errorf("empty image: %w", ErrInvalidInput)
	}
	k = e.config.clampK(k, e.config.Limits.DefaultSearchK)

	query, err := e.source.ImageVector(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("embed query image: %w", err)
	}
	if query.IsEmpty() {
		return emptyResult(PipelineImageSearch), nil
	}

	candidates, err := e.pool.ForImageSearch(ctx)
	if err != nil {
		return nil, err
	}

	remote, err := e.remoteImageScores(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	threshold := e.config.Thresholds.Similar
	scored := make([]ScoredResult, 0, len(candidates))
	for _, c := range candidates {
		score := SingleSignalScore(query, c.ImageVector)
		if remote != nil {
			s, ok := remote[c.ID]
			if !ok {
				continue
			}
			score = s
		}
		if score < threshold {
			continue
		}
		scored = append(scored, ScoredResult{Product: c, Score: score})
	}
	sortScored(scored)

	return &Result{
		Pipeline:        PipelineImageSearch,
		Items:           truncate(scored, k),
		Threshold:       threshold,
		TotalCandidates: len(candidates),
	}, nil
}

// remoteImageScores asks the image searcher for candidate scores. A nil map
// means local scoring. Only caller cancellation is returned as an error.
func (e *Engine) remoteImageScores(ctx context.Context, query vector.Vector, candidates []*Product) (map[ProductID]float64, error) {
	if e.searcher == nil || len(candidates) == 0 {
		return nil, nil
	}
	scores, err := e.searcher.SearchImage(ctx, query, candidates)
	if err == nil {
		return scores, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	e.logger.Warn().Err(err).Int("candidates", len(candidates)).Msg("Image search service failed, scoring locally")
	return nil, nil
}

// UserEmbedding returns the unnormalized mean vector of the user's most recent
// views. It is independent of the stored interaction vector. Nil means no
// usable history.
func (e *Engine) UserEmbedding(ctx context.Context, userID UserID) (vector.Vector, error) {
	user, err := e.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	viewed, err := e.catalog.FindActiveByIDs(ctx, user.ViewedIDs(e.config.Limits.EmbeddingViews))
	if err != nil {
		return nil, fmt.Errorf("get viewed products: %w", err)
	}

	vectors := make([]vector.Vector, 0, len(viewed))
	for _, p := range viewed {
		if v := p.PreferredVector(); !v.IsEmpty() {
			vectors = append(vectors, v)
		}
	}
	return vector.Mean(vectors), nil
}

// unscored wraps popularity-ordered products as results with zero score.
func unscored(products []*Product) []ScoredResult {
	out := make([]ScoredResult, 0, len(products))
	for _, p := range products {
		if p == nil || !p.Active {
			continue
		}
		out = append(out, ScoredResult{Product: p})
	}
	return out
}

// categoriesOf returns the distinct non-empty categories of products, in first-seen order.
func categoriesOf(products []*Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0, len(products))
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}

func sortProductIDs(ids []ProductID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
