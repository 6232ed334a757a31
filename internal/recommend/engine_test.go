// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package recommend_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/recommend/recommendtest"
	"github.com/tomtom215/storefront/internal/vector"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func product(id, category string, price float64, image vector.Vector) *recommend.Product {
	return &recommend.Product{
		ID:          recommend.ProductID(id),
		Title:       id,
		Category:    category,
		Price:       price,
		Active:      true,
		ImageVector: image,
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
}

func withPopularity(p *recommend.Product, score float64, views int64, created time.Time) *recommend.Product {
	p.PopularityScore = score
	p.ViewsCount = views
	p.CreatedAt = created
	return p
}

func userWithViews(id string, viewed ...string) *recommend.UserProfile {
	u := &recommend.UserProfile{ID: recommend.UserID(id), CreatedAt: baseTime, UpdatedAt: baseTime}
	for i, pid := range viewed {
		u.ViewedProducts = append(u.ViewedProducts, recommend.ViewEntry{
			ProductID: recommend.ProductID(pid),
			ViewedAt:  baseTime.Add(-time.Duration(i) * time.Minute),
		})
	}
	return u
}

func newTestEngine(t *testing.T, catalog recommend.CatalogRepository, users recommend.UserRepository) *recommend.Engine {
	t.Helper()
	engine, err := recommend.NewEngine(nil, catalog, users, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func ids(res *recommend.Result) []recommend.ProductID {
	out := make([]recommend.ProductID, 0, len(res.Items))
	for _, it := range res.Items {
		out = append(out, it.Product.ID)
	}
	return out
}

func equalIDs(got []recommend.ProductID, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if string(got[i]) != want[i] {
			return false
		}
	}
	return true
}

func TestNewEngine(t *testing.T) {
	catalog := recommendtest.NewCatalog()
	users := recommendtest.NewUsers()

	tests := []struct {
		name    string
		cfg     *recommend.Config
		catalog recommend.CatalogRepository
		users   recommend.UserRepository
		wantErr bool
	}{
		{"defaults", nil, catalog, users, false},
		{"nil catalog", nil, nil, users, true},
		{"nil users", nil, catalog, nil, true},
		{"invalid config", &recommend.Config{}, catalog, users, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recommend.NewEngine(tt.cfg, tt.catalog, tt.users, nil, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Errorf("NewEngine() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func shoesAndBags() *recommendtest.Catalog {
	return recommendtest.NewCatalog(
		product("A", "shoes", 1000, vector.Vector{1, 0}),
		product("B", "shoes", 1050, vector.Vector{1, 0}),
		product("C", "bags", 1000, vector.Vector{0, 1}),
	)
}

func TestSimilarToEntity_CategoryOnly(t *testing.T) {
	engine := newTestEngine(t, shoesAndBags(), recommendtest.NewUsers())

	res, err := engine.SimilarToEntity(context.Background(), "A", 5)
	if err != nil {
		t.Fatalf("SimilarToEntity() error = %v", err)
	}
	if !equalIDs(ids(res), "B") {
		t.Fatalf("SimilarToEntity(A) = %v, want [B]", ids(res))
	}
	if math.Abs(res.Items[0].Score-1) > 1e-9 {
		t.Errorf("score(B) = %v, want 1", res.Items[0].Score)
	}
	if res.Threshold != 0.40 {
		t.Errorf("Threshold = %v, want 0.40", res.Threshold)
	}
}

func TestSimilarToEntity_ThresholdDrop(t *testing.T) {
	catalog := recommendtest.NewCatalog(
		product("A", "shoes", 100, vector.Vector{1, 0}),
		product("near", "shoes", 100, vector.Vector{1, 0.5}), // cos 0.894
		product("far", "shoes", 100, vector.Vector{0.3, 1}),  // cos 0.287
		product("novec", "shoes", 100, nil),
	)
	engine := newTestEngine(t, catalog, recommendtest.NewUsers())

	res, err := engine.SimilarToEntity(context.Background(), "A", 10)
	if err != nil {
		t.Fatalf("SimilarToEntity() error = %v", err)
	}
	if !equalIDs(ids(res), "near") {
		t.Errorf("SimilarToEntity(A) = %v, want [near]", ids(res))
	}
	for _, it := range res.Items {
		if it.Score < 0.40 {
			t.Errorf("item %s score %v below threshold", it.Product.ID, it.Score)
		}
	}
	if res.TotalCandidates != 3 {
		t.Errorf("TotalCandidates = %d, want 3", res.TotalCandidates)
	}
}

func TestSimilarToEntity_TextFallbackAndTies(t *testing.T) {
	a := product("A", "hats", 10, nil)
	a.TextVector = vector.Vector{0, 1}
	z := product("z", "hats", 10, nil)
	z.TextVector = vector.Vector{0, 1}
	m := product("m", "hats", 10, vector.Vector{0, 2})
	engine := newTestEngine(t, recommendtest.NewCatalog(a, z, m), recommendtest.NewUsers())

	res, err := engine.SimilarToEntity(context.Background(), "A", 10)
	if err != nil {
		t.Fatalf("SimilarToEntity() error = %v", err)
	}
	// Equal scores order by ID.
	if !equalIDs(ids(res), "m", "z") {
		t.Errorf("SimilarToEntity(A) = %v, want [m z]", ids(res))
	}
}

func TestSimilarToEntity_Errors(t *testing.T) {
	inactive := product("off", "shoes", 10, vector.Vector{1, 0})
	inactive.Active = false
	catalog := recommendtest.NewCatalog(inactive, product("novec", "shoes", 10, nil), product("other", "shoes", 10, vector.Vector{1, 0}))
	engine := newTestEngine(t, catalog, recommendtest.NewUsers())
	ctx := context.Background()

	tests := []struct {
		name      string
		id        recommend.ProductID
		wantErr   error
		wantEmpty bool
	}{
		{"missing", "nope", recommend.ErrNotFound, false},
		{"inactive", "off", recommend.ErrNotFound, false},
		{"no base vector", "novec", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := engine.SimilarToEntity(ctx, tt.id, 5)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantEmpty && len(res.Items) != 0 {
				t.Errorf("Items = %v, want empty", ids(res))
			}
		})
	}
}

func TestHybridSimilarToEntity_Scenario(t *testing.T) {
	engine := newTestEngine(t, shoesAndBags(), recommendtest.NewUsers())

	res, err := engine.HybridSimilarToEntity(context.Background(), "A", 5, nil)
	if err != nil {
		t.Fatalf("HybridSimilarToEntity() error = %v", err)
	}
	if !equalIDs(ids(res), "B", "C") {
		t.Fatalf("HybridSimilarToEntity(A) = %v, want [B C]", ids(res))
	}

	b, c := res.Items[0].Breakdown, res.Items[1].Breakdown
	if b == nil || c == nil {
		t.Fatal("Breakdown missing on hybrid results")
	}
	if b.ImageSim != 1 || b.CategoryScore != 1 {
		t.Errorf("B breakdown = %+v, want imageSim 1 and categoryScore 1", *b)
	}
	if c.ImageSim != 0 || c.CategoryScore != 0 || c.PriceScore != 1 {
		t.Errorf("C breakdown = %+v, want imageSim 0, categoryScore 0, priceScore 1", *c)
	}
	if math.Abs(c.Total-0.5) > 1e-9 {
		t.Errorf("C total = %v, want 0.5", c.Total)
	}
}

func TestHybridSimilarToEntity_NoDropAndOrdering(t *testing.T) {
	catalog := recommendtest.NewCatalog(
		product("base", "lamps", 100, vector.Vector{1, 0}),
		product("opposite", "lamps", 100, vector.Vector{-1, 0}),
		product("cheap", "rugs", 60, vector.Vector{0, 1}),
		product("pricey", "rugs", 500, vector.Vector{1, 0}), // outside band, other category
		product("close", "lamps", 110, vector.Vector{1, 0.1}),
	)
	engine := newTestEngine(t, catalog, recommendtest.NewUsers())

	res, err := engine.HybridSimilarToEntity(context.Background(), "base", 10, nil)
	if err != nil {
		t.Fatalf("HybridSimilarToEntity() error = %v", err)
	}
	if !equalIDs(ids(res), "close", "cheap", "opposite") {
		t.Errorf("order = %v, want [close cheap opposite]", ids(res))
	}
	for i := 1; i < len(res.Items); i++ {
		if res.Items[i].Score > res.Items[i-1].Score {
			t.Errorf("items not sorted descending at %d", i)
		}
	}
	if res.Items[len(res.Items)-1].Score >= 0 {
		t.Errorf("opposite score = %v, want negative (kept, not filtered)", res.Items[len(res.Items)-1].Score)
	}
}

func TestHybridSimilarToEntity_MissingBase(t *testing.T) {
	engine := newTestEngine(t, shoesAndBags(), recommendtest.NewUsers())

	res, err := engine.HybridSimilarToEntity(context.Background(), "missing", 5, nil)
	if err != nil {
		t.Fatalf("HybridSimilarToEntity() error = %v, want nil", err)
	}
	if len(res.Items) != 0 {
		t.Errorf("Items = %v, want empty", ids(res))
	}
}

func TestHybridSimilarToEntity_WeightsOverride(t *testing.T) {
	engine := newTestEngine(t, shoesAndBags(), recommendtest.NewUsers())

	zero := 0.0
	priceOnly := &recommend.WeightsOverride{Image: &zero, CategoryBoost: &zero}
	res, err := engine.HybridSimilarToEntity(context.Background(), "A", 5, priceOnly)
	if err != nil {
		t.Fatalf("HybridSimilarToEntity() error = %v", err)
	}
	// C has the exact base price, so price alone ranks it first.
	if !equalIDs(ids(res), "C", "B") {
		t.Errorf("order = %v, want [C B]", ids(res))
	}
}

func TestPersonalizedForUser_ColdStart(t *testing.T) {
	catalog := recommendtest.NewCatalog(
		withPopularity(product("p1", "a", 10, vector.Vector{1, 0}), 10, 1, baseTime),
		withPopularity(product("p2", "a", 10, vector.Vector{1, 0}), 30, 1, baseTime),
		withPopularity(product("p3", "b", 10, nil), 20, 1, baseTime),
	)
	users := recommendtest.NewUsers(userWithViews("u1"))
	engine := newTestEngine(t, catalog, users)
	ctx := context.Background()

	res, err := engine.PersonalizedForUser(ctx, "u1", 12)
	if err != nil {
		t.Fatalf("PersonalizedForUser() error = %v", err)
	}
	if !res.ColdStart {
		t.Error("ColdStart = false, want true")
	}
	trending, err := engine.Trending(ctx, 12)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if got, want := ids(res), ids(trending); len(got) != len(want) || !equalIDs(got, toStrings(want)...) {
		t.Errorf("cold start = %v, want trending %v", got, want)
	}
}

func TestPersonalizedForUser_ColdStartWhenViewsHaveNoVectors(t *testing.T) {
	catalog := recommendtest.NewCatalog(
		product("plain", "a", 10, nil),
		withPopularity(product("hot", "a", 10, vector.Vector{1, 0}), 50, 5, baseTime),
	)
	users := recommendtest.NewUsers(userWithViews("u1", "plain"))
	engine := newTestEngine(t, catalog, users)

	res, err := engine.PersonalizedForUser(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("PersonalizedForUser() error = %v", err)
	}
	if !res.ColdStart {
		t.Error("ColdStart = false, want true")
	}
	if len(res.Items) == 0 || res.Items[0].Product.ID != "hot" {
		t.Errorf("Items = %v, want hot first", ids(res))
	}
}

func toStrings(in []recommend.ProductID) []string {
	out := make([]string, len(in))
	for i, id := range in {
		out[i] = string(id)
	}
	return out
}

func TestPersonalizedForUser_Thresholds(t *testing.T) {
	seen := product("seen", "x", 10, vector.Vector{1, 0})

	tests := []struct {
		name          string
		candidates    []*recommend.Product
		wantIDs       []string
		wantThreshold float64
		wantFallback  string
	}{
		{
			name: "strict threshold when three pass",
			candidates: []*recommend.Product{
				product("c1", "x", 10, vector.Vector{1, 0}),
				product("c2", "x", 10, vector.Vector{1, 0.5}),
				product("c3", "x", 10, vector.Vector{1, 1}),
				product("c4", "x", 10, vector.Vector{0.3, 1}),
			},
			wantIDs:       []string{"c1", "c2", "c3"},
			wantThreshold: 0.35,
		},
		{
			name: "relaxed threshold keeps exactly two",
			candidates: []*recommend.Product{
				product("r1", "x", 10, vector.Vector{0.32, 1}), // cos 0.305
				product("r2", "x", 10, vector.Vector{0.3, 1}),  // cos 0.287
				product("r3", "x", 10, vector.Vector{0.2, 1}),  // cos 0.196
			},
			wantIDs:       []string{"r1", "r2"},
			wantThreshold: 0.25,
		},
		{
			name: "trending fallback when nothing passes",
			candidates: []*recommend.Product{
				withPopularity(product("low1", "x", 10, vector.Vector{0, 1}), 5, 0, baseTime),
				withPopularity(product("low2", "x", 10, vector.Vector{0.1, 1}), 9, 0, baseTime),
			},
			wantIDs:      []string{"low2", "low1", "seen"},
			wantFallback: recommend.FallbackTrending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := recommendtest.NewCatalog(append([]*recommend.Product{seen}, tt.candidates...)...)
			users := recommendtest.NewUsers(userWithViews("u1", "seen"))
			engine := newTestEngine(t, catalog, users)

			res, err := engine.PersonalizedForUser(context.Background(), "u1", 12)
			if err != nil {
				t.Fatalf("PersonalizedForUser() error = %v", err)
			}
			if !equalIDs(ids(res), tt.wantIDs...) {
				t.Errorf("Items = %v, want %v", ids(res), tt.wantIDs)
			}
			if res.Threshold != tt.wantThreshold {
				t.Errorf("Threshold = %v, want %v", res.Threshold, tt.wantThreshold)
			}
			if res.Fallback != tt.wantFallback {
				t.Errorf("Fallback = %q, want %q", res.Fallback, tt.wantFallback)
			}
			if res.ColdStart {
				t.Error("ColdStart = true, want false")
			}
		})
	}
}

func TestPersonalizedForUser_ExcludesHistoryAndWishlist(t *testing.T) {
	catalog := recommendtest.NewCatalog(
		product("seen", "x", 10, vector.Vector{1, 0}),
		product("wished", "x", 10, vector.Vector{1, 0}),
		product("fresh1", "x", 10, vector.Vector{1, 0.1}),
		product("fresh2", "x", 10, vector.Vector{1, 0.2}),
		product("fresh3", "x", 10, vector.Vector{1, 0.3}),
		product("elsewhere", "y", 10, vector.Vector{1, 0}),
	)
	u := userWithViews("u1", "seen")
	u.Wishlist = []recommend.WishlistEntry{{ProductID: "wished", AddedAt: baseTime}}
	engine := newTestEngine(t, catalog, recommendtest.NewUsers(u))

	res, err := engine.PersonalizedForUser(context.Background(), "u1", 12)
	if err != nil {
		t.Fatalf("PersonalizedForUser() error = %v", err)
	}
	if !equalIDs(ids(res), "fresh1", "fresh2", "fresh3") {
		t.Errorf("Items = %v, want [fresh1 fresh2 fresh3]", ids(res))
	}
}

func TestPersonalizedForUser_UnknownUser(t *testing.T) {
	engine := newTestEngine(t, shoesAndBags(), recommendtest.NewUsers())

	_, err := engine.PersonalizedForUser(context.Background(), "ghost", 5)
	if !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestTrending_Order(t *testing.T) {
	catalog := recommendtest.NewCatalog(
		withPopularity(product("old", "a", 1, nil), 10, 5, baseTime.Add(-time.Hour)),
		withPopularity(product("new", "a", 1, nil), 10, 5, baseTime),
		withPopularity(product("viewed", "a", 1, nil), 10, 9, baseTime.Add(-2*time.Hour)),
		withPopularity(product("top", "a", 1, nil), 99, 0, baseTime),
		withPopularity(product("zero", "a", 1, nil), 0, 0, baseTime),
	)
	engine := newTestEngine(t, catalog, recommendtest.NewUsers())

	res, err := engine.Trending(context.Background(), 4)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if !equalIDs(ids(res), "top", "viewed", "new", "old") {
		t.Errorf("Trending = %v, want [top viewed new old]", ids(res))
	}
}

func TestTrending_DefaultK(t *testing.T) {
	products := make([]*recommend.Product, 0, 20)
	for i := 0; i < 20; i++ {
		products = append(products, withPopularity(product(string(rune('a'+i)), "c", 1, nil), float64(i), 0, baseTime))
	}
	engine := newTestEngine(t, recommendtest.NewCatalog(products...), recommendtest.NewUsers())

	res, err := engine.Trending(context.Background(), 0)
	if err != nil {
		t.Fatalf("Trending() error = %v", err)
	}
	if len(res.Items) != 8 {
		t.Errorf("len(Items) = %d, want default 8", len(res.Items))
	}
}

func TestSearchByImage(t *testing.T) {
	img := []byte("a red leather handbag")
	other := []byte{0, 0, 0, 255, 255, 255, 1, 2}
	dim := vector.DefaultDimension

	catalog := recommendtest.NewCatalog(
		product("match", "bags", 10, vector.PseudoImageVector(img, dim)),
		product("other", "bags", 10, vector.PseudoImageVector(other, dim)),
		product("textonly", "bags", 10, nil),
	)
	engine := newTestEngine(t, catalog, recommendtest.NewUsers())
	ctx := context.Background()

	res, err := engine.SearchByImage(ctx, img, 5)
	if err != nil {
		t.Fatalf("SearchByImage() error = %v", err)
	}
	if len(res.Items) == 0 || res.Items[0].Product.ID != "match" {
		t.Fatalf("SearchByImage() = %v, want match first", ids(res))
	}
	if math.Abs(res.Items[0].Score-1) > 1e-9 {
		t.Errorf("score(match) = %v, want 1", res.Items[0].Score)
	}
	for _, it := range res.Items {
		if it.Product.ID == "textonly" {
			t.Error("product without image vector returned")
		}
	}

	if _, err := engine.SearchByImage(ctx, nil, 5); !errors.Is(err, recommend.ErrInvalidInput) {
		t.Errorf("SearchByImage(nil) error = %v, want ErrInvalidInput", err)
	}
}

type stubImageSearcher struct {
	scores map[recommend.ProductID]float64
	err    error
	calls  int
}

func (s *stubImageSearcher) SearchImage(_ context.Context, _ vector.Vector, _ []*recommend.Product) (map[recommend.ProductID]float64, error) {
	s.calls++
	return s.scores, s.err
}

func TestSearchByImage_ImageSearcher(t *testing.T) {
	img := []byte("a red leather handbag")
	dim := vector.DefaultDimension
	newEngine := func() *recommend.Engine {
		return newTestEngine(t, recommendtest.NewCatalog(
			product("match", "bags", 10, vector.PseudoImageVector(img, dim)),
			product("near", "bags", 10, vector.PseudoImageVector([]byte("a blue canvas tote"), dim)),
			product("far", "bags", 10, vector.PseudoImageVector([]byte{9, 9, 9}, dim)),
		), recommendtest.NewUsers())
	}
	ctx := context.Background()

	t.Run("remote scores with threshold", func(t *testing.T) {
		engine := newEngine()
		searcher := &stubImageSearcher{scores: map[recommend.ProductID]float64{
			"match": 0.55, "near": 0.91, "far": 0.39,
		}}
		engine.SetImageSearcher(searcher)

		res, err := engine.SearchByImage(ctx, img, 5)
		if err != nil {
			t.Fatalf("SearchByImage() error = %v", err)
		}
		if searcher.calls != 1 {
			t.Errorf("searcher calls = %d, want 1", searcher.calls)
		}
		if !equalIDs(ids(res), "near", "match") {
			t.Errorf("SearchByImage() = %v, want [near match]", ids(res))
		}
	})

	t.Run("searcher failure falls back to cosine", func(t *testing.T) {
		engine := newEngine()
		engine.SetImageSearcher(&stubImageSearcher{err: errors.New("service down")})

		res, err := engine.SearchByImage(ctx, img, 5)
		if err != nil {
			t.Fatalf("SearchByImage() error = %v", err)
		}
		if len(res.Items) == 0 || res.Items[0].Product.ID != "match" {
			t.Fatalf("SearchByImage() = %v, want match first", ids(res))
		}
		if math.Abs(res.Items[0].Score-1) > 1e-9 {
			t.Errorf("score(match) = %v, want 1", res.Items[0].Score)
		}
	})
}

func TestUserEmbedding(t *testing.T) {
	catalog := recommendtest.NewCatalog(
		product("a", "x", 1, vector.Vector{1, 0}),
		product("b", "x", 1, vector.Vector{0, 3}),
		product("c", "x", 1, nil),
	)
	users := recommendtest.NewUsers(userWithViews("u1", "a", "b", "c"), userWithViews("u2"))
	engine := newTestEngine(t, catalog, users)
	ctx := context.Background()

	got, err := engine.UserEmbedding(ctx, "u1")
	if err != nil {
		t.Fatalf("UserEmbedding() error = %v", err)
	}
	want := vector.Vector{0.5, 1.5}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("UserEmbedding(u1) = %v, want %v", got, want)
	}

	got, err = engine.UserEmbedding(ctx, "u2")
	if err != nil || got != nil {
		t.Errorf("UserEmbedding(u2) = %v, %v; want nil, nil", got, err)
	}

	if _, err := engine.UserEmbedding(ctx, "ghost"); !errors.Is(err, recommend.ErrNotFound) {
		t.Errorf("UserEmbedding(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestEngine_RepositoryErrorsPropagate(t *testing.T) {
	boom := errors.New("disk on fire")
	catalog := shoesAndBags()
	catalog.Err = boom
	engine := newTestEngine(t, catalog, recommendtest.NewUsers(userWithViews("u1", "A")))
	ctx := context.Background()

	if _, err := engine.SimilarToEntity(ctx, "A", 5); !errors.Is(err, boom) {
		t.Errorf("SimilarToEntity error = %v, want wrapped %v", err, boom)
	}
	if _, err := engine.HybridSimilarToEntity(ctx, "A", 5, nil); !errors.Is(err, boom) {
		t.Errorf("HybridSimilarToEntity error = %v, want wrapped %v", err, boom)
	}
	if _, err := engine.Trending(ctx, 5); !errors.Is(err, boom) {
		t.Errorf("Trending error = %v, want wrapped %v", err, boom)
	}
	if _, err := engine.PersonalizedForUser(ctx, "u1", 5); !errors.Is(err, boom) {
		t.Errorf("PersonalizedForUser error = %v, want wrapped %v", err, boom)
	}

	requests, errs := engine.Stats()
	if requests != 4 || errs != 4 {
		t.Errorf("Stats() = %d, %d; want 4, 4", requests, errs)
	}
}

type recordedObservation struct {
	pipeline string
	fallback string
	failed   bool
}

type fakeRecorder struct {
	mu  sync.Mutex
	obs []recordedObservation
}

func (f *fakeRecorder) ObservePipeline(pipeline string, _ time.Duration, _ int, fallback string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, recordedObservation{pipeline: pipeline, fallback: fallback, failed: err != nil})
}

func TestEngine_Recorder(t *testing.T) {
	users := recommendtest.NewUsers(userWithViews("new"))
	engine := newTestEngine(t, shoesAndBags(), users)
	rec := &fakeRecorder{}
	engine.SetRecorder(rec)
	ctx := context.Background()

	_, _ = engine.SimilarToEntity(ctx, "A", 5)
	_, _ = engine.PersonalizedForUser(ctx, "new", 5)
	_, _ = engine.SimilarToEntity(ctx, "missing", 5)

	want := []recordedObservation{
		{pipeline: recommend.PipelineSimilar},
		{pipeline: recommend.PipelinePersonalized, fallback: "cold_start"},
		{pipeline: recommend.PipelineSimilar, failed: true},
	}
	if len(rec.obs) != len(want) {
		t.Fatalf("observations = %d, want %d", len(rec.obs), len(want))
	}
	for i := range want {
		if rec.obs[i] != want[i] {
			t.Errorf("observation[%d] = %+v, want %+v", i, rec.obs[i], want[i])
		}
	}
}
