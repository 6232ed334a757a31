// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/storefront/internal/metrics"
)

func testRouter(mw func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(mw)
	r.Get("/api/v1/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/boom", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	return r
}

func TestPrometheusMetrics(t *testing.T) {
	h := testRouter(PrometheusMetrics)
	const route = "/api/v1/products/{id}"
	ok := metrics.APIRequestsTotal.WithLabelValues("GET", route, "200")
	missing := metrics.APIRequestsTotal.WithLabelValues("GET", route, "404")
	okBefore, missingBefore := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	for _, path := range []string{"/api/v1/products/a", "/api/v1/products/b", "/api/v1/products/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(ok) - okBefore; got != 2 {
		t.Errorf("200 delta = %v, want 2 (path params collapse into the route)", got)
	}
	if got := testutil.ToFloat64(missing) - missingBefore; got != 1 {
		t.Errorf("404 delta = %v, want 1", got)
	}
}

func TestPerformanceMonitor(t *testing.T) {
	pm := NewPerformanceMonitor(4, 0)
	h := testRouter(pm.Middleware)

	for i := 0; i < 3; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/x", nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))

	stats := pm.Stats()
	if len(stats) != 2 {
		t.Fatalf("Stats() = %d routes, want 2", len(stats))
	}
	if stats[0].Route != "GET /api/v1/products/{id}" || stats[0].RequestCount != 3 {
		t.Errorf("stats[0] = %s x%d, want GET /api/v1/products/{id} x3", stats[0].Route, stats[0].RequestCount)
	}
	if stats[1].ErrorCount != 1 {
		t.Errorf("stats[1].ErrorCount = %d, want 1", stats[1].ErrorCount)
	}

	// the window holds four samples; a fifth evicts the oldest
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/boom", nil))
	recent := pm.Recent(10)
	if len(recent) != 4 {
		t.Fatalf("Recent() = %d samples, want 4", len(recent))
	}
	if recent[3].Route != "/boom" || recent[0].Route != "/api/v1/products/{id}" {
		t.Errorf("Recent() order = %s..%s, want oldest product first, newest /boom last", recent[0].Route, recent[3].Route)
	}
	if got := pm.Recent(1); len(got) != 1 || got[0].Route != "/boom" {
		t.Errorf("Recent(1) = %+v, want newest /boom sample", got)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []time.Duration{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0.50, 5},
		{0.95, 9},
		{0.99, 9},
		{1.0, 10},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}
