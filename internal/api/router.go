// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/storefront/internal/middleware"
)

// NewRouter builds the chi router for all API routes.
func NewRouter(h *Handler, mw *Middleware) http.Handler {
	if mw == nil {
		mw = NewMiddleware(nil)
	}
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())
	r.Use(middleware.PrometheusMetrics)
	if h.deps.Performance != nil {
		r.Use(h.deps.Performance.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/health", func(r chi.Router) {
		r.Use(mw.RateLimitCustom(RateLimitHealth))
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(mw.RateLimit())

		r.Get("/stats/performance", h.PerformanceStats)

		r.Route("/products", func(r chi.Router) {
			r.Get("/trending", h.Trending)
			r.With(mw.RateLimitCustom(RateLimitWrite)).Post("/", h.CreateProduct)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetProduct)
				r.Get("/similar", h.SimilarProducts)
				r.With(mw.RateLimitCustom(RateLimitWrite)).Put("/", h.UpdateProduct)
				r.With(mw.RateLimitCustom(RateLimitWrite)).Delete("/", h.DeactivateProduct)
				r.With(mw.RateLimitCustom(RateLimitUpload)).Post("/image", h.UploadProductImage)
				r.Post("/views", h.RecordAnonymousView)
			})
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/products/{id}/similar", h.HybridSimilar)
			r.Get("/users/{id}", h.Personalized)
			r.Get("/users/{id}/embedding", h.UserEmbedding)
		})

		r.With(mw.RateLimitCustom(RateLimitUpload)).Post("/search/image", h.SearchByImage)

		r.Route("/users/{id}", func(r chi.Router) {
			r.Put("/", h.EnsureUser)
			r.Post("/views/{productId}", h.RecordView)
			r.Post("/cart/{productId}", h.RecordCart)
			r.Post("/purchases/{productId}", h.RecordPurchase)
			r.Get("/history", h.History)
			r.Delete("/history", h.ClearHistory)
			r.Get("/wishlist", h.Wishlist)
			r.Post("/wishlist/{productId}", h.AddToWishlist)
			r.Delete("/wishlist/{productId}", h.RemoveFromWishlist)
		})
	})

	return r
}
