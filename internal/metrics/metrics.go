// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/storefront/internal/recommend"
)

var (
	// Recommendation pipeline metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_recommend_requests_total",
			Help: "Total number of recommendation pipeline runs",
		},
		[]string{"pipeline", "result"}, // result: "success", "not_found", "invalid", "error"
	)

	RecommendFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_recommend_fallbacks_total",
			Help: "Total number of pipeline runs that took a fallback path",
		},
		[]string{"pipeline", "kind"}, // kind: "cold_start", "trending"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_recommend_duration_seconds",
			Help:    "Duration of recommendation pipeline runs in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"pipeline"},
	)

	RecommendCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_recommend_candidates",
			Help:    "Number of candidates scored per pipeline run",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 200, 500, 1000, 2000},
		},
		[]string{"pipeline"},
	)

	// Profile metrics
	ProfileUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_profile_updates_total",
			Help: "Total number of shopper profile updates",
		},
		[]string{"kind", "result"}, // kind: "view", "cart", "purchase", "wishlist", "history"
	)

	// Embedding service metrics
	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_embedding_requests_total",
			Help: "Total number of requests to the embedding service",
		},
		[]string{"endpoint", "status"}, // status: "success", "failure", "rejected"
	)

	EmbeddingRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_embedding_request_duration_seconds",
			Help:    "Embedding service request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"endpoint"},
	)

	EmbeddingCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_embedding_circuit_state",
			Help: "Embedding service circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	EmbeddingCircuitTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_embedding_circuit_transitions_total",
			Help: "Total number of embedding circuit breaker state transitions",
		},
		[]string{"from_state", "to_state"},
	)

	// Event pipeline metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_published_total",
			Help: "Total number of interaction events published",
		},
		[]string{"topic", "status"},
	)

	EventsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_events_processed_total",
			Help: "Total number of interaction events processed",
		},
		[]string{"topic", "status"}, // status: "success", "failure", "duplicate"
	)

	EventProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_event_processing_duration_seconds",
			Help:    "Event handler duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"topic"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"route"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// Recorder implements recommend.Recorder on the package metrics.
type Recorder struct{}

// ObservePipeline records one pipeline run.
func (Recorder) ObservePipeline(pipeline string, duration time.Duration, candidates int, fallback string, err error) {
	RecordRecommendation(pipeline, duration, candidates, fallback, err)
}

// RecordRecommendation records a recommendation pipeline run.
func RecordRecommendation(pipeline string, duration time.Duration, candidates int, fallback string, err error) {
	RecommendRequests.WithLabelValues(pipeline, resultLabel(err)).Inc()
	RecommendDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
	if err == nil {
		RecommendCandidates.WithLabelValues(pipeline).Observe(float64(candidates))
	}
	if fallback != "" {
		RecommendFallbacks.WithLabelValues(pipeline, fallback).Inc()
	}
}

// RecordProfileUpdate records a profile mutation.
func RecordProfileUpdate(kind string, err error) {
	ProfileUpdates.WithLabelValues(kind, resultLabel(err)).Inc()
}

// RecordEmbeddingRequest records a request to the embedding service.
func RecordEmbeddingRequest(endpoint, status string, duration time.Duration) {
	EmbeddingRequests.WithLabelValues(endpoint, status).Inc()
	if status != "rejected" {
		EmbeddingRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
	}
}

// RecordEmbeddingCircuitTransition records a breaker state change.
// States use the numeric encoding of EmbeddingCircuitState.
func RecordEmbeddingCircuitTransition(from, to string, toValue float64) {
	EmbeddingCircuitState.Set(toValue)
	EmbeddingCircuitTransitions.WithLabelValues(from, to).Inc()
}

// RecordEventPublished records an event publish attempt.
func RecordEventPublished(topic string, err error) {
	EventsPublished.WithLabelValues(topic, statusLabel(err)).Inc()
}

// RecordEventProcessed records a handled event.
func RecordEventProcessed(topic string, duration time.Duration, err error) {
	EventsProcessed.WithLabelValues(topic, statusLabel(err)).Inc()
	EventProcessingDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

// RecordEventDuplicate records an event dropped by deduplication.
func RecordEventDuplicate(topic string) {
	EventsProcessed.WithLabelValues(topic, "duplicate").Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func RecordRateLimitHit(route string) {
	APIRateLimitHits.WithLabelValues(route).Inc()
}

// SetAppInfo publishes the build information gauge.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, recommend.ErrNotFound):
		return "not_found"
	case errors.Is(err, recommend.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
