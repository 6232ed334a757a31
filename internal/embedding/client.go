// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package embedding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/storefront/internal/config"
	"github.com/tomtom215/storefront/internal/metrics"
	"github.com/tomtom215/storefront/internal/vector"
)

const (
	endpointEmbedImage   = "embed-image"
	endpointSearch       = "search"
	endpointAddVector    = "add-vector"
	endpointRemoveVector = "remove-vector"
	endpointHealth       = "health"

	// maxErrorBodySize limits how much of an error response is kept.
	maxErrorBodySize = 4 * 1024

	breakerName = "embedding-service"
)

var (
	// ErrUnavailable is returned when the circuit breaker rejects a call.
	ErrUnavailable = errors.New("embedding service unavailable")

	// ErrInvalidResponse is returned when the service answers without a usable payload.
	ErrInvalidResponse = errors.New("invalid embedding service response")
)

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// SearchItem is one candidate sent to the service's similarity search.
type SearchItem struct {
	ProductID string        `json:"productId"`
	Embedding vector.Vector `json:"embedding"`
}

// SearchHit is one scored search result.
type SearchHit struct {
	ProductID string  `json:"productId"`
	Score     float64 `json:"score"`
}

type embedResponse struct {
	Success   bool          `json:"success"`
	Embedding vector.Vector `json:"embedding"`
	Message   string        `json:"message,omitempty"`
}

type searchRequest struct {
	Embedding vector.Vector `json:"embedding"`
	Items     []SearchItem  `json:"items,omitempty"`
}

type searchResponse struct {
	Success bool            `json:"success"`
	Results json.RawMessage `json:"results"`
}

type addVectorRequest struct {
	ProductID string        `json:"productId"`
	Embedding vector.Vector `json:"embedding"`
}

type removeVectorRequest struct {
	ProductID string `json:"productId"`
}

// Client talks to the image embedding service. Every call passes through a
// client-side rate limiter and a circuit breaker; server errors and transport
// failures count against the breaker, 4xx answers do not.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[interface{}]
	logger  zerolog.Logger
}

// NewClient creates a client for cfg.URL.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewClient(cfg *config.EmbeddingConfig, logger zerolog.Logger) *Client {
	logger = logger.With().Str("component", "embedding").Logger()

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}
	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	metrics.EmbeddingCircuitState.Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logger.Warn().
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return trip
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordEmbeddingCircuitTransition(from.String(), to.String(), stateToFloat(to))
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			if errors.As(err, &se) {
				return se.StatusCode < http.StatusInternalServerError
			}
			// Caller cancellation says nothing about service health.
			return errors.Is(err, context.Canceled)
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		cb:      cb,
		logger:  logger,
	}
}

// State returns the circuit breaker state.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

// EmbedImage returns the service's embedding of an image.
func (c *Client) EmbedImage(ctx context.Context, image []byte) (vector.Vector, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("embed image: empty image: %w", ErrInvalidResponse)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "query.jpg")
	if err != nil {
		return nil, fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("write multipart field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	var resp embedResponse
	if err := c.do(ctx, endpointEmbedImage, nil, mw.FormDataContentType(), body.Bytes(), &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("embed image: no embedding returned: %w", ErrInvalidResponse)
	}
	return resp.Embedding, nil
}

// Search asks the service to rank items against query and return the top k.
// With no items the service searches its own index.
func (c *Client) Search(ctx context.Context, query vector.Vector, items []SearchItem, k int) ([]SearchHit, error) {
	if query.IsEmpty() {
		return nil, fmt.Errorf("search: empty query embedding: %w", ErrInvalidResponse)
	}
	payload, err := json.Marshal(searchRequest{Embedding: query, Items: items})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}
	params := url.Values{}
	if k > 0 {
		params.Set("k", strconv.Itoa(k))
	}

	var resp searchResponse
	if err := c.do(ctx, endpointSearch, params, "application/json", payload, &resp); err != nil {
		return nil, err
	}
	return decodeHits(resp.Results)
}

// decodeHits accepts both a flat hit list and a list wrapped in an outer array.
func decodeHits(raw json.RawMessage) ([]SearchHit, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []SearchHit{}, nil
	}
	var flat []SearchHit
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}
	var nested [][]SearchHit
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, fmt.Errorf("decode search results: %w", ErrInvalidResponse)
	}
	hits := make([]SearchHit, 0)
	for _, group := range nested {
		hits = append(hits, group...)
	}
	return hits, nil
}

// AddVector registers a product vector in the service's index.
func (c *Client) AddVector(ctx context.Context, productID string, v vector.Vector) error {
	payload, err := json.Marshal(addVectorRequest{ProductID: productID, Embedding: v})
	if err != nil {
		return fmt.Errorf("encode add-vector request: %w", err)
	}
	return c.do(ctx, endpointAddVector, nil, "application/json", payload, nil)
}

// RemoveVector drops a product from the service's index.
func (c *Client) RemoveVector(ctx context.Context, productID string) error {
	payload, err := json.Marshal(removeVectorRequest{ProductID: productID})
	if err != nil {
		return fmt.Errorf("encode remove-vector request: %w", err)
	}
	return c.do(ctx, endpointRemoveVector, nil, "application/json", payload, nil)
}

// Health checks the service's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, endpointHealth, nil, "", nil, nil)
}

// do runs one request through the limiter and breaker and decodes a JSON
// response into out when out is non-nil. A nil body issues a GET.
func (c *Client) do(ctx context.Context, endpoint string, params url.Values, contentType string, body []byte, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: rate limiter: %w", endpoint, err)
	}

	start := time.Now()
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, endpoint, params, contentType, body, out)
	})

	switch {
	case err == nil:
		metrics.RecordEmbeddingRequest(endpoint, "success", time.Since(start))
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordEmbeddingRequest(endpoint, "rejected", 0)
		return fmt.Errorf("%s: %w: %w", endpoint, ErrUnavailable, err)
	default:
		metrics.RecordEmbeddingRequest(endpoint, "failure", time.Since(start))
		return err
	}
}

func (c *Client) roundTrip(ctx context.Context, endpoint string, params url.Values, contentType string, body []byte, out interface{}) error {
	reqURL := c.baseURL + "/" + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	method, reader := http.MethodGet, io.Reader(http.NoBody)
	if body != nil {
		method, reader = http.MethodPost, bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
