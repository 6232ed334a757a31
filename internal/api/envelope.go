// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/storefront/internal/logging"
	"github.com/tomtom215/storefront/internal/recommend"
	"github.com/tomtom215/storefront/internal/validation"
)

// Error codes returned in the envelope.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = validation.CodeValidationError
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
	CodeRateLimited     = "RATE_LIMITED"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeUnavailable     = "SERVICE_UNAVAILABLE"
	CodeTimeout         = "TIMEOUT"
)

// Response is the JSON envelope of every API response.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorBody describes a failed request.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Meta carries response metadata.
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// sanitizeLogValue escapes control characters so client input cannot forge
// log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func newMeta(r *http.Request) Meta {
	return Meta{
		Timestamp: time.Now().UTC(),
		RequestID: logging.RequestIDFromContext(r.Context()),
	}
}

func writeJSON(w http.ResponseWriter, status int, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondJSON sends a successful response.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, status, &Response{Success: true, Data: data, Meta: newMeta(r)})
}

// respondError sends an error response. err, when set, is logged.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		event := logging.Ctx(r.Context()).Warn()
		if status >= http.StatusInternalServerError {
			event = logging.Ctx(r.Context()).Error()
		}
		event.Str("code", code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	writeJSON(w, status, &Response{
		Success: false,
		Error:   &ErrorBody{Code: code, Message: message},
		Meta:    newMeta(r),
	})
}

// respondServiceError maps a domain error to its HTTP status.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		respondError(w, r, http.StatusNotFound, CodeNotFound, notFoundMessage(err), nil)
	case errors.Is(err, recommend.ErrInvalidInput):
		respondError(w, r, http.StatusBadRequest, CodeValidation, leadingMessage(err, "Invalid input"), nil)
	case errors.Is(err, recommend.ErrAlreadyInWishlist):
		respondError(w, r, http.StatusConflict, CodeConflict, "Product is already in the wishlist", nil)
	case errors.As(err, &maxBytes):
		respondError(w, r, http.StatusRequestEntityTooLarge, CodePayloadTooLarge,
			fmt.Sprintf("Upload exceeds %d bytes", maxBytes.Limit), nil)
	case errors.Is(err, errEventsUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, CodeUnavailable, "Event bus unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, CodeTimeout, "Request timed out", err)
	default:
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Internal server error", err)
	}
}

func notFoundMessage(err error) string {
	if what := leadingMessage(err, ""); what != "" {
		return what + " not found"
	}
	return "Not found"
}

// leadingMessage strips the trailing sentinel text from a wrapped domain
// error, e.g. "product p1: not found" becomes "product p1".
func leadingMessage(err error, fallback string) string {
	msg := err.Error()
	i := strings.LastIndex(msg, ": ")
	if i <= 0 {
		return fallback
	}
	return sanitizeLogValue(msg[:i])
}

// validateRequest runs struct validation and writes a 400 on failure.
// It reports whether the request may proceed.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	writeJSON(w, http.StatusBadRequest, &Response{
		Success: false,
		Error:   &ErrorBody{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details},
		Meta:    newMeta(r),
	})
	return false
}

// intParam parses an optional integer query parameter. A missing value
// yields def; a malformed one is an error.
func intParam(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, recommend.ErrInvalidInput)
	}
	return v, nil
}

// floatParam parses an optional float query parameter; nil means absent.
func floatParam(r *http.Request, key string) (*float64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number: %w", key, recommend.ErrInvalidInput)
	}
	return &v, nil
}
