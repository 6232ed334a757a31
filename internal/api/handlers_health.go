// Storefront - Multi-vendor Commerce Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefront

package api

import (
	"context"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// dependencyStatus is one readiness check result.
type dependencyStatus struct {
	Healthy  bool   `json:"healthy"`
	Optional bool   `json:"optional,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HealthLive serves GET /health/live. It succeeds while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"alive":   true,
		"uptime":  time.Since(h.startTime).Seconds(),
		"version": h.deps.Version,
	})
}

// HealthReady serves GET /health/ready. It fails with 503 when a required
// dependency check fails; optional dependencies are reported only.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	ready := true
	deps := make(map[string]dependencyStatus, len(h.deps.HealthChecks))
	for _, hc := range h.deps.HealthChecks {
		st := dependencyStatus{Healthy: true, Optional: hc.Optional}
		if err := hc.Check(ctx); err != nil {
			st.Healthy = false
			st.Error = err.Error()
			if !hc.Optional {
				ready = false
			}
		}
		deps[hc.Name] = st
	}

	status, code := "ready", http.StatusOK
	if !ready {
		status, code = "not_ready", http.StatusServiceUnavailable
	}
	respondJSON(w, r, code, map[string]interface{}{
		"status":       status,
		"dependencies": deps,
	})
}

// PerformanceStats serves GET /api/v1/stats/performance with per-route
// latency over the monitor's window.
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	if h.deps.Performance == nil {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Performance monitoring disabled", nil)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"routes": h.deps.Performance.Stats(),
	})
}
