// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
)

const readyTimeout = 2 * time.Second

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status         string  `json:"status"`
	StoreConnected *bool   `json:"store_connected,omitempty"`
	Uptime         float64 `json:"uptime_seconds"`
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(HealthStatus{
		Status: "alive",
		Uptime: time.Since(h.startTime).Seconds(),
	})
}

// HealthReady reports whether the store answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	connected := h.store != nil && h.store.Ping(ctx) == nil
	status := HealthStatus{
		Status:         "ready",
		StoreConnected: &connected,
		Uptime:         time.Since(h.startTime).Seconds(),
	}

	rw := NewResponseWriter(w, r)
	if !connected {
		logging.Ctx(r.Context()).Warn().Msg("Readiness check failed: store unavailable")
		rw.ErrorWithDetails(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Store unavailable", status)
		return
	}
	rw.Success(status)
}
