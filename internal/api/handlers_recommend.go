// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/auth"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
)

// CreateSession handles POST /api/v1/recommendations/sessions.
//
// With "stream": true the response is an event stream, framed as NDJSON
// when the client accepts application/x-ndjson and as server-sent events
// otherwise. Errors raised before the session starts are returned as a
// regular JSON envelope.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		NewResponseWriter(w, r).Unauthorized(auth.MessageMissingToken)
		return
	}

	body, ok := decodeCreateSession(w, r)
	if !ok {
		return
	}
	req := body.toSessionRequest(userID)

	if !body.Stream {
		resp, err := h.sessions.CreateSession(r.Context(), req)
		if err != nil {
			writeRecommendError(w, r, err)
			return
		}
		NewResponseWriter(w, r).Success(resp)
		return
	}

	ew := newEventWriter(w, r)
	err := h.sessions.StreamSession(r.Context(), req, ew)
	switch {
	case err == nil:
	case !ew.Started():
		writeRecommendError(w, r, err)
	default:
		// The stream already carries the error event, or the client left.
		logging.Ctx(r.Context()).Debug().
			Err(err).
			Str("kind", string(recommend.KindOf(err))).
			Msg("Stream ended with error")
	}
}

// GetSession handles GET /api/v1/recommendations/sessions/{id}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		NewResponseWriter(w, r).Unauthorized(auth.MessageMissingToken)
		return
	}

	sess, err := h.sessions.GetSession(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeRecommendError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(sess)
}
