// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/validation"
)

const maxRequestBody = 64 << 10

// createSessionRequest is the body of POST /api/v1/recommendations/sessions.
type createSessionRequest struct {
	ProfileID    string         `json:"profile_id" validate:"required,uuid"`
	SessionType  string         `json:"session_type" validate:"required,oneof=onboarding mood quick_match"`
	MoodInput    map[string]any `json:"mood_input"`
	ContentTypes []string       `json:"content_types" validate:"omitempty,dive,contenttype"`
	Stream       bool           `json:"stream"`
}

// toSessionRequest builds the orchestrator request for userID.
func (req *createSessionRequest) toSessionRequest(userID string) recommend.SessionRequest {
	mood := req.MoodInput
	if mood == nil {
		mood = map[string]any{}
	}
	return recommend.SessionRequest{
		UserID:       userID,
		ProfileID:    req.ProfileID,
		SessionType:  models.SessionType(req.SessionType),
		MoodInput:    mood,
		ContentTypes: recommend.ParseContentTypes(req.ContentTypes, mood),
	}
}

// decodeCreateSession reads and validates the request body. On failure it
// writes the error response and returns false.
func decodeCreateSession(w http.ResponseWriter, r *http.Request) (*createSessionRequest, bool) {
	rw := NewResponseWriter(w, r)

	var req createSessionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			rw.BadRequest(fmt.Sprintf("Request body exceeds %d bytes", maxRequestBody))
		case errors.Is(err, io.EOF):
			rw.BadRequest("Request body is required")
		default:
			rw.BadRequest("Request body is not valid JSON")
		}
		return nil, false
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return nil, false
	}
	return &req, true
}
