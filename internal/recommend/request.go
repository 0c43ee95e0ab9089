// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"fmt"
	"time"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// SessionRequest asks for one recommendation session.
type SessionRequest struct {
	UserID       string
	ProfileID    string
	SessionType  models.SessionType
	MoodInput    map[string]any
	ContentTypes []models.ContentType
}

// SessionResponse is the assembled result of a session.
type SessionResponse struct {
	ID          string                      `json:"id"`
	ProfileID   string                      `json:"profile_id"`
	SessionType models.SessionType          `json:"session_type"`
	MoodInput   map[string]any              `json:"mood_input"`
	CreatedAt   time.Time                   `json:"created_at"`
	Cards       []models.RecommendationCard `json:"cards"`
}

// ParseContentTypes resolves the requested content types: the explicit
// list when given, otherwise mood_input.content_types. Values are trimmed,
// lowercased and deduplicated, unknown values are dropped, and an empty
// result means movies only.
func ParseContentTypes(explicit []string, moodInput map[string]any) []models.ContentType {
	var raw []string
	if explicit != nil {
		raw = explicit
	} else if list, ok := moodInput["content_types"].([]any); ok {
		for _, v := range list {
			raw = append(raw, fmt.Sprint(v))
		}
	}

	out := make([]models.ContentType, 0, 2)
	for _, s := range raw {
		ct, ok := models.ParseContentType(s)
		if !ok {
			continue
		}
		dup := false
		for _, have := range out {
			if have == ct {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, ct)
		}
	}
	if len(out) == 0 {
		return []models.ContentType{models.ContentMovie}
	}
	return out
}

// moodWithTypes returns a copy of the mood input carrying the resolved
// content types.
func moodWithTypes(mood map[string]any, types []models.ContentType) map[string]any {
	out := make(map[string]any, len(mood)+1)
	for k, v := range mood {
		out[k] = v
	}
	out["content_types"] = types
	return out
}

func (r *SessionRequest) validate() error {
	if r.ProfileID == "" {
		return newError(KindValidation, "profile_id is required", nil)
	}
	if !r.SessionType.Valid() {
		return newError(KindValidation, fmt.Sprintf("unknown session_type %q", r.SessionType), nil)
	}
	if r.UserID == "" {
		return newError(KindAuth, "Missing authenticated user", nil)
	}
	return nil
}
