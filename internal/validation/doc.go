// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package validation validates API request structs with go-playground/validator v10.
//
// A single validator is shared by the process; it caches struct metadata and
// is safe for concurrent use. Beyond the built-in rules it registers
// contenttype, which accepts "movie" and "tv" in any case.
//
// Failures are returned as *RequestValidationError and convert to the API's
// VALIDATION_FAILED error body:
//
//	type createSessionRequest struct {
//	    ProfileID    string   `json:"profile_id" validate:"required,uuid"`
//	    SessionType  string   `json:"session_type" validate:"required,oneof=onboarding mood quick_match"`
//	    ContentTypes []string `json:"content_types" validate:"omitempty,dive,contenttype"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respond(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
//
// Field names in messages are the json tag names, so clients see
// "profile_id is required" rather than Go field names.
package validation
