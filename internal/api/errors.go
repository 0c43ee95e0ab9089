// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package api

import (
	"errors"
	"net/http"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
)

// statusForKind maps an orchestrator error kind to its HTTP status and code.
func statusForKind(k recommend.Kind) (int, string) {
	switch k {
	case recommend.KindAuth:
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case recommend.KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case recommend.KindValidation:
		return http.StatusBadRequest, ErrCodeValidationFailed
	case recommend.KindGenerationExhausted:
		return http.StatusUnprocessableEntity, ErrCodeGenerationExhausted
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// writeRecommendError renders a classified orchestrator error. Internal
// causes are logged, never returned to the client.
func writeRecommendError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForKind(recommend.KindOf(err))

	message := "Internal server error"
	var rerr *recommend.Error
	if errors.As(err, &rerr) {
		message = rerr.Message
	}

	rw := NewResponseWriter(w, r)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Recommendation request failed")
		rw.InternalError(message)
		return
	}
	rw.Error(status, code, message)
}
