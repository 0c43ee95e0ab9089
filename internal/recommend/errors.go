// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrGenerationEmpty is returned when no candidate survived enrichment.
	ErrGenerationEmpty = errors.New("recommend: no candidates survived enrichment")

	// ErrMalformedResponse is returned when the ideation output cannot be
	// parsed or lacks the candidate list.
	ErrMalformedResponse = errors.New("recommend: malformed model response")
)

// Kind classifies a request-fatal failure.
type Kind string

const (
	KindAuth                Kind = "auth"
	KindNotFound            Kind = "not_found"
	KindValidation          Kind = "validation"
	KindGenerationExhausted Kind = "generation_exhausted"
	KindInternal            Kind = "internal"
)

// Error is a classified failure returned by the session orchestrator.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the classification of err, or KindInternal when err is
// not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
