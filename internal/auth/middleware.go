// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
)

// Messages returned to clients on authentication failure.
const (
	MessageMissingToken = "Missing Authorization Bearer token"
	MessageInvalidToken = "Invalid or expired token"
)

// ErrorResponder writes an authentication failure. The API layer supplies
// one that renders its JSON envelope.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, status int, message string)

// Middleware authenticates requests and stores the Subject in the
// request context.
type Middleware struct {
	authenticator Authenticator
	respond       ErrorResponder
}

// NewMiddleware creates authentication middleware for mode. A nil respond
// falls back to plain-text errors.
func NewMiddleware(mode AuthMode, cfg JWTConfig, respond ErrorResponder) (*Middleware, error) {
	var a Authenticator
	switch mode {
	case AuthModeJWT:
		v, err := NewJWTVerifier(cfg)
		if err != nil {
			return nil, err
		}
		a = v
	case AuthModeNone:
		logging.Warn().Msg("authentication disabled, trusting X-User-ID header")
		a = HeaderAuthenticator{}
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", mode)
	}
	return NewMiddlewareWith(a, respond), nil
}

// NewMiddlewareWith wraps an existing Authenticator.
func NewMiddlewareWith(a Authenticator, respond ErrorResponder) *Middleware {
	if respond == nil {
		respond = func(w http.ResponseWriter, _ *http.Request, status int, message string) {
			http.Error(w, message, status)
		}
	}
	return &Middleware{authenticator: a, respond: respond}
}

// Authenticate is chi-compatible middleware.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := m.authenticator.Authenticate(r.Context(), r)
		if err != nil {
			message := MessageInvalidToken
			if errors.Is(err, ErrNoCredentials) {
				message = MessageMissingToken
			}
			logging.Ctx(r.Context()).Debug().
				Err(err).
				Str("authenticator", m.authenticator.Name()).
				Str("path", logging.SanitizeValue(r.URL.Path)).
				Str("token", logging.SanitizeToken(bearerToken(r))).
				Msg("authentication failed")
			m.respond(w, r, http.StatusUnauthorized, message)
			return
		}

		ctx := ContextWithSubject(r.Context(), subject)
		ctx = logging.ContextWithProfile(ctx, subject.UserID, "")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
