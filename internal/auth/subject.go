// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package auth

import (
	"context"
	"errors"
	"net/http"
)

// AuthMode is the authentication strategy.
type AuthMode string

const (
	// AuthModeJWT verifies HS256 bearer tokens.
	AuthModeJWT AuthMode = "jwt"

	// AuthModeNone trusts the X-User-ID header. Development only.
	AuthModeNone AuthMode = "none"
)

// ParseAuthMode converts a configuration string to an AuthMode.
func ParseAuthMode(s string) (AuthMode, error) {
	switch s {
	case "jwt", "":
		return AuthModeJWT, nil
	case "none":
		return AuthModeNone, nil
	default:
		return "", errors.New("invalid auth mode: " + s)
	}
}

func (m AuthMode) String() string {
	return string(m)
}

var (
	// ErrNoCredentials indicates the request carried no bearer token.
	ErrNoCredentials = errors.New("no credentials provided")

	// ErrInvalidCredentials indicates a token that failed verification.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExpiredCredentials indicates an expired token.
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Authenticator identifies the caller of a request.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request) (*Subject, error)
	Name() string
}

// Subject is an authenticated caller.
type Subject struct {
	// UserID is the token's sub claim.
	UserID    string   `json:"user_id"`
	Email     string   `json:"email,omitempty"`
	Role      string   `json:"role,omitempty"`
	Issuer    string   `json:"issuer,omitempty"`
	AuthMode  AuthMode `json:"auth_mode"`
	ExpiresAt int64    `json:"expires_at,omitempty"`
}

// HasRole reports whether the subject carries role.
func (s *Subject) HasRole(role string) bool {
	return s != nil && role != "" && s.Role == role
}

type contextKey string

const subjectContextKey contextKey = "auth_subject"

// ContextWithSubject returns ctx carrying s.
func ContextWithSubject(ctx context.Context, s *Subject) context.Context {
	return context.WithValue(ctx, subjectContextKey, s)
}

// SubjectFromContext returns the authenticated subject, or nil.
func SubjectFromContext(ctx context.Context) *Subject {
	s, _ := ctx.Value(subjectContextKey).(*Subject)
	return s
}

// UserIDFromContext returns the authenticated user id, or "".
func UserIDFromContext(ctx context.Context) string {
	if s := SubjectFromContext(ctx); s != nil {
		return s.UserID
	}
	return ""
}
