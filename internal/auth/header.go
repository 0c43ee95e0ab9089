// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package auth

import (
	"context"
	"net/http"
	"strings"
)

// UserIDHeader carries the caller's id when authentication is disabled.
const UserIDHeader = "X-User-ID"

// HeaderAuthenticator trusts UserIDHeader. It exists for local development
// and must never face the internet.
type HeaderAuthenticator struct{}

// Authenticate implements Authenticator.
func (HeaderAuthenticator) Authenticate(_ context.Context, r *http.Request) (*Subject, error) {
	id := strings.TrimSpace(r.Header.Get(UserIDHeader))
	if id == "" {
		return nil, ErrNoCredentials
	}
	return &Subject{UserID: id, AuthMode: AuthModeNone}, nil
}

// Name implements Authenticator.
func (HeaderAuthenticator) Name() string {
	return string(AuthModeNone)
}
