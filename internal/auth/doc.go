// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package auth authenticates API callers.
//
// Two modes are supported. In jwt mode every request must carry
// "Authorization: Bearer <token>" signed with HS256 using the shared secret
// of the identity provider; issuer and audience are enforced when
// configured. In none mode the X-User-ID header is trusted as-is.
//
// The middleware stores a *Subject in the request context:
//
//	mw, err := auth.NewMiddleware(auth.AuthModeJWT, auth.JWTConfig{Secret: secret}, respond)
//	r.With(mw.Authenticate).Post("/sessions", h.CreateSession)
//
//	userID := auth.UserIDFromContext(r.Context())
//
// Profile ownership is not checked here; the recommendation orchestrator
// compares the profile's owner with the authenticated user.
package auth
