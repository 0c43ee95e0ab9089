// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newVerifier(t *testing.T, cfg JWTConfig) *JWTVerifier {
	t.Helper()
	if cfg.Secret == "" {
		cfg.Secret = testSecret
	}
	v, err := NewJWTVerifier(cfg)
	if err != nil {
		t.Fatalf("NewJWTVerifier() error = %v", err)
	}
	return v
}

func signRaw(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestParseAuthMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthMode
		wantErr bool
	}{
		{"jwt", AuthModeJWT, false},
		{"", AuthModeJWT, false},
		{"none", AuthModeNone, false},
		{"basic", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAuthMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAuthMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewJWTVerifier_RequiresSecret(t *testing.T) {
	if _, err := NewJWTVerifier(JWTConfig{}); err == nil {
		t.Error("NewJWTVerifier() with empty secret should fail")
	}
}

func TestJWTVerifier_Verify(t *testing.T) {
	v := newVerifier(t, JWTConfig{Issuer: "https://auth.example.com", Audience: "authenticated"})
	now := time.Now()

	valid := func(mut func(c *Claims)) *Claims {
		c := &Claims{
			Email: "ada@example.com",
			Role:  "authenticated",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				Issuer:    "https://auth.example.com",
				Audience:  jwt.ClaimStrings{"authenticated"},
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
		if mut != nil {
			mut(c)
		}
		return c
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), valid(nil))},
		{
			name:    "expired",
			token:   signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour)) })),
			wantErr: jwt.ErrTokenExpired,
		},
		{
			name:    "missing expiry",
			token:   signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.ExpiresAt = nil })),
			wantErr: jwt.ErrTokenRequiredClaimMissing,
		},
		{
			name:    "wrong issuer",
			token:   signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.Issuer = "https://evil.example.com" })),
			wantErr: jwt.ErrTokenInvalidIssuer,
		},
		{
			name:    "wrong audience",
			token:   signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.Audience = jwt.ClaimStrings{"anon"} })),
			wantErr: jwt.ErrTokenInvalidAudience,
		},
		{
			name:    "wrong secret",
			token:   signRaw(t, jwt.SigningMethodHS256, []byte("another-secret-another-secret-xx"), valid(nil)),
			wantErr: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:    "HS512 rejected",
			token:   signRaw(t, jwt.SigningMethodHS512, []byte(testSecret), valid(nil)),
			wantErr: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:  "missing subject",
			token: signRaw(t, jwt.SigningMethodHS256, []byte(testSecret), valid(func(c *Claims) { c.Subject = "" })),
		},
		{name: "garbage", token: "not.a.jwt", wantErr: jwt.ErrTokenMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := v.Verify(tt.token)
			switch {
			case tt.name == "valid":
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				if claims.Subject != "user-1" || claims.Email != "ada@example.com" {
					t.Errorf("claims = %+v", claims)
				}
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
				}
			default:
				if err == nil {
					t.Error("Verify() error = nil, want error")
				}
			}
		})
	}
}

func TestJWTVerifier_SignRoundTrip(t *testing.T) {
	v := newVerifier(t, JWTConfig{Issuer: "vibestream", Audience: "authenticated"})
	token, err := v.Sign("user-7", "u7@example.com", "authenticated", time.Minute)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer "+token)
	s, err := v.Authenticate(context.Background(), req)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if s.UserID != "user-7" || s.Email != "u7@example.com" || s.AuthMode != AuthModeJWT || !s.HasRole("authenticated") {
		t.Errorf("subject = %+v", s)
	}
	if s.ExpiresAt == 0 {
		t.Error("ExpiresAt not set")
	}
}

func TestJWTVerifier_AuthenticateErrors(t *testing.T) {
	v := newVerifier(t, JWTConfig{})
	expired, err := v.Sign("user-1", "", "", -time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"no header", "", ErrNoCredentials},
		{"basic scheme", "Basic dXNlcjpwYXNz", ErrNoCredentials},
		{"empty bearer", "Bearer ", ErrNoCredentials},
		{"invalid token", "Bearer abc.def.ghi", ErrInvalidCredentials},
		{"expired token", "Bearer " + expired, ErrExpiredCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			_, err := v.Authenticate(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Authenticate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	v := newVerifier(t, JWTConfig{})
	token, err := v.Sign("user-1", "", "", time.Hour)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}

	var gotUser string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		mode       AuthMode
		headers    map[string]string
		wantStatus int
		wantBody   string
		wantUser   string
	}{
		{name: "jwt valid", mode: AuthModeJWT, headers: map[string]string{"Authorization": "Bearer " + token}, wantStatus: http.StatusNoContent, wantUser: "user-1"},
		{name: "jwt missing", mode: AuthModeJWT, wantStatus: http.StatusUnauthorized, wantBody: MessageMissingToken},
		{name: "jwt invalid", mode: AuthModeJWT, headers: map[string]string{"Authorization": "Bearer nope"}, wantStatus: http.StatusUnauthorized, wantBody: MessageInvalidToken},
		{name: "none with header", mode: AuthModeNone, headers: map[string]string{UserIDHeader: "dev-user"}, wantStatus: http.StatusNoContent, wantUser: "dev-user"},
		{name: "none without header", mode: AuthModeNone, wantStatus: http.StatusUnauthorized, wantBody: MessageMissingToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			var responded int
			mw, err := NewMiddleware(tt.mode, JWTConfig{Secret: testSecret}, func(w http.ResponseWriter, _ *http.Request, status int, message string) {
				responded++
				http.Error(w, message, status)
			})
			if err != nil {
				t.Fatalf("NewMiddleware() error = %v", err)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/recommendations/sessions", nil)
			for k, val := range tt.headers {
				req.Header.Set(k, val)
			}
			rec := httptest.NewRecorder()
			mw.Authenticate(next).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if tt.wantBody != "" && responded != 1 {
				t.Errorf("responder calls = %d, want 1", responded)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestNewMiddleware_Errors(t *testing.T) {
	if _, err := NewMiddleware(AuthModeJWT, JWTConfig{}, nil); err == nil {
		t.Error("jwt mode without secret should fail")
	}
	if _, err := NewMiddleware("oidc", JWTConfig{Secret: testSecret}, nil); err == nil {
		t.Error("unknown mode should fail")
	}
}

func TestSubjectFromContext_Empty(t *testing.T) {
	if s := SubjectFromContext(context.Background()); s != nil {
		t.Errorf("SubjectFromContext() = %+v, want nil", s)
	}
	if id := UserIDFromContext(context.Background()); id != "" {
		t.Errorf("UserIDFromContext() = %q, want empty", id)
	}
	var s *Subject
	if s.HasRole("admin") {
		t.Error("nil subject should have no roles")
	}
}
