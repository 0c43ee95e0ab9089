// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestGenerateIDs(t *testing.T) {
	t.Parallel()

	if got := len(GenerateCorrelationID()); got != 8 {
		t.Errorf("len(correlation id) = %d, want 8", got)
	}
	a, b := GenerateRequestID(), GenerateRequestID()
	if len(a) != 36 {
		t.Errorf("len(request id) = %d, want 36", len(a))
	}
	if a == b {
		t.Error("expected unique request IDs")
	}
}

func TestCtxAddsIdentifiers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithProfile(ctx, "user-1", "profile-1")
	ctx = ContextWithSession(ctx, "session-1")

	Ctx(ctx).Info().Msg("resolved")

	out := buf.String()
	for _, want := range []string{
		`"request_id":"req-1"`,
		`"user_id":"user-1"`,
		`"profile_id":"profile-1"`,
		`"session_id":"session-1"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
	if strings.Contains(out, "correlation_id") {
		t.Errorf("unexpected correlation_id in output: %s", out)
	}
}

func TestContextWithProfileSkipsEmpty(t *testing.T) {
	t.Parallel()

	ctx := ContextWithProfile(context.Background(), "", "p")
	if got := stringValue(ctx, userIDKey); got != "" {
		t.Errorf("user id = %q, want empty", got)
	}
	if got := stringValue(ctx, profileIDKey); got != "p" {
		t.Errorf("profile id = %q, want %q", got, "p")
	}
}

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf))).WithGroup("svc")
	logger.Warn("service restarted", "name", "http", "attempt", 2)

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"svc.name":"http"`, `"svc.attempt":2`, `"message":"service restarted"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}
