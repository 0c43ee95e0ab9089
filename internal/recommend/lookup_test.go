// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGetSession_Owner(t *testing.T) {
	model := &fakeModel{ideations: []ideationReply{ideationJSON("Slow Burn", "A", "B", "C", "D", "E", "F")}}
	h := newHarness(t, model, newFakeMeta("A", "B", "C", "D", "E", "F"))
	ctx := context.Background()

	created, err := h.orch.CreateSession(ctx, moodRequest())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	got, err := h.orch.GetSession(ctx, testUser, created.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if diff := cmp.Diff(cardTitles(created.Cards), cardTitles(got.Cards)); diff != "" {
		t.Errorf("card titles mismatch (-created +stored):\n%s", diff)
	}
	if got.MoodLabel != "Slow Burn" {
		t.Errorf("MoodLabel = %q, want Slow Burn", got.MoodLabel)
	}
	if got.TopTitleID == nil || *got.TopTitleID != created.Cards[0].TitleID {
		t.Errorf("TopTitleID = %v, want %s", got.TopTitleID, created.Cards[0].TitleID)
	}
	if got.MoodInput["energy"] != "low" {
		t.Errorf("MoodInput = %v, want energy=low", got.MoodInput)
	}
	if got.Cards[0].Quote == "" || got.Cards[0].MatchScore == nil {
		t.Errorf("stored reason and score missing from card: %+v", got.Cards[0])
	}
}

func TestGetSession_Errors(t *testing.T) {
	model := &fakeModel{ideations: []ideationReply{ideationJSON("Slow Burn", "A", "B", "C", "D", "E")}}
	h := newHarness(t, model, newFakeMeta("A", "B", "C", "D", "E"))
	ctx := context.Background()

	created, err := h.orch.CreateSession(ctx, moodRequest())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	tests := []struct {
		name      string
		userID    string
		sessionID string
		want      Kind
	}{
		{name: "foreign user", userID: "someone-else", sessionID: created.ID, want: KindNotFound},
		{name: "unknown session", userID: testUser, sessionID: "missing", want: KindNotFound},
		{name: "no user", sessionID: created.ID, want: KindAuth},
		{name: "no id", userID: testUser, want: KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.orch.GetSession(ctx, tt.userID, tt.sessionID)
			if err == nil {
				t.Fatal("GetSession() error = nil")
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}
