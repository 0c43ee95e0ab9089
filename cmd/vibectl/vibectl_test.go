// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
)

const fixtureYAML = `
users:
  - id: user-1
    email: ana@example.com
    region: FR
profiles:
  - id: profile-1
    user_id: user-1
    name: Ana
preferences:
  - profile_id: profile-1
    answers:
      favorite_genres: [Drama, Comedy]
titles:
  - tmdb_id: 27205
    type: movie
    title: Inception
    genres: [Science Fiction, Action]
    year: 2010
  - tmdb_id: 1396
    type: TV
    title: Breaking Bad
interactions:
  - profile_id: profile-1
    tmdb_id: 27205
    type: movie
    action: like
    rating: 5
    created_at: 2026-05-01T10:00:00Z
    quick_tags: [mind-bending]
  - profile_id: profile-1
    tmdb_id: 1396
    type: tv
    action: Dislike
    feedback_text: too tense
`

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)

	counts, err := seed(ctx, st, strings.NewReader(fixtureYAML))
	if err != nil {
		t.Fatalf("seed() error = %v", err)
	}
	want := seedCounts{Users: 1, Profiles: 1, Preferences: 1, Titles: 2, Interactions: 2}
	if diff := cmp.Diff(want, counts); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	user, err := st.GetAppUser(ctx, "user-1")
	if err != nil || user.Region == nil || *user.Region != "FR" {
		t.Errorf("user = %+v, err = %v", user, err)
	}
	title, err := st.GetTitleByExternal(ctx, models.ContentTV, 1396)
	if err != nil || title.Title != "Breaking Bad" {
		t.Errorf("tv title = %+v, err = %v", title, err)
	}

	interactions, err := st.ListInteractions(ctx, "profile-1", time.Time{}, 10)
	if err != nil {
		t.Fatalf("ListInteractions() error = %v", err)
	}
	if len(interactions) != 2 {
		t.Fatalf("interactions = %d, want 2", len(interactions))
	}
	actions := map[models.Action]bool{}
	for _, in := range interactions {
		actions[in.Action] = true
	}
	if !actions[models.ActionLike] || !actions[models.ActionDislike] {
		t.Errorf("actions = %v, want like and dislike", actions)
	}

	// Titles are reused on a second run.
	again, err := seed(ctx, st, strings.NewReader(fixtureYAML))
	if err != nil {
		t.Fatalf("second seed() error = %v", err)
	}
	if again.Titles != 0 || again.Interactions != 2 {
		t.Errorf("second run counts = %+v", again)
	}
}

func TestSeed_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "unknown field", yaml: "users:\n  - id: u\n    nickname: x\n"},
		{name: "bad title type", yaml: "titles:\n  - tmdb_id: 1\n    type: anime\n"},
		{name: "interaction for unknown title", yaml: "interactions:\n  - profile_id: p\n    tmdb_id: 99\n    type: movie\n    action: like\n"},
		{name: "interaction without profile", yaml: "titles:\n  - tmdb_id: 1\n    type: movie\n    title: X\ninteractions:\n  - tmdb_id: 1\n    type: movie\n    action: like\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := seed(context.Background(), openTestStore(t), strings.NewReader(tt.yaml)); err == nil {
				t.Error("seed() error = nil")
			}
		})
	}
}

func TestSeed_EmptyFile(t *testing.T) {
	counts, err := seed(context.Background(), openTestStore(t), strings.NewReader(""))
	if err != nil {
		t.Fatalf("seed() error = %v", err)
	}
	if counts != (seedCounts{}) {
		t.Errorf("counts = %+v, want zero", counts)
	}
}

type fakeSignals struct {
	gotUser string
	err     error
}

func (f *fakeSignals) Signals(_ context.Context, userID, _ string) (*recommend.Signals, string, error) {
	f.gotUser = userID
	if f.err != nil {
		return nil, "", f.err
	}
	return &recommend.Signals{
		HardExcludedNorm:   recommend.NewSet("inception"),
		HardExcludedTitles: []string{"Inception"},
	}, "FR", nil
}

func TestPrintSignals(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	if err := st.PutProfile(ctx, &models.Profile{ID: "profile-1", UserID: "user-1", Name: "Ana"}); err != nil {
		t.Fatalf("PutProfile() error = %v", err)
	}

	src := &fakeSignals{}
	var buf bytes.Buffer
	if err := printSignals(ctx, src, st, "profile-1", &buf); err != nil {
		t.Fatalf("printSignals() error = %v", err)
	}
	if src.gotUser != "user-1" {
		t.Errorf("signals loaded as %q, want the profile owner", src.gotUser)
	}

	var got struct {
		Region  string `json:"region"`
		Signals struct {
			Hard []string `json:"hard_excluded_normalized"`
		} `json:"signals"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if got.Region != "FR" || !cmp.Equal(got.Signals.Hard, []string{"inception"}) {
		t.Errorf("output = %+v", got)
	}

	if err := printSignals(ctx, src, st, "missing", &buf); err == nil {
		t.Error("printSignals() for a missing profile error = nil")
	}
}

type fakeRunner struct {
	req recommend.SessionRequest
}

func (f *fakeRunner) CreateSession(_ context.Context, req recommend.SessionRequest) (*recommend.SessionResponse, error) {
	f.req = req
	return &recommend.SessionResponse{ID: "session-1", ProfileID: req.ProfileID}, nil
}

func (f *fakeRunner) StreamSession(_ context.Context, req recommend.SessionRequest, sink recommend.EventSink) error {
	f.req = req
	if err := sink.Send(recommend.SessionStartedEvent{Type: recommend.EventSessionStarted, SessionID: "session-1"}); err != nil {
		return err
	}
	return sink.Send(recommend.CompleteEvent{Type: recommend.EventComplete})
}

func TestRunSession(t *testing.T) {
	t.Run("batch", func(t *testing.T) {
		runner := &fakeRunner{}
		var buf bytes.Buffer
		so := &sessionOptions{profileID: "profile-1", sessionType: "mood", mood: `{"content_types":["tv"]}`}

		if err := runSession(context.Background(), runner, "user-1", so, &buf); err != nil {
			t.Fatalf("runSession() error = %v", err)
		}
		if diff := cmp.Diff([]models.ContentType{models.ContentTV}, runner.req.ContentTypes); diff != "" {
			t.Errorf("content types from mood (-want +got):\n%s", diff)
		}
		if runner.req.UserID != "user-1" || runner.req.SessionType != models.SessionMood {
			t.Errorf("request = %+v", runner.req)
		}
		if !strings.Contains(buf.String(), `"id": "session-1"`) {
			t.Errorf("output = %s", buf.String())
		}
	})

	t.Run("stream prints one event per line", func(t *testing.T) {
		var buf bytes.Buffer
		so := &sessionOptions{profileID: "profile-1", sessionType: "mood", stream: true, contentTypes: []string{"movie"}}

		if err := runSession(context.Background(), &fakeRunner{}, "user-1", so, &buf); err != nil {
			t.Fatalf("runSession() error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 2 || !strings.Contains(lines[0], `"session_started"`) || !strings.Contains(lines[1], `"complete"`) {
			t.Errorf("lines = %q", lines)
		}
	})

	t.Run("invalid mood", func(t *testing.T) {
		so := &sessionOptions{profileID: "p", mood: "[1,2"}
		if err := runSession(context.Background(), &fakeRunner{}, "u", so, &bytes.Buffer{}); err == nil {
			t.Error("runSession() error = nil")
		}
	})
}

type fakeResolver struct {
	row    *models.MediaTitle
	region string
}

func (f *fakeResolver) GetOrCreate(_ context.Context, _ int64, _ models.ContentType, _, region string) (*models.MediaTitle, models.WatchProviders) {
	f.region = region
	return f.row, models.WatchProviders{Providers: []models.WatchProvider{{ProviderID: 8, Name: "Netflix"}}}
}

func TestPrintTitle(t *testing.T) {
	res := &fakeResolver{row: &models.MediaTitle{ID: "t1", TMDBID: 27205, ContentType: models.ContentMovie, Title: "Inception"}}
	var buf bytes.Buffer
	if err := printTitle(context.Background(), res, 27205, models.ContentMovie, "fr", &buf); err != nil {
		t.Fatalf("printTitle() error = %v", err)
	}
	if res.region != "FR" {
		t.Errorf("region = %q, want FR", res.region)
	}
	if !strings.Contains(buf.String(), "Netflix") || !strings.Contains(buf.String(), "Inception") {
		t.Errorf("output = %s", buf.String())
	}

	if err := printTitle(context.Background(), &fakeResolver{}, 1, models.ContentTV, "US", &buf); err == nil {
		t.Error("printTitle() for unresolved title error = nil")
	}
}

func TestRootCmd(t *testing.T) {
	root := newRootCmd()
	want := []string{"seed", "session", "signals", "title"}
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("subcommands mismatch (-want +got):\n%s", diff)
	}

	root.SetArgs([]string{"signals"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "profile") {
		t.Errorf("Execute() without --profile = %v, want required flag error", err)
	}
}
