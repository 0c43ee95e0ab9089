// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/auth"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
)

const (
	testUser    = "user-1"
	testProfile = "3f1c2a9e-8f5b-4c1d-9e2a-7b6c5d4e3f21"
)

var testTime = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeSessions struct {
	mu        sync.Mutex
	requests  []recommend.SessionRequest
	createErr error
	streamErr error
	// preStart makes StreamSession fail before any event is sent.
	preStart bool
	getErr   error
}

func testCards(n int) []models.RecommendationCard {
	out := make([]models.RecommendationCard, n)
	for i := range out {
		score := 90 - i
		out[i] = models.RecommendationCard{
			TitleID:        "title-" + string(rune('a'+i)),
			Title:          "Title " + string(rune('A'+i)),
			Genres:         []string{"Drama"},
			Starring:       []string{},
			MatchScore:     &score,
			ContentType:    models.ContentMovie,
			WatchProviders: []models.WatchProvider{},
		}
	}
	return out
}

func (f *fakeSessions) record(req recommend.SessionRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
}

func (f *fakeSessions) lastRequest() recommend.SessionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func (f *fakeSessions) response(req recommend.SessionRequest) *recommend.SessionResponse {
	return &recommend.SessionResponse{
		ID:          "session-1",
		ProfileID:   req.ProfileID,
		SessionType: req.SessionType,
		MoodInput:   req.MoodInput,
		CreatedAt:   testTime,
		Cards:       testCards(3),
	}
}

func (f *fakeSessions) CreateSession(_ context.Context, req recommend.SessionRequest) (*recommend.SessionResponse, error) {
	f.record(req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.response(req), nil
}

func (f *fakeSessions) StreamSession(_ context.Context, req recommend.SessionRequest, sink recommend.EventSink) error {
	f.record(req)
	if f.preStart {
		return f.streamErr
	}
	resp := f.response(req)
	if err := sink.Send(recommend.SessionStartedEvent{
		Type: recommend.EventSessionStarted, SessionID: resp.ID, ProfileID: resp.ProfileID,
		SessionType: resp.SessionType, TotalExpected: 5, CreatedAt: resp.CreatedAt,
	}); err != nil {
		return err
	}
	if f.streamErr != nil {
		_ = sink.Send(recommend.ErrorEvent{Type: recommend.EventError, Message: "Could not generate recommendations after filtering"})
		return f.streamErr
	}
	for i, c := range resp.Cards {
		if err := sink.Send(recommend.CardEvent{Type: recommend.EventCard, Card: c, Index: i}); err != nil {
			return err
		}
	}
	return sink.Send(recommend.CompleteEvent{Type: recommend.EventComplete, SessionResponse: *resp})
}

func (f *fakeSessions) GetSession(_ context.Context, userID, sessionID string) (*recommend.StoredSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if userID != testUser || sessionID != "session-1" {
		return nil, &recommend.Error{Kind: recommend.KindNotFound, Message: "Session not found"}
	}
	return &recommend.StoredSession{
		SessionResponse: recommend.SessionResponse{ID: sessionID, ProfileID: testProfile, CreatedAt: testTime, Cards: testCards(2)},
		MoodLabel:       "Cozy",
		MoodTags:        []string{"warm"},
	}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func newTestRouter(t *testing.T, sessions SessionService, pinger Pinger) http.Handler {
	t.Helper()
	authMW, err := NewAuthMiddleware(auth.AuthModeNone, auth.JWTConfig{})
	if err != nil {
		t.Fatalf("NewAuthMiddleware() error = %v", err)
	}
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	return NewRouter(NewHandler(sessions, pinger), NewChiMiddleware(cfg), authMW).SetupChi()
}

func doRequest(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func asUser() map[string]string {
	return map[string]string{auth.UserIDHeader: testUser}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode envelope %q: %v", rec.Body.String(), err)
	}
	return resp
}

func sessionBody(extra string) string {
	return `{"profile_id":"` + testProfile + `","session_type":"mood","mood_input":{"energy":"low"}` + extra + `}`
}

var errBoom = errors.New("boom")
