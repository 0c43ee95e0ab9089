// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"
	"errors"

	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
)

const msgSessionNotFound = "Session not found"

// StoredSession is a persisted session as returned to its owner.
type StoredSession struct {
	SessionResponse
	MoodLabel  string   `json:"mood_label"`
	MoodTags   []string `json:"mood_tags"`
	TopTitleID *string  `json:"top_title_id"`
}

// GetSession loads a session and its ranked cards. Sessions of profiles
// the caller does not own are reported as not found.
func (o *Orchestrator) GetSession(ctx context.Context, userID, sessionID string) (*StoredSession, error) {
	if userID == "" {
		return nil, newError(KindAuth, "Missing authenticated user", nil)
	}
	if sessionID == "" {
		return nil, newError(KindValidation, "session id is required", nil)
	}

	sess, err := o.store.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, newError(KindNotFound, msgSessionNotFound, nil)
	}
	if err != nil {
		return nil, newError(KindInternal, "Failed to load session", err)
	}

	profile, err := o.store.GetProfile(ctx, sess.ProfileID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && profile.UserID != userID) {
		return nil, newError(KindNotFound, msgSessionNotFound, nil)
	}
	if err != nil {
		return nil, newError(KindInternal, "Failed to load profile", err)
	}

	items, err := o.store.ListSessionItems(ctx, []string{sess.ID}, 0)
	if err != nil {
		return nil, newError(KindInternal, "Failed to load session items", err)
	}

	out := &StoredSession{
		SessionResponse: SessionResponse{
			ID:          sess.ID,
			ProfileID:   sess.ProfileID,
			SessionType: sess.SessionType,
			MoodInput:   map[string]any{},
			CreatedAt:   sess.CreatedAt,
			Cards:       make([]models.RecommendationCard, 0, len(items)),
		},
		MoodLabel:  sess.MoodLabel,
		MoodTags:   sess.MoodTags,
		TopTitleID: sess.TopTitleID,
	}
	if out.MoodTags == nil {
		out.MoodTags = []string{}
	}
	if len(sess.InputPayload) > 0 {
		if err := json.Unmarshal(sess.InputPayload, &out.MoodInput); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("session_id", sess.ID).Msg("Stored input payload is not an object")
		}
	}

	for _, it := range items {
		title, err := o.store.GetTitle(ctx, it.TitleID)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("title_id", it.TitleID).Msg("Session item title missing")
			continue
		}
		out.Cards = append(out.Cards, BuildCard(ResolvedCandidate{
			Item: models.CandidateItem{
				Title:       title.Title,
				ContentType: title.ContentType,
				Reason:      it.Reason,
				MatchScore:  it.MatchScore,
			},
			Title: title,
		}))
	}
	return out, nil
}
