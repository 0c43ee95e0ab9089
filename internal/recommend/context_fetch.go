// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"
	"errors"
	"sync"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
)

// requestContext is everything one session needs before generation starts.
type requestContext struct {
	req          SessionRequest
	profile      *models.Profile
	region       string
	interactions []models.Interaction
	signals      *Signals
	rc           *ResolutionContext
	prompt       *PromptContext
}

// loadContext fetches the profile, its preferences and history, derives the
// signals and seeds the resolution context. Only a missing or foreign
// profile, or a failed profile read, is fatal.
func (o *Orchestrator) loadContext(ctx context.Context, req SessionRequest) (*requestContext, error) {
	logger := logging.Ctx(ctx)
	now := o.now()

	var (
		wg           sync.WaitGroup
		profile      *models.Profile
		profileErr   error
		prefs        *models.ProfilePreferences
		interactions []models.Interaction
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		profile, profileErr = o.store.GetProfile(ctx, req.ProfileID)
	}()
	go func() {
		defer wg.Done()
		p, err := o.store.GetPreferences(ctx, req.ProfileID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			logger.Warn().Err(err).Msg("Preferences fetch failed")
		}
		prefs = p
	}()
	go func() {
		defer wg.Done()
		list, err := o.store.ListInteractions(ctx, req.ProfileID, now.Add(-o.cfg.HistoryWindow), o.cfg.MaxHistory)
		if err != nil {
			logger.Warn().Err(err).Msg("Interactions fetch failed")
		}
		interactions = list
	}()
	wg.Wait()

	if profileErr != nil {
		if errors.Is(profileErr, store.ErrNotFound) {
			return nil, newError(KindNotFound, "Profile not found or not owned by user", nil)
		}
		return nil, newError(KindInternal, "Failed to load profile", profileErr)
	}
	if profile.UserID != req.UserID {
		logger.Warn().Msg("Profile requested by a user that does not own it")
		return nil, newError(KindNotFound, "Profile not found or not owned by user", nil)
	}

	rq := &requestContext{
		req:          req,
		profile:      profile,
		region:       o.resolveRegion(ctx, profile),
		interactions: interactions,
	}
	rq.signals = ExtractSignals(interactions, now, o.cfg)

	recentNorm, recentKeys := o.recentlyRecommended(ctx, req.ProfileID)
	rq.rc = NewResolutionContext(rq.signals, recentNorm, recentKeys)

	answers := map[string]any{}
	if prefs != nil && prefs.Answers != nil {
		answers = prefs.Answers
	}
	mood := req.MoodInput
	if mood == nil {
		mood = map[string]any{}
	}
	rq.prompt = &PromptContext{
		ProfileID:          req.ProfileID,
		SessionType:        req.SessionType,
		ContentTypes:       req.ContentTypes,
		ProfilePreferences: answers,
		RecentInteractions: promptInteractions(interactions, o.cfg.PromptInteractions),
		FeedbackSignals:    signalsUsed(rq.signals),
		MoodInput:          mood,
	}

	logger.Info().
		Int("interactions", len(interactions)).
		Int("hard_excluded", len(rq.signals.HardExcludedNorm)).
		Int("soft_excluded", len(rq.signals.SoftExcludedNorm)).
		Int("recent_recommended", len(recentNorm)).
		Int("positive_genres", len(rq.signals.Positive.Genres)).
		Int("negative_genres", len(rq.signals.Negative.Genres)).
		Str("region", rq.region).
		Msg("Feedback signals built")
	return rq, nil
}

// resolveRegion picks the profile's country code, then the owning user's
// region, then the configured default.
func (o *Orchestrator) resolveRegion(ctx context.Context, p *models.Profile) string {
	if p.CountryCode != nil && *p.CountryCode != "" {
		return *p.CountryCode
	}
	if p.UserID != "" {
		u, err := o.store.GetAppUser(ctx, p.UserID)
		switch {
		case err == nil && u.Region != nil && *u.Region != "":
			return *u.Region
		case err != nil && !errors.Is(err, store.ErrNotFound):
			logging.Ctx(ctx).Warn().Err(err).Msg("Account region fetch failed")
		}
	}
	return o.cfg.DefaultRegion
}

// recentlyRecommended returns the normalized titles and provider keys of
// items recommended to the profile within the recent-sessions window.
func (o *Orchestrator) recentlyRecommended(ctx context.Context, profileID string) (Set, Set) {
	norms, keys := NewSet(), NewSet()
	logger := logging.Ctx(ctx)

	sessions, err := o.store.ListRecentSessions(ctx, profileID, o.now().Add(-o.cfg.RecentSessionsWindow), o.cfg.RecentSessionsLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("Recent sessions fetch failed")
		return norms, keys
	}
	if len(sessions) == 0 {
		return norms, keys
	}
	ids := make([]string, len(sessions))
	for i := range sessions {
		ids[i] = sessions[i].ID
	}

	items, err := o.store.ListSessionItems(ctx, ids, o.cfg.RecentItemsLimit)
	if err != nil {
		logger.Warn().Err(err).Msg("Recent recommendation items fetch failed")
		return norms, keys
	}
	for _, it := range items {
		t, err := o.store.GetTitle(ctx, it.TitleID)
		if err != nil {
			continue
		}
		if t.Title != "" {
			norms.Add(NormalizeTitle(t.Title))
		}
		if t.TMDBID != 0 && t.ContentType != "" {
			keys.Add(t.Key())
		}
	}
	return norms, keys
}
