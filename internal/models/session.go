// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package models

import (
	"encoding/json"
	"time"
)

// SessionType is the kind of recommendation session a client asked for.
type SessionType string

const (
	SessionOnboarding SessionType = "onboarding"
	SessionMood       SessionType = "mood"
	SessionQuickMatch SessionType = "quick_match"
)

// Valid reports whether s is a known session type.
func (s SessionType) Valid() bool {
	switch s {
	case SessionOnboarding, SessionMood, SessionQuickMatch:
		return true
	}
	return false
}

// RecommendationSession is one persisted recommendation request.
type RecommendationSession struct {
	ID            string          `json:"id"`
	ProfileID     string          `json:"profile_id"`
	SessionType   SessionType     `json:"session_type"`
	InputPayload  json.RawMessage `json:"input_payload"`
	ModelResponse json.RawMessage `json:"model_response"`
	MoodLabel     string          `json:"mood_label"`
	MoodTags      []string        `json:"mood_tags"`
	TopTitleID    *string         `json:"top_title_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RecommendationItem links a session to one accepted title.
type RecommendationItem struct {
	SessionID  string    `json:"session_id"`
	TitleID    string    `json:"title_id"`
	RankIndex  int       `json:"rank_index"`
	Reason     string    `json:"openai_reason"`
	MatchScore int       `json:"match_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// RecommendationCard is the client-facing view of one recommendation.
type RecommendationCard struct {
	TitleID           string          `json:"title_id"`
	Title             string          `json:"title"`
	Year              string          `json:"year"`
	Duration          string          `json:"duration"`
	Genres            []string        `json:"genres"`
	Rating            string          `json:"rating"`
	AgeRating         string          `json:"age_rating"`
	Quote             string          `json:"quote"`
	Description       string          `json:"description"`
	PosterURL         *string         `json:"poster_url"`
	MatchScore        *int            `json:"match_score"`
	ContentType       ContentType     `json:"tmdb_type"`
	Director          string          `json:"director"`
	Starring          []string        `json:"starring"`
	WatchProviderLink *string         `json:"watch_provider_link"`
	WatchProviders    []WatchProvider `json:"watch_providers"`
}
