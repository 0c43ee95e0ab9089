// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package models

import "time"

// Action is what a user did with a title.
type Action string

const (
	ActionImpression Action = "impression"
	ActionOpen       Action = "open"
	ActionPlay       Action = "play"
	ActionComplete   Action = "complete"
	ActionLike       Action = "like"
	ActionDislike    Action = "dislike"
	ActionSkip       Action = "skip"
	ActionFeedback   Action = "feedback"
)

// Sentiment is derived from an interaction; it is never stored.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// TitleRef is the subset of a canonical title joined onto an interaction.
type TitleRef struct {
	Title       string      `json:"title"`
	TMDBID      *int64      `json:"tmdb_id"`
	ContentType ContentType `json:"tmdb_type"`
	Genres      []string    `json:"genres"`
}

// InteractionExtra carries free-form feedback attached to an interaction.
type InteractionExtra struct {
	QuickTags       []string `json:"quick_tags,omitempty"`
	WouldWatchAgain *bool    `json:"would_watch_again,omitempty"`
	FeedbackText    string   `json:"feedback_text,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// Interaction is one recorded user action on a title.
type Interaction struct {
	ID        string           `json:"id"`
	ProfileID string           `json:"profile_id"`
	TitleID   string           `json:"title_id"`
	Title     *TitleRef        `json:"media_titles,omitempty"` // joined on read, absent if the title row is gone
	Action    Action           `json:"action"`
	Rating    *int             `json:"rating"`
	Extra     InteractionExtra `json:"extra"`
	CreatedAt time.Time        `json:"created_at"` // zero when unknown
}
