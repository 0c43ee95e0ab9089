// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package models

// FeedbackSignals are the weighted taste signals of one sentiment bucket.
type FeedbackSignals struct {
	Genres []string `json:"genres"`
	Tags   []string `json:"tags"`
	Notes  []string `json:"notes"`
}

// NegativeFeedbackSignals adds the titles that earned negative sentiment.
type NegativeFeedbackSignals struct {
	FeedbackSignals
	Titles []string `json:"titles"`
}

// CandidateItem is one enriched title suggestion from the language model.
type CandidateItem struct {
	Title         string      `json:"title"`
	ContentType   ContentType `json:"tmdb_type"`
	SearchQuery   string      `json:"tmdb_search_query"`
	PrimaryGenres []string    `json:"primary_genres"`
	ToneTags      []string    `json:"tone_tags"`
	Reason        string      `json:"reason"`
	MatchScore    int         `json:"match_score"` // always within [70,99]
}
