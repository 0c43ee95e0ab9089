// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"fmt"
	"strconv"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// BuildCard renders an accepted candidate as a client card.
func BuildCard(c ResolvedCandidate) models.RecommendationCard {
	t := c.Title
	score := c.Item.MatchScore
	card := models.RecommendationCard{
		TitleID:           t.ID,
		Title:             t.Title,
		Duration:          formatDuration(t.RuntimeMinutes),
		Genres:            t.Genres,
		Quote:             c.Item.Reason,
		PosterURL:         t.PosterURL,
		MatchScore:        &score,
		ContentType:       t.ContentType,
		Starring:          t.Starring,
		WatchProviderLink: c.Providers.Link,
		WatchProviders:    c.Providers.Providers,
	}
	if card.Genres == nil {
		card.Genres = []string{}
	}
	if card.Starring == nil {
		card.Starring = []string{}
	}
	if card.WatchProviders == nil {
		card.WatchProviders = []models.WatchProvider{}
	}
	if t.Year != nil {
		card.Year = strconv.Itoa(*t.Year)
	}
	if t.IMDbRating != nil {
		card.Rating = strconv.FormatFloat(*t.IMDbRating, 'f', -1, 64)
	}
	if t.AgeRating != nil {
		card.AgeRating = *t.AgeRating
	}
	if t.Overview != nil {
		card.Description = *t.Overview
	}
	if t.Director != nil {
		card.Director = *t.Director
	}
	return card
}

// formatDuration renders a runtime as "2h 5m" or "45m". Unknown or zero
// runtimes render empty.
func formatDuration(minutes *int) string {
	if minutes == nil || *minutes <= 0 {
		return ""
	}
	h, m := *minutes/60, *minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// BuildCards renders candidates in order.
func BuildCards(cs []ResolvedCandidate) []models.RecommendationCard {
	out := make([]models.RecommendationCard, 0, len(cs))
	for _, c := range cs {
		out = append(out, BuildCard(c))
	}
	return out
}
