// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// ContentType is the metadata provider's media kind.
type ContentType string

const (
	ContentMovie ContentType = "movie"
	ContentTV    ContentType = "tv"
)

// Valid reports whether c is movie or tv.
func (c ContentType) Valid() bool {
	return c == ContentMovie || c == ContentTV
}

// ParseContentType lowercases and trims s; ok is false for anything other
// than movie or tv.
func ParseContentType(s string) (ContentType, bool) {
	c := ContentType(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// ProviderKey is the "type:id" string that identifies a title at the
// metadata provider.
func ProviderKey(c ContentType, externalID int64) string {
	return string(c) + ":" + strconv.FormatInt(externalID, 10)
}

// MediaTitle is the canonical, deduplicated record of a movie or TV show.
// (TMDBID, ContentType) is unique across the store.
type MediaTitle struct {
	ID             string          `json:"id"`
	TMDBID         int64           `json:"tmdb_id"`
	ContentType    ContentType     `json:"tmdb_type"`
	Title          string          `json:"title"`
	Overview       *string         `json:"overview"`
	Genres         []string        `json:"genres"`
	Year           *int            `json:"year"`
	RuntimeMinutes *int            `json:"runtime_minutes"`
	PosterURL      *string         `json:"poster_url"`
	BackdropURL    *string         `json:"backdrop_url"`
	IMDbID         *string         `json:"imdb_id"`
	IMDbRating     *float64        `json:"imdb_rating"`
	AgeRating      *string         `json:"age_rating"`
	Director       *string         `json:"director"`
	Starring       []string        `json:"starring"` // nil when credits were unavailable
	RawTMDB        json.RawMessage `json:"raw_tmdb,omitempty"`
	RawOMDb        json.RawMessage `json:"raw_omdb,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Key returns the provider key of the title.
func (m *MediaTitle) Key() string {
	return ProviderKey(m.ContentType, m.TMDBID)
}

// AvailabilityType is how a title can be watched through a provider.
type AvailabilityType string

const (
	AvailabilityFlatrate AvailabilityType = "flatrate"
	AvailabilityFree     AvailabilityType = "free"
	AvailabilityAds      AvailabilityType = "ads"
	AvailabilityRent     AvailabilityType = "rent"
	AvailabilityBuy      AvailabilityType = "buy"
)

// AvailabilityOrder is the order in which availability buckets are read
// from a provider document.
var AvailabilityOrder = []AvailabilityType{
	AvailabilityFlatrate,
	AvailabilityFree,
	AvailabilityAds,
	AvailabilityRent,
	AvailabilityBuy,
}

// WatchProvider is a streaming service as shown on a card.
type WatchProvider struct {
	ProviderID int64   `json:"provider_id"`
	Name       string  `json:"name"`
	LogoURL    *string `json:"logo_url"`
}

// ProviderAvailability is one (provider, availability type) pair for a title.
type ProviderAvailability struct {
	WatchProvider
	AvailabilityType AvailabilityType `json:"availability_type"`
}

// WatchProviders is the region-specific provider view of a title.
type WatchProviders struct {
	Link         *string                `json:"link"`
	Providers    []WatchProvider        `json:"providers"`    // unique by ProviderID
	Availability []ProviderAvailability `json:"availability"` // every pair, order preserved
}

// StreamingProvider is the persisted provider row.
type StreamingProvider struct {
	ID             string  `json:"id"`
	TMDBProviderID int64   `json:"tmdb_provider_id"`
	Name           string  `json:"name"`
	LogoURL        *string `json:"logo_url"`
}

// TitleAvailability is one persisted availability record.
type TitleAvailability struct {
	TitleID          string           `json:"title_id"`
	ProviderID       string           `json:"provider_id"`
	Region           string           `json:"region"`
	AvailabilityType AvailabilityType `json:"availability_type"`
	WatchLink        *string          `json:"watch_link"`
}
