// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"fmt"
	"time"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/config"
)

// Config contains the tunables of the recommendation pipeline.
type Config struct {
	// HistoryWindow bounds how far back interactions are read.
	HistoryWindow time.Duration `json:"history_window"`

	// MaxHistory caps the number of interactions read per request.
	MaxHistory int `json:"max_history"`

	// RecentSessionsWindow and RecentSessionsLimit select the sessions whose
	// items must not be suggested again.
	RecentSessionsWindow time.Duration `json:"recent_sessions_window"`
	RecentSessionsLimit  int           `json:"recent_sessions_limit"`

	// RecentItemsLimit caps the items read from those sessions.
	RecentItemsLimit int `json:"recent_items_limit"`

	// CandidatesCount is the number of titles asked for in the first round.
	CandidatesCount int `json:"candidates_count"`

	// FinalCount is the number of cards a session aims to return.
	FinalCount int `json:"final_count"`

	// TopUpMaxAttempts bounds follow-up rounds in batch mode.
	TopUpMaxAttempts int `json:"topup_max_attempts"`

	// StreamTopUpMaxAttempts bounds follow-up rounds in streaming mode.
	StreamTopUpMaxAttempts int `json:"stream_topup_max_attempts"`

	GenresMax int `json:"genres_max"`
	TagsMax   int `json:"tags_max"`
	NotesMax  int `json:"notes_max"`

	// HardExcludeCap and SoftExcludeCap bound the exclusion lists written
	// into the prompt. Gating always uses the full sets.
	HardExcludeCap int `json:"hard_exclude_cap"`
	SoftExcludeCap int `json:"soft_exclude_cap"`

	// PromptInteractions is how many recent interactions the prompt context carries.
	PromptInteractions int `json:"prompt_interactions"`

	// EnrichFreshness is the age after which a title with missing
	// enrichment fields is fetched again.
	EnrichFreshness time.Duration `json:"enrich_freshness"`

	// ExternalTimeout bounds each metadata call.
	ExternalTimeout time.Duration `json:"external_timeout"`

	// DefaultRegion is used when neither the profile nor its owner has one.
	DefaultRegion string `json:"default_region"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		HistoryWindow:          120 * 24 * time.Hour,
		MaxHistory:             300,
		RecentSessionsWindow:   90 * 24 * time.Hour,
		RecentSessionsLimit:    60,
		RecentItemsLimit:       400,
		CandidatesCount:        12,
		FinalCount:             5,
		TopUpMaxAttempts:       1,
		StreamTopUpMaxAttempts: 1,
		GenresMax:              10,
		TagsMax:                20,
		NotesMax:               10,
		HardExcludeCap:         60,
		SoftExcludeCap:         40,
		PromptInteractions:     50,
		EnrichFreshness:        7 * 24 * time.Hour,
		ExternalTimeout:        5 * time.Second,
		DefaultRegion:          "US",
	}
}

// FromConfig builds a Config from the loaded application configuration.
// Zero values keep their defaults.
func FromConfig(rc config.RecommendConfig) *Config {
	c := DefaultConfig()
	setDuration(&c.HistoryWindow, rc.HistoryWindow)
	setInt(&c.MaxHistory, rc.MaxHistory)
	setDuration(&c.RecentSessionsWindow, rc.RecentSessionsWindow)
	setInt(&c.RecentSessionsLimit, rc.RecentSessionsLimit)
	setInt(&c.RecentItemsLimit, rc.RecentItemsLimit)
	setInt(&c.CandidatesCount, rc.CandidatesCount)
	setInt(&c.FinalCount, rc.FinalCount)
	setInt(&c.TopUpMaxAttempts, rc.TopUpMaxAttempts)
	setInt(&c.StreamTopUpMaxAttempts, rc.StreamTopUpMaxAttempts)
	setInt(&c.GenresMax, rc.GenresMax)
	setInt(&c.TagsMax, rc.TagsMax)
	setInt(&c.NotesMax, rc.NotesMax)
	setInt(&c.HardExcludeCap, rc.HardExcludeCap)
	setInt(&c.SoftExcludeCap, rc.SoftExcludeCap)
	setInt(&c.PromptInteractions, rc.PromptInteractions)
	setDuration(&c.EnrichFreshness, rc.EnrichFreshness)
	setDuration(&c.ExternalTimeout, rc.ExternalTimeout)
	if rc.DefaultRegion != "" {
		c.DefaultRegion = rc.DefaultRegion
	}
	return c
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.FinalCount <= 0 {
		return fmt.Errorf("final_count must be positive, got %d", c.FinalCount)
	}
	if c.CandidatesCount < c.FinalCount {
		return fmt.Errorf("candidates_count (%d) must be >= final_count (%d)", c.CandidatesCount, c.FinalCount)
	}
	if c.TopUpMaxAttempts < 0 || c.StreamTopUpMaxAttempts < 0 {
		return fmt.Errorf("top-up attempts must not be negative")
	}
	if c.MaxHistory <= 0 {
		return fmt.Errorf("max_history must be positive, got %d", c.MaxHistory)
	}
	if c.HistoryWindow <= 0 || c.RecentSessionsWindow <= 0 {
		return fmt.Errorf("history windows must be positive")
	}
	if c.GenresMax <= 0 || c.TagsMax <= 0 || c.NotesMax <= 0 {
		return fmt.Errorf("signal limits must be positive")
	}
	if c.EnrichFreshness <= 0 {
		return fmt.Errorf("enrich_freshness must be positive, got %v", c.EnrichFreshness)
	}
	if c.ExternalTimeout <= 0 {
		return fmt.Errorf("external_timeout must be positive, got %v", c.ExternalTimeout)
	}
	if c.DefaultRegion == "" {
		return fmt.Errorf("default_region is required")
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
