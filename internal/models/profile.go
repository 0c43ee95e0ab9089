// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package models

import "time"

// Profile is a viewing profile owned by an account.
type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	CountryCode *string   `json:"country_code"`
	CreatedAt   time.Time `json:"created_at"`
}

// AppUser is the account-level record; Region is the fallback when a
// profile has no country code.
type AppUser struct {
	ID     string  `json:"id"`
	Email  string  `json:"email,omitempty"`
	Region *string `json:"region"`
}

// ProfilePreferences holds onboarding answers as free-form JSON.
type ProfilePreferences struct {
	ProfileID string         `json:"profile_id"`
	Answers   map[string]any `json:"answers"`
	UpdatedAt time.Time      `json:"updated_at"`
}
