// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package store

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

const (
	profileKeyPrefix     = "profile:"
	appUserKeyPrefix     = "app_user:"
	preferencesKeyPrefix = "prefs:"
)

// PutProfile creates or replaces a profile. An empty ID is assigned.
func (s *Store) PutProfile(ctx context.Context, p *models.Profile) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, profileKeyPrefix+p.ID, p)
	})
}

// GetProfile returns ErrNotFound when the profile does not exist.
func (s *Store) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, profileKeyPrefix+id, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PutAppUser creates or replaces an account record.
func (s *Store) PutAppUser(ctx context.Context, u *models.AppUser) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, appUserKeyPrefix+u.ID, u)
	})
}

// GetAppUser returns ErrNotFound when the account does not exist.
func (s *Store) GetAppUser(ctx context.Context, id string) (*models.AppUser, error) {
	var u models.AppUser
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, appUserKeyPrefix+id, &u)
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// PutPreferences stores onboarding answers for a profile.
func (s *Store) PutPreferences(ctx context.Context, p *models.ProfilePreferences) error {
	p.UpdatedAt = s.now().UTC()
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, preferencesKeyPrefix+p.ProfileID, p)
	})
}

// GetPreferences returns ErrNotFound when the profile has none.
func (s *Store) GetPreferences(ctx context.Context, profileID string) (*models.ProfilePreferences, error) {
	var p models.ProfilePreferences
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, preferencesKeyPrefix+profileID, &p)
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}
