// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

const interactionKeyPrefix = "interaction:"

func interactionKey(profileID string, at time.Time, id string) string {
	return interactionKeyPrefix + profileID + ":" + invertedTime(at) + ":" + id
}

// AddInteraction records a user action. ID and CreatedAt are assigned when
// empty. The joined Title field is never persisted.
func (s *Store) AddInteraction(ctx context.Context, in *models.Interaction) error {
	if in.ProfileID == "" {
		return fmt.Errorf("interaction profile_id is required")
	}
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = s.now().UTC()
	}
	row := *in
	row.Title = nil
	return s.update(ctx, func(txn *badger.Txn) error {
		return setJSON(txn, interactionKey(in.ProfileID, in.CreatedAt, in.ID), &row)
	})
}

// ListInteractions returns up to limit interactions for a profile created at
// or after since, newest first, each joined with its canonical title.
func (s *Store) ListInteractions(ctx context.Context, profileID string, since time.Time, limit int) ([]models.Interaction, error) {
	var out []models.Interaction
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scanPrefix(txn, interactionKeyPrefix+profileID+":", func(_, val []byte) (bool, error) {
			if limit > 0 && len(out) >= limit {
				return false, nil
			}
			var in models.Interaction
			if err := json.Unmarshal(val, &in); err != nil {
				return false, fmt.Errorf("decode interaction: %w", err)
			}
			if in.CreatedAt.Before(since) {
				return false, nil
			}
			ref, err := titleRef(txn, in.TitleID)
			if err != nil {
				return false, err
			}
			in.Title = ref
			out = append(out, in)
			return true, nil
		})
	})
	return out, err
}

func titleRef(txn *badger.Txn, titleID string) (*models.TitleRef, error) {
	if titleID == "" {
		return nil, nil
	}
	var t models.MediaTitle
	err := getJSON(txn, titleKeyPrefix+titleID, &t)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	id := t.TMDBID
	return &models.TitleRef{
		Title:       t.Title,
		TMDBID:      &id,
		ContentType: t.ContentType,
		Genres:      t.Genres,
	}, nil
}
