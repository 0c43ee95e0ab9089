// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package store

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

const (
	sessionKeyPrefix        = "session:"
	sessionProfileKeyPrefix = "session_profile:"
	sessionItemKeyPrefix    = "session_item:"
)

func sessionItemKey(sessionID string, rank int) string {
	return fmt.Sprintf("%s%s:%06d", sessionItemKeyPrefix, sessionID, rank)
}

// CreateSession persists a new recommendation session and indexes it under
// its profile. ID and CreatedAt are assigned when empty.
func (s *Store) CreateSession(ctx context.Context, sess *models.RecommendationSession) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = s.now().UTC()
	}
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := setJSON(txn, sessionKeyPrefix+sess.ID, sess); err != nil {
			return err
		}
		idx := sessionProfileKeyPrefix + sess.ProfileID + ":" + invertedTime(sess.CreatedAt) + ":" + sess.ID
		return txn.Set([]byte(idx), []byte(sess.ID))
	})
}

// GetSession loads a session by id.
func (s *Store) GetSession(ctx context.Context, id string) (*models.RecommendationSession, error) {
	var sess models.RecommendationSession
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, sessionKeyPrefix+id, &sess)
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// FinalizeSession records the outcome of a session that was created before
// its candidates were known. topTitleID may be empty.
func (s *Store) FinalizeSession(ctx context.Context, sessionID, topTitleID, moodLabel string, moodTags []string, modelResponse []byte) error {
	return s.update(ctx, func(txn *badger.Txn) error {
		var sess models.RecommendationSession
		if err := getJSON(txn, sessionKeyPrefix+sessionID, &sess); err != nil {
			return err
		}
		if topTitleID != "" {
			sess.TopTitleID = &topTitleID
		}
		sess.MoodLabel = moodLabel
		sess.MoodTags = moodTags
		if len(modelResponse) > 0 {
			sess.ModelResponse = modelResponse
		}
		return setJSON(txn, sessionKeyPrefix+sessionID, &sess)
	})
}

// ListRecentSessions returns up to limit sessions of a profile created at
// or after since, newest first.
func (s *Store) ListRecentSessions(ctx context.Context, profileID string, since time.Time, limit int) ([]models.RecommendationSession, error) {
	var out []models.RecommendationSession
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scanPrefix(txn, sessionProfileKeyPrefix+profileID+":", func(_, val []byte) (bool, error) {
			if limit > 0 && len(out) >= limit {
				return false, nil
			}
			var sess models.RecommendationSession
			if err := getJSON(txn, sessionKeyPrefix+string(val), &sess); err != nil {
				return false, err
			}
			if sess.CreatedAt.Before(since) {
				return false, nil
			}
			out = append(out, sess)
			return true, nil
		})
	})
	return out, err
}

// InsertSessionItems stores the accepted titles of a session in one
// transaction. CreatedAt is assigned when empty.
func (s *Store) InsertSessionItems(ctx context.Context, items []models.RecommendationItem) error {
	if len(items) == 0 {
		return nil
	}
	now := s.now().UTC()
	return s.update(ctx, func(txn *badger.Txn) error {
		for i := range items {
			if items[i].CreatedAt.IsZero() {
				items[i].CreatedAt = now
			}
			if err := setJSON(txn, sessionItemKey(items[i].SessionID, items[i].RankIndex), &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSessionItems returns the items of the given sessions ordered by
// session then rank, capped at limit in total.
func (s *Store) ListSessionItems(ctx context.Context, sessionIDs []string, limit int) ([]models.RecommendationItem, error) {
	var out []models.RecommendationItem
	err := s.view(ctx, func(txn *badger.Txn) error {
		for _, id := range sessionIDs {
			if limit > 0 && len(out) >= limit {
				return nil
			}
			err := scanPrefix(txn, sessionItemKeyPrefix+id+":", func(_, val []byte) (bool, error) {
				if limit > 0 && len(out) >= limit {
					return false, nil
				}
				var item models.RecommendationItem
				if err := json.Unmarshal(val, &item); err != nil {
					return false, fmt.Errorf("decode session item: %w", err)
				}
				out = append(out, item)
				return true, nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return out, err
}
