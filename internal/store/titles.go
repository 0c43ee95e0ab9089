// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package store

import (
	"context"
	"errors"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

const (
	titleKeyPrefix    = "title:"
	titleExtKeyPrefix = "title_ext:"
)

func titleExtKey(c models.ContentType, tmdbID int64) string {
	return titleExtKeyPrefix + string(c) + ":" + strconv.FormatInt(tmdbID, 10)
}

// GetTitle loads a canonical title by store id.
func (s *Store) GetTitle(ctx context.Context, id string) (*models.MediaTitle, error) {
	var t models.MediaTitle
	err := s.view(ctx, func(txn *badger.Txn) error {
		return getJSON(txn, titleKeyPrefix+id, &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetTitleByExternal loads a canonical title by its provider key.
func (s *Store) GetTitleByExternal(ctx context.Context, c models.ContentType, tmdbID int64) (*models.MediaTitle, error) {
	var t models.MediaTitle
	err := s.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(titleExtKey(c, tmdbID)))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		id, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return getJSON(txn, titleKeyPrefix+string(id), &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// InsertTitle creates a canonical title. It returns ErrConflict when a row
// with the same provider key already exists or a concurrent insert won.
func (s *Store) InsertTitle(ctx context.Context, t *models.MediaTitle) error {
	now := s.now().UTC()
	row := *t
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	row.CreatedAt = now
	row.UpdatedAt = now

	err := s.update(ctx, func(txn *badger.Txn) error {
		extKey := titleExtKey(row.ContentType, row.TMDBID)
		taken, err := exists(txn, extKey)
		if err != nil {
			return err
		}
		if taken {
			return ErrConflict
		}
		if err := txn.Set([]byte(extKey), []byte(row.ID)); err != nil {
			return err
		}
		return setJSON(txn, titleKeyPrefix+row.ID, &row)
	})
	if err != nil {
		return err
	}
	*t = row
	return nil
}

// UpdateTitle replaces an existing canonical title and refreshes UpdatedAt.
// The provider key of a stored title never changes.
func (s *Store) UpdateTitle(ctx context.Context, t *models.MediaTitle) error {
	row := *t
	row.UpdatedAt = s.now().UTC()

	err := s.update(ctx, func(txn *badger.Txn) error {
		var existing models.MediaTitle
		if err := getJSON(txn, titleKeyPrefix+row.ID, &existing); err != nil {
			return err
		}
		row.TMDBID = existing.TMDBID
		row.ContentType = existing.ContentType
		row.CreatedAt = existing.CreatedAt
		return setJSON(txn, titleKeyPrefix+row.ID, &row)
	})
	if err != nil {
		return err
	}
	*t = row
	return nil
}
