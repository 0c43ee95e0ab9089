// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

const (
	providerKeyPrefix     = "provider:"
	availabilityKeyPrefix = "availability:"
)

func availabilityPrefix(titleID, region string) string {
	return availabilityKeyPrefix + titleID + ":" + region + ":"
}

// UpsertProviders inserts or refreshes provider rows keyed by their TMDB
// provider id and returns a map from TMDB provider id to store id.
func (s *Store) UpsertProviders(ctx context.Context, providers []models.StreamingProvider) (map[int64]string, error) {
	ids := make(map[int64]string, len(providers))
	err := s.update(ctx, func(txn *badger.Txn) error {
		for _, p := range providers {
			key := providerKeyPrefix + strconv.FormatInt(p.TMDBProviderID, 10)
			var existing models.StreamingProvider
			err := getJSON(txn, key, &existing)
			switch {
			case errors.Is(err, ErrNotFound):
				p.ID = uuid.NewString()
			case err != nil:
				return err
			default:
				p.ID = existing.ID
			}
			if err := setJSON(txn, key, &p); err != nil {
				return err
			}
			ids[p.TMDBProviderID] = p.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ReplaceAvailability deletes all availability of a title in a region and
// writes records in its place.
func (s *Store) ReplaceAvailability(ctx context.Context, titleID, region string, records []models.TitleAvailability) error {
	prefix := availabilityPrefix(titleID, region)
	return s.update(ctx, func(txn *badger.Txn) error {
		if err := deletePrefix(txn, prefix); err != nil {
			return fmt.Errorf("delete old availability: %w", err)
		}
		for i, r := range records {
			key := fmt.Sprintf("%s%04d:%s:%s", prefix, i, r.ProviderID, r.AvailabilityType)
			if err := setJSON(txn, key, &r); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListAvailability returns the stored availability of a title in a region.
func (s *Store) ListAvailability(ctx context.Context, titleID, region string) ([]models.TitleAvailability, error) {
	var out []models.TitleAvailability
	err := s.view(ctx, func(txn *badger.Txn) error {
		return scanPrefix(txn, availabilityPrefix(titleID, region), func(_, val []byte) (bool, error) {
			var r models.TitleAvailability
			if err := json.Unmarshal(val, &r); err != nil {
				return false, err
			}
			out = append(out, r)
			return true, nil
		})
	})
	return out, err
}
