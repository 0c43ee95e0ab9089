// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metadata"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
)

const (
	posterSize   = "w500"
	maxStarring  = 5
	maxCreators  = 2
	notAvailable = "N/A"
)

// needsEnrichment reports whether an existing canonical row should be
// rebuilt from provider details. Rows updated within the freshness window
// are kept as they are even when fields are missing, so titles absent from
// the rating source are not looked up on every sighting.
func (r *Resolver) needsEnrichment(t *models.MediaTitle) bool {
	if t == nil {
		return true
	}
	if !t.UpdatedAt.IsZero() && r.now().Sub(t.UpdatedAt) < r.cfg.EnrichFreshness {
		return false
	}
	return (t.IMDbRating == nil && t.IMDbID == nil) || t.Director == nil || t.Starring == nil
}

// GetOrCreate returns the canonical title for a provider key together with
// its providers in region. Details and ratings are fetched only when the
// row is absent or stale and incomplete; providers are always fetched.
// The title is nil when it neither exists nor could be created.
func (r *Resolver) GetOrCreate(ctx context.Context, tmdbID int64, ct models.ContentType, fallbackTitle, region string) (*models.MediaTitle, models.WatchProviders) {
	logger := logging.Ctx(ctx).With().Int64("tmdb_id", tmdbID).Str("tmdb_type", string(ct)).Logger()

	existing, err := r.titles.GetTitleByExternal(ctx, ct, tmdbID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			logger.Warn().Err(err).Msg("Canonical title lookup failed")
		}
		existing = nil
	}
	enrich := r.needsEnrichment(existing)

	var (
		wg      sync.WaitGroup
		details *metadata.Details
		doc     *metadata.WatchProvidersDoc
	)
	if enrich {
		wg.Add(1)
		go func() {
			defer wg.Done()
			details = r.fetchDetails(ctx, tmdbID, ct)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		doc = r.fetchProviders(ctx, tmdbID, ct)
	}()
	wg.Wait()

	providers := metadata.PickProvidersForRegion(doc, region, r.meta.ImageBaseURL())

	if !enrich || details == nil {
		return existing, providers
	}

	row := r.buildTitle(ctx, details, tmdbID, ct, fallbackTitle)

	if existing != nil {
		row.ID = existing.ID
		if err := r.titles.UpdateTitle(ctx, row); err != nil {
			logger.Warn().Err(err).Msg("Canonical title update failed")
			return existing, providers
		}
		return row, providers
	}

	if err := r.titles.InsertTitle(ctx, row); err != nil {
		if !errors.Is(err, store.ErrConflict) {
			logger.Warn().Err(err).Msg("Canonical title insert failed")
		}
		again, rerr := r.titles.GetTitleByExternal(ctx, ct, tmdbID)
		if rerr != nil {
			return nil, providers
		}
		return again, providers
	}
	return row, providers
}

func (r *Resolver) fetchDetails(ctx context.Context, tmdbID int64, ct models.ContentType) *metadata.Details {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ExternalTimeout)
	defer cancel()
	d, err := r.meta.Details(ctx, tmdbID, ct)
	if err != nil {
		return nil
	}
	return d
}

func (r *Resolver) fetchProviders(ctx context.Context, tmdbID int64, ct models.ContentType) *metadata.WatchProvidersDoc {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ExternalTimeout)
	defer cancel()
	doc, err := r.meta.WatchProviders(ctx, tmdbID, ct)
	if err != nil {
		return nil
	}
	return doc
}

func (r *Resolver) fetchRating(ctx context.Context, imdbID string) *metadata.OMDbResult {
	if r.ratings == nil || imdbID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ExternalTimeout)
	defer cancel()
	res, err := r.ratings.Rating(ctx, imdbID)
	if err != nil {
		return nil
	}
	return res
}

// buildTitle assembles a canonical row from provider details and, when an
// IMDb id is known, the secondary rating source.
func (r *Resolver) buildTitle(ctx context.Context, d *metadata.Details, tmdbID int64, ct models.ContentType, fallbackTitle string) *models.MediaTitle {
	imageBase := r.meta.ImageBaseURL()
	row := &models.MediaTitle{
		TMDBID:      tmdbID,
		ContentType: ct,
		Title:       fallbackTitle,
		Overview:    d.Overview,
		Genres:      make([]string, 0, len(d.Genres)),
		PosterURL:   metadata.ImageURL(imageBase, posterSize, d.PosterPath),
		BackdropURL: metadata.ImageURL(imageBase, posterSize, d.BackdropPath),
		RawTMDB:     json.RawMessage(d.Raw),
	}
	for _, g := range d.Genres {
		if g.Name != "" {
			row.Genres = append(row.Genres, g.Name)
		}
	}

	var date string
	if ct == models.ContentMovie {
		if d.Title != nil {
			row.Title = *d.Title
		}
		date = d.ReleaseDate
		row.RuntimeMinutes = d.Runtime
		row.IMDbID = nonEmpty(d.IMDbID)
		row.Director = movieDirector(d)
	} else {
		if d.Name != nil {
			row.Title = *d.Name
		}
		date = d.FirstAirDate
		if len(d.EpisodeRunTime) > 0 {
			rt := d.EpisodeRunTime[0]
			row.RuntimeMinutes = &rt
		}
		if d.ExternalIDs != nil {
			row.IMDbID = nonEmpty(d.ExternalIDs.IMDbID)
		}
		row.Director = showCreators(d)
	}
	if len(date) >= 4 {
		if y, err := strconv.Atoi(date[:4]); err == nil {
			row.Year = &y
		}
	}
	row.Starring = topCast(d)

	if row.IMDbID != nil {
		if om := r.fetchRating(ctx, *row.IMDbID); om != nil {
			if om.IMDbRating != "" && om.IMDbRating != notAvailable {
				if v, err := strconv.ParseFloat(om.IMDbRating, 64); err == nil {
					row.IMDbRating = &v
				}
			}
			if om.Rated != "" && om.Rated != notAvailable {
				rated := om.Rated
				row.AgeRating = &rated
			}
			row.RawOMDb = json.RawMessage(om.Raw)
		}
	}
	return row
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}

func movieDirector(d *metadata.Details) *string {
	if d.Credits == nil {
		return nil
	}
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" && c.Name != "" {
			name := c.Name
			return &name
		}
	}
	return nil
}

func showCreators(d *metadata.Details) *string {
	var names []string
	for _, c := range d.CreatedBy {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	if len(names) == 0 {
		return nil
	}
	joined := strings.Join(head(names, maxCreators), ", ")
	return &joined
}

// topCast returns up to five billed names, or nil when there are none.
func topCast(d *metadata.Details) []string {
	if d.Credits == nil {
		return nil
	}
	var names []string
	for _, c := range head(d.Credits.Cast, maxStarring) {
		if c.Name != "" {
			names = append(names, c.Name)
		}
	}
	return names
}
