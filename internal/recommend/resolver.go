// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metadata"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// Metadata is the title metadata provider.
type Metadata interface {
	SearchOne(ctx context.Context, query string, ct models.ContentType) (*metadata.SearchResult, error)
	Details(ctx context.Context, tmdbID int64, ct models.ContentType) (*metadata.Details, error)
	WatchProviders(ctx context.Context, tmdbID int64, ct models.ContentType) (*metadata.WatchProvidersDoc, error)
	ImageBaseURL() string
}

// Ratings is the secondary rating source.
type Ratings interface {
	Rating(ctx context.Context, imdbID string) (*metadata.OMDbResult, error)
}

// TitleStore persists canonical titles.
type TitleStore interface {
	GetTitleByExternal(ctx context.Context, ct models.ContentType, tmdbID int64) (*models.MediaTitle, error)
	InsertTitle(ctx context.Context, t *models.MediaTitle) error
	UpdateTitle(ctx context.Context, t *models.MediaTitle) error
}

// ResolvedCandidate is an accepted candidate bound to its canonical title.
type ResolvedCandidate struct {
	Item      models.CandidateItem  `json:"item"`
	Title     *models.MediaTitle    `json:"media_title"`
	Providers models.WatchProviders `json:"watch_providers"`
}

// ReadyFunc is called by sequential resolution for every accepted candidate
// with its position among the candidates accepted by that call.
type ReadyFunc func(rc ResolvedCandidate, index int)

// Resolver maps candidate items to canonical titles and regional providers.
type Resolver struct {
	meta    Metadata
	ratings Ratings
	titles  TitleStore
	cfg     *Config
	now     func() time.Time
}

// NewResolver creates a resolver. ratings may be nil.
func NewResolver(meta Metadata, ratings Ratings, titles TitleStore, cfg *Config) *Resolver {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Resolver{meta: meta, ratings: ratings, titles: titles, cfg: cfg, now: time.Now}
}

type searchHit struct {
	item models.CandidateItem
	hit  *metadata.SearchResult
	norm string
	key  string
}

// candidateType returns the item's content type when it is one of types.
func candidateType(item *models.CandidateItem, types []models.ContentType) (models.ContentType, bool) {
	ct, ok := models.ParseContentType(string(item.ContentType))
	if !ok || !slices.Contains(types, ct) {
		return "", false
	}
	return ct, true
}

func searchQuery(item *models.CandidateItem) string {
	if q := strings.TrimSpace(item.SearchQuery); q != "" {
		return q
	}
	return strings.TrimSpace(item.Title)
}

func (r *Resolver) search(ctx context.Context, query string, ct models.ContentType) *metadata.SearchResult {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ExternalTimeout)
	defer cancel()
	hit, err := r.meta.SearchOne(ctx, query, ct)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Str("query", query).Msg("Title search failed")
		return nil
	}
	return hit
}

// ResolveParallel runs every search concurrently, then applies dedup in
// item order on the calling goroutine, marking each accepted title before
// the next is checked. Accepted titles are enriched concurrently; a title
// that cannot be enriched is unmarked so a later round may pick it again.
func (r *Resolver) ResolveParallel(ctx context.Context, rc *ResolutionContext, items []models.CandidateItem,
	types []models.ContentType, region string, limit int) []ResolvedCandidate {
	hits := make([]*searchHit, len(items))

	var eg errgroup.Group
	eg.SetLimit(maxEnrichConcurrency)
	for i := range items {
		item := items[i]
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		ct, ok := candidateType(&item, types)
		if !ok {
			metrics.CandidatesRejected.WithLabelValues("type").Inc()
			continue
		}
		eg.Go(func() error {
			hit := r.search(ctx, searchQuery(&item), ct)
			if hit == nil {
				metrics.CandidatesRejected.WithLabelValues("not_found").Inc()
				return nil
			}
			hits[i] = &searchHit{
				item: item,
				hit:  hit,
				norm: NormalizeTitle(title),
				key:  models.ProviderKey(hit.ContentType, hit.TMDBID),
			}
			return nil
		})
	}
	_ = eg.Wait()

	accepted := make([]*searchHit, 0, limit)
	for _, h := range hits {
		if len(accepted) >= limit {
			break
		}
		if h == nil {
			continue
		}
		if rc.blocked(h.norm) {
			metrics.CandidatesRejected.WithLabelValues("excluded_title").Inc()
			continue
		}
		if rc.ExcludedKeys.Has(h.key) {
			metrics.CandidatesRejected.WithLabelValues("excluded_key").Inc()
			continue
		}
		rc.mark(h.norm, h.key)
		accepted = append(accepted, h)
	}

	resolved := make([]*ResolvedCandidate, len(accepted))
	var enrich errgroup.Group
	enrich.SetLimit(maxEnrichConcurrency)
	for i, h := range accepted {
		enrich.Go(func() error {
			title, providers := r.GetOrCreate(ctx, h.hit.TMDBID, h.hit.ContentType, h.item.Title, region)
			if title != nil {
				resolved[i] = &ResolvedCandidate{Item: h.item, Title: title, Providers: providers}
			}
			return nil
		})
	}
	_ = enrich.Wait()

	out := make([]ResolvedCandidate, 0, len(accepted))
	for i, res := range resolved {
		if res == nil {
			metrics.CandidatesRejected.WithLabelValues("enrich_failed").Inc()
			rc.unmark(accepted[i].norm, accepted[i].key)
			continue
		}
		rc.accept(res.Item.Title)
		out = append(out, *res)
	}
	return out
}

// ResolveSequential handles one item at a time: search, dedup, enrich and
// commit, then onReady. It stops after limit acceptances.
func (r *Resolver) ResolveSequential(ctx context.Context, rc *ResolutionContext, items []models.CandidateItem,
	types []models.ContentType, region string, limit int, onReady ReadyFunc) []ResolvedCandidate {
	var chosen []ResolvedCandidate

	for i := range items {
		if len(chosen) >= limit || ctx.Err() != nil {
			break
		}
		item := items[i]
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		norm := NormalizeTitle(title)
		if rc.blocked(norm) {
			metrics.CandidatesRejected.WithLabelValues("excluded_title").Inc()
			continue
		}
		ct, ok := candidateType(&item, types)
		if !ok {
			metrics.CandidatesRejected.WithLabelValues("type").Inc()
			continue
		}

		hit := r.search(ctx, searchQuery(&item), ct)
		if hit == nil {
			metrics.CandidatesRejected.WithLabelValues("not_found").Inc()
			continue
		}
		key := models.ProviderKey(hit.ContentType, hit.TMDBID)
		if rc.ExcludedKeys.Has(key) {
			metrics.CandidatesRejected.WithLabelValues("excluded_key").Inc()
			continue
		}

		mt, providers := r.GetOrCreate(ctx, hit.TMDBID, hit.ContentType, item.Title, region)
		if mt == nil {
			metrics.CandidatesRejected.WithLabelValues("enrich_failed").Inc()
			continue
		}

		rc.mark(norm, key)
		rc.accept(item.Title)
		res := ResolvedCandidate{Item: item, Title: mt, Providers: providers}
		chosen = append(chosen, res)
		if onReady != nil {
			onReady(res, len(chosen)-1)
		}
	}
	return chosen
}
