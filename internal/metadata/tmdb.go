// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package metadata talks to the external title metadata providers: TMDB for
// search, details and watch providers, and OMDb for IMDb ratings.
//
// Lookups never fail the caller. Any transport error, timeout, non-200
// status, decode error or open circuit is logged and reported as "not
// found" (a nil result with a nil error), because a single missing title
// must not abort a recommendation session.
package metadata

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/breaker"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/cache"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/config"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// SearchResult is the first TMDB search hit for a query.
type SearchResult struct {
	TMDBID      int64              `json:"tmdb_id"`
	ContentType models.ContentType `json:"tmdb_type"`
	Title       string             `json:"tmdb_title"`
}

// Genre is a TMDB genre.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CastMember is a billed cast entry.
type CastMember struct {
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// CrewMember is a crew entry.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Details is the subset of a TMDB movie or tv detail document used to build
// canonical titles. Raw holds the full response body.
type Details struct {
	ID             int64   `json:"id"`
	Title          *string `json:"title"`
	Name           *string `json:"name"`
	Overview       *string `json:"overview"`
	Genres         []Genre `json:"genres"`
	ReleaseDate    string  `json:"release_date"`
	FirstAirDate   string  `json:"first_air_date"`
	Runtime        *int    `json:"runtime"`
	EpisodeRunTime []int   `json:"episode_run_time"`
	PosterPath     string  `json:"poster_path"`
	BackdropPath   string  `json:"backdrop_path"`
	IMDbID         *string `json:"imdb_id"`
	ExternalIDs    *struct {
		IMDbID *string `json:"imdb_id"`
	} `json:"external_ids"`
	Credits *struct {
		Cast []CastMember `json:"cast"`
		Crew []CrewMember `json:"crew"`
	} `json:"credits"`
	CreatedBy []struct {
		Name string `json:"name"`
	} `json:"created_by"`

	Raw []byte `json:"-"`
}

// ProviderEntry is one provider in a region's availability list.
type ProviderEntry struct {
	ProviderID   *int64 `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

// RegionProviders lists a title's providers in one region by availability type.
type RegionProviders struct {
	Link     *string         `json:"link"`
	Flatrate []ProviderEntry `json:"flatrate"`
	Free     []ProviderEntry `json:"free"`
	Ads      []ProviderEntry `json:"ads"`
	Rent     []ProviderEntry `json:"rent"`
	Buy      []ProviderEntry `json:"buy"`
}

// WatchProvidersDoc is the TMDB watch/providers response.
type WatchProvidersDoc struct {
	ID      int64                      `json:"id"`
	Results map[string]RegionProviders `json:"results"`
}

// TMDBClient queries The Movie Database. Safe for concurrent use.
type TMDBClient struct {
	baseURL   string
	apiKey    string
	language  string
	imageBase string
	f         *fetcher
	search    *cache.LRU[SearchResult]
}

// NewTMDBClient creates a client. timeout bounds each individual request.
func NewTMDBClient(cfg config.TMDBConfig, timeout time.Duration) (*TMDBClient, error) {
	return NewTMDBClientWithHTTPClient(cfg, timeout, &http.Client{})
}

// NewTMDBClientWithHTTPClient is NewTMDBClient with a caller-supplied HTTP client.
func NewTMDBClientWithHTTPClient(cfg config.TMDBConfig, timeout time.Duration, hc *http.Client) (*TMDBClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("tmdb: API key is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	language := cfg.Language
	if language == "" {
		language = "en-US"
	}

	return &TMDBClient{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		language:  language,
		imageBase: strings.TrimRight(cfg.ImageBaseURL, "/"),
		f: &fetcher{
			provider:       "tmdb",
			httpClient:     hc,
			limiter:        newLimiter(cfg.RateLimit),
			cb:             breaker.New("tmdb-api"),
			timeout:        timeout,
			maxRetries:     3,
			retryBaseDelay: time.Second,
		},
		search: cache.NewLRU[SearchResult]("tmdb_search", cfg.SearchCacheSize, cfg.SearchCacheTTL),
	}, nil
}

// ImageBaseURL returns the configured image CDN root, without a size segment.
func (c *TMDBClient) ImageBaseURL() string { return c.imageBase }

// SearchOne returns the first search hit for query, or nil.
func (c *TMDBClient) SearchOne(ctx context.Context, query string, ct models.ContentType) (*SearchResult, error) {
	cacheKey := string(ct) + ":" + strings.ToLower(strings.TrimSpace(query))
	if hit, ok := c.search.Get(cacheKey); ok {
		metrics.RecordMetadataCall("tmdb", "search", "cached", 0)
		return &hit, nil
	}

	params := url.Values{}
	params.Set("query", query)
	body := c.get(ctx, "search", "/search/"+string(ct), params, "query", query)
	if body == nil {
		return nil, nil
	}

	var doc struct {
		Results []struct {
			ID    int64  `json:"id"`
			Title string `json:"title"`
			Name  string `json:"name"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("query", query).Msg("TMDB search decode failed")
		return nil, nil
	}
	if len(doc.Results) == 0 || doc.Results[0].ID == 0 {
		return nil, nil
	}

	first := doc.Results[0]
	res := SearchResult{TMDBID: first.ID, ContentType: ct, Title: first.Title}
	if res.Title == "" {
		res.Title = first.Name
	}
	if res.Title == "" {
		res.Title = query
	}
	c.search.Add(cacheKey, res)
	return &res, nil
}

// Details fetches a title's detail document with credits and external ids.
func (c *TMDBClient) Details(ctx context.Context, tmdbID int64, ct models.ContentType) (*Details, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits,external_ids")
	path := "/" + string(ct) + "/" + strconv.FormatInt(tmdbID, 10)
	body := c.get(ctx, "details", path, params, "tmdb_id", strconv.FormatInt(tmdbID, 10))
	if body == nil {
		return nil, nil
	}

	var d Details
	if err := json.Unmarshal(body, &d); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("tmdb_id", tmdbID).Msg("TMDB details decode failed")
		return nil, nil
	}
	d.Raw = body
	return &d, nil
}

// WatchProviders fetches per-region streaming availability for a title.
func (c *TMDBClient) WatchProviders(ctx context.Context, tmdbID int64, ct models.ContentType) (*WatchProvidersDoc, error) {
	path := "/" + string(ct) + "/" + strconv.FormatInt(tmdbID, 10) + "/watch/providers"
	body := c.get(ctx, "watch_providers", path, nil, "tmdb_id", strconv.FormatInt(tmdbID, 10))
	if body == nil {
		return nil, nil
	}

	var doc WatchProvidersDoc
	if err := json.Unmarshal(body, &doc); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int64("tmdb_id", tmdbID).Msg("TMDB watch providers decode failed")
		return nil, nil
	}
	return &doc, nil
}

// get performs a GET and returns the body of a 200 response, or nil after
// logging the reason it is unavailable.
func (c *TMDBClient) get(ctx context.Context, op, path string, params url.Values, logKey, logVal string) []byte {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	if op != "watch_providers" {
		params.Set("language", c.language)
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	start := time.Now()
	resp, err := c.f.get(ctx, reqURL)
	elapsed := time.Since(start)

	switch {
	case err != nil && breaker.IsRejected(err):
		metrics.RecordMetadataCall("tmdb", op, "rejected", elapsed)
		logging.Ctx(ctx).Warn().Str("operation", op).Str(logKey, logVal).Msg("TMDB circuit open, skipping lookup")
		return nil
	case err != nil:
		metrics.RecordMetadataCall("tmdb", op, "error", elapsed)
		logging.Ctx(ctx).Warn().Err(err).Str("operation", op).Str(logKey, logVal).Msg("TMDB request failed")
		return nil
	case resp.status != http.StatusOK:
		metrics.RecordMetadataCall("tmdb", op, "not_found", elapsed)
		logging.Ctx(ctx).Info().
			Str("operation", op).
			Str("url", redactKey(reqURL)).
			Int("status", resp.status).
			Str("body", truncate(string(resp.body), 500)).
			Msg("TMDB request returned non-200")
		return nil
	}

	metrics.RecordMetadataCall("tmdb", op, "success", elapsed)
	return resp.body
}
