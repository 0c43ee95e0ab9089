// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package metadata

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/breaker"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/config"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
)

// OMDbResult is a found OMDb record. "N/A" values are kept verbatim.
type OMDbResult struct {
	Response   string `json:"Response"`
	IMDbRating string `json:"imdbRating"`
	Rated      string `json:"Rated"`
	Raw        []byte `json:"-"`
}

// OMDbClient looks up IMDb ratings. A client without an API key reports
// every title as not found.
type OMDbClient struct {
	baseURL string
	apiKey  string
	f       *fetcher
}

// NewOMDbClient creates a client. timeout bounds each request.
func NewOMDbClient(cfg config.OMDbConfig, timeout time.Duration) *OMDbClient {
	return NewOMDbClientWithHTTPClient(cfg, timeout, &http.Client{})
}

// NewOMDbClientWithHTTPClient is NewOMDbClient with a caller-supplied HTTP client.
func NewOMDbClientWithHTTPClient(cfg config.OMDbConfig, timeout time.Duration, hc *http.Client) *OMDbClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OMDbClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		f: &fetcher{
			provider:       "omdb",
			httpClient:     hc,
			cb:             breaker.New("omdb-api"),
			timeout:        timeout,
			retryBaseDelay: time.Second,
		},
	}
}

// Enabled reports whether an API key is configured.
func (c *OMDbClient) Enabled() bool { return c != nil && c.apiKey != "" }

// Rating returns the OMDb record for imdbID, or nil when unavailable.
func (c *OMDbClient) Rating(ctx context.Context, imdbID string) (*OMDbResult, error) {
	if !c.Enabled() || imdbID == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("i", imdbID)
	reqURL := c.baseURL + "/?" + params.Encode()

	start := time.Now()
	resp, err := c.f.get(ctx, reqURL)
	elapsed := time.Since(start)
	if err != nil {
		result := "error"
		if breaker.IsRejected(err) {
			result = "rejected"
		}
		metrics.RecordMetadataCall("omdb", "rating", result, elapsed)
		logging.Ctx(ctx).Warn().Err(err).Str("imdb_id", imdbID).Msg("OMDb request failed")
		return nil, nil
	}
	if resp.status != http.StatusOK {
		metrics.RecordMetadataCall("omdb", "rating", "not_found", elapsed)
		return nil, nil
	}

	var out OMDbResult
	if err := json.Unmarshal(resp.body, &out); err != nil {
		metrics.RecordMetadataCall("omdb", "rating", "error", elapsed)
		logging.Ctx(ctx).Warn().Err(err).Str("imdb_id", imdbID).Msg("OMDb decode failed")
		return nil, nil
	}
	if out.Response != "True" {
		metrics.RecordMetadataCall("omdb", "rating", "not_found", elapsed)
		return nil, nil
	}

	metrics.RecordMetadataCall("omdb", "rating", "success", elapsed)
	out.Raw = resp.body
	return &out, nil
}
