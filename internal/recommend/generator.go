// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/llm"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

const (
	defaultMoodLabel = "Personalized Mix"
	defaultReason    = "Recommended based on your preferences."
	defaultScore     = 75
	minMatchScore    = 70
	maxMatchScore    = 99
	maxPrimaryGenres = 3
	maxToneTags      = 5

	// maxEnrichConcurrency bounds the per-title enrichment fan-out.
	maxEnrichConcurrency = 16
)

// ModelCaller generates a completion for a system and user prompt.
type ModelCaller interface {
	Generate(ctx context.Context, system, user string, opts llm.Options) (string, error)
}

// GenerateRequest describes one generation round.
type GenerateRequest struct {
	Prompt       *PromptContext
	Count        int
	ContentTypes []models.ContentType
	HardExcluded []string
	SoftExcluded []string
	Positive     models.FeedbackSignals
	Negative     models.NegativeFeedbackSignals
}

// Generation is the outcome of one generation round.
type Generation struct {
	MoodLabel string                 `json:"mood_label"`
	MoodTags  []string               `json:"mood_tags"`
	Items     []models.CandidateItem `json:"items"`
}

// Generator runs the two-phase candidate protocol: one ideation call that
// returns title strings, then one enrichment call per title.
type Generator struct {
	model ModelCaller
	cfg   *Config
}

// NewGenerator creates a generator.
func NewGenerator(model ModelCaller, cfg *Config) *Generator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Generator{model: model, cfg: cfg}
}

type ideation struct {
	moodLabel string
	moodTags  []string
	titles    []string
}

// Generate runs both phases. It fails when ideation fails or yields
// unparseable output, and with ErrGenerationEmpty when no title could be
// enriched.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (*Generation, error) {
	if len(req.ContentTypes) == 0 {
		req.ContentTypes = []models.ContentType{models.ContentMovie}
	}
	logger := logging.Ctx(ctx)
	start := time.Now()

	idea, err := g.ideate(ctx, &req)
	if err != nil {
		logger.Warn().Err(err).Int("requested", req.Count).Msg("Candidate ideation failed")
		return nil, err
	}
	if len(idea.titles) < req.Count {
		logger.Info().
			Int("requested", req.Count).
			Int("received", len(idea.titles)).
			Msg("Ideation returned fewer titles than requested")
	}
	titles := head(idea.titles, req.Count)

	enrichStart := time.Now()
	items := g.enrichAll(ctx, titles, idea.moodLabel, req.ContentTypes)

	logger.Info().
		Int("titles", len(titles)).
		Int("enriched", len(items)).
		Int("failed", len(titles)-len(items)).
		Dur("enrich_duration", time.Since(enrichStart)).
		Dur("duration", time.Since(start)).
		Str("mood_label", idea.moodLabel).
		Msg("Candidate generation complete")

	if len(items) == 0 {
		return nil, ErrGenerationEmpty
	}
	return &Generation{MoodLabel: idea.moodLabel, MoodTags: idea.moodTags, Items: items}, nil
}

func (g *Generator) ideate(ctx context.Context, req *GenerateRequest) (*ideation, error) {
	raw, err := g.model.Generate(ctx,
		ideationSystemPrompt(req.ContentTypes),
		g.ideationUserPrompt(req),
		llm.Options{Phase: "candidates", Temperature: llm.Temperature(0.7), MaxTokens: 500, JSONMode: true},
	)
	if err != nil {
		return nil, fmt.Errorf("candidate ideation: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		obj, ok := extractFirstJSONObject(raw)
		if !ok {
			return nil, fmt.Errorf("%w: non-JSON output", ErrMalformedResponse)
		}
		if err := json.Unmarshal([]byte(obj), &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}

	rawTitles, ok := doc["candidate_titles"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing candidate_titles array", ErrMalformedResponse)
	}

	out := &ideation{moodLabel: defaultMoodLabel, moodTags: []string{}}
	if label, ok := doc["mood_label"].(string); ok {
		out.moodLabel = label
	}
	if tags, ok := doc["mood_tags"].([]any); ok {
		out.moodTags = stringsOf(tags)
	}
	for _, t := range rawTitles {
		if s, ok := t.(string); ok && strings.TrimSpace(s) != "" {
			out.titles = append(out.titles, s)
		}
	}
	return out, nil
}

// enrichAll enriches every title concurrently and returns the successes in
// title order. A failed title is dropped without failing the others.
func (g *Generator) enrichAll(ctx context.Context, titles []string, moodLabel string, allowed []models.ContentType) []models.CandidateItem {
	results := make([]*models.CandidateItem, len(titles))

	var eg errgroup.Group
	eg.SetLimit(maxEnrichConcurrency)
	for i, title := range titles {
		eg.Go(func() error {
			results[i] = g.enrich(ctx, title, moodLabel, allowed)
			return nil
		})
	}
	_ = eg.Wait()

	items := make([]models.CandidateItem, 0, len(titles))
	for _, r := range results {
		if r != nil {
			items = append(items, *r)
		}
	}
	return items
}

func (g *Generator) enrich(ctx context.Context, title, moodLabel string, allowed []models.ContentType) *models.CandidateItem {
	logger := logging.Ctx(ctx).With().Str("title", title).Logger()

	raw, err := g.model.Generate(ctx,
		enrichmentSystemPrompt(allowed),
		enrichmentUserPrompt(title, moodLabel, allowed),
		llm.Options{Phase: "enrich", Temperature: llm.Temperature(0.8), MaxTokens: 300, JSONMode: true},
	)
	if err != nil {
		logger.Debug().Err(err).Msg("Title enrichment call failed")
		return nil
	}
	item, err := parseCandidateItem(raw, title, allowed)
	if err != nil {
		logger.Debug().Err(err).Str("raw", truncateForLog(raw, 200)).Msg("Dropping unparseable enrichment")
		return nil
	}
	return item
}

// parseCandidateItem coerces an enrichment document into a CandidateItem,
// defaulting or clamping every field except the title.
func parseCandidateItem(raw, fallbackTitle string, allowed []models.ContentType) (*models.CandidateItem, error) {
	var doc map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	title, ok := doc["title"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: missing title", ErrMalformedResponse)
	}
	if title == "" {
		title = fallbackTitle
	}

	item := &models.CandidateItem{
		Title:         title,
		ContentType:   allowed[0],
		SearchQuery:   title,
		PrimaryGenres: []string{},
		ToneTags:      []string{},
		Reason:        defaultReason,
		MatchScore:    defaultScore,
	}
	if ct, ok := doc["tmdb_type"].(string); ok {
		for _, a := range allowed {
			if models.ContentType(ct) == a {
				item.ContentType = a
				break
			}
		}
	}
	if q, ok := doc["tmdb_search_query"].(string); ok {
		item.SearchQuery = q
	}
	if genres, ok := doc["primary_genres"].([]any); ok {
		item.PrimaryGenres = head(stringsOf(genres), maxPrimaryGenres)
	}
	if tags, ok := doc["tone_tags"].([]any); ok {
		item.ToneTags = head(stringsOf(tags), maxToneTags)
	}
	if reason, ok := doc["reason"].(string); ok {
		item.Reason = reason
	}
	score := float64(defaultScore)
	if n, ok := doc["match_score"].(float64); ok {
		score = n
	}
	item.MatchScore = clampScore(score)
	return item, nil
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return defaultScore
	}
	return int(math.Min(maxMatchScore, math.Max(minMatchScore, math.Round(v))))
}

func stringsOf(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
