// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// moodState holds the mood label and tags a session settles on. The first
// round that produces them wins.
type moodState struct {
	label string
	tags  []string
}

func (m *moodState) adopt(g *Generation) {
	if g == nil {
		return
	}
	if m.label == "" && g.MoodLabel != "" {
		m.label = g.MoodLabel
	}
	if len(m.tags) == 0 && len(g.MoodTags) > 0 {
		m.tags = g.MoodTags
	}
}

func (m *moodState) tagsOrEmpty() []string {
	if m.tags == nil {
		return []string{}
	}
	return m.tags
}

// resolveFunc resolves items into at most missing new acceptances.
type resolveFunc func(items []models.CandidateItem, missing int)

// generate runs one generation round for count titles. extra titles are
// added to both exclusion lists.
func (o *Orchestrator) generate(ctx context.Context, rq *requestContext, prompt *PromptContext, count int, extra []string) (*Generation, error) {
	return o.gen.Generate(ctx, GenerateRequest{
		Prompt:       prompt,
		Count:        count,
		ContentTypes: rq.req.ContentTypes,
		HardExcluded: dedupe(rq.signals.HardExcludedTitles, extra),
		SoftExcluded: dedupe(rq.signals.SoftExcludedTitles, extra),
		Positive:     rq.signals.Positive,
		Negative:     rq.signals.Negative,
	})
}

// topUp runs follow-up rounds while fewer than FinalCount candidates are
// accepted and attempts remain. Each round asks for exactly the missing
// count and treats the titles chosen so far as exclusions. Running out of
// attempts is not an error; the caller decides what an empty result means.
// It returns the payloads of the rounds that produced candidates.
func (o *Orchestrator) topUp(ctx context.Context, rq *requestContext, mood *moodState, mode string,
	attempts int, accepted func() int, resolve resolveFunc) []*Generation {
	var payloads []*Generation
	logger := logging.Ctx(ctx)

	for attempt := 0; attempt < attempts && accepted() < o.cfg.FinalCount; attempt++ {
		if ctx.Err() != nil {
			break
		}
		missing := o.cfg.FinalCount - accepted()
		chosen := append([]string(nil), rq.rc.ChosenTitles...)
		logger.Info().Int("missing", missing).Int("attempt", attempt+1).Str("mode", mode).Msg("Top-up needed")

		gen, err := o.generate(ctx, rq, rq.prompt.narrowed(missing, chosen), missing, chosen)
		if err != nil {
			metrics.TopUpAttempts.WithLabelValues(mode, "failed").Inc()
			logger.Warn().Err(err).Int("attempt", attempt+1).Msg("Top-up generation failed")
			continue
		}
		mood.adopt(gen)
		payloads = append(payloads, gen)

		resolve(gen.Items, missing)

		result := "short"
		if accepted() >= o.cfg.FinalCount {
			result = "satisfied"
		}
		metrics.TopUpAttempts.WithLabelValues(mode, result).Inc()
	}

	if n := accepted(); n < o.cfg.FinalCount {
		logger.Info().Int("accepted", n).Int("target", o.cfg.FinalCount).Msg("Top-up exhausted, continuing with a shorter list")
	}
	return payloads
}
