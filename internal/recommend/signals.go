// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"sort"
	"strings"
	"time"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// Quick-tag lexicons. Matching is substring containment on the lowercased
// tag, so "not bad" counts as negative.
var (
	negativeTagTerms = []string{"too slow", "boring", "bad"}
	positiveTagTerms = []string{"great", "amazing", "excellent"}
)

const day = 24 * time.Hour

// Signals is the outcome of signal extraction for one profile.
type Signals struct {
	HardExcludedNorm Set `json:"hard_excluded_normalized"`
	SoftExcludedNorm Set `json:"soft_excluded_normalized"`
	ExcludedKeys     Set `json:"excluded_keys"`

	// Title lists for prompting, deduplicated in first-seen order.
	HardExcludedTitles []string `json:"hard_excluded_titles"`
	SoftExcludedTitles []string `json:"soft_excluded_titles"`
	NegativeTitles     []string `json:"negative_titles"`

	Positive models.FeedbackSignals         `json:"positive"`
	Negative models.NegativeFeedbackSignals `json:"negative"`
}

// FeedbackWeight is the recency weight of an interaction created at
// createdAt: 1 within 7 days, 0.5 within 30 days, 0.25 beyond. Both
// cutoffs are inclusive. An unknown time weighs 0.25.
func FeedbackWeight(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0.25
	}
	age := now.Sub(createdAt)
	switch {
	case age <= 7*day:
		return 1.0
	case age <= 30*day:
		return 0.5
	default:
		return 0.25
	}
}

// SentimentOf derives the sentiment of an interaction. A rating decides
// when present; otherwise feedback flags and quick tags, then the action.
func SentimentOf(in *models.Interaction) models.Sentiment {
	if in.Rating != nil {
		switch r := *in.Rating; {
		case r >= 4:
			return models.SentimentPositive
		case r <= 2:
			return models.SentimentNegative
		default:
			return models.SentimentNeutral
		}
	}

	if in.Action == models.ActionFeedback {
		if in.Extra.WouldWatchAgain != nil && *in.Extra.WouldWatchAgain {
			return models.SentimentPositive
		}
		if hasTagTerm(in.Extra.QuickTags, negativeTagTerms) {
			return models.SentimentNegative
		}
		if hasTagTerm(in.Extra.QuickTags, positiveTagTerms) {
			return models.SentimentPositive
		}
	}

	switch in.Action {
	case models.ActionLike:
		return models.SentimentPositive
	case models.ActionDislike, models.ActionSkip:
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}

func hasTagTerm(tags, terms []string) bool {
	for _, t := range tags {
		lt := strings.ToLower(t)
		for _, term := range terms {
			if strings.Contains(lt, term) {
				return true
			}
		}
	}
	return false
}

// noteOf returns the trimmed feedback text, falling back to the trimmed notes.
func noteOf(extra models.InteractionExtra) string {
	if s := strings.TrimSpace(extra.FeedbackText); s != "" {
		return s
	}
	return strings.TrimSpace(extra.Notes)
}

// scoreboard accumulates weights per key and remembers first-seen order so
// that equal scores rank in scan order.
type scoreboard struct {
	order  []string
	scores map[string]float64
}

func newScoreboard() *scoreboard {
	return &scoreboard{scores: make(map[string]float64)}
}

func (b *scoreboard) add(key string, w float64) {
	if _, ok := b.scores[key]; !ok {
		b.order = append(b.order, key)
	}
	b.scores[key] += w
}

func (b *scoreboard) top(n int) []string {
	keys := make([]string, len(b.order))
	copy(keys, b.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return b.scores[keys[i]] > b.scores[keys[j]]
	})
	return head(keys, n)
}

type weightedNote struct {
	text string
	w    float64
}

func topNotes(notes []weightedNote, n int) []string {
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].w > notes[j].w })
	out := make([]string, 0, n)
	for _, note := range head(notes, n) {
		out = append(out, note.text)
	}
	return out
}

// orderedTitles collects titles once each in first-seen order.
type orderedTitles struct {
	seen Set
	list []string
}

func (o *orderedTitles) add(title string) {
	if o.seen == nil {
		o.seen = NewSet()
	}
	if o.seen.Has(title) {
		return
	}
	o.seen.Add(title)
	o.list = append(o.list, title)
}

func (o *orderedTitles) values() []string {
	if o.list == nil {
		return []string{}
	}
	return o.list
}

// ExtractSignals turns an interaction history, most recent first, into
// exclusion sets and weighted taste signals.
func ExtractSignals(interactions []models.Interaction, now time.Time, cfg *Config) *Signals {
	s := &Signals{
		HardExcludedNorm: NewSet(),
		SoftExcludedNorm: NewSet(),
		ExcludedKeys:     NewSet(),
	}
	var hardTitles, softTitles, negTitles orderedTitles
	posGenres, negGenres := newScoreboard(), newScoreboard()
	posTags, negTags := newScoreboard(), newScoreboard()
	var posNotes, negNotes []weightedNote

	for i := range interactions {
		in := &interactions[i]
		w := FeedbackWeight(in.CreatedAt, now)
		sentiment := SentimentOf(in)
		soft := in.Action == models.ActionComplete || (in.Rating != nil && *in.Rating == 3)

		if in.Title != nil {
			title := in.Title.Title
			if norm := NormalizeTitle(title); title != "" && norm != "" {
				if sentiment == models.SentimentNegative {
					s.HardExcludedNorm.Add(norm)
					hardTitles.add(title)
					negTitles.add(title)
				} else if soft {
					s.SoftExcludedNorm.Add(norm)
					softTitles.add(title)
				}

				if in.Title.TMDBID != nil && *in.Title.TMDBID != 0 && in.Title.ContentType != "" {
					if sentiment == models.SentimentNegative || soft {
						s.ExcludedKeys.Add(models.ProviderKey(in.Title.ContentType, *in.Title.TMDBID))
					}
				}
			}

			for _, g := range in.Title.Genres {
				if g == "" {
					continue
				}
				switch sentiment {
				case models.SentimentPositive:
					posGenres.add(g, w)
				case models.SentimentNegative:
					negGenres.add(g, w)
				}
			}
		}

		for _, tag := range in.Extra.QuickTags {
			switch sentiment {
			case models.SentimentPositive:
				posTags.add(tag, w)
			case models.SentimentNegative:
				negTags.add(tag, w)
			}
		}

		if note := noteOf(in.Extra); note != "" {
			switch sentiment {
			case models.SentimentPositive:
				posNotes = append(posNotes, weightedNote{text: note, w: w})
			case models.SentimentNegative:
				negNotes = append(negNotes, weightedNote{text: note, w: w})
			}
		}
	}

	s.HardExcludedTitles = hardTitles.values()
	s.SoftExcludedTitles = softTitles.values()
	s.NegativeTitles = negTitles.values()

	s.Positive = models.FeedbackSignals{
		Genres: posGenres.top(cfg.GenresMax),
		Tags:   posTags.top(cfg.TagsMax),
		Notes:  topNotes(posNotes, (cfg.NotesMax+1)/2),
	}
	s.Negative = models.NegativeFeedbackSignals{
		FeedbackSignals: models.FeedbackSignals{
			Genres: negGenres.top(cfg.GenresMax),
			Tags:   negTags.top(cfg.TagsMax),
			Notes:  topNotes(negNotes, cfg.NotesMax/2),
		},
		Titles: s.NegativeTitles,
	}
	return s
}
