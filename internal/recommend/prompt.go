// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// PromptInteraction is one recent interaction as shown to the model.
type PromptInteraction struct {
	TitleID         string              `json:"title_id"`
	Title           *string             `json:"title"`
	TMDBID          *int64              `json:"tmdb_id"`
	ContentType     *models.ContentType `json:"tmdb_type"`
	Action          models.Action       `json:"action"`
	Rating          *int                `json:"rating"`
	CreatedAt       time.Time           `json:"created_at"`
	FeedbackText    *string             `json:"feedback_text"`
	WouldWatchAgain *bool               `json:"would_watch_again"`
	QuickTags       []string            `json:"quick_tags"`
	Genres          []string            `json:"genres"`
}

// SignalsUsed is the taste summary recorded with a session.
type SignalsUsed struct {
	EnjoyGenres   []string `json:"user_tends_to_enjoy_genres"`
	AvoidGenres   []string `json:"user_tends_to_avoid_genres"`
	EnjoyTags     []string `json:"user_tends_to_enjoy_tags"`
	AvoidTags     []string `json:"user_tends_to_avoid_tags"`
	PositiveNotes []string `json:"recent_feedback_notes_positive"`
	NegativeNotes []string `json:"recent_feedback_notes_negative"`
}

func signalsUsed(s *Signals) SignalsUsed {
	return SignalsUsed{
		EnjoyGenres:   s.Positive.Genres,
		AvoidGenres:   s.Negative.Genres,
		EnjoyTags:     s.Positive.Tags,
		AvoidTags:     s.Negative.Tags,
		PositiveNotes: s.Positive.Notes,
		NegativeNotes: s.Negative.Notes,
	}
}

// PromptContext is the request context the ideation prompt is built from.
type PromptContext struct {
	ProfileID          string               `json:"profile_id"`
	SessionType        models.SessionType   `json:"session_type"`
	ContentTypes       []models.ContentType `json:"content_types"`
	ProfilePreferences map[string]any       `json:"profile_preferences"`
	RecentInteractions []PromptInteraction  `json:"recent_interactions"`
	FeedbackSignals    SignalsUsed          `json:"feedback_signals"`
	MoodInput          map[string]any       `json:"mood_input"`

	// Set on top-up rounds only.
	TopUpMissingCount     int      `json:"topup_missing_count,omitempty"`
	AlreadySelectedTitles []string `json:"already_selected_titles,omitempty"`
	Instruction           string   `json:"instruction,omitempty"`
}

// narrowed returns a copy of p asking for missing more titles besides chosen.
func (p *PromptContext) narrowed(missing int, chosen []string) *PromptContext {
	cp := *p
	cp.TopUpMissingCount = missing
	cp.AlreadySelectedTitles = chosen
	cp.Instruction = fmt.Sprintf("Return exactly %d additional items that are not excluded and not already selected.", missing)
	return &cp
}

func promptInteractions(in []models.Interaction, n int) []PromptInteraction {
	out := make([]PromptInteraction, 0, min(len(in), n))
	for _, it := range head(in, n) {
		pi := PromptInteraction{
			TitleID:         it.TitleID,
			Action:          it.Action,
			Rating:          it.Rating,
			CreatedAt:       it.CreatedAt,
			WouldWatchAgain: it.Extra.WouldWatchAgain,
			QuickTags:       it.Extra.QuickTags,
			Genres:          []string{},
		}
		if pi.QuickTags == nil {
			pi.QuickTags = []string{}
		}
		if note := noteOf(it.Extra); note != "" {
			pi.FeedbackText = &note
		}
		if it.Title != nil {
			title, ct := it.Title.Title, it.Title.ContentType
			pi.Title = &title
			pi.TMDBID = it.Title.TMDBID
			pi.ContentType = &ct
			if it.Title.Genres != nil {
				pi.Genres = it.Title.Genres
			}
		}
		out = append(out, pi)
	}
	return out
}

func joinTypes(types []models.ContentType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func ideationSystemPrompt(allowed []models.ContentType) string {
	types := joinTypes(allowed)
	return `You are VibeStream's recommendation engine. Output ONLY valid JSON (no markdown, no fences).

GOAL: Generate a list of ` + types + ` titles that match the user's profile.

RULES:
1. Return EXACTLY the requested number of titles.
2. NO duplicates.
3. STRICTLY respect the exclusion list. Never include any excluded title or its sequels/remakes.
4. Mix popular hits and hidden gems.
5. Ensure variety in genres, eras, and tones.
6. ONLY suggest these content types: [` + types + `]

OUTPUT FORMAT:
{
  "mood_label": "2-4 word mood description",
  "mood_tags": ["tag1", "tag2", "tag3"],
  "candidate_titles": ["Title 1", "Title 2", ...]
}`
}

func (g *Generator) ideationUserPrompt(req *GenerateRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d title(s).\n\n", req.Count)

	var interactions []PromptInteraction
	if req.Prompt != nil {
		interactions = req.Prompt.RecentInteractions
	}
	liked := pickTitles(interactions, models.ActionLike, 5)
	disliked := pickTitles(interactions, models.ActionDislike, 3)
	if len(liked) > 0 {
		fmt.Fprintf(&b, "LIKED: %s\n", strings.Join(liked, ", "))
	}
	if len(disliked) > 0 {
		fmt.Fprintf(&b, "DISLIKED: %s\n", strings.Join(disliked, ", "))
	}
	if len(liked) > 0 || len(disliked) > 0 {
		b.WriteString("\n")
	}

	var signals []string
	if len(req.Positive.Genres) > 0 {
		signals = append(signals, "Enjoys genres: "+strings.Join(head(req.Positive.Genres, g.cfg.GenresMax), ", "))
	}
	if len(req.Negative.Genres) > 0 {
		signals = append(signals, "Avoids genres: "+strings.Join(head(req.Negative.Genres, g.cfg.GenresMax), ", "))
	}
	if len(req.Positive.Tags) > 0 {
		signals = append(signals, "Enjoys vibes: "+strings.Join(head(req.Positive.Tags, 10), ", "))
	}
	if len(req.Negative.Tags) > 0 {
		signals = append(signals, "Avoids vibes: "+strings.Join(head(req.Negative.Tags, 10), ", "))
	}
	notes := head(append(append([]string{}, req.Positive.Notes...), req.Negative.Notes...), g.cfg.NotesMax)
	if len(notes) > 0 {
		signals = append(signals, "Feedback notes: "+strings.Join(notes, " | "))
	}
	if len(signals) > 0 {
		b.WriteString("SIGNALS:\n")
		for i, s := range signals {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- " + s)
		}
		b.WriteString("\n\n")
	}

	excluded := dedupe(head(req.HardExcluded, g.cfg.HardExcludeCap), head(req.SoftExcluded, g.cfg.SoftExcludeCap))
	if len(excluded) > 0 {
		fmt.Fprintf(&b, "⚠️ EXCLUDE (never suggest): %s\n\n", strings.Join(excluded, ", "))
	}

	if len(req.Negative.Titles) > 0 {
		fmt.Fprintf(&b, "USER DISLIKES: %s\n\n", strings.Join(head(req.Negative.Titles, 20), ", "))
	}

	if req.Prompt != nil && len(req.Prompt.MoodInput) > 0 {
		if mood, err := json.Marshal(req.Prompt.MoodInput); err == nil {
			fmt.Fprintf(&b, "CURRENT MOOD: %s\n\n", mood)
		}
	}

	if req.Prompt != nil && req.Prompt.TopUpMissingCount > 0 {
		fmt.Fprintf(&b, "TOP-UP: Need %d more. Already selected: %s\n\n",
			req.Prompt.TopUpMissingCount, strings.Join(head(req.Prompt.AlreadySelectedTitles, 10), ", "))
	}

	fmt.Fprintf(&b, "Return JSON with exactly %d titles in the \"candidate_titles\" array.", req.Count)
	return b.String()
}

// pickTitles returns the non-empty titles among the first n interactions
// with the given action.
func pickTitles(in []PromptInteraction, action models.Action, n int) []string {
	var out []string
	taken := 0
	for _, pi := range in {
		if taken == n {
			break
		}
		if pi.Action != action {
			continue
		}
		taken++
		if pi.Title != nil && *pi.Title != "" {
			out = append(out, *pi.Title)
		}
	}
	return out
}

func enrichmentSystemPrompt(allowed []models.ContentType) string {
	return `You are a metadata expert for VibeStream. Output ONLY valid JSON (no markdown, no fences).

For the given title, generate enrichment metadata matching this schema exactly:
{
  "title": "exact title string (no year)",
  "tmdb_type": "movie" or "tv",
  "tmdb_search_query": "searchable title without year",
  "primary_genres": ["genre1", "genre2"],
  "tone_tags": ["tag1", "tag2", "tag3"],
  "reason": "1-2 sentence personalized pitch",
  "match_score": <integer 70-99>
}

Constraints:
- tmdb_type must be one of: [` + joinTypes(allowed) + `]
- primary_genres: 1..3 items
- tone_tags: 2..5 items
- match_score: integer between 70 and 99`
}

func enrichmentUserPrompt(title, moodLabel string, allowed []models.ContentType) string {
	return fmt.Sprintf("Title: \"%s\"\nUser mood: %s\nAllowed content types: %s\n\nGenerate the JSON metadata for this title.",
		title, moodLabel, joinTypes(allowed))
}
