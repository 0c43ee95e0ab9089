// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"context"
	"time"

	"github.com/goccy/go-json"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

const (
	modeBatch  = "batch"
	modeStream = "stream"

	msgExhausted     = "Could not generate recommendations after filtering"
	msgSessionCreate = "Failed to create recommendation session"
)

// Store is the record store used by the orchestrator.
type Store interface {
	TitleStore

	GetProfile(ctx context.Context, id string) (*models.Profile, error)
	GetAppUser(ctx context.Context, id string) (*models.AppUser, error)
	GetPreferences(ctx context.Context, profileID string) (*models.ProfilePreferences, error)
	ListInteractions(ctx context.Context, profileID string, since time.Time, limit int) ([]models.Interaction, error)
	GetTitle(ctx context.Context, id string) (*models.MediaTitle, error)

	CreateSession(ctx context.Context, sess *models.RecommendationSession) error
	GetSession(ctx context.Context, id string) (*models.RecommendationSession, error)
	FinalizeSession(ctx context.Context, sessionID, topTitleID, moodLabel string, moodTags []string, modelResponse []byte) error
	ListRecentSessions(ctx context.Context, profileID string, since time.Time, limit int) ([]models.RecommendationSession, error)
	InsertSessionItems(ctx context.Context, items []models.RecommendationItem) error
	ListSessionItems(ctx context.Context, sessionIDs []string, limit int) ([]models.RecommendationItem, error)
}

// AvailabilitySink accepts provider availability for background
// persistence. Enqueue must not wait for the write.
type AvailabilitySink interface {
	Enqueue(ctx context.Context, titleID, region string, providers models.WatchProviders) error
}

// Orchestrator runs recommendation sessions end to end.
type Orchestrator struct {
	store Store
	gen   *Generator
	res   *Resolver
	avail AvailabilitySink
	cfg   *Config
	now   func() time.Time
}

// NewOrchestrator wires the pipeline. ratings and avail may be nil.
func NewOrchestrator(st Store, model ModelCaller, meta Metadata, ratings Ratings, avail AvailabilitySink, cfg *Config) *Orchestrator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Orchestrator{
		store: st,
		gen:   NewGenerator(model, cfg),
		res:   NewResolver(meta, ratings, st, cfg),
		avail: avail,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Resolver exposes the candidate resolver for operator tooling.
func (o *Orchestrator) Resolver() *Resolver { return o.res }

// Signals loads the profile context and returns its extracted signals and
// resolved region.
func (o *Orchestrator) Signals(ctx context.Context, userID, profileID string) (*Signals, string, error) {
	rq, err := o.loadContext(ctx, SessionRequest{UserID: userID, ProfileID: profileID, SessionType: models.SessionMood})
	if err != nil {
		return nil, "", err
	}
	return rq.signals, rq.region, nil
}

type selectedTitle struct {
	Title       string             `json:"title"`
	TMDBID      int64              `json:"tmdb_id"`
	ContentType models.ContentType `json:"tmdb_type"`
	MatchScore  int                `json:"match_score"`
}

// modelResponse is the generation record stored with a session.
type modelResponse struct {
	MoodLabel           string               `json:"mood_label"`
	MoodTags            []string             `json:"mood_tags"`
	ContentTypes        []models.ContentType `json:"content_types"`
	FeedbackSignalsUsed SignalsUsed          `json:"feedback_signals_used"`
	CandidatesPayload   *Generation          `json:"candidates_payload,omitempty"`
	TopUpPayloads       []*Generation        `json:"topup_payloads,omitempty"`
	SelectedTitles      []selectedTitle      `json:"selected_titles,omitempty"`
}

func (o *Orchestrator) modelResponse(rq *requestContext, mood *moodState, first *Generation, topups []*Generation, chosen []ResolvedCandidate) []byte {
	mr := modelResponse{
		MoodLabel:           mood.label,
		MoodTags:            mood.tagsOrEmpty(),
		ContentTypes:        rq.req.ContentTypes,
		FeedbackSignalsUsed: signalsUsed(rq.signals),
		CandidatesPayload:   first,
		TopUpPayloads:       topups,
	}
	for _, c := range chosen {
		mr.SelectedTitles = append(mr.SelectedTitles, selectedTitle{
			Title:       c.Title.Title,
			TMDBID:      c.Title.TMDBID,
			ContentType: c.Title.ContentType,
			MatchScore:  c.Item.MatchScore,
		})
	}
	b, err := json.Marshal(mr)
	if err != nil {
		return nil
	}
	return b
}

func sessionItems(sessionID string, chosen []ResolvedCandidate) []models.RecommendationItem {
	items := make([]models.RecommendationItem, len(chosen))
	for i, c := range chosen {
		items[i] = models.RecommendationItem{
			SessionID:  sessionID,
			TitleID:    c.Title.ID,
			RankIndex:  i,
			Reason:     c.Item.Reason,
			MatchScore: c.Item.MatchScore,
		}
	}
	return items
}

// persistAvailability hands provider availability to the background sink.
// Failures are logged and counted, never returned.
func (o *Orchestrator) persistAvailability(ctx context.Context, region string, c ResolvedCandidate) {
	if o.avail == nil || len(c.Providers.Availability) == 0 {
		return
	}
	if err := o.avail.Enqueue(context.WithoutCancel(ctx), c.Title.ID, region, c.Providers); err != nil {
		metrics.AvailabilityWrites.WithLabelValues("failure").Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("title_id", c.Title.ID).Msg("Failed to queue provider availability")
	}
}

func (o *Orchestrator) begin(ctx context.Context, req *SessionRequest) (context.Context, error) {
	if len(req.ContentTypes) == 0 {
		req.ContentTypes = []models.ContentType{models.ContentMovie}
	}
	if err := req.validate(); err != nil {
		return ctx, err
	}
	return logging.ContextWithProfile(ctx, req.UserID, req.ProfileID), nil
}

// CreateSession runs a batch session: generate, resolve in parallel, top up
// if short, persist, and return every card at once.
func (o *Orchestrator) CreateSession(ctx context.Context, req SessionRequest) (*SessionResponse, error) {
	ctx, err := o.begin(ctx, &req)
	if err != nil {
		return nil, err
	}
	logger := logging.Ctx(ctx)
	start := time.Now()

	rq, err := o.loadContext(ctx, req)
	if err != nil {
		metrics.SessionsCreated.WithLabelValues(modeBatch, string(KindOf(err))).Inc()
		return nil, err
	}

	var chosen []ResolvedCandidate
	resolve := func(items []models.CandidateItem, missing int) {
		chosen = append(chosen, o.res.ResolveParallel(ctx, rq.rc, items, req.ContentTypes, rq.region, missing)...)
	}

	mood := &moodState{}
	first, genErr := o.generate(ctx, rq, rq.prompt, o.cfg.CandidatesCount, nil)
	if genErr != nil {
		logger.Warn().Err(genErr).Msg("Initial candidate generation failed")
	} else {
		mood.adopt(first)
		resolve(first.Items, o.cfg.FinalCount)
	}

	topups := o.topUp(ctx, rq, mood, modeBatch, o.cfg.TopUpMaxAttempts, func() int { return len(chosen) }, resolve)

	if err := ctx.Err(); err != nil {
		return nil, newError(KindInternal, "Request canceled", err)
	}
	if len(chosen) == 0 {
		metrics.SessionsCreated.WithLabelValues(modeBatch, string(KindGenerationExhausted)).Inc()
		return nil, newError(KindGenerationExhausted, msgExhausted, genErr)
	}
	chosen = head(chosen, o.cfg.FinalCount)

	mood.label = firstNonEmpty(mood.label, defaultMoodLabel)
	moodInput := moodWithTypes(req.MoodInput, req.ContentTypes)
	input, _ := json.Marshal(moodInput)
	topID := chosen[0].Title.ID
	sess := &models.RecommendationSession{
		ProfileID:     req.ProfileID,
		SessionType:   req.SessionType,
		InputPayload:  input,
		ModelResponse: o.modelResponse(rq, mood, first, topups, chosen),
		MoodLabel:     mood.label,
		MoodTags:      mood.tagsOrEmpty(),
		TopTitleID:    &topID,
		CreatedAt:     o.now().UTC(),
	}
	if err := o.store.CreateSession(ctx, sess); err != nil {
		metrics.SessionsCreated.WithLabelValues(modeBatch, string(KindInternal)).Inc()
		logger.Error().Err(err).Msg("Failed to insert recommendation session")
		return nil, newError(KindInternal, msgSessionCreate, err)
	}

	if err := o.store.InsertSessionItems(ctx, sessionItems(sess.ID, chosen)); err != nil {
		logger.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to insert recommendation items")
	}
	for _, c := range chosen {
		o.persistAvailability(ctx, rq.region, c)
	}

	cards := BuildCards(chosen)
	metrics.SessionsCreated.WithLabelValues(modeBatch, "success").Inc()
	metrics.CardsEmitted.WithLabelValues(modeBatch).Add(float64(len(cards)))
	logger.Info().
		Str("session_id", sess.ID).
		Int("cards", len(cards)).
		Str("region", rq.region).
		Dur("duration", time.Since(start)).
		Msg("Recommendation session created")

	return &SessionResponse{
		ID:          sess.ID,
		ProfileID:   req.ProfileID,
		SessionType: req.SessionType,
		MoodInput:   moodInput,
		CreatedAt:   sess.CreatedAt,
		Cards:       cards,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
