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

// Event types emitted by StreamSession.
const (
	EventSessionStarted = "session_started"
	EventCard           = "card"
	EventComplete       = "complete"
	EventError          = "error"
)

// Event is one message of a streamed session.
type Event interface {
	EventType() string
}

// SessionStartedEvent is sent once the session row exists.
type SessionStartedEvent struct {
	Type          string             `json:"type"`
	SessionID     string             `json:"session_id"`
	ProfileID     string             `json:"profile_id"`
	SessionType   models.SessionType `json:"session_type"`
	TotalExpected int                `json:"total_expected"`
	CreatedAt     time.Time          `json:"created_at"`
}

// CardEvent carries one accepted card. Index counts from zero across the
// whole session.
type CardEvent struct {
	Type  string                    `json:"type"`
	Card  models.RecommendationCard `json:"card"`
	Index int                       `json:"index"`
}

// CompleteEvent closes a successful stream with the full session.
type CompleteEvent struct {
	Type string `json:"type"`
	SessionResponse
}

// ErrorEvent reports a failure after the stream has started.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (SessionStartedEvent) EventType() string { return EventSessionStarted }
func (CardEvent) EventType() string           { return EventCard }
func (CompleteEvent) EventType() string       { return EventComplete }
func (ErrorEvent) EventType() string          { return EventError }

// EventSink receives stream events in order. A Send error means the client
// is gone.
type EventSink interface {
	Send(ev Event) error
}

// StreamSession runs a session and emits each card as soon as it resolves.
// Errors raised before session_started is sent are returned without any
// event being written.
func (o *Orchestrator) StreamSession(ctx context.Context, req SessionRequest, sink EventSink) error {
	ctx, err := o.begin(ctx, &req)
	if err != nil {
		return err
	}
	logger := logging.Ctx(ctx)
	start := time.Now()

	rq, err := o.loadContext(ctx, req)
	if err != nil {
		metrics.SessionsCreated.WithLabelValues(modeStream, string(KindOf(err))).Inc()
		return err
	}

	moodInput := moodWithTypes(req.MoodInput, req.ContentTypes)
	input, _ := json.Marshal(moodInput)
	initial, _ := json.Marshal(modelResponse{
		MoodTags:            []string{},
		ContentTypes:        req.ContentTypes,
		FeedbackSignalsUsed: signalsUsed(rq.signals),
	})
	sess := &models.RecommendationSession{
		ProfileID:     req.ProfileID,
		SessionType:   req.SessionType,
		InputPayload:  input,
		ModelResponse: initial,
		MoodTags:      []string{},
		CreatedAt:     o.now().UTC(),
	}
	if err := o.store.CreateSession(ctx, sess); err != nil {
		metrics.SessionsCreated.WithLabelValues(modeStream, string(KindInternal)).Inc()
		logger.Error().Err(err).Msg("Failed to insert streaming session")
		_ = sink.Send(ErrorEvent{Type: EventError, Message: msgSessionCreate})
		return newError(KindInternal, msgSessionCreate, err)
	}
	ctx = logging.ContextWithSession(ctx, sess.ID)
	logger = logging.Ctx(ctx)

	if err := sink.Send(SessionStartedEvent{
		Type:          EventSessionStarted,
		SessionID:     sess.ID,
		ProfileID:     req.ProfileID,
		SessionType:   req.SessionType,
		TotalExpected: o.cfg.FinalCount,
		CreatedAt:     sess.CreatedAt,
	}); err != nil {
		return err
	}

	var (
		chosen  []ResolvedCandidate
		cards   []models.RecommendationCard
		sendErr error
	)
	// A failed Send cancels the remaining resolution work.
	streamCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	onReady := func(c ResolvedCandidate, _ int) {
		card := BuildCard(c)
		index := len(cards)
		chosen = append(chosen, c)
		cards = append(cards, card)
		o.persistAvailability(ctx, rq.region, c)
		metrics.CardsEmitted.WithLabelValues(modeStream).Inc()
		if sendErr != nil {
			return
		}
		if err := sink.Send(CardEvent{Type: EventCard, Card: card, Index: index}); err != nil {
			sendErr = err
			cancel()
		}
	}
	resolve := func(items []models.CandidateItem, missing int) {
		o.res.ResolveSequential(streamCtx, rq.rc, items, req.ContentTypes, rq.region, missing, onReady)
	}

	mood := &moodState{}
	first, genErr := o.generate(streamCtx, rq, rq.prompt, o.cfg.CandidatesCount, nil)
	if genErr != nil {
		logger.Warn().Err(genErr).Msg("Initial candidate generation failed")
	} else {
		mood.adopt(first)
		resolve(first.Items, o.cfg.FinalCount)
	}

	topups := o.topUp(streamCtx, rq, mood, modeStream, o.cfg.StreamTopUpMaxAttempts, func() int { return len(chosen) }, resolve)

	if sendErr != nil {
		logger.Info().Err(sendErr).Int("cards", len(cards)).Msg("Client disconnected during stream")
		o.finalize(context.WithoutCancel(ctx), sess.ID, rq, mood, first, topups, chosen)
		metrics.SessionsCreated.WithLabelValues(modeStream, "disconnected").Inc()
		return sendErr
	}
	if err := ctx.Err(); err != nil {
		o.finalize(context.WithoutCancel(ctx), sess.ID, rq, mood, first, topups, chosen)
		return newError(KindInternal, "Request canceled", err)
	}
	if len(chosen) == 0 {
		metrics.SessionsCreated.WithLabelValues(modeStream, string(KindGenerationExhausted)).Inc()
		_ = sink.Send(ErrorEvent{Type: EventError, Message: msgExhausted})
		return newError(KindGenerationExhausted, msgExhausted, genErr)
	}

	mood.label = firstNonEmpty(mood.label, defaultMoodLabel)
	o.finalize(ctx, sess.ID, rq, mood, first, topups, chosen)

	metrics.SessionsCreated.WithLabelValues(modeStream, "success").Inc()
	logger.Info().
		Int("cards", len(cards)).
		Str("region", rq.region).
		Dur("duration", time.Since(start)).
		Msg("Streaming session completed")

	return sink.Send(CompleteEvent{
		Type: EventComplete,
		SessionResponse: SessionResponse{
			ID:          sess.ID,
			ProfileID:   req.ProfileID,
			SessionType: req.SessionType,
			MoodInput:   moodInput,
			CreatedAt:   sess.CreatedAt,
			Cards:       cards,
		},
	})
}

// finalize stores the items and outcome of a streamed session. Failures are
// logged only; the client already holds the cards.
func (o *Orchestrator) finalize(ctx context.Context, sessionID string, rq *requestContext, mood *moodState,
	first *Generation, topups []*Generation, chosen []ResolvedCandidate) {
	logger := logging.Ctx(ctx)
	if err := o.store.InsertSessionItems(ctx, sessionItems(sessionID, chosen)); err != nil {
		logger.Warn().Err(err).Msg("Failed to insert recommendation items")
	}
	topID := ""
	if len(chosen) > 0 {
		topID = chosen[0].Title.ID
	}
	mr := o.modelResponse(rq, mood, first, topups, chosen)
	if err := o.store.FinalizeSession(ctx, sessionID, topID, mood.label, mood.tagsOrEmpty(), mr); err != nil {
		logger.Warn().Err(err).Msg("Failed to finalize streaming session")
	}
}
