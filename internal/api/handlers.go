// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package api

import (
	"context"
	"time"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
)

// SessionService runs and loads recommendation sessions.
// Satisfied by *recommend.Orchestrator.
type SessionService interface {
	CreateSession(ctx context.Context, req recommend.SessionRequest) (*recommend.SessionResponse, error)
	StreamSession(ctx context.Context, req recommend.SessionRequest, sink recommend.EventSink) error
	GetSession(ctx context.Context, userID, sessionID string) (*recommend.StoredSession, error)
}

// Pinger reports store health. Satisfied by *store.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers.
type Handler struct {
	sessions  SessionService
	store     Pinger
	startTime time.Time
}

// NewHandler creates the handlers.
func NewHandler(sessions SessionService, store Pinger) *Handler {
	return &Handler{
		sessions:  sessions,
		store:     store,
		startTime: time.Now(),
	}
}
