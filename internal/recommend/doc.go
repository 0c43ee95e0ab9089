// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package recommend implements the recommendation session pipeline.
//
// # Pipeline
//
// A session runs through these stages:
//
//   - Signals: the profile's recent interactions are reduced to exclusion
//     sets and weighted positive and negative taste signals (ExtractSignals).
//   - Generation: the language model ideates a list of titles, then each
//     title is enriched into a candidate with a reason and match score
//     (Generator).
//   - Resolution: candidates are matched against the metadata provider,
//     gated against exclusions and duplicates, and bound to a canonical
//     title with regional watch providers (Resolver).
//   - Top-up: when fewer titles than FinalCount survive, follow-up rounds
//     ask for exactly the missing count.
//
// # Modes
//
// Orchestrator.CreateSession resolves candidates in parallel and returns
// all cards at once. Orchestrator.StreamSession resolves them in order and
// emits session_started, one card event per accepted title, and complete
// (or error) through an EventSink.
//
// # Usage
//
//	orch := recommend.NewOrchestrator(st, caller, tmdb, omdb, queue, recommend.FromConfig(cfg.Recommend))
//	resp, err := orch.CreateSession(ctx, recommend.SessionRequest{
//	    UserID:      userID,
//	    ProfileID:   profileID,
//	    SessionType: models.SessionMood,
//	    MoodInput:   map[string]any{"energy": "low"},
//	})
//	if recommend.KindOf(err) == recommend.KindNotFound {
//	    ...
//	}
package recommend
