// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

/*
Package models defines the data structures shared by the store, the
recommendation pipeline and the HTTP API.

Model Categories:

1. Catalog:
  - MediaTitle: canonical movie or TV record, unique by (TMDBID, ContentType)
  - WatchProviders, ProviderAvailability: region-specific provider views
  - StreamingProvider, TitleAvailability: persisted provider rows

2. Users:
  - AppUser, Profile, ProfilePreferences

3. Feedback:
  - Interaction with its joined TitleRef and InteractionExtra
  - FeedbackSignals, NegativeFeedbackSignals: aggregated preference signals

4. Sessions:
  - RecommendationSession, RecommendationItem: persisted session rows
  - RecommendationCard: the client-facing card
  - CandidateItem: one model-proposed candidate before resolution

JSON tags follow the wire names clients already use, so these types are
serialized directly in API responses and stream events.
*/
package models
