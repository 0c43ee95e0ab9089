// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

/*
Command server runs the VibeStream recommendation API.

# Application Architecture

	vibestream
	├── data-layer
	│   ├── availability-worker   persists watch providers in the background
	│   └── store-gc              Badger value log GC
	└── api-layer
	    └── http-server           chi router

Initialization order:

 1. Configuration: koanf, defaults then CONFIG_PATH YAML then environment
 2. Logging: zerolog, JSON or console
 3. Store: BadgerDB at STORE_PATH, or in memory
 4. Language model: OpenAI-compatible or Gemini, behind a circuit breaker
 5. Metadata: TMDB (required) and OMDb (optional)
 6. Orchestrator and the availability queue
 7. Authentication: Supabase-style HS256 JWT, or none for development
 8. Supervisor tree and HTTP server

# Configuration

	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<secret>

	STORE_PATH=/data/vibestream
	LLM_PROVIDER=openai          # openai or gemini
	OPENAI_API_KEY=<key>
	TMDB_API_KEY=<key>
	OMDB_API_KEY=<key>           # optional

# Endpoints

	POST /api/v1/recommendations/sessions
	GET  /api/v1/recommendations/sessions/{id}
	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	GET  /metrics

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests, open streams included, for SHUTDOWN_TIMEOUT; the
availability queue is closed after the tree stops so buffered jobs are
dropped rather than written to a closed store.
*/
package main
