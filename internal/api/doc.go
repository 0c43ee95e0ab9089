// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

/*
Package api serves the recommendation HTTP API on a chi router.

# Routes

	GET  /api/v1/health/live                  process liveness
	GET  /api/v1/health/ready                 store reachability
	GET  /metrics                             Prometheus exposition
	POST /api/v1/recommendations/sessions     create a session (batch or stream)
	GET  /api/v1/recommendations/sessions/{id} load a stored session

Every request gets a request id and an access log line. CORS is applied
globally so preflight requests are answered before authentication. The
recommendation routes are authenticated (see package auth), then rate
limited per user.

# Responses

Non-streaming responses use the APIResponse envelope:

	{"success":true,"data":{...},"meta":{"request_id":"...","timestamp":"..."}}
	{"success":false,"error":{"code":"GENERATION_EXHAUSTED","message":"..."}}

Orchestrator error kinds map to statuses: auth 401, not_found 404,
validation 400, generation_exhausted 422, internal 500.

# Streaming

A create request with "stream": true returns one JSON event per line
(Accept: application/x-ndjson) or server-sent events ("data: <json>\n\n")
otherwise. Events are session_started, card, complete and error; every
event is flushed as soon as it is written. When the client disconnects the
request context is canceled and the session keeps what was resolved.
*/
package api
