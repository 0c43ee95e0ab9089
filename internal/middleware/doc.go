// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package middleware holds the HTTP middleware shared by the API router.
//
// All middleware has the chi signature func(http.Handler) http.Handler:
//
//	r := chi.NewRouter()
//	r.Use(middleware.RequestIDWithLogging)
//	r.Use(middleware.PrometheusMetrics)
//
// RequestIDWithLogging seeds the request and correlation ids read by
// logging.Ctx and writes the access log. PrometheusMetrics labels requests
// by route pattern. Compression gzips responses and supports Flush, so it
// is safe in front of the session event stream.
package middleware
