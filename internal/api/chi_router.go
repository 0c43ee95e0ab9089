// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/auth"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/middleware"
)

// Router assembles the HTTP routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware, authMW *auth.Middleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw, auth: authMW}
}

// NewAuthMiddleware creates authentication middleware that answers with
// the API's error envelope.
func NewAuthMiddleware(mode auth.AuthMode, cfg auth.JWTConfig) (*auth.Middleware, error) {
	return auth.NewMiddleware(mode, cfg, writeUnauthorized)
}

// SetupChi builds the handler tree.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.auth.Authenticate)
		r.Use(router.chiMiddleware.RateLimit())

		r.Post("/sessions", router.handler.CreateSession)
		r.With(middleware.Compression).Get("/sessions/{id}", router.handler.GetSession)
	})

	return r
}
