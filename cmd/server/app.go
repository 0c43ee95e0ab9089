// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/api"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/auth"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/availability"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/config"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/llm"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metadata"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/supervisor"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/supervisor/services"
)

// app holds the wired components that outlive a single request.
type app struct {
	cfg    *config.Config
	store  *store.Store
	queue  *availability.Queue
	worker *availability.Worker
	server *http.Server
}

// newApp opens the store and wires every component behind the router.
func newApp(cfg *config.Config) (*app, error) {
	model, err := llm.NewCaller(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("language model: %w", err)
	}

	st, err := store.Open(store.Options{Path: cfg.Storage.Path, InMemory: cfg.Storage.InMemory})
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	logging.Info().Str("path", cfg.Storage.Path).Bool("in_memory", cfg.Storage.InMemory).Msg("Store opened")

	a, err := wire(cfg, st, model)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return a, nil
}

// wire builds everything on top of an open store and model backend.
func wire(cfg *config.Config, st *store.Store, model recommend.ModelCaller) (*app, error) {
	timeout := cfg.Recommend.ExternalTimeout

	tmdb, err := metadata.NewTMDBClient(cfg.TMDB, timeout)
	if err != nil {
		return nil, fmt.Errorf("tmdb client: %w", err)
	}

	var ratings recommend.Ratings
	if omdb := metadata.NewOMDbClient(cfg.OMDb, timeout); omdb.Enabled() {
		ratings = omdb
	} else {
		logging.Info().Msg("OMDb ratings disabled (OMDB_API_KEY not set)")
	}

	queue, err := availability.NewQueue(cfg.Availability.QueueBuffer, nil)
	if err != nil {
		return nil, fmt.Errorf("availability queue: %w", err)
	}

	orchestrator := recommend.NewOrchestrator(st, model, tmdb, ratings, queue, recommend.FromConfig(cfg.Recommend))

	handler, err := newHandler(cfg, orchestrator, st)
	if err != nil {
		_ = queue.Close()
		return nil, err
	}

	return &app{
		cfg:    cfg,
		store:  st,
		queue:  queue,
		worker: availability.NewWorker(queue, st, cfg.Availability.Timeout, nil),
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			// Streams write for the whole pipeline run.
			WriteTimeout: cfg.Server.Timeout,
			IdleTimeout:  60 * time.Second,
		},
	}, nil
}

// newHandler builds the chi handler tree.
func newHandler(cfg *config.Config, sessions api.SessionService, pinger api.Pinger) (http.Handler, error) {
	mode, err := auth.ParseAuthMode(cfg.Security.AuthMode)
	if err != nil {
		return nil, err
	}
	authMW, err := api.NewAuthMiddleware(mode, auth.JWTConfig{
		Secret:   cfg.Security.JWTSecret,
		Issuer:   cfg.Security.JWTIssuer,
		Audience: cfg.Security.JWTAudience,
	})
	if err != nil {
		return nil, fmt.Errorf("auth middleware: %w", err)
	}

	router := api.NewRouter(
		api.NewHandler(sessions, pinger),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(&cfg.Security)),
		authMW,
	)
	return router.SetupChi(), nil
}

// register adds the long-running services to the tree.
func (a *app) register(tree *supervisor.SupervisorTree) {
	tree.AddDataService(a.worker)
	if !a.cfg.Storage.InMemory {
		tree.AddDataService(services.NewStoreGCService(a.store, a.cfg.Storage.GCInterval, a.cfg.Storage.GCRatio))
	}
	tree.AddAPIService(services.NewHTTPServerService(a.server, a.cfg.Server.ShutdownTimeout))
}

// close releases the queue, then the store.
func (a *app) close() {
	if err := a.queue.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing availability queue")
	}
	if err := a.store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing store")
	}
}
