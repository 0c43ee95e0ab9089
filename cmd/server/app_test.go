// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/config"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/llm"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/supervisor"
)

type nopModel struct{}

func (nopModel) Generate(context.Context, string, string, llm.Options) (string, error) {
	return "", errors.New("not used")
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, Timeout: time.Minute, ShutdownTimeout: time.Second},
		Security: config.SecurityConfig{
			AuthMode:          "none",
			RateLimitDisabled: true,
		},
		Storage: config.StorageConfig{InMemory: true, GCInterval: time.Minute, GCRatio: 0.5},
		TMDB: config.TMDBConfig{
			APIKey:       "test-key",
			BaseURL:      "http://127.0.0.1:1",
			ImageBaseURL: "http://127.0.0.1:1/img",
			RateLimit:    10,
		},
		Recommend:    config.RecommendConfig{ExternalTimeout: time.Second, DefaultRegion: "US"},
		Availability: config.AvailabilityConfig{QueueBuffer: 4, Timeout: time.Second},
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	st, err := store.Open(store.Options{InMemory: true})
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	a, err := wire(cfg, st, nopModel{})
	if err != nil {
		_ = st.Close()
		t.Fatalf("wire() error = %v", err)
	}
	t.Cleanup(a.close)
	return a
}

func TestWire_Routes(t *testing.T) {
	a := newTestApp(t, testConfig())

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health/live", http.StatusOK},
		{http.MethodGet, "/api/v1/health/ready", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/api/v1/recommendations/sessions/abc", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.server.Handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}

func TestWire_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "missing tmdb key", mutate: func(c *config.Config) { c.TMDB.APIKey = "" }},
		{name: "unknown auth mode", mutate: func(c *config.Config) { c.Security.AuthMode = "basic" }},
		{name: "jwt without secret", mutate: func(c *config.Config) { c.Security.AuthMode = "jwt" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			st, err := store.Open(store.Options{InMemory: true})
			if err != nil {
				t.Fatalf("store.Open() error = %v", err)
			}
			defer st.Close()
			if _, err := wire(cfg, st, nopModel{}); err == nil {
				t.Error("wire() error = nil")
			}
		})
	}
}

func TestApp_RunsUnderSupervisor(t *testing.T) {
	a := newTestApp(t, testConfig())

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("test"), supervisor.TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	a.register(tree)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve() = %v", err)
	}
	if report, _ := tree.UnstoppedServiceReport(); len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}
