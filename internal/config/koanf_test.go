// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setRequiredEnv sets the minimum environment for a valid configuration.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret-that-is-long-enough-for-prod")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("TMDB_API_KEY", "tmdb-test")
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Recommend.CandidatesCount != 12 {
		t.Errorf("Recommend.CandidatesCount = %d, want 12", cfg.Recommend.CandidatesCount)
	}
	if cfg.Recommend.FinalCount != 5 {
		t.Errorf("Recommend.FinalCount = %d, want 5", cfg.Recommend.FinalCount)
	}
	if cfg.Recommend.EnrichFreshness != 7*24*time.Hour {
		t.Errorf("Recommend.EnrichFreshness = %v, want 168h", cfg.Recommend.EnrichFreshness)
	}
	if cfg.Recommend.HistoryWindow != 120*24*time.Hour {
		t.Errorf("Recommend.HistoryWindow = %v, want 2880h", cfg.Recommend.HistoryWindow)
	}
	if cfg.Recommend.DefaultRegion != "US" {
		t.Errorf("Recommend.DefaultRegion = %q, want US", cfg.Recommend.DefaultRegion)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model = %q, want gpt-4o-mini", cfg.LLM.Model)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("RECOMMEND_FINAL_COUNT", "3")
	t.Setenv("RECOMMEND_EXTERNAL_TIMEOUT", "2s")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LLM_PROVIDER", "openai")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Recommend.FinalCount != 3 {
		t.Errorf("Recommend.FinalCount = %d, want 3", cfg.Recommend.FinalCount)
	}
	if cfg.Recommend.ExternalTimeout != 2*time.Second {
		t.Errorf("Recommend.ExternalTimeout = %v, want 2s", cfg.Recommend.ExternalTimeout)
	}
	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Security.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Security.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Security.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Security.CORSOrigins[i], want[i])
		}
	}
}

func TestLoadWithKoanf_FileLayer(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "recommend:\n  default_region: FR\n  candidates_count: 20\nserver:\n  port: 7000\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Recommend.DefaultRegion != "FR" {
		t.Errorf("DefaultRegion = %q, want FR", cfg.Recommend.DefaultRegion)
	}
	if cfg.Recommend.CandidatesCount != 20 {
		t.Errorf("CandidatesCount = %d, want 20", cfg.Recommend.CandidatesCount)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("Server.Port = %d, want 7100 (env beats file)", cfg.Server.Port)
	}
}

func TestLoadWithKoanf_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TMDB_API_KEY", "")

	_, err := LoadWithKoanf()
	if err == nil || !strings.Contains(err.Error(), "TMDB_API_KEY") {
		t.Fatalf("LoadWithKoanf() error = %v, want TMDB_API_KEY error", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HTTP_PORT":                 "server.port",
		"OPENAI_API_KEY":            "llm.openai_api_key",
		"RECOMMEND_TOPUP_MAX_ATTEMPTS": "recommend.topup_max_attempts",
		"PATH":                      "",
		"HOME":                      "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := defaultConfig()
		cfg.Security.JWTSecret = "secret"
		cfg.LLM.OpenAIAPIKey = "sk-test"
		cfg.TMDB.APIKey = "tmdb"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"jwt without secret", func(c *Config) { c.Security.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret in production", func(c *Config) { c.Server.Environment = "production" }, "at least 32"},
		{"auth none in production", func(c *Config) {
			c.Server.Environment = "production"
			c.Security.AuthMode = "none"
		}, "AUTH_MODE=none"},
		{"gemini without key", func(c *Config) { c.LLM.Provider = "gemini" }, "GEMINI_API_KEY"},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "llama" }, "LLM_PROVIDER"},
		{"candidates below final", func(c *Config) { c.Recommend.CandidatesCount = 2 }, "RECOMMEND_CANDIDATES_COUNT"},
		{"bad region", func(c *Config) { c.Recommend.DefaultRegion = "USA" }, "RECOMMEND_DEFAULT_REGION"},
		{"tmdb url with query", func(c *Config) { c.TMDB.BaseURL = "https://api.themoviedb.org/3?x=1" }, "TMDB_BASE_URL"},
		{"in-memory store needs no path", func(c *Config) {
			c.Storage.InMemory = true
			c.Storage.Path = ""
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
