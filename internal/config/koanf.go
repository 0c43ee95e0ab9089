// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vibestream/config.yaml",
	"/etc/vibestream/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         60 * time.Second, // streaming sessions run several model round trips
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			JWTAudience:     "authenticated",
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   30,
			RateLimitWindow: time.Minute,
		},
		Storage: StorageConfig{
			Path:       "/data/vibestream",
			GCInterval: 10 * time.Minute,
			GCRatio:    0.5,
		},
		LLM: LLMConfig{
			Provider:      "openai",
			OpenAIBaseURL: "https://api.openai.com",
			Model:         "gpt-4o-mini",
			Timeout:       30 * time.Second,
			MaxRetries:    2,
		},
		TMDB: TMDBConfig{
			BaseURL:         "https://api.themoviedb.org/3",
			ImageBaseURL:    "https://image.tmdb.org/t/p",
			Language:        "en-US",
			RateLimit:       40,
			SearchCacheSize: 2048,
			SearchCacheTTL:  time.Hour,
		},
		OMDb: OMDbConfig{
			BaseURL: "https://www.omdbapi.com",
		},
		Recommend: RecommendConfig{
			HistoryWindow:          120 * 24 * time.Hour,
			MaxHistory:             300,
			RecentSessionsWindow:   90 * 24 * time.Hour,
			RecentSessionsLimit:    60,
			RecentItemsLimit:       400,
			CandidatesCount:        12,
			FinalCount:             5,
			TopUpMaxAttempts:       1,
			StreamTopUpMaxAttempts: 1,
			GenresMax:              10,
			TagsMax:                20,
			NotesMax:               10,
			HardExcludeCap:         60,
			SoftExcludeCap:         40,
			PromptInteractions:     50,
			EnrichFreshness:        7 * 24 * time.Hour,
			ExternalTimeout:        5 * time.Second,
			DefaultRegion:          "US",
		},
		Availability: AvailabilityConfig{
			QueueBuffer: 256,
			Timeout:     15 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration in three layers: struct defaults, an
// optional YAML file, then environment variables (highest priority).
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings from env.
var sliceConfigPaths = []string{
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to koanf paths.
// Variables not listed here are ignored.
var envMappings = map[string]string{
	// Server
	"http_host":        "server.host",
	"http_port":        "server.port",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"jwt_audience":        "security.jwt_audience",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Storage
	"store_path":        "storage.path",
	"store_in_memory":   "storage.in_memory",
	"store_gc_interval": "storage.gc_interval",
	"store_gc_ratio":    "storage.gc_ratio",

	// Language model
	"llm_provider":    "llm.provider",
	"openai_api_key":  "llm.openai_api_key",
	"openai_base_url": "llm.openai_base_url",
	"gemini_api_key":  "llm.gemini_api_key",
	"llm_model":       "llm.model",
	"llm_timeout":     "llm.timeout",
	"llm_max_retries": "llm.max_retries",

	// Metadata providers
	"tmdb_api_key":           "tmdb.api_key",
	"tmdb_base_url":          "tmdb.base_url",
	"tmdb_image_base_url":    "tmdb.image_base_url",
	"tmdb_language":          "tmdb.language",
	"tmdb_rate_limit":        "tmdb.rate_limit",
	"tmdb_search_cache_size": "tmdb.search_cache_size",
	"tmdb_search_cache_ttl":  "tmdb.search_cache_ttl",
	"omdb_api_key":           "omdb.api_key",
	"omdb_base_url":          "omdb.base_url",

	// Recommendation pipeline
	"recommend_history_window":            "recommend.history_window",
	"recommend_max_history":               "recommend.max_history",
	"recommend_recent_sessions_window":    "recommend.recent_sessions_window",
	"recommend_recent_sessions_limit":     "recommend.recent_sessions_limit",
	"recommend_recent_items_limit":        "recommend.recent_items_limit",
	"recommend_candidates_count":          "recommend.candidates_count",
	"recommend_final_count":               "recommend.final_count",
	"recommend_topup_max_attempts":        "recommend.topup_max_attempts",
	"recommend_stream_topup_max_attempts": "recommend.stream_topup_max_attempts",
	"recommend_genres_max":                "recommend.genres_max",
	"recommend_tags_max":                  "recommend.tags_max",
	"recommend_notes_max":                 "recommend.notes_max",
	"recommend_hard_exclude_cap":          "recommend.hard_exclude_cap",
	"recommend_soft_exclude_cap":          "recommend.soft_exclude_cap",
	"recommend_prompt_interactions":       "recommend.prompt_interactions",
	"recommend_enrich_freshness":          "recommend.enrich_freshness",
	"recommend_external_timeout":          "recommend.external_timeout",
	"recommend_default_region":            "recommend.default_region",

	// Availability persistence
	"availability_queue_buffer": "availability.queue_buffer",
	"availability_timeout":      "availability.timeout",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
