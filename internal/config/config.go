// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package config loads VibeStream configuration from built-in defaults, an
// optional YAML file, and environment variables, in increasing priority.
//
// Configuration is read once in main and passed explicitly to every
// constructor; no other package reads the environment.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server       ServerConfig       `koanf:"server"`
	Logging      LoggingConfig      `koanf:"logging"`
	Security     SecurityConfig     `koanf:"security"`
	Storage      StorageConfig      `koanf:"storage"`
	LLM          LLMConfig          `koanf:"llm"`
	TMDB         TMDBConfig         `koanf:"tmdb"`
	OMDb         OMDbConfig         `koanf:"omdb"`
	Recommend    RecommendConfig    `koanf:"recommend"`
	Availability AvailabilityConfig `koanf:"availability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // development, staging, production
}

// IsProduction reports whether the server runs with production safety checks.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds authentication, CORS and rate limiting settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // jwt, none
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	JWTAudience       string        `koanf:"jwt_audience"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// StorageConfig configures the embedded Badger record store.
type StorageConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
	GCRatio    float64       `koanf:"gc_ratio"`
}

// LLMConfig selects and configures the language model backend.
type LLMConfig struct {
	Provider      string        `koanf:"provider"` // openai, gemini
	OpenAIAPIKey  string        `koanf:"openai_api_key"`
	OpenAIBaseURL string        `koanf:"openai_base_url"`
	GeminiAPIKey  string        `koanf:"gemini_api_key"`
	Model         string        `koanf:"model"`
	Timeout       time.Duration `koanf:"timeout"`
	MaxRetries    int           `koanf:"max_retries"`
}

// TMDBConfig configures the TMDB metadata client.
type TMDBConfig struct {
	APIKey          string        `koanf:"api_key"`
	BaseURL         string        `koanf:"base_url"`
	ImageBaseURL    string        `koanf:"image_base_url"`
	Language        string        `koanf:"language"`
	RateLimit       float64       `koanf:"rate_limit"` // requests per second
	SearchCacheSize int           `koanf:"search_cache_size"`
	SearchCacheTTL  time.Duration `koanf:"search_cache_ttl"`
}

// OMDbConfig configures the OMDb ratings client. An empty key disables it.
type OMDbConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

// RecommendConfig holds the recommendation pipeline tunables.
type RecommendConfig struct {
	HistoryWindow          time.Duration `koanf:"history_window"`
	MaxHistory             int           `koanf:"max_history"`
	RecentSessionsWindow   time.Duration `koanf:"recent_sessions_window"`
	RecentSessionsLimit    int           `koanf:"recent_sessions_limit"`
	RecentItemsLimit       int           `koanf:"recent_items_limit"`
	CandidatesCount        int           `koanf:"candidates_count"`
	FinalCount             int           `koanf:"final_count"`
	TopUpMaxAttempts       int           `koanf:"topup_max_attempts"`
	StreamTopUpMaxAttempts int           `koanf:"stream_topup_max_attempts"`
	GenresMax              int           `koanf:"genres_max"`
	TagsMax                int           `koanf:"tags_max"`
	NotesMax               int           `koanf:"notes_max"`
	HardExcludeCap         int           `koanf:"hard_exclude_cap"`
	SoftExcludeCap         int           `koanf:"soft_exclude_cap"`
	PromptInteractions     int           `koanf:"prompt_interactions"`
	EnrichFreshness        time.Duration `koanf:"enrich_freshness"`
	ExternalTimeout        time.Duration `koanf:"external_timeout"`
	DefaultRegion          string        `koanf:"default_region"`
}

// AvailabilityConfig configures background provider persistence.
type AvailabilityConfig struct {
	QueueBuffer int           `koanf:"queue_buffer"`
	Timeout     time.Duration `koanf:"timeout"`
}

// Load reads configuration from defaults, file and environment.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
