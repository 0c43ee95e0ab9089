// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package config

import (
	"fmt"
	"strings"
)

const minJWTSecretLength = 32

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateSecurity,
		c.validateStorage,
		c.validateLLM,
		c.validateMetadata,
		c.validateRecommend,
		c.validateAvailability,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("ENVIRONMENT must be development, staging, or production, got: %s", c.Server.Environment)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be trace, debug, info, warn, or error, got: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "jwt":
		if c.Security.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when AUTH_MODE=jwt")
		}
		if c.Server.IsProduction() && len(c.Security.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters in production", minJWTSecretLength)
		}
	case "none":
		if c.Server.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be jwt or none, got: %s", c.Security.AuthMode)
	}

	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("STORE_PATH is required unless STORE_IN_MEMORY=true")
	}
	if c.Storage.GCRatio <= 0 || c.Storage.GCRatio >= 1 {
		return fmt.Errorf("STORE_GC_RATIO must be between 0 and 1 (exclusive), got %v", c.Storage.GCRatio)
	}
	return nil
}

func (c *Config) validateLLM() error {
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
		if err := validateHTTPURL(c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL"); err != nil {
			return err
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("LLM_PROVIDER must be openai or gemini, got: %s", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY is required")
	}
	if err := validateHTTPURL(c.TMDB.BaseURL, "TMDB_BASE_URL"); err != nil {
		return err
	}
	if err := validateHTTPURL(c.TMDB.ImageBaseURL, "TMDB_IMAGE_BASE_URL"); err != nil {
		return err
	}
	if c.TMDB.RateLimit <= 0 {
		return fmt.Errorf("TMDB_RATE_LIMIT must be positive")
	}
	if c.OMDb.APIKey != "" {
		return validateHTTPURL(c.OMDb.BaseURL, "OMDB_BASE_URL")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.FinalCount < 1 {
		return fmt.Errorf("RECOMMEND_FINAL_COUNT must be at least 1")
	}
	if r.CandidatesCount < r.FinalCount {
		return fmt.Errorf("RECOMMEND_CANDIDATES_COUNT (%d) must be >= RECOMMEND_FINAL_COUNT (%d)", r.CandidatesCount, r.FinalCount)
	}
	if r.TopUpMaxAttempts < 0 || r.StreamTopUpMaxAttempts < 0 {
		return fmt.Errorf("top-up attempt limits must not be negative")
	}
	if r.EnrichFreshness <= 0 {
		return fmt.Errorf("RECOMMEND_ENRICH_FRESHNESS must be positive")
	}
	if r.ExternalTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_EXTERNAL_TIMEOUT must be positive")
	}
	if len(r.DefaultRegion) != 2 {
		return fmt.Errorf("RECOMMEND_DEFAULT_REGION must be a two-letter country code, got: %q", r.DefaultRegion)
	}
	return nil
}

func (c *Config) validateAvailability() error {
	if c.Availability.QueueBuffer < 0 {
		return fmt.Errorf("AVAILABILITY_QUEUE_BUFFER must not be negative")
	}
	if c.Availability.Timeout <= 0 {
		return fmt.Errorf("AVAILABILITY_TIMEOUT must be positive")
	}
	return nil
}
