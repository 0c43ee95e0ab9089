// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Package llm provides the text-completion backends used to generate and
// enrich recommendation candidates.
//
// Two backends are supported: an OpenAI-compatible Chat Completions client
// and Google Gemini through google.golang.org/genai. Both are wrapped with a
// circuit breaker and Prometheus instrumentation by NewCaller.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/breaker"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/config"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metrics"
)

var (
	// ErrTransport wraps every network, timeout or upstream status failure.
	ErrTransport = errors.New("llm: transport failure")

	// ErrUnavailable is returned when the circuit breaker refuses the call.
	ErrUnavailable = fmt.Errorf("%w: provider unavailable", ErrTransport)

	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// HTTPError is a non-2xx response from an HTTP backend.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e == nil {
		return "llm: upstream http error"
	}
	if e.Body == "" {
		return fmt.Sprintf("llm: upstream http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("llm: upstream http error: status=%d body=%s", e.StatusCode, e.Body)
}

// Options tune a single completion.
type Options struct {
	// Phase labels the call in logs and metrics (candidates, enrich).
	Phase string
	// Temperature is omitted from the request when nil.
	Temperature *float64
	// MaxTokens caps the completion length. Zero leaves the backend default.
	MaxTokens int
	// JSONMode asks the backend to emit a single JSON object.
	JSONMode bool
}

// Temperature returns a pointer suitable for Options.Temperature.
func Temperature(t float64) *float64 { return &t }

// Caller generates a completion for a system and user prompt.
type Caller interface {
	Generate(ctx context.Context, system, user string, opts Options) (string, error)
}

// NewCaller builds the backend selected by cfg.Provider wrapped in the
// shared "llm-api" circuit breaker.
func NewCaller(cfg config.LLMConfig) (Caller, error) {
	var (
		backend Caller
		err     error
	)
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	switch provider {
	case "openai", "":
		provider = "openai"
		backend, err = NewOpenAIClient(cfg)
	case "gemini":
		backend, err = NewGeminiClient(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logging.Info().Str("provider", provider).Str("model", cfg.Model).Msg("Language model backend configured")
	return NewGuarded(provider, backend, breaker.New("llm-api")), nil
}

// Guarded runs a Caller under a circuit breaker and records metrics.
type Guarded struct {
	provider string
	next     Caller
	cb       *breaker.Breaker
}

// NewGuarded wraps next. provider labels metrics.
func NewGuarded(provider string, next Caller, cb *breaker.Breaker) *Guarded {
	return &Guarded{provider: provider, next: next, cb: cb}
}

// Generate implements Caller.
func (g *Guarded) Generate(ctx context.Context, system, user string, opts Options) (string, error) {
	phase := opts.Phase
	if phase == "" {
		phase = "unspecified"
	}

	start := time.Now()
	text, err := breaker.Do(g.cb, func() (string, error) {
		return g.next.Generate(ctx, system, user, opts)
	})
	elapsed := time.Since(start)

	switch {
	case err == nil:
		metrics.RecordLLMCall(g.provider, phase, "success", elapsed)
		return text, nil
	case breaker.IsRejected(err):
		metrics.RecordLLMCall(g.provider, phase, "rejected", elapsed)
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	case errors.Is(err, ErrEmptyResponse), errors.Is(err, context.Canceled):
		metrics.RecordLLMCall(g.provider, phase, "error", elapsed)
		return "", err
	default:
		metrics.RecordLLMCall(g.provider, phase, "error", elapsed)
		logging.Ctx(ctx).Warn().Err(err).
			Str("provider", g.provider).
			Str("phase", phase).
			Dur("duration", elapsed).
			Msg("Language model call failed")
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}
}
