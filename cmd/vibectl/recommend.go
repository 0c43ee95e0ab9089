// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/availability"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/llm"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/metadata"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/recommend"
)

// orchestrator wires the pipeline over e's store. Availability is written
// synchronously since no worker runs in the CLI.
func (e *env) orchestrator() (*recommend.Orchestrator, error) {
	model, err := llm.NewCaller(e.cfg.LLM)
	if err != nil {
		return nil, err
	}
	tmdb, err := metadata.NewTMDBClient(e.cfg.TMDB, e.cfg.Recommend.ExternalTimeout)
	if err != nil {
		return nil, err
	}
	var ratings recommend.Ratings
	if omdb := metadata.NewOMDbClient(e.cfg.OMDb, e.cfg.Recommend.ExternalTimeout); omdb.Enabled() {
		ratings = omdb
	}
	return recommend.NewOrchestrator(e.store, model, tmdb, ratings,
		availability.Direct{Store: e.store}, recommend.FromConfig(e.cfg.Recommend)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signalsReport is what "vibectl signals" prints.
type signalsReport struct {
	ProfileID string             `json:"profile_id"`
	Region    string             `json:"region"`
	Signals   *recommend.Signals `json:"signals"`
}

// signalsSource loads a profile's signals. Satisfied by *recommend.Orchestrator.
type signalsSource interface {
	Signals(ctx context.Context, userID, profileID string) (*recommend.Signals, string, error)
}

type profileGetter interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

func newSignalsCmd(opts *rootOptions) *cobra.Command {
	var profileID string
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Print a profile's feedback signals and exclusions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}
			return printSignals(cmd.Context(), orch, e.store, profileID, out(cmd))
		},
	}
	cmd.Flags().StringVar(&profileID, "profile", "", "Profile id")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// printSignals acts as the profile's owner, so ownership checks pass.
func printSignals(ctx context.Context, src signalsSource, profiles profileGetter, profileID string, w io.Writer) error {
	p, err := profiles.GetProfile(ctx, profileID)
	if err != nil {
		return fmt.Errorf("profile %s: %w", profileID, err)
	}
	sig, region, err := src.Signals(ctx, p.UserID, profileID)
	if err != nil {
		return err
	}
	return writeJSON(w, signalsReport{ProfileID: profileID, Region: region, Signals: sig})
}

// ndjsonSink prints stream events one per line.
type ndjsonSink struct {
	enc *json.Encoder
}

func (s ndjsonSink) Send(ev recommend.Event) error {
	return s.enc.Encode(ev)
}

type sessionOptions struct {
	profileID    string
	sessionType  string
	contentTypes []string
	mood         string
	stream       bool
}

// sessionRunner is satisfied by *recommend.Orchestrator.
type sessionRunner interface {
	CreateSession(ctx context.Context, req recommend.SessionRequest) (*recommend.SessionResponse, error)
	StreamSession(ctx context.Context, req recommend.SessionRequest, sink recommend.EventSink) error
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	so := &sessionOptions{}
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run one recommendation session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}
			p, err := e.store.GetProfile(cmd.Context(), so.profileID)
			if err != nil {
				return fmt.Errorf("profile %s: %w", so.profileID, err)
			}
			return runSession(cmd.Context(), orch, p.UserID, so, out(cmd))
		},
	}
	cmd.Flags().StringVar(&so.profileID, "profile", "", "Profile id")
	cmd.Flags().StringVar(&so.sessionType, "type", string(models.SessionMood), "Session type: onboarding, mood or quick_match")
	cmd.Flags().StringSliceVar(&so.contentTypes, "content-types", nil, "Comma-separated content types (movie,tv)")
	cmd.Flags().StringVar(&so.mood, "mood", "{}", "Mood input as a JSON object")
	cmd.Flags().BoolVar(&so.stream, "stream", false, "Print NDJSON events instead of the final session")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

func runSession(ctx context.Context, runner sessionRunner, userID string, so *sessionOptions, w io.Writer) error {
	mood := map[string]any{}
	if strings.TrimSpace(so.mood) != "" {
		if err := json.Unmarshal([]byte(so.mood), &mood); err != nil {
			return fmt.Errorf("--mood is not a JSON object: %w", err)
		}
	}
	req := recommend.SessionRequest{
		UserID:       userID,
		ProfileID:    so.profileID,
		SessionType:  models.SessionType(so.sessionType),
		MoodInput:    mood,
		ContentTypes: recommend.ParseContentTypes(so.contentTypes, mood),
	}

	if so.stream {
		return runner.StreamSession(ctx, req, ndjsonSink{enc: json.NewEncoder(w)})
	}
	resp, err := runner.CreateSession(ctx, req)
	if err != nil {
		return err
	}
	return writeJSON(w, resp)
}
