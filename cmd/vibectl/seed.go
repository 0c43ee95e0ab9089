// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
)

// fixtures is the seed file layout. Interactions name their title by
// provider key; titles listed in the file are created first.
type fixtures struct {
	Users        []userFixture        `yaml:"users"`
	Profiles     []profileFixture     `yaml:"profiles"`
	Preferences  []preferencesFixture `yaml:"preferences"`
	Titles       []titleFixture       `yaml:"titles"`
	Interactions []interactionFixture `yaml:"interactions"`
}

type userFixture struct {
	ID     string `yaml:"id"`
	Email  string `yaml:"email"`
	Region string `yaml:"region"`
}

type profileFixture struct {
	ID          string `yaml:"id"`
	UserID      string `yaml:"user_id"`
	Name        string `yaml:"name"`
	CountryCode string `yaml:"country_code"`
}

type preferencesFixture struct {
	ProfileID string         `yaml:"profile_id"`
	Answers   map[string]any `yaml:"answers"`
}

type titleFixture struct {
	TMDBID   int64    `yaml:"tmdb_id"`
	Type     string   `yaml:"type"`
	Title    string   `yaml:"title"`
	Genres   []string `yaml:"genres"`
	Year     int      `yaml:"year"`
	Director string   `yaml:"director"`
	Starring []string `yaml:"starring"`
}

type interactionFixture struct {
	ProfileID       string    `yaml:"profile_id"`
	TMDBID          int64     `yaml:"tmdb_id"`
	Type            string    `yaml:"type"`
	Action          string    `yaml:"action"`
	Rating          *int      `yaml:"rating"`
	CreatedAt       time.Time `yaml:"created_at"`
	QuickTags       []string  `yaml:"quick_tags"`
	WouldWatchAgain *bool     `yaml:"would_watch_again"`
	FeedbackText    string    `yaml:"feedback_text"`
	Notes           string    `yaml:"notes"`
}

// seedStore is the store surface seeding writes through.
type seedStore interface {
	PutAppUser(ctx context.Context, u *models.AppUser) error
	PutProfile(ctx context.Context, p *models.Profile) error
	PutPreferences(ctx context.Context, p *models.ProfilePreferences) error
	GetTitleByExternal(ctx context.Context, c models.ContentType, tmdbID int64) (*models.MediaTitle, error)
	InsertTitle(ctx context.Context, t *models.MediaTitle) error
	AddInteraction(ctx context.Context, in *models.Interaction) error
}

type seedCounts struct {
	Users, Profiles, Preferences, Titles, Interactions int
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var (
		file  string
		reset bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load users, profiles, titles and interactions from YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()

			if reset {
				if err := e.store.DropAll(); err != nil {
					return fmt.Errorf("reset store: %w", err)
				}
			}
			counts, err := seed(cmd.Context(), e.store, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(out(cmd), "seeded %d users, %d profiles, %d preferences, %d titles, %d interactions\n",
				counts.Users, counts.Profiles, counts.Preferences, counts.Titles, counts.Interactions)
			return err
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Fixture YAML file")
	cmd.Flags().BoolVar(&reset, "reset", false, "Delete every record before loading")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// seed decodes fixtures from r and writes them in dependency order.
// Existing titles are reused, so seeding is repeatable.
func seed(ctx context.Context, st seedStore, r io.Reader) (seedCounts, error) {
	var fx fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return seedCounts{}, fmt.Errorf("decode fixtures: %w", err)
	}

	var n seedCounts
	for _, u := range fx.Users {
		user := &models.AppUser{ID: u.ID, Email: u.Email, Region: optional(u.Region)}
		if err := st.PutAppUser(ctx, user); err != nil {
			return n, fmt.Errorf("user %s: %w", u.ID, err)
		}
		n.Users++
	}
	for _, p := range fx.Profiles {
		profile := &models.Profile{ID: p.ID, UserID: p.UserID, Name: p.Name, CountryCode: optional(p.CountryCode)}
		if err := st.PutProfile(ctx, profile); err != nil {
			return n, fmt.Errorf("profile %s: %w", p.ID, err)
		}
		n.Profiles++
	}
	for _, p := range fx.Preferences {
		if err := st.PutPreferences(ctx, &models.ProfilePreferences{ProfileID: p.ProfileID, Answers: p.Answers}); err != nil {
			return n, fmt.Errorf("preferences %s: %w", p.ProfileID, err)
		}
		n.Preferences++
	}

	titleIDs := make(map[string]string, len(fx.Titles))
	for _, t := range fx.Titles {
		row, created, err := ensureTitle(ctx, st, t)
		if err != nil {
			return n, fmt.Errorf("title %s:%d: %w", t.Type, t.TMDBID, err)
		}
		titleIDs[row.Key()] = row.ID
		if created {
			n.Titles++
		}
	}

	for i, in := range fx.Interactions {
		ct, ok := models.ParseContentType(in.Type)
		if !ok {
			return n, fmt.Errorf("interaction %d: unknown type %q", i, in.Type)
		}
		titleID, ok := titleIDs[models.ProviderKey(ct, in.TMDBID)]
		if !ok {
			existing, err := st.GetTitleByExternal(ctx, ct, in.TMDBID)
			if err != nil {
				return n, fmt.Errorf("interaction %d: title %s:%d: %w", i, ct, in.TMDBID, err)
			}
			titleID = existing.ID
		}
		rec := &models.Interaction{
			ProfileID: in.ProfileID,
			TitleID:   titleID,
			Action:    models.Action(strings.ToLower(in.Action)),
			Rating:    in.Rating,
			CreatedAt: in.CreatedAt,
			Extra: models.InteractionExtra{
				QuickTags:       in.QuickTags,
				WouldWatchAgain: in.WouldWatchAgain,
				FeedbackText:    in.FeedbackText,
				Notes:           in.Notes,
			},
		}
		if err := st.AddInteraction(ctx, rec); err != nil {
			return n, fmt.Errorf("interaction %d: %w", i, err)
		}
		n.Interactions++
	}
	return n, nil
}

// ensureTitle returns the stored title for t, inserting it when absent.
func ensureTitle(ctx context.Context, st seedStore, t titleFixture) (*models.MediaTitle, bool, error) {
	ct, ok := models.ParseContentType(t.Type)
	if !ok {
		return nil, false, fmt.Errorf("unknown type %q", t.Type)
	}
	if existing, err := st.GetTitleByExternal(ctx, ct, t.TMDBID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	row := &models.MediaTitle{
		TMDBID:      t.TMDBID,
		ContentType: ct,
		Title:       t.Title,
		Genres:      t.Genres,
		Director:    optional(t.Director),
		Starring:    t.Starring,
	}
	if t.Year > 0 {
		year := t.Year
		row.Year = &year
	}
	if err := st.InsertTitle(ctx, row); err != nil {
		return nil, false, err
	}
	return row, true, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
