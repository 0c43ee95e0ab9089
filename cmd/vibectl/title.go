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

	"github.com/spf13/cobra"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/models"
)

// titleReport is what "vibectl title" prints.
type titleReport struct {
	Title     *models.MediaTitle    `json:"title"`
	Region    string                `json:"region"`
	Providers models.WatchProviders `json:"providers"`
}

// titleResolver is satisfied by *recommend.Resolver.
type titleResolver interface {
	GetOrCreate(ctx context.Context, tmdbID int64, ct models.ContentType, fallbackTitle, region string) (*models.MediaTitle, models.WatchProviders)
}

func newTitleCmd(opts *rootOptions) *cobra.Command {
	var (
		contentType string
		tmdbID      int64
		region      string
	)
	cmd := &cobra.Command{
		Use:   "title",
		Short: "Get or create one canonical title and show its providers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ct, ok := models.ParseContentType(contentType)
			if !ok {
				return fmt.Errorf("--type must be movie or tv, got %q", contentType)
			}
			e, err := openEnv(opts)
			if err != nil {
				return err
			}
			defer e.close()
			orch, err := e.orchestrator()
			if err != nil {
				return err
			}
			if region == "" {
				region = e.cfg.Recommend.DefaultRegion
			}
			return printTitle(cmd.Context(), orch.Resolver(), tmdbID, ct, region, out(cmd))
		},
	}
	cmd.Flags().StringVar(&contentType, "type", string(models.ContentMovie), "Content type: movie or tv")
	cmd.Flags().Int64Var(&tmdbID, "tmdb-id", 0, "TMDB id")
	cmd.Flags().StringVar(&region, "region", "", "Two-letter region (default: RECOMMEND_DEFAULT_REGION)")
	_ = cmd.MarkFlagRequired("tmdb-id")
	return cmd
}

func printTitle(ctx context.Context, res titleResolver, tmdbID int64, ct models.ContentType, region string, w io.Writer) error {
	region = strings.ToUpper(region)
	row, providers := res.GetOrCreate(ctx, tmdbID, ct, "", region)
	if row == nil {
		return fmt.Errorf("title %s could not be resolved", models.ProviderKey(ct, tmdbID))
	}
	return writeJSON(w, titleReport{Title: row, Region: region, Providers: providers})
}
