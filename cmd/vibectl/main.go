// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

// Command vibectl is the VibeStream operator CLI. It reads the same
// configuration as the server and works directly against its store, so it
// must not run while the server holds the Badger directory lock.
//
//	vibectl seed --file fixtures.yaml
//	vibectl signals --profile <id>
//	vibectl session --profile <id> --type mood --stream
//	vibectl title --type movie --tmdb-id 27205 --region FR
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Utanium-Programming-Corporation/vibestream/internal/config"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/logging"
	"github.com/Utanium-Programming-Corporation/vibestream/internal/store"
)

// rootOptions are the persistent flags.
type rootOptions struct {
	storePath string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "vibectl",
		Short:         "Operate a VibeStream store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			logging.Init(logging.Config{Level: opts.logLevel, Format: "console"})
		},
	}
	root.PersistentFlags().StringVar(&opts.storePath, "store-path", "", "Badger directory (default: STORE_PATH)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")

	root.AddCommand(
		newSeedCmd(opts),
		newSignalsCmd(opts),
		newSessionCmd(opts),
		newTitleCmd(opts),
	)
	return root
}

// env is what a command runs against.
type env struct {
	cfg   *config.Config
	store *store.Store
}

// openEnv loads configuration and opens the store. The caller closes it.
func openEnv(opts *rootOptions) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.storePath != "" {
		cfg.Storage.Path = opts.storePath
		cfg.Storage.InMemory = false
	}
	st, err := store.Open(store.Options{Path: cfg.Storage.Path, InMemory: cfg.Storage.InMemory})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Storage.Path, err)
	}
	return &env{cfg: cfg, store: st}, nil
}

func (e *env) close() {
	if err := e.store.Close(); err != nil {
		logging.Error().Err(err).Msg("Error closing store")
	}
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
