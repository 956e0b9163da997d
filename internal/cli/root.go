// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cli contains the mailcraftctl commands. They drive the same
// client core an editor front end would: identity for the session,
// editor for drafts and collection for saved templates.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mailcraft/internal/apiclient"
	"mailcraft/internal/collection"
	"mailcraft/internal/credential"
	"mailcraft/internal/identity"
)

// Environment variables read for flag defaults.
const (
	EnvAPIURL    = "MAILCRAFT_API_URL"
	EnvTokenFile = "MAILCRAFT_TOKEN_FILE"
)

// DefaultAPIURL is used when neither --api-url nor MAILCRAFT_API_URL is set.
const DefaultAPIURL = "http://localhost:8080/api"

// app holds the per-invocation client core, built in PersistentPreRunE.
type app struct {
	apiURL    string
	tokenFile string
	verbose   bool

	logger  *slog.Logger
	client  *apiclient.Client
	session *identity.Session
	view    *collection.View
}

// NewRootCommand builds the mailcraftctl command tree.
func NewRootCommand(version string) *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mailcraftctl",
		Short: "Email template editor client",
		Long: `mailcraftctl signs in to a mailcraft server and manages email templates.

Example usage:
  mailcraftctl signup --name Ana --email ana@example.com --password Secret1
  mailcraftctl new --set config.title="Spring Sale" --image header.png
  mailcraftctl list
  mailcraftctl download <id> -o ./out`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", envOr(EnvAPIURL, DefaultAPIURL), "API base URL")
	root.PersistentFlags().StringVar(&a.tokenFile, "token-file", envOr(EnvTokenFile, defaultTokenFile()), "where the session token is kept")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		a.signupCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.listCmd(),
		a.showCmd(),
		a.newCmd(),
		a.deleteCmd(),
		a.renderCmd(),
		a.downloadCmd(),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	slot, err := credential.OpenFile(a.tokenFile)
	if err != nil {
		return fmt.Errorf("loading credential: %w", err)
	}

	a.client = apiclient.New(a.apiURL, slot, apiclient.WithLogger(a.logger))
	a.session = identity.New(a.client, slot)
	a.view = collection.New(a.client)

	a.logger.Debug("client ready", "api_url", a.apiURL, "token_file", a.tokenFile)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".mailcraft-token"
	}
	return filepath.Join(dir, "mailcraft", "token")
}
