/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/jfmyers9/stylus/internal/auth"
	"github.com/jfmyers9/stylus/internal/config"
	"github.com/jfmyers9/stylus/pkg/spotify"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stylus",
	Short: "Spotify companion for the command line",
	Long: `stylus is a Spotify companion for the command line.

It runs as a background daemon that watches Spotify playback and keeps
a local listening history, reconciled against the account's
recently-played feed.

It also provides commands to control playback, search the catalog, and
query the currently playing track, useful for displaying in tmux status
lines or other status bars.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags can be added here if needed
}

// clientFromConfig builds an authenticated API client from the stored token,
// refreshing and persisting it through the config file as needed.
func clientFromConfig(cfg *config.Config) (*spotify.Client, error) {
	ctx := context.Background()

	source, err := auth.TokenSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("not authenticated, run 'stylus auth' first: %w", err)
	}

	tok, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh access token: %w", err)
	}

	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = spotify.DefaultTimeout

	return spotify.NewClient(spotify.Config{
		Token:      tok.AccessToken,
		HTTPClient: httpClient,
		// Stay under the API's burst limits; the daemon polls every few
		// seconds on top of whatever commands run alongside it
		Limiter: rate.NewLimiter(rate.Limit(10), 10),
	})
}
