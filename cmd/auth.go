/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/stylus/internal/auth"
	"github.com/jfmyers9/stylus/internal/config"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Spotify",
	Long: `Authenticate with Spotify to enable playback control and history.

This command will guide you through the Spotify authorization process:
1. You'll be prompted to enter your Spotify app's Client ID and Secret
2. A browser URL will be provided for you to authorize the application
3. After authorization, tokens will be saved to your config file

You can create an app and get credentials at:
https://developer.spotify.com/dashboard

The app's redirect URI must be set to http://127.0.0.1:<port>/callback
(port 8888 unless spotify.redirect_port is changed).`,
	RunE: runAuth,
}

func init() {
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Step 1: Get app credentials
	fmt.Println("Spotify Authorization")
	fmt.Println("=====================")
	fmt.Println()
	fmt.Println("You can create an app at: https://developer.spotify.com/dashboard")
	fmt.Println()

	// Check if we already have credentials
	if cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		fmt.Printf("Found existing app credentials.\n")
		fmt.Printf("Client ID: %s\n", cfg.Spotify.ClientID)
		fmt.Print("\nUse existing credentials? [Y/n]: ")
		response, err := reader.ReadString('\n')
		if err != nil {
			response = "y"
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "" && response != "y" && response != "yes" {
			// User wants to enter new credentials
			cfg.Spotify.ClientID = ""
			cfg.Spotify.ClientSecret = ""
		}
	}

	// Prompt for client id if not set
	if cfg.Spotify.ClientID == "" {
		fmt.Print("Enter your Spotify Client ID: ")
		clientID, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read client id: %w", err)
		}
		cfg.Spotify.ClientID = strings.TrimSpace(clientID)
	}

	// Prompt for client secret if not set
	if cfg.Spotify.ClientSecret == "" {
		fmt.Print("Enter your Spotify Client Secret: ")
		clientSecret, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read client secret: %w", err)
		}
		cfg.Spotify.ClientSecret = strings.TrimSpace(clientSecret)
	}

	// Validate inputs
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		return fmt.Errorf("client id and secret are required")
	}

	// Step 2: Start the authorization flow
	flow := auth.NewFlow(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Spotify.RedirectPort)

	// Step 3: Direct user to authorize
	fmt.Println("\nPlease visit this URL to authorize stylus:")
	fmt.Printf("\n  %s\n\n", flow.URL())
	fmt.Println("Waiting for the authorization callback...")

	// Step 4: Wait for the callback with the authorization code
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	token, err := flow.Wait(ctx)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	// Step 5: Save tokens to config
	if err := auth.SaveToken(cfg, token); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	configPath := config.GetConfigDir()
	fmt.Printf("\n✓ Authorization successful!\n")
	fmt.Printf("✓ Tokens saved to %s/config.yaml\n", configPath)
	fmt.Println("\nYou can now use 'stylus daemon' to start tracking your listening history.")

	return nil
}
