package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/stylus/internal/config"
	"github.com/jfmyers9/stylus/internal/watcher"
)

var (
	daemonLogFile  string
	daemonLogLevel string
	daemonDataDir  string
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the listening history daemon",
	Long: `Run the daemon that watches Spotify playback and records listening history.

The daemon will:
- Poll the Spotify Web API every few seconds to detect track changes
- Track playback time and handle pause/resume correctly
- Record plays to the local history once they pass the threshold (50% or 4 minutes)
- Periodically reconcile against the account's recently-played feed
- Publish Discord rich presence when discord.app_id is configured
- Handle graceful shutdown on SIGINT/SIGTERM

The daemon runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file (useful for launchd).`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	// Command-line flags
	daemonCmd.Flags().StringVar(&daemonLogFile, "log-file", "", "Log file path (default: stderr)")
	daemonCmd.Flags().StringVar(&daemonLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	daemonCmd.Flags().StringVar(&daemonDataDir, "data-dir", "", "Data directory for state and history (default: ~/.local/share/stylus)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Validate Spotify credentials
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" || cfg.Spotify.RefreshToken == "" {
		return fmt.Errorf("Spotify credentials not configured. Run 'stylus auth' first")
	}

	// Set up logging
	logger := setupLogger(daemonLogFile, daemonLogLevel)

	logger.Info().
		Str("version", version).
		Msg("Starting stylus daemon")

	// Determine data directory
	dataDir := daemonDataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	// Ensure data directory exists
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	logger.Info().Str("data_dir", dataDir).Msg("Using data directory")

	// Create the API client, refreshing tokens through the config file
	client, err := clientFromConfig(cfg)
	if err != nil {
		return err
	}

	// Create watcher config
	watcherCfg := watcher.Config{
		PollInterval:    time.Duration(cfg.PollInterval) * time.Second,
		StateFile:       filepath.Join(dataDir, "state.json"),
		HistoryDB:       cfg.HistoryDB,
		SyncInterval:    time.Duration(cfg.HistorySyncInterval) * time.Second,
		RetentionPeriod: time.Duration(cfg.HistoryRetentionDays) * 24 * time.Hour,
		DiscordAppID:    cfg.DiscordAppID,
	}

	// Create watcher
	w, err := watcher.New(watcherCfg, client, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Run watcher (blocks until shutdown signal)
	if err := w.Run(); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	// Graceful shutdown
	if err := w.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	logger.Info().Msg("Daemon stopped")
	return nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	// Parse log level
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	// Set up output
	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	// Create logger
	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
