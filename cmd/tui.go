package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jfmyers9/stylus/internal/config"
	"github.com/jfmyers9/stylus/internal/tui"
	"github.com/jfmyers9/stylus/internal/watcher"
)

var tuiLogFile string

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Display a terminal UI for now playing",
	Long: `Display a terminal-based user interface showing the currently playing
Spotify track with real-time updates.

The TUI runs the same playback watcher as the daemon, so plays made
while it is open are recorded to the listening history. There is no
need to run both at once.

The TUI includes:
- Now playing display with track name, artist, and album
- Progress bar showing playback position
- Recording status for the listening history
- Recently played tracks from this session

Keys: q quits, space toggles play/pause, n skips ahead, p goes back.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().StringVar(&tuiLogFile, "log-file", "", "Log file path (default: logging disabled)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" || cfg.Spotify.RefreshToken == "" {
		return fmt.Errorf("Spotify credentials not configured. Run 'stylus auth' first")
	}

	// The TUI owns the terminal, so logs are dropped unless a file is given
	logger := zerolog.Nop()
	if tuiLogFile != "" {
		logger = setupLogger(tuiLogFile, "info")
	}

	client, err := clientFromConfig(cfg)
	if err != nil {
		return err
	}

	watcherCfg := watcher.Config{
		PollInterval:    time.Duration(cfg.PollInterval) * time.Second,
		StateFile:       filepath.Join(config.DefaultDataDir(), "state.json"),
		HistoryDB:       cfg.HistoryDB,
		SyncInterval:    time.Duration(cfg.HistorySyncInterval) * time.Second,
		RetentionPeriod: time.Duration(cfg.HistoryRetentionDays) * 24 * time.Hour,
		DiscordAppID:    cfg.DiscordAppID,
	}

	w, err := watcher.New(watcherCfg, client, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Subscribe before the watcher starts so no updates are missed
	updates := w.Updates()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- w.RunContext(ctx)
	}()

	app := tui.New()
	app.SetPlayer(client.Player())

	runErr := app.Run(ctx, updates, w.TrackState, w.PlayedDuration)

	// The UI is gone; wind the watcher down
	cancel()
	<-done

	if err := w.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down watcher: %w", err)
	}

	return runErr
}
