package watcher

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/stylus/internal/discord"
	"github.com/jfmyers9/stylus/internal/history"
	"github.com/jfmyers9/stylus/pkg/spotify"
)

// Config holds watcher configuration
type Config struct {
	PollInterval    time.Duration // How often to poll the player
	StateFile       string        // Path to state persistence file
	HistoryDB       string        // Path to listening history database
	SyncInterval    time.Duration // How often to pull recently-played from the API
	RetentionPeriod time.Duration // How long plays are kept (0 keeps forever)
	DiscordAppID    string        // Discord application id for rich presence (empty disables)
}

// Watcher coordinates the player poller, state tracking, and history recording
type Watcher struct {
	config Config
	client *spotify.Client
	store  *history.Store
	state  *State
	poller *Poller
	logger zerolog.Logger

	uiUpdates chan PlaybackUpdate // optional mirror of updates for a UI

	presence   *discord.Presence
	presenceCh chan discord.TrackUpdate
}

// New creates a new Watcher instance
func New(cfg Config, client *spotify.Client, logger zerolog.Logger) (*Watcher, error) {
	// Create state
	state, err := NewState(cfg.StateFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create state: %w", err)
	}

	// Create history store
	store, err := history.NewStore(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create history store: %w", err)
	}

	// Create poller
	poller := NewPoller(client.Player(), cfg.PollInterval, logger)

	w := &Watcher{
		config: cfg,
		client: client,
		store:  store,
		state:  state,
		poller: poller,
		logger: logger.With().Str("component", "watcher").Logger(),
	}

	if cfg.DiscordAppID != "" {
		w.presence = discord.New(cfg.DiscordAppID, logger)
		w.presenceCh = make(chan discord.TrackUpdate, 10)
	}

	return w, nil
}

// Updates returns a channel mirroring playback updates for a UI.
// Must be called before Run.
func (w *Watcher) Updates() <-chan PlaybackUpdate {
	if w.uiUpdates == nil {
		w.uiUpdates = make(chan PlaybackUpdate, 10)
	}
	return w.uiUpdates
}

// TrackState returns a snapshot of the current track state
func (w *Watcher) TrackState() TrackState {
	return w.state.GetState()
}

// PlayedDuration returns how long the current track has effectively played
func (w *Watcher) PlayedDuration() time.Duration {
	return w.state.GetPlayedDuration()
}

// Run starts the watcher and blocks until shutdown signal received
func (w *Watcher) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		<-sigChan
		w.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		// Second signal forces exit
		<-sigChan
		w.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	return w.RunContext(ctx)
}

// RunContext runs the watcher until the context is cancelled. Used when the
// caller owns shutdown, for example the TUI.
func (w *Watcher) RunContext(ctx context.Context) error {
	if err := w.run(ctx); err != nil && err != context.Canceled {
		return err
	}

	return nil
}

// run is the main watcher loop
func (w *Watcher) run(ctx context.Context) error {
	w.logger.Info().Msg("Starting watcher")

	var wg sync.WaitGroup
	updates := make(chan PlaybackUpdate, 10)

	// Start poller
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.poller.Run(ctx, updates); err != nil && err != context.Canceled {
			w.logger.Error().Err(err).Msg("Poller error")
		}
	}()

	// Start recently-played sync
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.syncLoop(ctx); err != nil && err != context.Canceled {
			w.logger.Error().Err(err).Msg("Sync error")
		}
	}()

	// Start record checker
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.checkRecordEligibility(ctx)
	}()

	// Start Discord rich presence when configured
	if w.presence != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.presence.Run(ctx, w.presenceCh)
		}()
	}

	// Main loop: handle playback updates
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.handleUpdates(ctx, updates)
	}()

	// Wait for all goroutines to finish
	wg.Wait()

	w.logger.Info().Msg("Watcher stopped")
	return nil
}

// handleUpdates processes playback updates from the poller
func (w *Watcher) handleUpdates(ctx context.Context, updates <-chan PlaybackUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			// Mirror for the UI regardless of outcome, without blocking
			if w.uiUpdates != nil {
				select {
				case w.uiUpdates <- update:
				default:
				}
			}
			if w.presenceCh != nil {
				select {
				case w.presenceCh <- presenceUpdate(update):
				default:
				}
			}

			if update.Err != nil {
				// Log error but continue
				w.logger.Debug().Err(update.Err).Msg("Playback update error")
				continue
			}

			if err := w.handleUpdate(update); err != nil {
				w.logger.Error().Err(err).Msg("Failed to handle playback update")
			}
		}
	}
}

// presenceUpdate flattens a playback update for the rich presence loop
func presenceUpdate(update PlaybackUpdate) discord.TrackUpdate {
	u := discord.TrackUpdate{
		Playing:  update.State == StatePlaying,
		Position: update.Position,
		Err:      update.Err,
	}
	if update.Track != nil {
		u.Name = update.Track.Name
		u.Artist = update.Track.Artist
		u.Album = update.Track.Album
		u.ArtURL = update.Track.ArtURL
		u.Duration = update.Track.Duration
	}
	return u
}

// handleUpdate processes a single playback update
func (w *Watcher) handleUpdate(update PlaybackUpdate) error {
	currentState := w.state.GetState()

	// Nothing playing - reset state if needed
	if update.Track == nil || update.State == StateStopped {
		if currentState.Track != nil {
			w.logger.Info().Msg("Playback stopped")
			return w.state.Reset()
		}
		return nil
	}

	// Check if track changed
	trackChanged := currentState.Track == nil ||
		!isSameTrack(currentState.Track, update.Track)

	if trackChanged {
		w.logger.Info().
			Str("track", update.Track.Name).
			Str("artist", update.Track.Artist).
			Msg("Track changed")

		return w.state.SetTrack(update.Track, update.State)
	}

	// Same track - update position
	return w.state.UpdatePosition(update.Track, update.State)
}

// checkRecordEligibility periodically checks if the current play counts yet
func (w *Watcher) checkRecordEligibility(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Second) // Check every 5 seconds
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.checkAndRecord(); err != nil {
				w.logger.Error().Err(err).Msg("Failed to check record eligibility")
			}
		}
	}
}

// checkAndRecord writes the current play to history once it crosses the
// recording threshold
func (w *Watcher) checkAndRecord() error {
	state := w.state.GetState()

	// No track or already recorded
	if state.Track == nil || state.Recorded {
		return nil
	}

	// Check if the play has crossed the threshold
	playedDuration := w.state.GetPlayedDuration()
	if !ShouldRecord(state.Track.Duration, playedDuration) {
		return nil
	}

	w.logger.Info().
		Str("track", state.Track.Name).
		Str("artist", state.Track.Artist).
		Dur("played", playedDuration).
		Msg("Recording play")

	ctx := context.Background()
	play := history.Play{
		TrackID:   state.Track.ID,
		TrackName: state.Track.Name,
		Artist:    state.Track.Artist,
		Album:     state.Track.Album,
		Duration:  state.Track.Duration,
		// Stamp the approximate start of the play so the row lines up with
		// what a later recently-played sync reports
		PlayedAt: time.Now().Add(-playedDuration),
		Source:   "watcher",
	}
	if _, err := w.store.RecordPlay(ctx, play); err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}

	// Mark as recorded in state
	if err := w.state.MarkRecorded(); err != nil {
		return fmt.Errorf("failed to mark recorded: %w", err)
	}

	return nil
}

// syncLoop periodically reconciles the store against the API's
// recently-played history, catching plays made on other devices or while
// the watcher was down
func (w *Watcher) syncLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.config.SyncInterval)
	defer ticker.Stop()

	// Sync immediately on start
	w.syncRecentlyPlayed()

	for {
		select {
		case <-ctx.Done():
			// Final sync before shutdown
			w.logger.Info().Msg("Running final history sync before shutdown")
			w.syncRecentlyPlayed()
			return ctx.Err()
		case <-ticker.C:
			w.syncRecentlyPlayed()
		}
	}
}

// syncRecentlyPlayed pulls the recently-played feed and records new plays
func (w *Watcher) syncRecentlyPlayed() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	inserted, err := SyncRecentlyPlayed(ctx, w.client, w.store, w.logger)
	if err != nil {
		w.logger.Warn().Err(err).Msg("History sync failed")
		return
	}

	if inserted > 0 {
		w.logger.Info().Int("count", inserted).Msg("Recorded plays from listening history")
	}
}

// SyncRecentlyPlayed reconciles the store against the account's
// recently-played feed and reports how many new plays were recorded. The
// daemon runs this on a timer; 'stylus history sync' runs it once.
func SyncRecentlyPlayed(ctx context.Context, client *spotify.Client, store *history.Store, logger zerolog.Logger) (int, error) {
	recent, err := client.Library().RecentlyPlayed(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch recently played: %w", err)
	}

	var plays []history.Play
	for _, entry := range recent {
		info, err := trackInfo(ctx, entry.Track)
		if err != nil {
			logger.Debug().Err(err).Msg("Skipping unresolvable history entry")
			continue
		}
		plays = append(plays, history.Play{
			TrackID:   info.ID,
			TrackName: info.Name,
			Artist:    info.Artist,
			Album:     info.Album,
			Duration:  info.Duration,
			PlayedAt:  entry.PlayedAt,
			Source:    "sync",
		})
	}

	inserted, err := store.RecordPlays(ctx, plays)
	if err != nil {
		return 0, fmt.Errorf("failed to record plays: %w", err)
	}
	return inserted, nil
}

// Shutdown gracefully shuts down the watcher
func (w *Watcher) Shutdown() error {
	w.logger.Info().Msg("Shutting down watcher")

	// Write any throttled state changes
	if err := w.state.Flush(); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to flush state")
	}

	// Prune old plays when a retention period is configured
	if w.config.RetentionPeriod > 0 {
		ctx := context.Background()
		if _, err := w.store.Prune(ctx, w.config.RetentionPeriod); err != nil {
			w.logger.Warn().Err(err).Msg("Failed to prune history")
		}
	}

	// Close history store
	if err := w.store.Close(); err != nil {
		return fmt.Errorf("failed to close history store: %w", err)
	}

	return nil
}
