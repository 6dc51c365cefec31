package watcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/stylus/pkg/spotify"
)

// PlayState represents the observed playback state
type PlayState int

const (
	StateStopped PlayState = iota // No track loaded or no active device
	StatePlaying                  // Track is currently playing
	StatePaused                   // Track is paused
)

// String returns a human-readable representation of the PlayState
func (s PlayState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// TrackInfo is the flattened snapshot of a playing track
type TrackInfo struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Artist   string        `json:"artist"`
	Album    string        `json:"album"`
	ArtURL   string        `json:"art_url,omitempty"`
	Duration time.Duration `json:"duration"`
}

// PlaybackUpdate represents one observation of the player
type PlaybackUpdate struct {
	Track    *TrackInfo    // Current track (nil if stopped/no track)
	State    PlayState     // Playback state at observation time
	Position time.Duration // Playback progress at observation time
	Device   string        // Name of the active device, when known
	Err      error         // Error from the player
}

// Poller polls the Spotify player at regular intervals
type Poller struct {
	player   *spotify.Player
	interval time.Duration
	logger   zerolog.Logger
}

// NewPoller creates a new Poller instance
func NewPoller(player *spotify.Player, interval time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		player:   player,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Run starts the polling loop and sends updates to the provided channel
// Blocks until context is cancelled
func (p *Poller) Run(ctx context.Context, updates chan<- PlaybackUpdate) error {
	p.logger.Info().
		Dur("interval", p.interval).
		Msg("Starting poller")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	p.poll(ctx, updates)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx, updates)
		}
	}
}

// poll queries the player and sends an update
func (p *Poller) poll(ctx context.Context, updates chan<- PlaybackUpdate) {
	state, err := p.player.State(ctx)
	if err != nil {
		// No active device means nothing is playing, not a failure
		if errors.Is(err, spotify.ErrNoActiveDevice) {
			select {
			case updates <- PlaybackUpdate{State: StateStopped}:
			case <-ctx.Done():
			}
			return
		}

		p.logger.Debug().Err(err).Msg("Error getting playback state")
		// Send error update (non-blocking)
		select {
		case updates <- PlaybackUpdate{Err: err}:
		case <-ctx.Done():
		}
		return
	}

	update := PlaybackUpdate{State: StateStopped, Position: state.Progress, Device: state.Device.Name}
	if state.Track != nil {
		info, err := trackInfo(ctx, state.Track)
		if err != nil {
			select {
			case updates <- PlaybackUpdate{Err: err}:
			case <-ctx.Done():
			}
			return
		}
		update.Track = info
		if state.Playing {
			update.State = StatePlaying
		} else {
			update.State = StatePaused
		}
	}

	// Send update (non-blocking)
	select {
	case updates <- update:
		if update.Track != nil {
			p.logger.Debug().
				Str("track", update.Track.Name).
				Str("artist", update.Track.Artist).
				Str("state", update.State.String()).
				Msg("Poll update")
		}
	case <-ctx.Done():
	}
}

// trackInfo flattens an API track into the fields the watcher records.
// The playback snapshot embeds the full track, so the accessors resolve
// without extra requests; artist and album fall back to empty for local
// files that carry no catalog data.
func trackInfo(ctx context.Context, track *spotify.Track) (*TrackInfo, error) {
	if track == nil {
		return nil, fmt.Errorf("no track")
	}
	name, err := track.Name(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve track name: %w", err)
	}

	info := &TrackInfo{ID: track.ID(), Name: name}

	if duration, err := track.Duration(ctx); err == nil {
		info.Duration = duration
	}
	if artists, err := track.Artists(ctx); err == nil && len(artists) > 0 {
		if artist, err := artists[0].Name(ctx); err == nil {
			info.Artist = artist
		}
	}
	if album, err := track.Album(ctx); err == nil && album != nil {
		if albumName, err := album.Name(ctx); err == nil {
			info.Album = albumName
		}
		if images, err := album.Images(ctx); err == nil && len(images) > 0 {
			info.ArtURL = images[0].URL
		}
	}

	return info, nil
}
