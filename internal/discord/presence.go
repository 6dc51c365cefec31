package discord

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// TrackUpdate represents a playback state change.
// Mirrors the watcher's update shape to avoid import cycles.
type TrackUpdate struct {
	Name     string
	Artist   string
	Album    string
	ArtURL   string
	Playing  bool
	Position time.Duration
	Duration time.Duration
	Err      error
}

type rpcClient interface {
	SetActivity(Activity) error
	Close() error
}

// Presence manages Discord Rich Presence updates.
type Presence struct {
	appID   string
	logger  zerolog.Logger
	client  rpcClient
	connect func(string) (rpcClient, error)
	last    lastActivity
}

type lastActivity struct {
	name, artist, album string
	playing             bool
}

func New(appID string, logger zerolog.Logger) *Presence {
	return &Presence{
		appID:  appID,
		logger: logger.With().Str("component", "discord").Logger(),
		connect: func(appID string) (rpcClient, error) {
			return ipcConnect(appID)
		},
	}
}

// Run consumes TrackUpdates and sets Discord Rich Presence.
// Connects lazily on first playing track. If Discord isn't
// running, logs the error and retries on the next update.
func (p *Presence) Run(ctx context.Context, updates <-chan TrackUpdate) {
	for {
		select {
		case <-ctx.Done():
			p.close()
			return
		case u, ok := <-updates:
			if !ok {
				p.close()
				return
			}
			if u.Err != nil {
				continue
			}
			p.handleTrack(u)
		}
	}
}

func (p *Presence) handleTrack(u TrackUpdate) {
	if u.Name == "" || !u.Playing {
		if p.last.playing {
			p.clearActivity()
			p.last = lastActivity{}
		}
		return
	}

	cur := lastActivity{
		name: u.Name, artist: u.Artist,
		album: u.Album, playing: true,
	}
	if cur == p.last {
		return
	}

	if err := p.ensureConnected(); err != nil {
		p.logger.Warn().Err(err).Msg("Discord not available")
		return
	}

	start := time.Now().Add(-u.Position)
	end := start.Add(u.Duration)
	startUnix := start.Unix()
	endUnix := end.Unix()

	err := p.client.SetActivity(Activity{
		Type:    2, // Listening
		Name:    "Spotify",
		Details: u.Name,
		State:   "by " + u.Artist,
		Timestamps: &Timestamps{
			Start: &startUnix,
			End:   &endUnix,
		},
		Assets: &Assets{
			LargeImage: u.ArtURL,
			LargeText:  u.Album,
			SmallImage: "stylus",
			SmallText:  "stylus",
		},
	})
	if err != nil {
		p.logger.Warn().Err(err).Msg("Failed to set activity")
		p.close()
		return
	}
	p.last = cur
}

func (p *Presence) ensureConnected() error {
	if p.client != nil {
		return nil
	}
	client, err := p.connect(p.appID)
	if err != nil {
		return err
	}
	p.logger.Info().Msg("Connected to Discord")
	p.client = client
	return nil
}

func (p *Presence) clearActivity() {
	if p.client == nil {
		return
	}
	if err := p.client.SetActivity(Activity{}); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to clear activity")
		p.close()
	}
}

func (p *Presence) close() {
	if p.client == nil {
		return
	}
	_ = p.client.Close()
	p.client = nil
}
