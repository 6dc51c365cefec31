package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Player controls playback for the user the client's token belongs to.
//
// Commands take a device id; the empty string targets the currently active
// device, which is what you want most of the time. Commands against a user
// with no active device fail with ErrNoActiveDevice, which callers usually
// treat as non-fatal.
//
// Playback commands are asynchronous on Spotify's side. Use the getters to
// confirm that an issued command took effect.
type Player struct {
	client *Client
}

// Device is one playback device registered to the user.
type Device struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"` // "Computer", "Smartphone", "Speaker", ...
	Active         bool   `json:"is_active"`
	PrivateSession bool   `json:"is_private_session"`
	Restricted     bool   `json:"is_restricted"`
	VolumePercent  int    `json:"volume_percent"`
}

// Context identifies what a playing track is playing from.
type Context struct {
	Kind ResourceKind
	ID   string
	URI  string
}

// PlaybackState is a snapshot of the user's playback.
type PlaybackState struct {
	Device    Device
	Shuffle   bool
	Repeat    RepeatMode
	Progress  time.Duration
	Playing   bool
	Track     *Track   // nil when nothing is loaded
	Context   *Context // nil when playing outside a context
	Timestamp time.Time
}

// State fetches the current playback snapshot. When the user has no active
// device the API reports no content and State returns ErrNoActiveDevice.
func (p *Player) State(ctx context.Context) (*PlaybackState, error) {
	query := url.Values{}
	query.Set("market", MarketFromToken)

	body, status, err := p.client.request(ctx, http.MethodGet, endpointPlayer, query, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent || body == nil {
		return nil, fmt.Errorf("%w: playback state unavailable", ErrNoActiveDevice)
	}

	var aux struct {
		Device       Device `json:"device"`
		ShuffleState bool   `json:"shuffle_state"`
		RepeatState  string `json:"repeat_state"`
		ProgressMS   int    `json:"progress_ms"`
		IsPlaying    bool   `json:"is_playing"`
		Item         record `json:"item"`
		Context      *struct {
			Type string `json:"type"`
			URI  string `json:"uri"`
		} `json:"context"`
		Timestamp int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(body, &aux); err != nil {
		return nil, fmt.Errorf("spotify: decoding playback state: %w", err)
	}

	state := &PlaybackState{
		Device:    aux.Device,
		Shuffle:   aux.ShuffleState,
		Repeat:    RepeatMode(aux.RepeatState),
		Progress:  time.Duration(aux.ProgressMS) * time.Millisecond,
		Playing:   aux.IsPlaying,
		Timestamp: time.UnixMilli(aux.Timestamp),
	}
	if aux.Item != nil {
		state.Track = newTrack(p.client, aux.Item)
	}
	if aux.Context != nil {
		uri := aux.Context.URI
		state.Context = &Context{
			Kind: ResourceKind(aux.Context.Type),
			ID:   uri[strings.LastIndex(uri, ":")+1:],
			URI:  uri,
		}
	}
	return state, nil
}

// IsPlaying reports whether playback is currently playing. Fails with
// ErrNoActiveDevice when there is no active device.
func (p *Player) IsPlaying(ctx context.Context) (bool, error) {
	state, err := p.State(ctx)
	if err != nil {
		return false, err
	}
	return state.Playing, nil
}

// IsPaused reports whether playback is currently paused. Fails with
// ErrNoActiveDevice when there is no active device.
func (p *Player) IsPaused(ctx context.Context) (bool, error) {
	playing, err := p.IsPlaying(ctx)
	return !playing, err
}

// CurrentlyPlaying returns the track loaded in the player, or nil when
// nothing is playing or there is no active device.
func (p *Player) CurrentlyPlaying(ctx context.Context) (*Track, error) {
	state, err := p.State(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveDevice) {
			return nil, nil
		}
		return nil, err
	}
	return state.Track, nil
}

// PlaybackContext returns the album, artist or playlist playback is running
// inside, or nil when there is no context or no active device. The returned
// entity starts out with only its id; accessors load the rest on demand.
func (p *Player) PlaybackContext(ctx context.Context) (Entity, error) {
	state, err := p.State(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveDevice) {
			return nil, nil
		}
		return nil, err
	}
	if state.Context == nil {
		return nil, nil
	}

	rec := record{"id": json.RawMessage(strconv.Quote(state.Context.ID))}
	switch state.Context.Kind {
	case KindAlbum:
		return newAlbum(p.client, rec), nil
	case KindArtist:
		return newArtist(p.client, rec), nil
	case KindPlaylist:
		return newPlaylist(p.client, rec), nil
	default:
		return nil, fmt.Errorf("spotify: unrecognized playback context %q", state.Context.URI)
	}
}

// ActiveDevice returns the device playback is running on, or nil when no
// device is active.
func (p *Player) ActiveDevice(ctx context.Context) (*Device, error) {
	state, err := p.State(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveDevice) {
			return nil, nil
		}
		return nil, err
	}
	device := state.Device
	if device.ID == "" {
		return nil, nil
	}
	return &device, nil
}

// Devices returns all devices currently available for playback.
func (p *Player) Devices(ctx context.Context) ([]Device, error) {
	body, _, err := p.client.request(ctx, http.MethodGet, endpointPlayerDevices, nil, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Devices []Device `json:"devices"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("spotify: decoding devices: %w", err)
	}
	return envelope.Devices, nil
}

// Volume returns the active device's volume, 0 to 100. Fails with
// ErrNoActiveDevice when there is no active device.
func (p *Player) Volume(ctx context.Context) (int, error) {
	state, err := p.State(ctx)
	if err != nil {
		return 0, err
	}
	return state.Device.VolumePercent, nil
}

// Shuffle reports whether shuffle is enabled. Fails with ErrNoActiveDevice
// when there is no active device.
func (p *Player) Shuffle(ctx context.Context) (bool, error) {
	state, err := p.State(ctx)
	if err != nil {
		return false, err
	}
	return state.Shuffle, nil
}

// Repeat returns the current repeat mode. Fails with ErrNoActiveDevice when
// there is no active device.
func (p *Player) Repeat(ctx context.Context) (RepeatMode, error) {
	state, err := p.State(ctx)
	if err != nil {
		return "", err
	}
	if !state.Repeat.valid() {
		return "", fmt.Errorf("spotify: unrecognized repeat state %q", state.Repeat)
	}
	return state.Repeat, nil
}

// Position returns how far into the current track playback is. Fails with
// ErrNoActiveDevice when there is no active device.
func (p *Player) Position(ctx context.Context) (time.Duration, error) {
	state, err := p.State(ctx)
	if err != nil {
		return 0, err
	}
	return state.Progress, nil
}

// Resume resumes the current playback. Resuming playback that is already
// playing is an API error.
func (p *Player) Resume(ctx context.Context, deviceID string) error {
	return p.command(ctx, http.MethodPut, endpointPlayerPlay, deviceQuery(deviceID), nil)
}

// Pause pauses the current playback. Pausing playback that is already paused
// is an API error.
func (p *Player) Pause(ctx context.Context, deviceID string) error {
	return p.command(ctx, http.MethodPut, endpointPlayerPause, deviceQuery(deviceID), nil)
}

// SkipNext skips to the next track in the playback.
func (p *Player) SkipNext(ctx context.Context, deviceID string) error {
	return p.command(ctx, http.MethodPost, endpointPlayerNext, deviceQuery(deviceID), nil)
}

// SkipPrevious skips to the previous track in the playback, regardless of
// how far into the current track playback is.
func (p *Player) SkipPrevious(ctx context.Context, deviceID string) error {
	return p.command(ctx, http.MethodPost, endpointPlayerPrevious, deviceQuery(deviceID), nil)
}

// Play starts playback of the given track, album, playlist or artist. For
// albums and playlists, offset is the position in the collection to start
// from; it is ignored for tracks and artists. Playback starts at the
// beginning of the track; follow with Seek to start elsewhere.
func (p *Player) Play(ctx context.Context, item Entity, offset int, deviceID string) error {
	if item == nil {
		return fmt.Errorf("%w: nothing to play", ErrInvalidArgument)
	}

	body := map[string]interface{}{}
	switch item.Kind() {
	case KindTrack:
		body["uris"] = []string{uriFor(item)}
	case KindAlbum, KindPlaylist:
		if offset < 0 {
			return fmt.Errorf("%w: play offset %d", ErrInvalidArgument, offset)
		}
		body["context_uri"] = uriFor(item)
		body["offset"] = map[string]int{"position": offset}
	case KindArtist:
		body["context_uri"] = uriFor(item)
	default:
		return fmt.Errorf("%w: cannot play a %s", ErrInvalidArgument, item.Kind())
	}

	return p.command(ctx, http.MethodPut, endpointPlayerPlay, deviceQuery(deviceID), body)
}

// PlayTracks starts playback of the given tracks, in order.
func (p *Player) PlayTracks(ctx context.Context, trackIDs []string, deviceID string) error {
	if err := validateIDs(trackIDs); err != nil {
		return err
	}
	body := map[string]interface{}{"uris": trackURIs(trackIDs)}
	return p.command(ctx, http.MethodPut, endpointPlayerPlay, deviceQuery(deviceID), body)
}

// Seek moves playback of the current track to the given position. Seeking
// past the end of the track plays the next one.
func (p *Player) Seek(ctx context.Context, position time.Duration, deviceID string) error {
	if position < 0 {
		return fmt.Errorf("%w: seek position %s", ErrInvalidArgument, position)
	}
	query := deviceQuery(deviceID)
	query.Set("position_ms", strconv.FormatInt(position.Milliseconds(), 10))
	return p.command(ctx, http.MethodPut, endpointPlayerSeek, query, nil)
}

// SetVolume sets the active device's volume, 0 to 100.
func (p *Player) SetVolume(ctx context.Context, volume int, deviceID string) error {
	if volume < 0 || volume > 100 {
		return fmt.Errorf("%w: volume %d not in [0, 100]", ErrInvalidArgument, volume)
	}
	query := deviceQuery(deviceID)
	query.Set("volume_percent", strconv.Itoa(volume))
	return p.command(ctx, http.MethodPut, endpointPlayerVolume, query, nil)
}

// SetShuffle turns shuffle on or off.
func (p *Player) SetShuffle(ctx context.Context, on bool, deviceID string) error {
	query := deviceQuery(deviceID)
	query.Set("state", strconv.FormatBool(on))
	return p.command(ctx, http.MethodPut, endpointPlayerShuffle, query, nil)
}

// SetRepeat sets the repeat mode.
func (p *Player) SetRepeat(ctx context.Context, mode RepeatMode, deviceID string) error {
	if !mode.valid() {
		return fmt.Errorf("%w: repeat mode %q", ErrInvalidArgument, mode)
	}
	query := deviceQuery(deviceID)
	query.Set("state", string(mode))
	return p.command(ctx, http.MethodPut, endpointPlayerRepeat, query, nil)
}

// Enqueue adds a track to the end of the playback queue.
func (p *Player) Enqueue(ctx context.Context, trackID, deviceID string) error {
	if trackID == "" {
		return fmt.Errorf("%w: track id", ErrEmptyID)
	}
	query := deviceQuery(deviceID)
	query.Set("uri", trackURI(trackID))
	return p.command(ctx, http.MethodPost, endpointPlayerQueue, query, nil)
}

// TransferPlayback moves playback to another available device. With play set,
// playback starts on the new device; otherwise the current play state is
// kept.
func (p *Player) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	if deviceID == "" {
		return fmt.Errorf("%w: device id", ErrEmptyID)
	}
	body := map[string]interface{}{
		"device_ids": []string{deviceID},
		"play":       play,
	}
	return p.command(ctx, http.MethodPut, endpointPlayer, nil, body)
}

// command issues one player mutation. The player endpoints answer 404 when
// the user has no active device; that maps to ErrNoActiveDevice so callers
// can branch on it.
func (p *Player) command(ctx context.Context, method, endpoint string, query url.Values, body interface{}) error {
	_, _, err := p.client.request(ctx, method, endpoint, query, body)
	if err != nil {
		if IsNotFound(err) {
			return fmt.Errorf("%w: %w", ErrNoActiveDevice, err)
		}
		return err
	}
	return nil
}

func deviceQuery(deviceID string) url.Values {
	query := url.Values{}
	if deviceID != "" {
		query.Set("device_id", deviceID)
	}
	return query
}

// uriFor returns the Spotify URI for an entity.
func uriFor(item Entity) string {
	return "spotify:" + string(item.Kind()) + ":" + item.ID()
}
