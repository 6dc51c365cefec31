package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

// TestPlayer_State tests decoding a full playback snapshot.
func TestPlayer_State(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/me/player" {
			t.Errorf("expected path /v1/me/player, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("market"); got != "from_token" {
			t.Errorf("expected market from_token, got %q", got)
		}
		writeBody(t, w, `{
			"device": {"id": "d1", "name": "Kitchen", "type": "Speaker", "is_active": true, "volume_percent": 65},
			"shuffle_state": true,
			"repeat_state": "context",
			"progress_ms": 45000,
			"is_playing": true,
			"item": {"id": "t1", "name": "One More Time"},
			"context": {"type": "playlist", "uri": "spotify:playlist:pl1"},
			"timestamp": 1700000000000
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	state, err := client.Player().State(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if state.Device.ID != "d1" || !state.Device.Active || state.Device.VolumePercent != 65 {
		t.Errorf("unexpected device: %+v", state.Device)
	}
	if !state.Shuffle {
		t.Error("expected shuffle on")
	}
	if state.Repeat != RepeatContext {
		t.Errorf("expected repeat context, got %q", state.Repeat)
	}
	if state.Progress != 45*time.Second {
		t.Errorf("expected progress 45s, got %v", state.Progress)
	}
	if !state.Playing {
		t.Error("expected playing")
	}
	if state.Track == nil || state.Track.ID() != "t1" {
		t.Errorf("expected track t1, got %+v", state.Track)
	}
	if state.Context == nil || state.Context.Kind != KindPlaylist || state.Context.ID != "pl1" {
		t.Errorf("expected playlist context pl1, got %+v", state.Context)
	}
	if state.Timestamp.UnixMilli() != 1700000000000 {
		t.Errorf("unexpected timestamp %v", state.Timestamp)
	}
}

// TestPlayer_State_NoActiveDevice tests that a no-content response maps to
// ErrNoActiveDevice.
func TestPlayer_State_NoActiveDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Player().State(context.Background())
	if !errors.Is(err, ErrNoActiveDevice) {
		t.Errorf("expected ErrNoActiveDevice, got %v", err)
	}
}

// TestPlayer_SoftGetters tests that the nil-returning getters swallow the
// no-active-device case.
func TestPlayer_SoftGetters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	track, err := client.Player().CurrentlyPlaying(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track != nil {
		t.Errorf("expected nil track, got %+v", track)
	}

	device, err := client.Player().ActiveDevice(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if device != nil {
		t.Errorf("expected nil device, got %+v", device)
	}

	playContext, err := client.Player().PlaybackContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if playContext != nil {
		t.Errorf("expected nil context, got %+v", playContext)
	}
}

// TestPlayer_PlaybackContext tests resolving the playing context into a
// partial entity.
func TestPlayer_PlaybackContext(t *testing.T) {
	contextJSON := `{"type": "album", "uri": "spotify:album:alb1"}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, `{"is_playing": true, "context": `+contextJSON+`}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	item, err := client.Player().PlaybackContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	album, ok := item.(*Album)
	if !ok {
		t.Fatalf("expected an *Album, got %T", item)
	}
	if album.ID() != "alb1" {
		t.Errorf("expected album alb1, got %s", album.ID())
	}
	if album.Complete() {
		t.Error("expected the context entity to start partial")
	}

	contextJSON = `{"type": "show", "uri": "spotify:show:sh1"}`
	if _, err := client.Player().PlaybackContext(ctx); err == nil {
		t.Error("expected an error for an unrecognized context kind")
	}

	contextJSON = `null`
	item, err = client.Player().PlaybackContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item != nil {
		t.Errorf("expected nil without a context, got %+v", item)
	}
}

// TestPlayer_Devices tests the device list decode.
func TestPlayer_Devices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/me/player/devices" {
			t.Errorf("expected path /v1/me/player/devices, got %s", r.URL.Path)
		}
		writeBody(t, w, `{"devices": [
			{"id": "d1", "name": "Kitchen", "type": "Speaker", "is_active": true},
			{"id": "d2", "name": "Laptop", "type": "Computer", "is_restricted": true}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	devices, err := client.Player().Devices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("expected 2 devices, got %d", len(devices))
	}
	if devices[0].Name != "Kitchen" || !devices[0].Active {
		t.Errorf("unexpected first device: %+v", devices[0])
	}
	if devices[1].Type != "Computer" || !devices[1].Restricted {
		t.Errorf("unexpected second device: %+v", devices[1])
	}
}

// TestPlayer_Play tests the request body shape per playable kind.
func TestPlayer_Play(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")

	tests := []struct {
		name     string
		item     Entity
		offset   int
		wantBody map[string]interface{}
	}{
		{
			name:     "track",
			item:     newTrack(client, record{"id": json.RawMessage(`"t1"`)}),
			wantBody: map[string]interface{}{"uris": []interface{}{"spotify:track:t1"}},
		},
		{
			name:   "album with offset",
			item:   newAlbum(client, record{"id": json.RawMessage(`"alb1"`)}),
			offset: 3,
			wantBody: map[string]interface{}{
				"context_uri": "spotify:album:alb1",
				"offset":      map[string]interface{}{"position": float64(3)},
			},
		},
		{
			name: "playlist",
			item: newPlaylist(client, record{"id": json.RawMessage(`"pl1"`)}),
			wantBody: map[string]interface{}{
				"context_uri": "spotify:playlist:pl1",
				"offset":      map[string]interface{}{"position": float64(0)},
			},
		},
		{
			name:     "artist ignores offset",
			item:     newArtist(client, record{"id": json.RawMessage(`"art1"`)}),
			offset:   7,
			wantBody: map[string]interface{}{"context_uri": "spotify:artist:art1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPut {
					t.Errorf("expected PUT, got %s", r.Method)
				}
				if r.URL.Path != "/v1/me/player/play" {
					t.Errorf("expected path /v1/me/player/play, got %s", r.URL.Path)
				}
				var body map[string]interface{}
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !reflect.DeepEqual(body, tt.wantBody) {
					t.Errorf("expected body %v, got %v", tt.wantBody, body)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			playClient := newTestClient(t, server.URL)
			if err := playClient.Player().Play(context.Background(), tt.item, tt.offset, ""); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// TestPlayer_Play_Validation tests rejection before any request.
func TestPlayer_Play_Validation(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")
	ctx := context.Background()

	if err := client.Player().Play(ctx, nil, 0, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for nil item, got %v", err)
	}

	album := newAlbum(client, record{"id": json.RawMessage(`"alb1"`)})
	if err := client.Player().Play(ctx, album, -1, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative offset, got %v", err)
	}

	user := newUser(client, record{"id": json.RawMessage(`"u1"`)})
	if err := client.Player().Play(ctx, user, 0, ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for an unplayable kind, got %v", err)
	}
}

// TestPlayer_Controls tests the method, path and query of each control
// request.
func TestPlayer_Controls(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func(p *Player) error
		wantMethod string
		wantPath   string
		wantQuery  string
	}{
		{
			name:       "resume",
			call:       func(p *Player) error { return p.Resume(ctx, "") },
			wantMethod: http.MethodPut,
			wantPath:   "/v1/me/player/play",
		},
		{
			name:       "pause on device",
			call:       func(p *Player) error { return p.Pause(ctx, "d1") },
			wantMethod: http.MethodPut,
			wantPath:   "/v1/me/player/pause",
			wantQuery:  "device_id=d1",
		},
		{
			name:       "skip next",
			call:       func(p *Player) error { return p.SkipNext(ctx, "") },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/me/player/next",
		},
		{
			name:       "skip previous",
			call:       func(p *Player) error { return p.SkipPrevious(ctx, "") },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/me/player/previous",
		},
		{
			name:       "seek",
			call:       func(p *Player) error { return p.Seek(ctx, 90*time.Second, "") },
			wantMethod: http.MethodPut,
			wantPath:   "/v1/me/player/seek",
			wantQuery:  "position_ms=90000",
		},
		{
			name:       "set volume",
			call:       func(p *Player) error { return p.SetVolume(ctx, 65, "d1") },
			wantMethod: http.MethodPut,
			wantPath:   "/v1/me/player/volume",
			wantQuery:  "device_id=d1&volume_percent=65",
		},
		{
			name:       "shuffle on",
			call:       func(p *Player) error { return p.SetShuffle(ctx, true, "") },
			wantMethod: http.MethodPut,
			wantPath:   "/v1/me/player/shuffle",
			wantQuery:  "state=true",
		},
		{
			name:       "repeat context",
			call:       func(p *Player) error { return p.SetRepeat(ctx, RepeatContext, "") },
			wantMethod: http.MethodPut,
			wantPath:   "/v1/me/player/repeat",
			wantQuery:  "state=context",
		},
		{
			name:       "enqueue",
			call:       func(p *Player) error { return p.Enqueue(ctx, "t1", "") },
			wantMethod: http.MethodPost,
			wantPath:   "/v1/me/player/queue",
			wantQuery:  "uri=spotify%3Atrack%3At1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.wantMethod {
					t.Errorf("expected %s, got %s", tt.wantMethod, r.Method)
				}
				if r.URL.Path != tt.wantPath {
					t.Errorf("expected path %s, got %s", tt.wantPath, r.URL.Path)
				}
				if got := r.URL.Query().Encode(); got != tt.wantQuery {
					t.Errorf("expected query %q, got %q", tt.wantQuery, got)
				}
				w.WriteHeader(http.StatusNoContent)
			}))
			defer server.Close()

			client := newTestClient(t, server.URL)
			if err := tt.call(client.Player()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

// TestPlayer_Controls_Validation tests rejection before any request.
func TestPlayer_Controls_Validation(t *testing.T) {
	client := newTestClient(t, "http://localhost:0")
	player := client.Player()
	ctx := context.Background()

	tests := []struct {
		name    string
		call    func() error
		wantErr error
	}{
		{"negative seek", func() error { return player.Seek(ctx, -time.Second, "") }, ErrInvalidArgument},
		{"volume too high", func() error { return player.SetVolume(ctx, 101, "") }, ErrInvalidArgument},
		{"volume negative", func() error { return player.SetVolume(ctx, -1, "") }, ErrInvalidArgument},
		{"bad repeat mode", func() error { return player.SetRepeat(ctx, RepeatMode("all"), "") }, ErrInvalidArgument},
		{"enqueue empty id", func() error { return player.Enqueue(ctx, "", "") }, ErrEmptyID},
		{"transfer empty device", func() error { return player.TransferPlayback(ctx, "", false) }, ErrEmptyID},
		{"play empty list", func() error { return player.PlayTracks(ctx, nil, "") }, ErrEmptyID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestPlayer_CommandNoActiveDevice tests that a 404 on a command maps to
// ErrNoActiveDevice while keeping the API error reachable.
func TestPlayer_CommandNoActiveDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		writeBody(t, w, `{"error": {"status": 404, "message": "Device not found"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	err := client.Player().Pause(context.Background(), "")
	if !errors.Is(err, ErrNoActiveDevice) {
		t.Errorf("expected ErrNoActiveDevice, got %v", err)
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
		t.Errorf("expected the API error to stay unwrappable, got %v", err)
	}
}

// TestPlayer_TransferPlayback tests the transfer request body.
func TestPlayer_TransferPlayback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/v1/me/player" {
			t.Errorf("expected path /v1/me/player, got %s", r.URL.Path)
		}
		var body struct {
			DeviceIDs []string `json:"device_ids"`
			Play      bool     `json:"play"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(body.DeviceIDs) != 1 || body.DeviceIDs[0] != "d2" {
			t.Errorf("expected device_ids [d2], got %v", body.DeviceIDs)
		}
		if !body.Play {
			t.Error("expected play true")
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	if err := client.Player().TransferPlayback(context.Background(), "d2", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestPlayer_IsPlaying tests the playing/paused pair.
func TestPlayer_IsPlaying(t *testing.T) {
	playing := true
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if playing {
			writeBody(t, w, `{"is_playing": true}`)
		} else {
			writeBody(t, w, `{"is_playing": false}`)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	got, err := client.Player().IsPlaying(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("expected playing")
	}

	playing = false
	paused, err := client.Player().IsPaused(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !paused {
		t.Error("expected paused")
	}
}
