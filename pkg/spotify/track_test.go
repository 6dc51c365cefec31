package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestTrack_Accessors tests field decoding on a fully fetched track.
func TestTrack_Accessors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, `{
			"id": "t1",
			"name": "Harder, Better, Faster, Stronger",
			"duration_ms": 224693,
			"disc_number": 1,
			"track_number": 4,
			"explicit": false,
			"is_local": false,
			"album": {"id": "alb1", "name": "Discovery"},
			"artists": [{"id": "art1", "name": "Daft Punk"}]
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	track, err := client.GetTrack(ctx, "t1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	duration, err := track.Duration(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if duration != 224693*time.Millisecond {
		t.Errorf("expected duration 224.693s, got %v", duration)
	}

	trackNumber, err := track.TrackNumber(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trackNumber != 4 {
		t.Errorf("expected track number 4, got %d", trackNumber)
	}

	explicit, err := track.Explicit(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if explicit {
		t.Error("expected explicit false")
	}

	album, err := track.Album(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if album.ID() != "alb1" {
		t.Errorf("expected album alb1, got %s", album.ID())
	}
	if album.Complete() {
		t.Error("expected the nested album to start partial")
	}

	artists, err := track.Artists(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(artists) != 1 || artists[0].ID() != "art1" {
		t.Errorf("expected one artist art1, got %+v", artists)
	}
}

// TestTrack_AudioFeatures tests the features fetch and its caching.
func TestTrack_AudioFeatures(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if r.URL.Path != "/v1/audio-features/t1" {
			t.Errorf("expected path /v1/audio-features/t1, got %s", r.URL.Path)
		}
		writeBody(t, w, `{
			"danceability": 0.783,
			"energy": 0.842,
			"key": 10,
			"loudness": -6.5,
			"mode": 0,
			"tempo": 123.4,
			"duration_ms": 224693,
			"time_signature": 4
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	track := newTrack(client, record{"id": json.RawMessage(`"t1"`)})
	ctx := context.Background()

	features, err := track.AudioFeatures(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if features.Danceability != 0.783 {
		t.Errorf("expected danceability 0.783, got %v", features.Danceability)
	}
	if features.Key != 10 {
		t.Errorf("expected key 10, got %d", features.Key)
	}
	if features.Tempo != 123.4 {
		t.Errorf("expected tempo 123.4, got %v", features.Tempo)
	}

	again, err := track.AudioFeatures(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != features {
		t.Error("expected the cached features value")
	}
	if requestCount != 1 {
		t.Errorf("expected 1 request, got %d", requestCount)
	}
}

// TestTrack_AudioAnalysis tests the raw analysis fetch and its caching.
func TestTrack_AudioAnalysis(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if r.URL.Path != "/v1/audio-analysis/t1" {
			t.Errorf("expected path /v1/audio-analysis/t1, got %s", r.URL.Path)
		}
		writeBody(t, w, `{
			"bars": [{"start": 0.1, "duration": 1.9}],
			"track": {"tempo": 123.4}
		}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	track := newTrack(client, record{"id": json.RawMessage(`"t1"`)})
	ctx := context.Background()

	analysis, err := track.AudioAnalysis(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := analysis["bars"]; !ok {
		t.Error("expected a bars section")
	}

	var section struct {
		Tempo float64 `json:"tempo"`
	}
	if err := json.Unmarshal(analysis["track"], &section); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if section.Tempo != 123.4 {
		t.Errorf("expected tempo 123.4, got %v", section.Tempo)
	}

	if _, err := track.AudioAnalysis(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestCount != 1 {
		t.Errorf("expected 1 request, got %d", requestCount)
	}
}

// TestTrack_AudioFeatures_LocalTrack tests that tracks without an id cannot
// fetch features.
func TestTrack_AudioFeatures_LocalTrack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	track := newTrack(client, record{"name": json.RawMessage(`"home recording"`)})

	if _, err := track.AudioFeatures(context.Background()); !errors.Is(err, ErrFieldMissing) {
		t.Errorf("expected ErrFieldMissing, got %v", err)
	}
}
