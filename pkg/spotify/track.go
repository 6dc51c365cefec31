package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Track represents a Spotify track.
//
// Tracks are obtained from Client.GetTrack, Client.GetTracks, search results,
// or a parent entity (album tracks, playlist tracks, top tracks). Accessors
// fetch missing fields from the API on first use.
type Track struct {
	entity

	features *AudioFeatures
	analysis map[string]json.RawMessage
}

func newTrack(c *Client, rec record) *Track {
	return &Track{entity: newEntity(c, KindTrack, rec)}
}

func tracksFromRecords(c *Client, recs []record) []*Track {
	tracks := make([]*Track, len(recs))
	for i, rec := range recs {
		if rec == nil {
			continue
		}
		tracks[i] = newTrack(c, rec)
	}
	return tracks
}

// Name returns the track's name.
func (t *Track) Name(ctx context.Context) (string, error) {
	return t.stringField(ctx, "name")
}

// Album returns the album the track appears on.
func (t *Track) Album(ctx context.Context) (*Album, error) {
	var rec record
	if err := t.unmarshalField(ctx, "album", &rec); err != nil {
		return nil, err
	}
	return newAlbum(t.c, rec), nil
}

// Artists returns the artists credited on the track.
func (t *Track) Artists(ctx context.Context) ([]*Artist, error) {
	recs, err := t.recordsField(ctx, "artists")
	if err != nil {
		return nil, err
	}
	return artistsFromRecords(t.c, recs), nil
}

// AvailableMarkets returns the country codes the track is available in.
func (t *Track) AvailableMarkets(ctx context.Context) ([]string, error) {
	return t.stringsField(ctx, "available_markets")
}

// DiscNumber returns the number of the disc the track is on, usually 1.
func (t *Track) DiscNumber(ctx context.Context) (int, error) {
	return t.intField(ctx, "disc_number")
}

// TrackNumber returns the track's position on its disc, 1 indexed.
func (t *Track) TrackNumber(ctx context.Context) (int, error) {
	return t.intField(ctx, "track_number")
}

// Duration returns the track's length.
func (t *Track) Duration(ctx context.Context) (time.Duration, error) {
	ms, err := t.intField(ctx, "duration_ms")
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// Explicit reports whether the track has explicit lyrics.
func (t *Track) Explicit(ctx context.Context) (bool, error) {
	return t.boolField(ctx, "explicit")
}

// Popularity returns the track's popularity, 0 to 100.
func (t *Track) Popularity(ctx context.Context) (int, error) {
	return t.intField(ctx, "popularity")
}

// Href returns the Web API URL for the track.
func (t *Track) Href(ctx context.Context) (string, error) {
	return t.stringField(ctx, "href")
}

// IsLocal reports whether the track is a local file rather than a catalog
// track. Local tracks have no id and most accessors fail on them.
func (t *Track) IsLocal(ctx context.Context) (bool, error) {
	return t.boolField(ctx, "is_local")
}

// AudioFeatures describes a track's musical attributes as measured by
// Spotify's analysis.
type AudioFeatures struct {
	Danceability     float64 `json:"danceability"`
	Energy           float64 `json:"energy"`
	Key              int     `json:"key"`
	Loudness         float64 `json:"loudness"`
	Mode             int     `json:"mode"`
	Speechiness      float64 `json:"speechiness"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Liveness         float64 `json:"liveness"`
	Valence          float64 `json:"valence"`
	Tempo            float64 `json:"tempo"`
	DurationMS       int     `json:"duration_ms"`
	TimeSignature    int     `json:"time_signature"`
}

// AudioFeatures returns the track's audio features. The first call fetches
// them; later calls return the cached value.
func (t *Track) AudioFeatures(ctx context.Context) (*AudioFeatures, error) {
	if t.features != nil {
		return t.features, nil
	}
	if t.id == "" {
		return nil, fmt.Errorf("%w: id on %s", ErrFieldMissing, t.kind)
	}

	body, _, err := t.c.request(ctx, http.MethodGet, audioFeaturesPath(t.id), nil, nil)
	if err != nil {
		return nil, err
	}

	var features AudioFeatures
	if err := json.Unmarshal(body, &features); err != nil {
		return nil, fmt.Errorf("spotify: decoding audio features: %w", err)
	}
	t.features = &features
	return t.features, nil
}

// AudioAnalysis returns the track's full audio analysis: structure, rhythm,
// pitch and timbre, precise to the audio sample. The response is large and
// loosely structured, so it is returned as raw JSON sections ("bars",
// "beats", "sections", "segments", "tatums", "track"). The first call
// fetches it; later calls return the cached value.
func (t *Track) AudioAnalysis(ctx context.Context) (map[string]json.RawMessage, error) {
	if t.analysis != nil {
		return t.analysis, nil
	}
	if t.id == "" {
		return nil, fmt.Errorf("%w: id on %s", ErrFieldMissing, t.kind)
	}

	body, _, err := t.c.request(ctx, http.MethodGet, audioAnalysisPath(t.id), nil, nil)
	if err != nil {
		return nil, err
	}

	var analysis map[string]json.RawMessage
	if err := json.Unmarshal(body, &analysis); err != nil {
		return nil, fmt.Errorf("spotify: decoding audio analysis: %w", err)
	}
	t.analysis = analysis
	return t.analysis, nil
}
