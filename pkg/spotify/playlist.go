package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Playlist represents a Spotify playlist.
//
// Playlists are obtained from Client.GetPlaylist, search results,
// User.Playlists or User.CreatePlaylist. Accessors fetch missing fields from
// the API on first use; mutation methods require a token authorized to edit
// the playlist.
type Playlist struct {
	entity
}

func newPlaylist(c *Client, rec record) *Playlist {
	return &Playlist{entity: newEntity(c, KindPlaylist, rec)}
}

func playlistsFromRecords(c *Client, recs []record) []*Playlist {
	playlists := make([]*Playlist, len(recs))
	for i, rec := range recs {
		if rec == nil {
			continue
		}
		playlists[i] = newPlaylist(c, rec)
	}
	return playlists
}

// Name returns the playlist's name.
func (p *Playlist) Name(ctx context.Context) (string, error) {
	return p.stringField(ctx, "name")
}

// Description returns the playlist's description.
func (p *Playlist) Description(ctx context.Context) (string, error) {
	return p.stringField(ctx, "description")
}

// Owner returns the user who owns the playlist.
func (p *Playlist) Owner(ctx context.Context) (*User, error) {
	var rec record
	if err := p.unmarshalField(ctx, "owner", &rec); err != nil {
		return nil, err
	}
	return newUser(p.c, rec), nil
}

// Public reports whether the playlist is publicly viewable.
func (p *Playlist) Public(ctx context.Context) (bool, error) {
	return p.boolField(ctx, "public")
}

// Collaborative reports whether other users may edit the playlist.
func (p *Playlist) Collaborative(ctx context.Context) (bool, error) {
	return p.boolField(ctx, "collaborative")
}

// Href returns the Web API URL for the playlist.
func (p *Playlist) Href(ctx context.Context) (string, error) {
	return p.stringField(ctx, "href")
}

// SnapshotID returns the playlist's current snapshot id. Mutations through
// this client keep it up to date with the server's responses.
func (p *Playlist) SnapshotID(ctx context.Context) (string, error) {
	return p.stringField(ctx, "snapshot_id")
}

// Followers returns the playlist's follower count.
func (p *Playlist) Followers(ctx context.Context) (int, error) {
	var f struct {
		Total int `json:"total"`
	}
	if err := p.unmarshalField(ctx, "followers", &f); err != nil {
		return 0, err
	}
	return f.Total, nil
}

// Images returns the playlist's cover images, widest first.
func (p *Playlist) Images(ctx context.Context) ([]Image, error) {
	return p.imagesField(ctx, "images")
}

// Image returns the URL of the playlist's primary cover image, or "" when
// the playlist has none.
func (p *Playlist) Image(ctx context.Context) (string, error) {
	images, err := p.Images(ctx)
	if err != nil {
		return "", err
	}
	if len(images) == 0 {
		return "", nil
	}
	return images[0].URL, nil
}

// TotalTracks returns the number of tracks on the playlist.
func (p *Playlist) TotalTracks(ctx context.Context) (int, error) {
	var tr struct {
		Total int `json:"total"`
	}
	if err := p.unmarshalField(ctx, "tracks", &tr); err != nil {
		return 0, err
	}
	return tr.Total, nil
}

// Tracks returns up to limit of the playlist's tracks starting at offset, in
// playlist order, fetching as many pages as needed. A limit <= 0 returns
// everything from offset on. Unavailable items (removed episodes, local
// files without catalog data) appear as nil entries so positions line up
// with the playlist.
func (p *Playlist) Tracks(ctx context.Context, offset, limit int) ([]*Track, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset %d", ErrInvalidArgument, offset)
	}

	raws, err := p.c.collect(ctx, playlistTracksPath(p.id), nil, "", offset, pageSize, limit)
	if err != nil {
		return nil, err
	}

	tracks := make([]*Track, len(raws))
	for i, raw := range raws {
		var item struct {
			Track record `json:"track"`
		}
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("spotify: decoding playlist item: %w", err)
		}
		if item.Track == nil {
			continue
		}
		tracks[i] = newTrack(p.c, item.Track)
	}
	return tracks, nil
}

// AddTracks appends the given tracks to the playlist, or inserts them at
// position at when at >= 0. Order is preserved.
func (p *Playlist) AddTracks(ctx context.Context, trackIDs []string, at int) error {
	if err := validateIDs(trackIDs); err != nil {
		return err
	}

	body := map[string]interface{}{"uris": trackURIs(trackIDs)}
	if at >= 0 {
		body["position"] = at
	}

	resp, _, err := p.c.request(ctx, http.MethodPost, playlistTracksPath(p.id), nil, body)
	if err != nil {
		return err
	}
	p.absorbSnapshot(resp)
	return nil
}

// RemoveTracks removes all occurrences of the given tracks from the
// playlist.
func (p *Playlist) RemoveTracks(ctx context.Context, trackIDs []string) error {
	if err := validateIDs(trackIDs); err != nil {
		return err
	}

	type uriRef struct {
		URI string `json:"uri"`
	}
	refs := make([]uriRef, len(trackIDs))
	for i, id := range trackIDs {
		refs[i] = uriRef{URI: trackURI(id)}
	}

	resp, _, err := p.c.request(ctx, http.MethodDelete, playlistTracksPath(p.id), nil, map[string]interface{}{"tracks": refs})
	if err != nil {
		return err
	}
	p.absorbSnapshot(resp)
	return nil
}

// ReorderTracks moves the block of length tracks starting at start so that it
// begins at insertBefore, counted in the playlist before the move.
func (p *Playlist) ReorderTracks(ctx context.Context, start, length, insertBefore int) error {
	if start < 0 || length < 1 || insertBefore < 0 {
		return fmt.Errorf("%w: reorder range [%d, %d) before %d", ErrInvalidArgument, start, start+length, insertBefore)
	}

	body := map[string]interface{}{
		"range_start":   start,
		"range_length":  length,
		"insert_before": insertBefore,
	}
	resp, _, err := p.c.request(ctx, http.MethodPut, playlistTracksPath(p.id), nil, body)
	if err != nil {
		return err
	}
	p.absorbSnapshot(resp)
	return nil
}

// ReplaceTracks replaces the playlist's entire contents with the given
// tracks, in order. An empty id list is rejected; use RemoveTracks to clear
// specific entries.
func (p *Playlist) ReplaceTracks(ctx context.Context, trackIDs []string) error {
	if err := validateIDs(trackIDs); err != nil {
		return err
	}

	resp, _, err := p.c.request(ctx, http.MethodPut, playlistTracksPath(p.id), nil, map[string]interface{}{"uris": trackURIs(trackIDs)})
	if err != nil {
		return err
	}
	p.absorbSnapshot(resp)
	return nil
}

// SetName renames the playlist.
func (p *Playlist) SetName(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty playlist name", ErrInvalidArgument)
	}
	_, _, err := p.c.request(ctx, http.MethodPut, playlistPath(p.id), nil, map[string]interface{}{"name": name})
	return err
}

// SetDescription replaces the playlist's description.
func (p *Playlist) SetDescription(ctx context.Context, description string) error {
	_, _, err := p.c.request(ctx, http.MethodPut, playlistPath(p.id), nil, map[string]interface{}{"description": description})
	return err
}

// SetVisibility changes who can see and edit the playlist.
func (p *Playlist) SetVisibility(ctx context.Context, v Visibility) error {
	if !v.valid() {
		return fmt.Errorf("%w: visibility %q", ErrInvalidArgument, v)
	}
	body := map[string]interface{}{
		"public":        v.public(),
		"collaborative": v.collaborative(),
	}
	_, _, err := p.c.request(ctx, http.MethodPut, playlistPath(p.id), nil, body)
	return err
}

// ReplaceImage uploads a new cover image for the playlist. The image is a
// base64-encoded JPEG of at most 256 KB, sent verbatim as the request body.
func (p *Playlist) ReplaceImage(ctx context.Context, imageBase64 string) error {
	if imageBase64 == "" {
		return fmt.Errorf("%w: empty image", ErrInvalidArgument)
	}
	_, _, err := p.c.requestRaw(ctx, http.MethodPut, playlistImagesPath(p.id), nil, "image/jpeg", []byte(imageBase64))
	return err
}

// absorbSnapshot merges the snapshot_id from a mutation response into the
// record, keeping SnapshotID current without a refresh.
func (p *Playlist) absorbSnapshot(resp json.RawMessage) {
	if resp == nil {
		return
	}
	var rec record
	if err := json.Unmarshal(resp, &rec); err != nil {
		return
	}
	if snapshot, ok := rec["snapshot_id"]; ok {
		p.rec["snapshot_id"] = snapshot
	}
}

func trackURI(id string) string {
	return "spotify:track:" + id
}

func trackURIs(ids []string) []string {
	uris := make([]string, len(ids))
	for i, id := range ids {
		uris[i] = trackURI(id)
	}
	return uris
}
