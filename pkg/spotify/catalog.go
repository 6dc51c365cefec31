package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// GetAlbums looks up multiple albums by id in one or more batched requests.
//
// The ids are fetched in chunks of up to 20 (the albums endpoint maximum)
// and the results are returned in input order, one entry per id. An id the
// catalog does not know yields a nil entry. A market is required; pass
// MarketFromToken to use the country of the access token.
//
// Example:
//
//	albums, err := client.GetAlbums(ctx, []string{"id1", "id2"}, "US")
func (c *Client) GetAlbums(ctx context.Context, ids []string, market string) ([]*Album, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}
	if market == "" {
		return nil, fmt.Errorf("%w: for albums", ErrMarketRequired)
	}

	albums := make([]*Album, 0, len(ids))
	for _, chunk := range batches(ids, maxAlbumIDs) {
		recs, err := c.batchGet(ctx, endpointAlbums, chunk, market, "albums")
		if err != nil {
			return nil, err
		}
		albums = append(albums, albumsFromRecords(c, recs)...)
	}
	return albums, nil
}

// GetAlbum looks up one album by id. A market is required; pass
// MarketFromToken to use the country of the access token. An unknown id is a
// 404 error.
func (c *Client) GetAlbum(ctx context.Context, id, market string) (*Album, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: album id", ErrEmptyID)
	}
	if market == "" {
		return nil, fmt.Errorf("%w: for albums", ErrMarketRequired)
	}
	rec, err := c.getRecord(ctx, albumPath(id), market)
	if err != nil {
		return nil, err
	}
	return newAlbum(c, rec), nil
}

// GetArtists looks up multiple artists by id in one or more batched
// requests.
//
// The ids are fetched in chunks of up to 50 (the artists endpoint maximum)
// and the results are returned in input order, one entry per id. An id the
// catalog does not know yields a nil entry.
func (c *Client) GetArtists(ctx context.Context, ids []string) ([]*Artist, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	artists := make([]*Artist, 0, len(ids))
	for _, chunk := range batches(ids, maxArtistIDs) {
		recs, err := c.batchGet(ctx, endpointArtists, chunk, "", "artists")
		if err != nil {
			return nil, err
		}
		artists = append(artists, artistsFromRecords(c, recs)...)
	}
	return artists, nil
}

// GetArtist looks up one artist by id. An unknown id is a 404 error.
func (c *Client) GetArtist(ctx context.Context, id string) (*Artist, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: artist id", ErrEmptyID)
	}
	rec, err := c.getRecord(ctx, artistPath(id), "")
	if err != nil {
		return nil, err
	}
	return newArtist(c, rec), nil
}

// GetTracks looks up multiple tracks by id in one or more batched requests.
//
// The ids are fetched in chunks of up to 50 (the tracks endpoint maximum)
// and the results are returned in input order, one entry per id. An id the
// catalog does not know yields a nil entry. The market is optional; when
// empty, no market filter is applied.
func (c *Client) GetTracks(ctx context.Context, ids []string, market string) ([]*Track, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	tracks := make([]*Track, 0, len(ids))
	for _, chunk := range batches(ids, maxTrackIDs) {
		recs, err := c.batchGet(ctx, endpointTracks, chunk, market, "tracks")
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, tracksFromRecords(c, recs)...)
	}
	return tracks, nil
}

// GetTrack looks up one track by id. The market is optional. An unknown id
// is a 404 error.
func (c *Client) GetTrack(ctx context.Context, id, market string) (*Track, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: track id", ErrEmptyID)
	}
	rec, err := c.getRecord(ctx, trackPath(id), market)
	if err != nil {
		return nil, err
	}
	return newTrack(c, rec), nil
}

// GetUsers looks up multiple users by id, one request per id (the API has no
// batch users endpoint). Results are in input order. An unknown id yields a
// nil entry rather than an error; any other failure aborts the whole call.
func (c *Client) GetUsers(ctx context.Context, ids []string) ([]*User, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	users := make([]*User, len(ids))
	for i, id := range ids {
		rec, err := c.getRecord(ctx, userPath(id), "")
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		users[i] = newUser(c, rec)
	}
	return users, nil
}

// GetUser looks up one user by id. An unknown id is a 404 error.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id", ErrEmptyID)
	}
	rec, err := c.getRecord(ctx, userPath(id), "")
	if err != nil {
		return nil, err
	}
	return newUser(c, rec), nil
}

// CurrentUser returns the user the access token belongs to.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	rec, err := c.getRecord(ctx, endpointMe, "")
	if err != nil {
		return nil, err
	}
	return newUser(c, rec), nil
}

// GetPlaylists looks up multiple playlists by id, one request per id (the
// API has no batch playlists endpoint). Results are in input order; any
// failure aborts the whole call.
func (c *Client) GetPlaylists(ctx context.Context, ids []string) ([]*Playlist, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	playlists := make([]*Playlist, len(ids))
	for i, id := range ids {
		rec, err := c.getRecord(ctx, playlistPath(id), "")
		if err != nil {
			return nil, err
		}
		playlists[i] = newPlaylist(c, rec)
	}
	return playlists, nil
}

// GetPlaylist looks up one playlist by id. An unknown id is a 404 error.
func (c *Client) GetPlaylist(ctx context.Context, id string) (*Playlist, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: playlist id", ErrEmptyID)
	}
	rec, err := c.getRecord(ctx, playlistPath(id), "")
	if err != nil {
		return nil, err
	}
	return newPlaylist(c, rec), nil
}

// batchGet fetches one chunk of ids from a batch endpoint and returns the
// records under the envelope key, null items preserved as nil records.
func (c *Client) batchGet(ctx context.Context, path string, ids []string, market, envelope string) ([]record, error) {
	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	if market != "" {
		query.Set("market", market)
	}

	body, _, err := c.request(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var out map[string][]record
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("spotify: decoding batch response: %w", err)
	}
	recs, ok := out[envelope]
	if !ok {
		return nil, fmt.Errorf("spotify: decoding batch response: missing %q", envelope)
	}
	return recs, nil
}

// getRecord fetches one object by path and returns its raw record.
func (c *Client) getRecord(ctx context.Context, path, market string) (record, error) {
	var query url.Values
	if market != "" {
		query = url.Values{}
		query.Set("market", market)
	}

	body, _, err := c.request(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("spotify: decoding response: %w", err)
	}
	return rec, nil
}
