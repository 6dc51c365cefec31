package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// LibraryService operates on the library of the user the client's token
// belongs to: saved tracks and albums, follows, top items and listening
// history.
//
// Mutations return nil on success; the API does not report per-id outcomes.
// The contains-style checks return one bool per input id, in input order.
type LibraryService struct {
	client *Client
}

// SavedTracks returns up to limit of the user's saved tracks, most recently
// saved first. A limit <= 0 returns all of them.
func (l *LibraryService) SavedTracks(ctx context.Context, limit int) ([]*Track, error) {
	raws, err := l.client.collect(ctx, endpointSavedTracks, nil, "", 0, pageSize, limit)
	if err != nil {
		return nil, err
	}
	recs, err := unwrapItems(raws, "track")
	if err != nil {
		return nil, err
	}
	return tracksFromRecords(l.client, recs), nil
}

// SavedAlbums returns up to limit of the user's saved albums, most recently
// saved first. A limit <= 0 returns all of them.
func (l *LibraryService) SavedAlbums(ctx context.Context, limit int) ([]*Album, error) {
	raws, err := l.client.collect(ctx, endpointSavedAlbums, nil, "", 0, pageSize, limit)
	if err != nil {
		return nil, err
	}
	recs, err := unwrapItems(raws, "album")
	if err != nil {
		return nil, err
	}
	return albumsFromRecords(l.client, recs), nil
}

// SaveTracks adds the given tracks to the user's saved tracks.
func (l *LibraryService) SaveTracks(ctx context.Context, trackIDs []string) error {
	return l.idsMutation(ctx, http.MethodPut, endpointSavedTracks, trackIDs, nil)
}

// SaveAlbums adds the given albums to the user's saved albums.
func (l *LibraryService) SaveAlbums(ctx context.Context, albumIDs []string) error {
	return l.idsMutation(ctx, http.MethodPut, endpointSavedAlbums, albumIDs, nil)
}

// RemoveSavedTracks removes the given tracks from the user's saved tracks.
// Removing a track that is not saved is not an error.
func (l *LibraryService) RemoveSavedTracks(ctx context.Context, trackIDs []string) error {
	return l.idsMutation(ctx, http.MethodDelete, endpointSavedTracks, trackIDs, nil)
}

// RemoveSavedAlbums removes the given albums from the user's saved albums.
// Removing an album that is not saved is not an error.
func (l *LibraryService) RemoveSavedAlbums(ctx context.Context, albumIDs []string) error {
	return l.idsMutation(ctx, http.MethodDelete, endpointSavedAlbums, albumIDs, nil)
}

// HasSavedTracks reports, per input id in input order, whether the track is
// in the user's saved tracks.
func (l *LibraryService) HasSavedTracks(ctx context.Context, trackIDs []string) ([]bool, error) {
	return l.containsCheck(ctx, endpointSavedTracksContains, trackIDs, nil)
}

// HasSavedAlbums reports, per input id in input order, whether the album is
// in the user's saved albums.
func (l *LibraryService) HasSavedAlbums(ctx context.Context, albumIDs []string) ([]bool, error) {
	return l.containsCheck(ctx, endpointSavedAlbumsContains, albumIDs, nil)
}

// TopArtists returns up to limit of the user's most listened artists over
// the given time range. A limit <= 0 returns all of them.
func (l *LibraryService) TopArtists(ctx context.Context, timeRange TimeRange, limit int) ([]*Artist, error) {
	raws, err := l.top(ctx, KindArtist, timeRange, limit)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(raws)
	if err != nil {
		return nil, err
	}
	return artistsFromRecords(l.client, recs), nil
}

// TopTracks returns up to limit of the user's most listened tracks over the
// given time range. A limit <= 0 returns all of them.
func (l *LibraryService) TopTracks(ctx context.Context, timeRange TimeRange, limit int) ([]*Track, error) {
	raws, err := l.top(ctx, KindTrack, timeRange, limit)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(raws)
	if err != nil {
		return nil, err
	}
	return tracksFromRecords(l.client, recs), nil
}

func (l *LibraryService) top(ctx context.Context, kind ResourceKind, timeRange TimeRange, limit int) ([]json.RawMessage, error) {
	if !timeRange.valid() {
		return nil, fmt.Errorf("%w: time range %q", ErrInvalidArgument, timeRange)
	}
	query := url.Values{}
	query.Set("time_range", string(timeRange))
	return l.client.collect(ctx, topPath(kind), query, "", 0, pageSize, limit)
}

// RecentTrack is one entry in the user's listening history.
type RecentTrack struct {
	Track    *Track
	PlayedAt time.Time
	Context  *Context // nil when the track was played outside a context
}

// RecentlyPlayed returns the user's most recently played tracks, newest
// first. The API serves at most 50 in a single page and keeps no deeper
// history; limit <= 0 asks for the full 50.
func (l *LibraryService) RecentlyPlayed(ctx context.Context, limit int) ([]RecentTrack, error) {
	if limit > maxRecentTracks {
		return nil, fmt.Errorf("%w: %d exceeds the recently-played maximum of %d", ErrInvalidLimit, limit, maxRecentTracks)
	}
	if limit <= 0 {
		limit = maxRecentTracks
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	body, _, err := l.client.request(ctx, http.MethodGet, endpointRecentlyPlayed, query, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Items []struct {
			Track    record    `json:"track"`
			PlayedAt time.Time `json:"played_at"`
			Context  *struct {
				Type string `json:"type"`
				URI  string `json:"uri"`
			} `json:"context"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("spotify: decoding recently played: %w", err)
	}

	recent := make([]RecentTrack, 0, len(envelope.Items))
	for _, item := range envelope.Items {
		rt := RecentTrack{PlayedAt: item.PlayedAt}
		if item.Track != nil {
			rt.Track = newTrack(l.client, item.Track)
		}
		if item.Context != nil {
			uri := item.Context.URI
			rt.Context = &Context{
				Kind: ResourceKind(item.Context.Type),
				ID:   uri[strings.LastIndex(uri, ":")+1:],
				URI:  uri,
			}
		}
		recent = append(recent, rt)
	}
	return recent, nil
}

// FollowedArtists returns up to limit of the artists the user follows. The
// endpoint pages with an "after" cursor rather than an offset. A limit <= 0
// returns all of them.
func (l *LibraryService) FollowedArtists(ctx context.Context, limit int) ([]*Artist, error) {
	query := url.Values{}
	query.Set("type", string(KindArtist))

	raws, err := l.client.collectCursor(ctx, endpointFollowing, query, "artists", pageSize, limit)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(raws)
	if err != nil {
		return nil, err
	}
	return artistsFromRecords(l.client, recs), nil
}

// FollowArtists makes the user follow the given artists.
func (l *LibraryService) FollowArtists(ctx context.Context, artistIDs []string) error {
	return l.idsMutation(ctx, http.MethodPut, endpointFollowing, artistIDs, followQuery(KindArtist))
}

// FollowUsers makes the user follow the given users.
func (l *LibraryService) FollowUsers(ctx context.Context, userIDs []string) error {
	return l.idsMutation(ctx, http.MethodPut, endpointFollowing, userIDs, followQuery(KindUser))
}

// UnfollowArtists makes the user unfollow the given artists.
func (l *LibraryService) UnfollowArtists(ctx context.Context, artistIDs []string) error {
	return l.idsMutation(ctx, http.MethodDelete, endpointFollowing, artistIDs, followQuery(KindArtist))
}

// UnfollowUsers makes the user unfollow the given users.
func (l *LibraryService) UnfollowUsers(ctx context.Context, userIDs []string) error {
	return l.idsMutation(ctx, http.MethodDelete, endpointFollowing, userIDs, followQuery(KindUser))
}

// IsFollowingArtists reports, per input id in input order, whether the user
// follows the artist.
func (l *LibraryService) IsFollowingArtists(ctx context.Context, artistIDs []string) ([]bool, error) {
	return l.containsCheck(ctx, endpointFollowContains, artistIDs, followQuery(KindArtist))
}

// IsFollowingUsers reports, per input id in input order, whether the user
// follows the user.
func (l *LibraryService) IsFollowingUsers(ctx context.Context, userIDs []string) ([]bool, error) {
	return l.containsCheck(ctx, endpointFollowContains, userIDs, followQuery(KindUser))
}

// FollowPlaylist makes the user follow the given playlist publicly.
func (l *LibraryService) FollowPlaylist(ctx context.Context, playlistID string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", ErrEmptyID)
	}
	_, _, err := l.client.request(ctx, http.MethodPut, playlistFollowersPath(playlistID), nil, nil)
	return err
}

// UnfollowPlaylist makes the user unfollow the given playlist.
func (l *LibraryService) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", ErrEmptyID)
	}
	_, _, err := l.client.request(ctx, http.MethodDelete, playlistFollowersPath(playlistID), nil, nil)
	return err
}

// idsMutation issues one save/remove/follow style mutation per chunk of 50
// ids. The API does not report per-id outcomes, so neither can this.
func (l *LibraryService) idsMutation(ctx context.Context, method, path string, ids []string, extra url.Values) error {
	if err := validateIDs(ids); err != nil {
		return err
	}
	for _, chunk := range batches(ids, maxContainsIDs) {
		query := cloneQuery(extra)
		query.Set("ids", strings.Join(chunk, ","))
		if _, _, err := l.client.request(ctx, method, path, query, nil); err != nil {
			return err
		}
	}
	return nil
}

// containsCheck queries a contains-style endpoint in chunks of 50 ids and
// concatenates the boolean results, preserving input order.
func (l *LibraryService) containsCheck(ctx context.Context, path string, ids []string, extra url.Values) ([]bool, error) {
	if err := validateIDs(ids); err != nil {
		return nil, err
	}

	results := make([]bool, 0, len(ids))
	for _, chunk := range batches(ids, maxContainsIDs) {
		query := cloneQuery(extra)
		query.Set("ids", strings.Join(chunk, ","))

		body, _, err := l.client.request(ctx, http.MethodGet, path, query, nil)
		if err != nil {
			return nil, err
		}

		var flags []bool
		if err := json.Unmarshal(body, &flags); err != nil {
			return nil, fmt.Errorf("spotify: decoding contains response: %w", err)
		}
		results = append(results, flags...)
	}
	return results, nil
}

func followQuery(kind ResourceKind) url.Values {
	query := url.Values{}
	query.Set("type", string(kind))
	return query
}

// unwrapItems pulls the named inner object out of saved-item wrappers
// ({"added_at": ..., "track": {...}}), preserving order. A missing inner
// object yields a nil record.
func unwrapItems(raws []json.RawMessage, key string) ([]record, error) {
	recs := make([]record, len(raws))
	for i, raw := range raws {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("spotify: decoding saved item: %w", err)
		}
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		var rec record
		if err := json.Unmarshal(inner, &rec); err != nil {
			return nil, fmt.Errorf("spotify: decoding saved %s: %w", key, err)
		}
		recs[i] = rec
	}
	return recs, nil
}
