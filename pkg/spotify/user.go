package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// User represents a Spotify user.
//
// Users are obtained from Client.GetUser, Client.CurrentUser or a playlist's
// owner. Operations on the current user's library (saved items, follows, top
// and recently played) live on Client.Library.
type User struct {
	entity
}

func newUser(c *Client, rec record) *User {
	return &User{entity: newEntity(c, KindUser, rec)}
}

// DisplayName returns the user's display name.
func (u *User) DisplayName(ctx context.Context) (string, error) {
	return u.stringField(ctx, "display_name")
}

// Href returns the Web API URL for the user.
func (u *User) Href(ctx context.Context) (string, error) {
	return u.stringField(ctx, "href")
}

// Images returns the user's profile images, widest first.
func (u *User) Images(ctx context.Context) ([]Image, error) {
	return u.imagesField(ctx, "images")
}

// Followers returns the user's follower count.
func (u *User) Followers(ctx context.Context) (int, error) {
	var f struct {
		Total int `json:"total"`
	}
	if err := u.unmarshalField(ctx, "followers", &f); err != nil {
		return 0, err
	}
	return f.Total, nil
}

// Playlists returns up to limit of the user's public playlists, fetching as
// many pages as needed. A limit <= 0 returns all of them. For the current
// user this includes private playlists when the token carries the
// playlist-read-private scope.
func (u *User) Playlists(ctx context.Context, limit int) ([]*Playlist, error) {
	raws, err := u.c.collect(ctx, userPlaylistsPath(u.id), nil, "", 0, pageSize, limit)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(raws)
	if err != nil {
		return nil, err
	}
	return playlistsFromRecords(u.c, recs), nil
}

// CreatePlaylist creates a new playlist owned by this user and returns it.
// Creating playlists for anyone but the current user is rejected by the API.
// The description may be empty.
func (u *User) CreatePlaylist(ctx context.Context, name string, v Visibility, description string) (*Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty playlist name", ErrInvalidArgument)
	}
	if !v.valid() {
		return nil, fmt.Errorf("%w: visibility %q", ErrInvalidArgument, v)
	}

	body := map[string]interface{}{
		"name":          name,
		"public":        v.public(),
		"collaborative": v.collaborative(),
	}
	if description != "" {
		body["description"] = description
	}

	resp, _, err := u.c.request(ctx, http.MethodPost, userPlaylistsPath(u.id), nil, body)
	if err != nil {
		return nil, err
	}

	var rec record
	if err := json.Unmarshal(resp, &rec); err != nil {
		return nil, fmt.Errorf("spotify: decoding created playlist: %w", err)
	}
	return newPlaylist(u.c, rec), nil
}
