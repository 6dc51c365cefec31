// Package spotify provides a client library for the Spotify Web API.
//
// # Overview
//
// This package implements a Go client for the Spotify Web API built around
// three mechanics: batching id lookups into as few requests as the API
// allows, assembling paginated endpoints into plain slices, and lazily
// completing entities that were constructed from partial API data. Requests
// are single-attempt; the client never retries on its own, so callers stay
// in charge of retry policy.
//
// # Installation
//
//	go get github.com/jfmyers9/stylus/pkg/spotify
//
// # Quick Start
//
// Create a client with an OAuth bearer token:
//
//	import "github.com/jfmyers9/stylus/pkg/spotify"
//
//	client, err := spotify.NewClient(spotify.Config{
//	    Token: "your-access-token",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Token acquisition (the OAuth dance) is deliberately out of scope; pass in
// a token obtained however your application manages auth, and swap it on
// refresh with SetToken.
//
// # Batched Lookups
//
// Multi-id getters split the ids into chunks the endpoint accepts (20 for
// albums, 50 for artists and tracks), issue one request per chunk, and
// return the results in input order:
//
//	albums, err := client.GetAlbums(ctx, ids, "US")
//
// Multi-id getters always return slices; use the singular forms (GetAlbum,
// GetArtist, GetTrack, ...) when you have one id.
//
// # Lazy Loading
//
// Entities wrap the raw JSON the API returned for them, which is often a
// partial view. Accessors return what is already present without network
// traffic; the first access to a missing field fetches the full object by
// id, merges it in, and marks the entity complete:
//
//	artist := res.Artists[0]
//	name, err := artist.Name(ctx) // may trigger one GET, then never again
//
// Complete entities never refresh behind your back. Call Refresh to re-fetch
// explicitly.
//
// # Search
//
// Search paginates each requested kind independently until the per-kind
// limit is met or results run out:
//
//	res, err := client.Search(ctx, "daft punk", []spotify.ResourceKind{
//	    spotify.KindArtist,
//	    spotify.KindAlbum,
//	}, 40)
//
// # Playback Control
//
// The Player controls the user's active device:
//
//	player := client.Player()
//	if err := player.Pause(ctx, ""); err != nil {
//	    if errors.Is(err, spotify.ErrNoActiveDevice) {
//	        // nothing is playing anywhere
//	    }
//	}
//
// # Library
//
// The Library service covers the current user's saved items, follows, top
// items and listening history:
//
//	tracks, err := client.Library().SavedTracks(ctx, 100)
//	saved, err := client.Library().HasSavedTracks(ctx, ids)
//
// # Error Handling
//
// API failures are structured errors carrying the upstream status and body:
//
//	_, err := client.GetAlbum(ctx, id, "US")
//	if err != nil {
//	    var apiErr *spotify.Error
//	    if errors.As(err, &apiErr) && apiErr.Status == 429 {
//	        // rate limited; back off and retry if you want to
//	    }
//	}
//
// Invalid arguments (empty ids, out-of-range limits, missing market) are
// rejected before any request is made, wrapping sentinel errors such as
// ErrEmptyID and ErrInvalidLimit.
//
// # Context Support
//
// All network operations accept a context.Context for cancellation and
// timeouts:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	state, err := client.Player().State(ctx)
//
// # Configuration
//
// The client can be configured with a custom HTTP client, base URL (for
// testing), optional logger, and an optional client-side rate limiter:
//
//	client, err := spotify.NewClient(spotify.Config{
//	    Token:      token,
//	    HTTPClient: &http.Client{Timeout: 30 * time.Second},
//	    Logger:     myLogger, // implements spotify.Logger
//	    Limiter:    rate.NewLimiter(rate.Limit(10), 1),
//	})
//
// # API Coverage
//
// Currently implemented:
//   - Search (albums, artists, playlists, tracks)
//   - Catalog lookups (albums, artists, tracks, playlists, users)
//   - Album, artist, track, playlist and user object surfaces
//   - Playlist modification (tracks, details, cover image)
//   - Player (state, devices, transport and mode commands, queue)
//   - Current-user library (saved items, follows, top, recently played)
//
// # Spotify Web API Documentation
//
// For more information about the Spotify Web API:
// https://developer.spotify.com/documentation/web-api
package spotify
