package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestArtist_Albums tests the album listing parameters and result caching.
func TestArtist_Albums(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if r.URL.Path != "/v1/artists/art1/albums" {
			t.Errorf("expected path /v1/artists/art1/albums, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("include_groups"); got != "album,single" {
			t.Errorf("expected include_groups 'album,single', got %q", got)
		}
		if got := r.URL.Query().Get("market"); got != "US" {
			t.Errorf("expected market US, got %q", got)
		}
		writeBody(t, w, `{"items": [{"id": "alb1", "name": "Homework"}, {"id": "alb2", "name": "Discovery"}], "next": null}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	artist := newArtist(client, record{"id": json.RawMessage(`"art1"`)})

	opts := AlbumsOptions{
		IncludeGroups: []AlbumGroup{AlbumGroupAlbum, AlbumGroupSingle},
		Market:        "US",
	}

	albums, err := artist.Albums(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(albums) != 2 {
		t.Fatalf("expected 2 albums, got %d", len(albums))
	}
	if albums[0].ID() != "alb1" || albums[1].ID() != "alb2" {
		t.Errorf("expected albums in response order, got %s, %s", albums[0].ID(), albums[1].ID())
	}

	// Same options are served from the cache.
	again, err := artist.Albums(context.Background(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestCount != 1 {
		t.Errorf("expected the repeat call to stay off the network, got %d requests", requestCount)
	}
	if len(again) != 2 {
		t.Errorf("expected cached result, got %d albums", len(again))
	}
}

// TestArtist_Albums_CacheKeyedOnOptions tests that changing the options
// refetches instead of serving the stale cache.
func TestArtist_Albums_CacheKeyedOnOptions(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		writeBody(t, w, `{"items": [{"id": "alb1"}], "next": null}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	artist := newArtist(client, record{"id": json.RawMessage(`"art1"`)})
	ctx := context.Background()

	if _, err := artist.Albums(ctx, AlbumsOptions{Market: "US"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := artist.Albums(ctx, AlbumsOptions{Market: "SE"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestCount != 2 {
		t.Errorf("expected different options to refetch, got %d requests", requestCount)
	}
}

// TestArtist_Albums_InvalidGroup tests group validation before any request.
func TestArtist_Albums_InvalidGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	artist := newArtist(client, record{"id": json.RawMessage(`"art1"`)})

	_, err := artist.Albums(context.Background(), AlbumsOptions{
		IncludeGroups: []AlbumGroup{AlbumGroup("bootleg")},
	})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

// TestArtist_TopTracks tests the market parameter, trimming and caching.
func TestArtist_TopTracks(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if r.URL.Path != "/v1/artists/art1/top-tracks" {
			t.Errorf("expected path /v1/artists/art1/top-tracks, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("country"); got != "SE" {
			t.Errorf("expected country SE, got %q", got)
		}
		writeBody(t, w, `{"tracks": [
			{"id": "t1"}, {"id": "t2"}, {"id": "t3"}, {"id": "t4"}, {"id": "t5"},
			{"id": "t6"}, {"id": "t7"}, {"id": "t8"}, {"id": "t9"}, {"id": "t10"}
		]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	artist := newArtist(client, record{"id": json.RawMessage(`"art1"`)})
	ctx := context.Background()

	tracks, err := artist.TopTracks(ctx, "SE", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tracks) != 5 {
		t.Fatalf("expected 5 tracks, got %d", len(tracks))
	}
	if tracks[0].ID() != "t1" {
		t.Errorf("expected most popular first, got %s", tracks[0].ID())
	}

	if _, err := artist.TopTracks(ctx, "SE", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestCount != 1 {
		t.Errorf("expected the repeat call to stay off the network, got %d requests", requestCount)
	}

	all, err := artist.TopTracks(ctx, "SE", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 10 {
		t.Errorf("expected all 10 tracks, got %d", len(all))
	}
	if requestCount != 2 {
		t.Errorf("expected a changed limit to refetch, got %d requests", requestCount)
	}
}

// TestArtist_TopTracks_Validation tests rejection before any request.
func TestArtist_TopTracks_Validation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	artist := newArtist(client, record{"id": json.RawMessage(`"art1"`)})
	ctx := context.Background()

	if _, err := artist.TopTracks(ctx, "", 5); !errors.Is(err, ErrMarketRequired) {
		t.Errorf("expected ErrMarketRequired, got %v", err)
	}
	if _, err := artist.TopTracks(ctx, "SE", 11); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

// TestArtist_RelatedArtists tests trimming, caching and the limit cap.
func TestArtist_RelatedArtists(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		if r.URL.Path != "/v1/artists/art1/related-artists" {
			t.Errorf("expected path /v1/artists/art1/related-artists, got %s", r.URL.Path)
		}
		writeBody(t, w, `{"artists": [{"id": "r1"}, {"id": "r2"}, {"id": "r3"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	artist := newArtist(client, record{"id": json.RawMessage(`"art1"`)})
	ctx := context.Background()

	related, err := artist.RelatedArtists(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(related) != 2 {
		t.Fatalf("expected 2 artists, got %d", len(related))
	}

	if _, err := artist.RelatedArtists(ctx, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestCount != 1 {
		t.Errorf("expected the repeat call to stay off the network, got %d requests", requestCount)
	}

	if _, err := artist.RelatedArtists(ctx, 21); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

// TestArtist_Followers tests decoding the nested follower count.
func TestArtist_Followers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, `{"id": "art1", "name": "Daft Punk", "followers": {"href": null, "total": 9000000}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	artist, err := client.GetArtist(ctx, "art1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	followers, err := artist.Followers(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if followers != 9000000 {
		t.Errorf("expected 9000000 followers, got %d", followers)
	}
}
