package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestClient_Search_SinglePage tests that a search whose limit fits in one
// page issues exactly one request.
func TestClient_Search_SinglePage(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++

		q := r.URL.Query()
		if got := q.Get("q"); got != "daft punk" {
			t.Errorf("expected q 'daft punk', got %q", got)
		}
		if got := q.Get("type"); got != "artist" {
			t.Errorf("expected type artist, got %q", got)
		}
		if got := q.Get("limit"); got != "3" {
			t.Errorf("expected limit 3, got %q", got)
		}
		if got := q.Get("offset"); got != "0" {
			t.Errorf("expected offset 0, got %q", got)
		}

		writeBody(t, w, `{"artists": {
			"items": [
				{"id": "a1", "name": "Daft Punk"},
				{"id": "a2", "name": "Daft Punk Tribute"},
				{"id": "a3", "name": "Punk Daft"}
			],
			"next": "https://api.spotify.com/v1/search?offset=3",
			"total": 57
		}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	res, err := client.Search(context.Background(), "daft punk", []ResourceKind{KindArtist}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if requestCount != 1 {
		t.Errorf("expected exactly 1 request, got %d", requestCount)
	}
	if len(res.Artists) != 3 {
		t.Fatalf("expected 3 artists, got %d", len(res.Artists))
	}
	if res.Artists[0].ID() != "a1" {
		t.Errorf("expected first artist a1, got %s", res.Artists[0].ID())
	}
	if res.Albums != nil || res.Tracks != nil || res.Playlists != nil {
		t.Error("expected unrequested kinds to stay nil")
	}
}

// TestClient_Search_MultiKindDropOut tests that each kind paginates
// independently: a kind whose results run out leaves the type filter while
// the others keep going.
func TestClient_Search_MultiKindDropOut(t *testing.T) {
	var gotTypes []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotTypes = append(gotTypes, q.Get("type"))

		offset := q.Get("offset")
		switch offset {
		case "0":
			albums := make([]string, 30)
			for i := range albums {
				albums[i] = fmt.Sprintf(`{"id": "al%02d"}`, i)
			}
			tracks := make([]string, 50)
			for i := range tracks {
				tracks[i] = fmt.Sprintf(`{"id": "tr%03d"}`, i)
			}
			writeBody(t, w, `{
				"albums": {"items": [`+strings.Join(albums, ",")+`], "next": null, "total": 30},
				"tracks": {"items": [`+strings.Join(tracks, ",")+`], "next": "more", "total": 200}
			}`)
		case "50":
			tracks := make([]string, 50)
			for i := range tracks {
				tracks[i] = fmt.Sprintf(`{"id": "tr%03d"}`, 50+i)
			}
			writeBody(t, w, `{"tracks": {"items": [`+strings.Join(tracks, ",")+`], "next": "more", "total": 200}}`)
		case "100":
			if got := q.Get("limit"); got != "20" {
				t.Errorf("expected final page limit 20, got %q", got)
			}
			tracks := make([]string, 20)
			for i := range tracks {
				tracks[i] = fmt.Sprintf(`{"id": "tr%03d"}`, 100+i)
			}
			writeBody(t, w, `{"tracks": {"items": [`+strings.Join(tracks, ",")+`], "next": "more", "total": 200}}`)
		default:
			t.Errorf("unexpected offset %q", offset)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	res, err := client.Search(context.Background(), "test", []ResourceKind{KindAlbum, KindTrack}, 120)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantTypes := []string{"album,track", "track", "track"}
	if len(gotTypes) != len(wantTypes) {
		t.Fatalf("expected %d requests, got %d (%v)", len(wantTypes), len(gotTypes), gotTypes)
	}
	for i, want := range wantTypes {
		if gotTypes[i] != want {
			t.Errorf("request %d: expected type %q, got %q", i, want, gotTypes[i])
		}
	}

	if len(res.Albums) != 30 {
		t.Errorf("expected 30 albums, got %d", len(res.Albums))
	}
	if len(res.Tracks) != 120 {
		t.Errorf("expected 120 tracks, got %d", len(res.Tracks))
	}
	if res.Tracks[119].ID() != "tr119" {
		t.Errorf("expected last track tr119, got %s", res.Tracks[119].ID())
	}
}

// TestClient_Search_EmptyResult tests that a requested kind with no matches
// comes back as an empty slice, not nil.
func TestClient_Search_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeBody(t, w, `{"artists": {"items": [], "next": null, "total": 0}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	res, err := client.Search(context.Background(), "zzzzzz", []ResourceKind{KindArtist}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Artists == nil {
		t.Error("expected requested kind to be an empty slice, got nil")
	}
	if len(res.Artists) != 0 {
		t.Errorf("expected no artists, got %d", len(res.Artists))
	}
}

// TestClient_Search_Validation tests search argument validation.
func TestClient_Search_Validation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	tests := []struct {
		name  string
		query string
		kinds []ResourceKind
		limit int
		want  error
	}{
		{"empty query", "", []ResourceKind{KindArtist}, 10, ErrInvalidArgument},
		{"no kinds", "daft punk", nil, 10, ErrInvalidArgument},
		{"unsearchable kind", "daft punk", []ResourceKind{KindUser}, 10, ErrInvalidArgument},
		{"zero limit", "daft punk", []ResourceKind{KindArtist}, 0, ErrInvalidLimit},
		{"limit above ceiling", "daft punk", []ResourceKind{KindArtist}, 2001, ErrInvalidLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Search(ctx, tt.query, tt.kinds, tt.limit)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
