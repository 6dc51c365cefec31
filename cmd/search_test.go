package cmd

import (
	"testing"
	"time"

	"github.com/jfmyers9/stylus/pkg/spotify"
)

func TestSearchKind(t *testing.T) {
	tests := []struct {
		input    string
		expected spotify.ResourceKind
		wantErr  bool
	}{
		{input: "track", expected: spotify.KindTrack},
		{input: "tracks", expected: spotify.KindTrack},
		{input: "Album", expected: spotify.KindAlbum},
		{input: " artist ", expected: spotify.KindArtist},
		{input: "playlist", expected: spotify.KindPlaylist},
		{input: "show", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := searchKind(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("searchKind(%q) expected error, got %q", tt.input, kind)
				}
				return
			}
			if err != nil {
				t.Fatalf("searchKind(%q) returned error: %v", tt.input, err)
			}
			if kind != tt.expected {
				t.Errorf("searchKind(%q) = %q, expected %q", tt.input, kind, tt.expected)
			}
		})
	}
}

func TestFmtTrackDuration(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected string
	}{
		{duration: 0, expected: "0:00"},
		{duration: 59 * time.Second, expected: "0:59"},
		{duration: 60 * time.Second, expected: "1:00"},
		{duration: 3*time.Minute + 7*time.Second, expected: "3:07"},
		{duration: 61 * time.Minute, expected: "61:00"},
	}

	for _, tt := range tests {
		if got := fmtTrackDuration(tt.duration); got != tt.expected {
			t.Errorf("fmtTrackDuration(%v) = %q, expected %q", tt.duration, got, tt.expected)
		}
	}
}
