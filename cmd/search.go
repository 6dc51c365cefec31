package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jfmyers9/stylus/internal/config"
	"github.com/jfmyers9/stylus/pkg/spotify"
	"github.com/spf13/cobra"
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the Spotify catalog",
	Long: `Search the Spotify catalog for tracks, albums, artists, or playlists.

The query is passed to the API untouched, so field filters work:

  stylus search "daft punk"
  stylus search --type album "artist:Daft Punk year:2001"
  stylus search --type track,artist discovery

Results are printed one row per match with the Spotify id in the last
column, ready to paste into 'stylus queue'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringSliceP("type", "t", []string{"track"}, "Result types: track, album, artist, playlist")
	searchCmd.Flags().IntP("limit", "n", 10, "Maximum results per type")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	query := strings.Join(args, " ")

	typeNames, _ := cmd.Flags().GetStringSlice("type")
	kinds := make([]spotify.ResourceKind, 0, len(typeNames))
	for _, name := range typeNames {
		kind, err := searchKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, kind)
	}

	limit, _ := cmd.Flags().GetInt("limit")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	client, err := clientFromConfig(cfg)
	if err != nil {
		return err
	}

	res, err := client.Search(ctx, query, kinds, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	defer w.Flush()

	// Print sections in the order the kinds were requested
	withHeaders := len(kinds) > 1
	for _, kind := range kinds {
		switch kind {
		case spotify.KindTrack:
			printTracks(ctx, w, res.Tracks, withHeaders)
		case spotify.KindAlbum:
			printAlbums(ctx, w, res.Albums, withHeaders)
		case spotify.KindArtist:
			printArtists(ctx, w, res.Artists, withHeaders)
		case spotify.KindPlaylist:
			printPlaylists(ctx, w, res.Playlists, withHeaders)
		}
	}

	return nil
}

// searchKind maps a --type flag value to a catalog kind.
func searchKind(name string) (spotify.ResourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "track", "tracks":
		return spotify.KindTrack, nil
	case "album", "albums":
		return spotify.KindAlbum, nil
	case "artist", "artists":
		return spotify.KindArtist, nil
	case "playlist", "playlists":
		return spotify.KindPlaylist, nil
	default:
		return "", fmt.Errorf("invalid search type: %s (must be track, album, artist, or playlist)", name)
	}
}

func printTracks(ctx context.Context, w *tabwriter.Writer, tracks []*spotify.Track, header bool) {
	if header {
		fmt.Fprintln(w, "TRACKS\t\t\t\t")
	}
	for _, track := range tracks {
		name, err := track.Name(ctx)
		if err != nil {
			continue
		}
		artist := firstArtistName(ctx, track)
		album := ""
		if a, err := track.Album(ctx); err == nil && a != nil {
			album, _ = a.Name(ctx)
		}
		duration := ""
		if d, err := track.Duration(ctx); err == nil {
			duration = fmtTrackDuration(d)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, artist, album, duration, track.ID())
	}
}

func printAlbums(ctx context.Context, w *tabwriter.Writer, albums []*spotify.Album, header bool) {
	if header {
		fmt.Fprintln(w, "ALBUMS\t\t\t\t")
	}
	for _, album := range albums {
		name, err := album.Name(ctx)
		if err != nil {
			continue
		}
		artist := ""
		if artists, err := album.Artists(ctx); err == nil && len(artists) > 0 {
			artist, _ = artists[0].Name(ctx)
		}
		released, _ := album.ReleaseDate(ctx)
		fmt.Fprintf(w, "%s\t%s\t%s\t\t%s\n", name, artist, released, album.ID())
	}
}

func printArtists(ctx context.Context, w *tabwriter.Writer, artists []*spotify.Artist, header bool) {
	if header {
		fmt.Fprintln(w, "ARTISTS\t\t\t\t")
	}
	for _, artist := range artists {
		name, err := artist.Name(ctx)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%s\t\t\t\t%s\n", name, artist.ID())
	}
}

func printPlaylists(ctx context.Context, w *tabwriter.Writer, playlists []*spotify.Playlist, header bool) {
	if header {
		fmt.Fprintln(w, "PLAYLISTS\t\t\t\t")
	}
	for _, playlist := range playlists {
		name, err := playlist.Name(ctx)
		if err != nil {
			continue
		}
		owner := ""
		if u, err := playlist.Owner(ctx); err == nil && u != nil {
			owner, _ = u.DisplayName(ctx)
		}
		total := ""
		if n, err := playlist.TotalTracks(ctx); err == nil {
			total = fmt.Sprintf("%d tracks", n)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t\t%s\n", name, owner, total, playlist.ID())
	}
}

// firstArtistName returns the primary artist's name, or empty when the
// track carries no catalog data (local files).
func firstArtistName(ctx context.Context, track *spotify.Track) string {
	artists, err := track.Artists(ctx)
	if err != nil || len(artists) == 0 {
		return ""
	}
	name, _ := artists[0].Name(ctx)
	return name
}

// fmtTrackDuration renders a duration as M:SS.
func fmtTrackDuration(d time.Duration) string {
	total := int(d.Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
