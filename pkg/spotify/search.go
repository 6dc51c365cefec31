package spotify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// SearchResult holds the entities matched by one search, grouped by kind.
// Only the kinds requested are populated. Each slice is in the API's
// relevance order.
type SearchResult struct {
	Albums    []*Album
	Artists   []*Artist
	Playlists []*Playlist
	Tracks    []*Track
}

// Search runs a catalog search for the given query across one or more kinds,
// returning up to limit results per kind.
//
// Each kind is paginated independently: all kinds that still have results
// share one request per page, and a kind leaves the request's type filter as
// soon as the API reports no further page for it. limit must be between 1
// and 2000, the API's ceiling on search depth.
//
// The query syntax (field filters, negation, wildcards) is passed through to
// the API untouched.
//
// Example:
//
//	res, err := client.Search(ctx, "daft punk", []spotify.ResourceKind{spotify.KindArtist}, 3)
func (c *Client) Search(ctx context.Context, query string, kinds []ResourceKind, limit int) (*SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", ErrInvalidArgument)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("%w: no search kinds given", ErrInvalidArgument)
	}
	if limit < 1 || limit > maxSearchResults {
		return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidLimit, limit, maxSearchResults)
	}

	// Active kinds, in caller order, duplicates dropped. A kind is removed
	// as soon as one of its pages reports no successor.
	var active []ResourceKind
	seen := map[ResourceKind]bool{}
	for _, k := range kinds {
		if !k.searchable() {
			return nil, fmt.Errorf("%w: kind %q is not searchable", ErrInvalidArgument, k)
		}
		if !seen[k] {
			seen[k] = true
			active = append(active, k)
		}
	}

	collected := map[ResourceKind][]record{}

	for offset := 0; len(active) > 0 && offset < limit; {
		size := pageSize
		if limit-offset < size {
			size = limit - offset
		}

		types := make([]string, len(active))
		for i, k := range active {
			types[i] = string(k)
		}

		q := url.Values{}
		q.Set("q", query)
		q.Set("type", strings.Join(types, ","))
		q.Set("limit", strconv.Itoa(size))
		q.Set("offset", strconv.Itoa(offset))

		body, _, err := c.request(ctx, http.MethodGet, endpointSearch, q, nil)
		if err != nil {
			return nil, err
		}

		next := active[:0]
		for _, k := range active {
			pg, err := decodePage(body, k.plural())
			if err != nil {
				return nil, err
			}

			recs, err := decodeRecords(pg.Items)
			if err != nil {
				return nil, err
			}
			if room := limit - len(collected[k]); len(recs) > room {
				recs = recs[:room]
			}
			collected[k] = append(collected[k], recs...)

			if pg.Next != nil && len(pg.Items) > 0 {
				next = append(next, k)
			}
		}
		active = next
		offset += size
	}

	res := &SearchResult{}
	for kind, recs := range collected {
		switch kind {
		case KindAlbum:
			res.Albums = albumsFromRecords(c, recs)
		case KindArtist:
			res.Artists = artistsFromRecords(c, recs)
		case KindPlaylist:
			res.Playlists = playlistsFromRecords(c, recs)
		case KindTrack:
			res.Tracks = tracksFromRecords(c, recs)
		}
	}
	return res, nil
}
