package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Artist represents a Spotify artist.
//
// Artists are obtained from Client.GetArtist, Client.GetArtists, search
// results, or another entity (a track's artists). Accessors fetch missing
// fields from the API on first use.
type Artist struct {
	entity

	// Subresource results are cached together with the parameters that
	// produced them. Repeating a call with identical parameters returns the
	// cached slice without touching the network.
	albums     []*Album
	albumsKey  string
	topTracks  []*Track
	topKey     string
	related    []*Artist
	relatedKey string
}

func newArtist(c *Client, rec record) *Artist {
	return &Artist{entity: newEntity(c, KindArtist, rec)}
}

func artistsFromRecords(c *Client, recs []record) []*Artist {
	artists := make([]*Artist, len(recs))
	for i, rec := range recs {
		if rec == nil {
			continue
		}
		artists[i] = newArtist(c, rec)
	}
	return artists
}

// Name returns the artist's name.
func (a *Artist) Name(ctx context.Context) (string, error) {
	return a.stringField(ctx, "name")
}

// Genres returns the genres the artist is associated with.
func (a *Artist) Genres(ctx context.Context) ([]string, error) {
	return a.stringsField(ctx, "genres")
}

// Href returns the Web API URL for the artist.
func (a *Artist) Href(ctx context.Context) (string, error) {
	return a.stringField(ctx, "href")
}

// Popularity returns the artist's popularity, 0 to 100.
func (a *Artist) Popularity(ctx context.Context) (int, error) {
	return a.intField(ctx, "popularity")
}

// Followers returns the artist's follower count.
func (a *Artist) Followers(ctx context.Context) (int, error) {
	var f struct {
		Total int `json:"total"`
	}
	if err := a.unmarshalField(ctx, "followers", &f); err != nil {
		return 0, err
	}
	return f.Total, nil
}

// Images returns the artist's images, widest first.
func (a *Artist) Images(ctx context.Context) ([]Image, error) {
	return a.imagesField(ctx, "images")
}

// AlbumsOptions filters Artist.Albums.
type AlbumsOptions struct {
	// Limit caps the number of albums returned. Zero or negative returns
	// everything available.
	Limit int
	// IncludeGroups restricts the result to the named album groups. Empty
	// means all groups.
	IncludeGroups []AlbumGroup
	// Market limits the response to albums available in one market. Empty
	// returns results for all markets, which usually means duplicates per
	// country. MarketFromToken is accepted.
	Market string
}

func (o AlbumsOptions) cacheKey() string {
	groups := make([]string, len(o.IncludeGroups))
	for i, g := range o.IncludeGroups {
		groups[i] = string(g)
	}
	return fmt.Sprintf("%d|%s|%s", o.Limit, strings.Join(groups, ","), o.Market)
}

// Albums returns the artist's albums, paginated as needed.
//
// The result is cached together with opts: calling Albums again with the same
// options returns the cached slice without any network traffic. Calling with
// different options replaces the cache.
func (a *Artist) Albums(ctx context.Context, opts AlbumsOptions) ([]*Album, error) {
	for _, g := range opts.IncludeGroups {
		if !g.valid() {
			return nil, fmt.Errorf("%w: album group %q", ErrInvalidArgument, g)
		}
	}

	key := opts.cacheKey()
	if a.albums != nil && key == a.albumsKey {
		return a.albums, nil
	}

	query := url.Values{}
	if len(opts.IncludeGroups) > 0 {
		groups := make([]string, len(opts.IncludeGroups))
		for i, g := range opts.IncludeGroups {
			groups[i] = string(g)
		}
		query.Set("include_groups", strings.Join(groups, ","))
	}
	if opts.Market != "" {
		query.Set("market", opts.Market)
	}

	raws, err := a.c.collect(ctx, artistAlbumsPath(a.id), query, "", 0, pageSize, opts.Limit)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(raws)
	if err != nil {
		return nil, err
	}

	a.albums = albumsFromRecords(a.c, recs)
	a.albumsKey = key
	return a.albums, nil
}

// TopTracks returns the artist's top tracks in the given market, most popular
// first. The API serves at most 10; limit trims further, and a limit <= 0
// returns all of them. The market is required; MarketFromToken is accepted.
//
// The result is cached per (market, limit) like Albums.
func (a *Artist) TopTracks(ctx context.Context, market string, limit int) ([]*Track, error) {
	if market == "" {
		return nil, fmt.Errorf("%w: for top tracks", ErrMarketRequired)
	}
	if limit > maxTopTracks {
		return nil, fmt.Errorf("%w: %d exceeds the top-tracks maximum of %d", ErrInvalidLimit, limit, maxTopTracks)
	}

	key := fmt.Sprintf("%s|%d", market, limit)
	if a.topTracks != nil && key == a.topKey {
		return a.topTracks, nil
	}

	query := url.Values{}
	query.Set("country", market)

	body, _, err := a.c.request(ctx, http.MethodGet, artistTopTracksPath(a.id), query, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Tracks []record `json:"tracks"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("spotify: decoding top tracks: %w", err)
	}
	recs := envelope.Tracks
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	a.topTracks = tracksFromRecords(a.c, recs)
	a.topKey = key
	return a.topTracks, nil
}

// RelatedArtists returns artists similar to this one. The API serves at most
// 20; limit trims further, and a limit <= 0 returns all of them.
//
// The result is cached per limit like Albums.
func (a *Artist) RelatedArtists(ctx context.Context, limit int) ([]*Artist, error) {
	if limit > maxRelatedArtists {
		return nil, fmt.Errorf("%w: %d exceeds the related-artists maximum of %d", ErrInvalidLimit, limit, maxRelatedArtists)
	}

	key := fmt.Sprintf("%d", limit)
	if a.related != nil && key == a.relatedKey {
		return a.related, nil
	}

	body, _, err := a.c.request(ctx, http.MethodGet, artistRelatedPath(a.id), nil, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Artists []record `json:"artists"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("spotify: decoding related artists: %w", err)
	}
	recs := envelope.Artists
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}

	a.related = artistsFromRecords(a.c, recs)
	a.relatedKey = key
	return a.related, nil
}
