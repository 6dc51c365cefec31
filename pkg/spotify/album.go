package spotify

import "context"

// Album represents a Spotify album.
//
// Albums are obtained from Client.GetAlbum, Client.GetAlbums, search results,
// or another entity (a track's album). Accessors fetch missing fields from
// the API on first use; fields already present are returned without any
// network traffic.
type Album struct {
	entity
}

func newAlbum(c *Client, rec record) *Album {
	return &Album{entity: newEntity(c, KindAlbum, rec)}
}

// albumsFromRecords wraps a list of raw album records, preserving order.
// A nil record (the API's null placeholder for an unknown id) maps to a nil
// Album.
func albumsFromRecords(c *Client, recs []record) []*Album {
	albums := make([]*Album, len(recs))
	for i, rec := range recs {
		if rec == nil {
			continue
		}
		albums[i] = newAlbum(c, rec)
	}
	return albums
}

// Copyright is one copyright statement on an album.
type Copyright struct {
	// Text is the copyright text.
	Text string `json:"text"`
	// Type is "C" for the copyright or "P" for the sound recording.
	Type string `json:"type"`
}

// Name returns the album's name.
func (a *Album) Name(ctx context.Context) (string, error) {
	return a.stringField(ctx, "name")
}

// AlbumType returns the album's type: "album", "single" or "compilation".
func (a *Album) AlbumType(ctx context.Context) (string, error) {
	return a.stringField(ctx, "album_type")
}

// Artists returns the artists credited on the album.
func (a *Album) Artists(ctx context.Context) ([]*Artist, error) {
	recs, err := a.recordsField(ctx, "artists")
	if err != nil {
		return nil, err
	}
	return artistsFromRecords(a.c, recs), nil
}

// AvailableMarkets returns the country codes the album is available in.
func (a *Album) AvailableMarkets(ctx context.Context) ([]string, error) {
	return a.stringsField(ctx, "available_markets")
}

// Copyrights returns the album's copyright statements.
func (a *Album) Copyrights(ctx context.Context) ([]Copyright, error) {
	var cs []Copyright
	if err := a.unmarshalField(ctx, "copyrights", &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// Genres returns the genres the album is classified under. Often empty.
func (a *Album) Genres(ctx context.Context) ([]string, error) {
	return a.stringsField(ctx, "genres")
}

// Href returns the Web API URL for the album.
func (a *Album) Href(ctx context.Context) (string, error) {
	return a.stringField(ctx, "href")
}

// Images returns the album's cover art in various sizes, widest first.
func (a *Album) Images(ctx context.Context) ([]Image, error) {
	return a.imagesField(ctx, "images")
}

// Label returns the label the album was released under.
func (a *Album) Label(ctx context.Context) (string, error) {
	return a.stringField(ctx, "label")
}

// Popularity returns the album's popularity, 0 to 100.
func (a *Album) Popularity(ctx context.Context) (int, error) {
	return a.intField(ctx, "popularity")
}

// ReleaseDate returns the album's release date. Depending on the precision
// it may be "1981", "1981-12" or "1981-12-15".
func (a *Album) ReleaseDate(ctx context.Context) (string, error) {
	return a.stringField(ctx, "release_date")
}

// TotalTracks returns the number of tracks on the album.
func (a *Album) TotalTracks(ctx context.Context) (int, error) {
	return a.intField(ctx, "total_tracks")
}

// Tracks returns up to limit of the album's tracks, in album order, fetching
// as many pages as needed. A limit <= 0 returns all tracks.
func (a *Album) Tracks(ctx context.Context, limit int) ([]*Track, error) {
	raws, err := a.c.collect(ctx, albumTracksPath(a.id), nil, "", 0, pageSize, limit)
	if err != nil {
		return nil, err
	}
	recs, err := decodeRecords(raws)
	if err != nil {
		return nil, err
	}
	return tracksFromRecords(a.c, recs), nil
}
