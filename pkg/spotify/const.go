package spotify

// ResourceKind identifies the kind of catalog object an id or entity refers
// to. It is used for search type filters, context resolution, and entity
// identity checks.
type ResourceKind string

// Catalog object kinds.
const (
	KindAlbum    ResourceKind = "album"
	KindArtist   ResourceKind = "artist"
	KindPlaylist ResourceKind = "playlist"
	KindTrack    ResourceKind = "track"
	KindUser     ResourceKind = "user"
	KindShow     ResourceKind = "show"
	KindEpisode  ResourceKind = "episode"
)

// String returns the kind as it appears in API type parameters.
func (k ResourceKind) String() string {
	return string(k)
}

// plural returns the response envelope key for the kind ("album" -> "albums").
func (k ResourceKind) plural() string {
	return string(k) + "s"
}

// searchable reports whether the kind is a valid search type filter.
func (k ResourceKind) searchable() bool {
	switch k {
	case KindAlbum, KindArtist, KindPlaylist, KindTrack:
		return true
	default:
		return false
	}
}

// TimeRange selects the window used by the top artists/tracks endpoints.
type TimeRange string

// Supported time ranges.
const (
	TimeRangeLong   TimeRange = "long_term"   // several years
	TimeRangeMedium TimeRange = "medium_term" // about 6 months
	TimeRangeShort  TimeRange = "short_term"  // about 4 weeks
)

func (t TimeRange) valid() bool {
	switch t {
	case TimeRangeLong, TimeRangeMedium, TimeRangeShort:
		return true
	default:
		return false
	}
}

// RepeatMode is the player's repeat setting.
type RepeatMode string

// Repeat modes accepted by the player.
const (
	RepeatTrack   RepeatMode = "track"   // repeat the current track
	RepeatContext RepeatMode = "context" // repeat the current album/playlist
	RepeatOff     RepeatMode = "off"     // no repeat
)

func (m RepeatMode) valid() bool {
	switch m {
	case RepeatTrack, RepeatContext, RepeatOff:
		return true
	default:
		return false
	}
}

// Visibility describes who can see and edit a playlist.
type Visibility string

// Playlist visibilities.
const (
	VisibilityPublic        Visibility = "public"
	VisibilityPrivate       Visibility = "private"
	VisibilityPrivateCollab Visibility = "private-collaborative"
)

func (v Visibility) valid() bool {
	switch v {
	case VisibilityPublic, VisibilityPrivate, VisibilityPrivateCollab:
		return true
	default:
		return false
	}
}

// public reports whether the playlist is publicly viewable.
func (v Visibility) public() bool {
	return v == VisibilityPublic
}

// collaborative reports whether other users may edit the playlist.
func (v Visibility) collaborative() bool {
	return v == VisibilityPrivateCollab
}

// AlbumGroup filters the album types returned by Artist.Albums.
type AlbumGroup string

// Album groups recognized by the artist albums endpoint.
const (
	AlbumGroupAlbum       AlbumGroup = "album"
	AlbumGroupSingle      AlbumGroup = "single"
	AlbumGroupAppearsOn   AlbumGroup = "appears_on"
	AlbumGroupCompilation AlbumGroup = "compilation"
)

func (g AlbumGroup) valid() bool {
	switch g {
	case AlbumGroupAlbum, AlbumGroupSingle, AlbumGroupAppearsOn, AlbumGroupCompilation:
		return true
	default:
		return false
	}
}

// MarketFromToken asks the API to substitute the country associated with the
// access token wherever a market code is expected.
const MarketFromToken = "from_token"

// Per-endpoint request limits. The API rejects or silently truncates
// anything larger.
const (
	maxAlbumIDs    = 20 // GET /v1/albums
	maxArtistIDs   = 50 // GET /v1/artists
	maxTrackIDs    = 50 // GET /v1/tracks
	maxContainsIDs = 50 // contains/follow style id lists

	pageSize = 50 // default page size for offset/limit pagination

	maxSearchResults  = 2000 // search offset+limit ceiling per kind
	maxTopTracks      = 10   // artist top-tracks, capped by the API
	maxRelatedArtists = 20   // artist related-artists, capped by the API
	maxRecentTracks   = 50   // recently-played, single page only
)
