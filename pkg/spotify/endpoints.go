package spotify

// API endpoint paths, relative to the base URL. Templated paths are built by
// the helper functions below.
const (
	endpointSearch = "/v1/search"

	endpointAlbums  = "/v1/albums"
	endpointArtists = "/v1/artists"
	endpointTracks  = "/v1/tracks"

	endpointMe = "/v1/me"

	endpointPlayer         = "/v1/me/player"
	endpointPlayerNext     = "/v1/me/player/next"
	endpointPlayerPrevious = "/v1/me/player/previous"
	endpointPlayerPause    = "/v1/me/player/pause"
	endpointPlayerPlay     = "/v1/me/player/play"
	endpointPlayerDevices  = "/v1/me/player/devices"
	endpointPlayerShuffle  = "/v1/me/player/shuffle"
	endpointPlayerSeek     = "/v1/me/player/seek"
	endpointPlayerVolume   = "/v1/me/player/volume"
	endpointPlayerRepeat   = "/v1/me/player/repeat"
	endpointPlayerQueue    = "/v1/me/player/queue"
	endpointRecentlyPlayed = "/v1/me/player/recently-played"

	endpointSavedAlbums         = "/v1/me/albums"
	endpointSavedAlbumsContains = "/v1/me/albums/contains"
	endpointSavedTracks         = "/v1/me/tracks"
	endpointSavedTracksContains = "/v1/me/tracks/contains"
	endpointFollowing           = "/v1/me/following"
	endpointFollowContains      = "/v1/me/following/contains"
)

func albumPath(id string) string        { return "/v1/albums/" + id }
func albumTracksPath(id string) string  { return "/v1/albums/" + id + "/tracks" }
func artistPath(id string) string       { return "/v1/artists/" + id }
func artistAlbumsPath(id string) string { return "/v1/artists/" + id + "/albums" }
func artistTopTracksPath(id string) string {
	return "/v1/artists/" + id + "/top-tracks"
}
func artistRelatedPath(id string) string {
	return "/v1/artists/" + id + "/related-artists"
}
func trackPath(id string) string          { return "/v1/tracks/" + id }
func audioFeaturesPath(id string) string  { return "/v1/audio-features/" + id }
func audioAnalysisPath(id string) string  { return "/v1/audio-analysis/" + id }
func playlistPath(id string) string       { return "/v1/playlists/" + id }
func playlistTracksPath(id string) string { return "/v1/playlists/" + id + "/tracks" }
func playlistImagesPath(id string) string { return "/v1/playlists/" + id + "/images" }
func playlistFollowersPath(id string) string {
	return "/v1/playlists/" + id + "/followers"
}
func userPath(id string) string          { return "/v1/users/" + id }
func userPlaylistsPath(id string) string { return "/v1/users/" + id + "/playlists" }
func topPath(kind ResourceKind) string   { return "/v1/me/top/" + kind.plural() }

// entityPath returns the single-entity GET path used for lazy refresh.
func entityPath(kind ResourceKind, id string) string {
	switch kind {
	case KindAlbum:
		return albumPath(id)
	case KindArtist:
		return artistPath(id)
	case KindTrack:
		return trackPath(id)
	case KindPlaylist:
		return playlistPath(id)
	case KindUser:
		return userPath(id)
	default:
		return ""
	}
}
