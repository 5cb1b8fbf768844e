package musiclink

import (
	"net/url"
	"strings"
)

const (
	// SpotifyEmbedURL is the base of Spotify's embeddable player.
	SpotifyEmbedURL = "https://open.spotify.com/embed/"
	// SpotifyOEmbedURL is the Spotify oEmbed API endpoint.
	SpotifyOEmbedURL = "https://open.spotify.com/oembed"
	// spotifyOpenURL is the base of Spotify's public resource pages.
	spotifyOpenURL = "https://open.spotify.com/"
)

// Spotify resource types that can be embedded.
const (
	SpotifyTrack    = "track"
	SpotifyAlbum    = "album"
	SpotifyPlaylist = "playlist"
	SpotifyEpisode  = "episode"
)

var spotifyHosts = map[string]struct{}{
	"open.spotify.com": {},
	"play.spotify.com": {},
}

var spotifyResourceTypes = map[string]struct{}{
	SpotifyTrack:    {},
	SpotifyAlbum:    {},
	SpotifyPlaylist: {},
	SpotifyEpisode:  {},
}

// SpotifyExtractor builds Spotify player embeds.
type SpotifyExtractor struct{}

// NewSpotifyExtractor creates a new Spotify extractor.
func NewSpotifyExtractor() *SpotifyExtractor {
	return &SpotifyExtractor{}
}

// Platform implements Extractor.
func (e *SpotifyExtractor) Platform() Platform {
	return PlatformSpotify
}

// Owns checks if the host is a Spotify web player domain.
func (e *SpotifyExtractor) Owns(hostname string) bool {
	_, ok := spotifyHosts[hostname]
	return ok
}

// Extract builds the embed URL from a /<type>/<id> path. Segments are taken from the
// escaped path, so the ID is embedded exactly as the link spells it.
func (e *SpotifyExtractor) Extract(u *url.URL) (*Embed, error) {
	kind, id, ok := spotifyResource(u.EscapedPath())
	if !ok {
		return nil, ErrNoResourceID
	}

	return &Embed{
		EmbedURL: SpotifyEmbedURL + kind + "/" + id,
		Platform: PlatformSpotify,
	}, nil
}

// spotifyResource reads the resource type and ID from the first two non-empty path segments.
func spotifyResource(path string) (kind, id string, ok bool) {
	segments := nonEmptySegments(path)
	if len(segments) < 2 {
		return "", "", false
	}

	kind, id = segments[0], segments[1]
	if _, known := spotifyResourceTypes[kind]; !known {
		return "", "", false
	}
	return kind, id, true
}

func nonEmptySegments(path string) []string {
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// SpotifyResource returns the resource type and ID behind a Spotify embed. The ID is
// still percent-encoded.
func SpotifyResource(embed *Embed) (kind, id string, ok bool) {
	if embed == nil || embed.Platform != PlatformSpotify {
		return "", "", false
	}
	u, err := url.Parse(embed.EmbedURL)
	if err != nil {
		return "", "", false
	}
	return spotifyResource(strings.TrimPrefix(u.EscapedPath(), "/embed"))
}

// spotifyOpenLink returns the public page for a Spotify embed, as accepted by oEmbed.
func spotifyOpenLink(embed *Embed) string {
	kind, id, ok := SpotifyResource(embed)
	if !ok {
		return ""
	}
	return spotifyOpenURL + kind + "/" + id
}
