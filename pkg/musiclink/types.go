// Package musiclink resolves user-supplied music links into embeddable player URLs.
package musiclink

import (
	"errors"
	"net/url"
	"strings"
)

// Platform identifies a streaming provider. PlatformAuto is only ever an input hint.
type Platform string

const (
	// PlatformAuto selects the provider from the link's host name.
	PlatformAuto Platform = "auto"
	// PlatformYouTube is YouTube.
	PlatformYouTube Platform = "youtube"
	// PlatformSpotify is Spotify.
	PlatformSpotify Platform = "spotify"
	// PlatformSoundCloud is SoundCloud.
	PlatformSoundCloud Platform = "soundcloud"
)

var (
	// ErrEmptyLink is returned for empty or whitespace-only links.
	ErrEmptyLink = errors.New("empty music link")
	// ErrInvalidLink is returned when the link cannot be parsed as an absolute URL.
	ErrInvalidLink = errors.New("invalid music link")
	// ErrUnsupportedHost is returned in auto mode when no provider owns the host.
	ErrUnsupportedHost = errors.New("unsupported music host")
	// ErrNoResourceID is returned when the provider cannot find a playable resource in the link.
	ErrNoResourceID = errors.New("no resource ID in music link")
)

// ParsePlatform maps a user-selected value onto a Platform.
// Empty and unknown values fall back to PlatformAuto.
func ParsePlatform(value string) Platform {
	switch p := Platform(strings.ToLower(strings.TrimSpace(value))); p {
	case PlatformYouTube, PlatformSpotify, PlatformSoundCloud:
		return p
	default:
		return PlatformAuto
	}
}

// SupportedPlatforms returns every value accepted as a hint, auto first.
func SupportedPlatforms() []Platform {
	return []Platform{PlatformAuto, PlatformYouTube, PlatformSpotify, PlatformSoundCloud}
}

// Embed is a resolved, embeddable playback URL.
type Embed struct {
	EmbedURL string   `json:"embedUrl"`
	Platform Platform `json:"platform"`
}

// Extractor builds an embed for a single provider.
type Extractor interface {
	// Platform returns the provider this extractor serves.
	Platform() Platform

	// Owns reports whether the host name belongs to the provider.
	Owns(hostname string) bool

	// Extract builds the embed for an already parsed link.
	Extract(u *url.URL) (*Embed, error)
}

// TrackInfo holds display information for a resolved link.
type TrackInfo struct {
	Title    string   `json:"title"`
	Artist   string   `json:"artist,omitempty"`
	Platform Platform `json:"platform"`
}
