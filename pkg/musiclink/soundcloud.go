package musiclink

import (
	"net/url"
	"strings"
)

const (
	// SoundCloudPlayerURL is SoundCloud's widget player endpoint.
	SoundCloudPlayerURL = "https://w.soundcloud.com/player/"
	// SoundCloudOEmbedURL is the SoundCloud oEmbed API endpoint.
	SoundCloudOEmbedURL = "https://soundcloud.com/oembed"
	// soundcloudExpectedSplitParts is the expected number of parts when splitting title by " by ".
	soundcloudExpectedSplitParts = 2
)

var soundcloudHosts = map[string]struct{}{
	"soundcloud.com":     {},
	"www.soundcloud.com": {},
}

// SoundCloudExtractor builds SoundCloud widget embeds.
type SoundCloudExtractor struct{}

// NewSoundCloudExtractor creates a new SoundCloud extractor.
func NewSoundCloudExtractor() *SoundCloudExtractor {
	return &SoundCloudExtractor{}
}

// Platform implements Extractor.
func (e *SoundCloudExtractor) Platform() Platform {
	return PlatformSoundCloud
}

// Owns checks if the host is a SoundCloud domain.
func (e *SoundCloudExtractor) Owns(hostname string) bool {
	_, ok := soundcloudHosts[hostname]
	return ok
}

// Extract wraps the whole link in the widget player. The path is not inspected, but
// a bare origin is serialized with its root path, as in https://soundcloud.com/.
func (e *SoundCloudExtractor) Extract(u *url.URL) (*Embed, error) {
	source := *u
	if source.Path == "" && source.RawPath == "" && source.Opaque == "" {
		source.Path = "/"
	}

	return &Embed{
		EmbedURL: SoundCloudPlayerURL + "?url=" + url.QueryEscape(source.String()) + "&auto_play=true",
		Platform: PlatformSoundCloud,
	}, nil
}

// soundcloudSourceFromEmbed recovers the original link wrapped by Extract.
func soundcloudSourceFromEmbed(embedURL string) string {
	u, err := url.Parse(embedURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("url")
}

// SoundCloudOEmbedResponse represents the response from SoundCloud's oEmbed API.
type SoundCloudOEmbedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	AuthorURL  string `json:"author_url"`
}

// parseSoundCloudTrackInfo splits SoundCloud's "Track Title by Artist Name" titles.
func parseSoundCloudTrackInfo(resp *SoundCloudOEmbedResponse) (title, artist string) {
	if strings.Contains(resp.Title, " by ") {
		parts := strings.SplitN(resp.Title, " by ", soundcloudExpectedSplitParts)
		if len(parts) == soundcloudExpectedSplitParts {
			return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		}
	}

	return strings.TrimSpace(resp.Title), strings.TrimSpace(resp.AuthorName)
}
