package musiclink

import (
	"net/url"
	"strings"
)

// Manager dispatches links to the provider extractors.
type Manager struct {
	extractors []Extractor
	byPlatform map[Platform]Extractor
}

// NewManager creates a manager with the YouTube, Spotify and SoundCloud extractors,
// checked in that order during auto-detection.
func NewManager() *Manager {
	return newManager(
		NewYouTubeExtractor(),
		NewSpotifyExtractor(),
		NewSoundCloudExtractor(),
	)
}

func newManager(extractors ...Extractor) *Manager {
	byPlatform := make(map[Platform]Extractor, len(extractors))
	for _, e := range extractors {
		byPlatform[e.Platform()] = e
	}
	return &Manager{
		extractors: extractors,
		byPlatform: byPlatform,
	}
}

var defaultManager = NewManager()

// ResolveEmbed returns the embed for rawLink or nil when none is possible.
func ResolveEmbed(rawLink string, hint Platform) *Embed {
	embed, err := defaultManager.Resolve(rawLink, hint)
	if err != nil {
		return nil
	}
	return embed
}

// ResolveEmbed is the nil-on-failure form of Resolve.
func (m *Manager) ResolveEmbed(rawLink string, hint Platform) *Embed {
	embed, err := m.Resolve(rawLink, hint)
	if err != nil {
		return nil
	}
	return embed
}

// Resolve builds the embed for rawLink, reporting why it could not when it fails.
// A hint naming a registered provider forces that provider's extractor; any other
// hint, unknown values included, falls back to host detection.
func (m *Manager) Resolve(rawLink string, hint Platform) (*Embed, error) {
	u, err := parseLink(rawLink)
	if err != nil {
		return nil, err
	}

	if extractor, ok := m.byPlatform[hint]; ok {
		return extractor.Extract(u)
	}

	for _, extractor := range m.extractors {
		if extractor.Owns(u.Hostname()) {
			return extractor.Extract(u)
		}
	}

	return nil, ErrUnsupportedHost
}

// Detect returns the provider owning rawLink's host, or PlatformAuto when none does.
func (m *Manager) Detect(rawLink string) Platform {
	u, err := parseLink(rawLink)
	if err != nil {
		return PlatformAuto
	}
	for _, extractor := range m.extractors {
		if extractor.Owns(u.Hostname()) {
			return extractor.Platform()
		}
	}
	return PlatformAuto
}

// parseLink trims rawLink, adds https:// when no scheme is present and parses it.
// Host names are lower-cased.
func parseLink(rawLink string) (*url.URL, error) {
	link := normalizeLink(rawLink)
	if link == "" {
		return nil, ErrEmptyLink
	}

	u, err := url.Parse(escapeStrayPercents(link))
	if err != nil || u.Host == "" || u.Hostname() == "" {
		return nil, ErrInvalidLink
	}
	u.Host = strings.ToLower(u.Host)

	return u, nil
}

// escapeStrayPercents encodes every "%" that does not start a valid escape, so links
// such as youtu.be/abc%zz still parse. Valid escapes are left untouched.
func escapeStrayPercents(link string) string {
	if !strings.Contains(link, "%") {
		return link
	}

	var b strings.Builder
	b.Grow(len(link))
	for i := 0; i < len(link); i++ {
		if link[i] == '%' && !(i+2 < len(link) && isHex(link[i+1]) && isHex(link[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(link[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func normalizeLink(rawLink string) string {
	link := strings.TrimSpace(rawLink)
	if link == "" {
		return ""
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return "https://" + link
}
