package musiclink

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	// YouTubeEmbedURL is the base of YouTube's embeddable player.
	YouTubeEmbedURL = "https://www.youtube.com/embed/"
	// youtubeEmbedParams enables autoplay and inline playback and suppresses related videos.
	youtubeEmbedParams = "?autoplay=1&playsinline=1&rel=0"
	// youtubeShortHost is the domain of youtu.be short links.
	youtubeShortHost = "youtu.be"
	// YouTubeOEmbedURL is the YouTube oEmbed API endpoint.
	YouTubeOEmbedURL = "https://www.youtube.com/oembed"
	// youtubeExpectedSplitParts is the expected number of parts when splitting title/artist strings.
	youtubeExpectedSplitParts = 2
)

var youtubeHosts = map[string]struct{}{
	"youtube.com":     {},
	"www.youtube.com": {},
	"m.youtube.com":   {},
	"youtu.be":        {},
	"www.youtu.be":    {},
}

// YouTubeExtractor builds YouTube player embeds.
type YouTubeExtractor struct{}

// NewYouTubeExtractor creates a new YouTube extractor.
func NewYouTubeExtractor() *YouTubeExtractor {
	return &YouTubeExtractor{}
}

// Platform implements Extractor.
func (e *YouTubeExtractor) Platform() Platform {
	return PlatformYouTube
}

// Owns checks if the host is a YouTube domain.
func (e *YouTubeExtractor) Owns(hostname string) bool {
	_, ok := youtubeHosts[hostname]
	return ok
}

// Extract builds the embed URL from the video ID found in u.
func (e *YouTubeExtractor) Extract(u *url.URL) (*Embed, error) {
	videoID := e.videoID(u)
	if videoID == "" {
		return nil, ErrNoResourceID
	}

	return &Embed{
		EmbedURL: YouTubeEmbedURL + videoID + youtubeEmbedParams,
		Platform: PlatformYouTube,
	}, nil
}

// videoID extracts the video ID from short links, /watch, /shorts/ and /embed/ URLs.
// The ID format is not validated. It is returned percent-encoded for use in a path.
// Path IDs keep the link's own encoding and the v parameter is re-encoded as a path.
func (e *YouTubeExtractor) videoID(u *url.URL) string {
	path := u.EscapedPath()
	if strings.Contains(u.Hostname(), youtubeShortHost) {
		return strings.TrimPrefix(path, "/")
	}

	switch {
	case strings.HasPrefix(path, "/watch"):
		return (&url.URL{Path: queryValue(u.RawQuery, "v")}).EscapedPath()
	case strings.HasPrefix(path, "/shorts/"), strings.HasPrefix(path, "/embed/"):
		return pathSegment(path, 2)
	}

	return ""
}

// queryValue returns the first value of key in rawQuery. Unlike url.ParseQuery it
// accepts semicolons and malformed escapes, which are kept verbatim.
func queryValue(rawQuery, key string) string {
	for _, pair := range strings.Split(rawQuery, "&") {
		k, v, _ := strings.Cut(pair, "=")
		if queryUnescape(k) == key {
			return queryUnescape(v)
		}
	}
	return ""
}

func queryUnescape(s string) string {
	unescaped, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return unescaped
}

// pathSegment returns the i-th element of path split on "/", empty segments included.
func pathSegment(path string, i int) string {
	parts := strings.Split(path, "/")
	if i >= len(parts) {
		return ""
	}
	return parts[i]
}

// youtubeVideoIDFromEmbed recovers the still-encoded video ID from an embed URL built by Extract.
func youtubeVideoIDFromEmbed(embedURL string) string {
	u, err := url.Parse(embedURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.EscapedPath(), "/embed/")
}

// YouTubeOEmbedResponse represents the response from YouTube's oEmbed API.
type YouTubeOEmbedResponse struct {
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
}

var youtubeTitleNoise = compileTitleNoise(
	`\(Official Video\)`,
	`\(Official Music Video\)`,
	`\(Official Audio\)`,
	`\(Lyric Video\)`,
	`\(Lyrics\)`,
	`\[Official Video\]`,
	`\[Official Music Video\]`,
	`\[Official Audio\]`,
	`\[Lyric Video\]`,
	`\[Lyrics\]`,
	`\(HD\)`,
	`\[HD\]`,
	`\(4K\)`,
	`\[4K\]`,
)

var camelCaseBoundary = regexp.MustCompile(`([a-z])([A-Z])`)

func compileTitleNoise(patterns ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(`(?i)`+p))
	}
	return res
}

// parseYouTubeTrackInfo extracts track title and artist from an oEmbed response.
func parseYouTubeTrackInfo(resp *YouTubeOEmbedResponse) (title, artist string) {
	return cleanYouTubeTitle(resp.Title), youtubeArtist(resp.Title, resp.AuthorName)
}

// cleanYouTubeTitle removes common video metadata from titles.
func cleanYouTubeTitle(title string) string {
	cleaned := title
	for _, re := range youtubeTitleNoise {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}

// youtubeArtist guesses the artist from the channel name or an "Artist - Title" video title.
func youtubeArtist(title, authorName string) string {
	if strings.HasSuffix(authorName, "VEVO") {
		// "RickAstleyVEVO" -> "Rick Astley".
		return camelCaseBoundary.ReplaceAllString(strings.TrimSuffix(authorName, "VEVO"), "$1 $2")
	}

	if strings.HasSuffix(authorName, " - Topic") {
		return strings.TrimSuffix(authorName, " - Topic")
	}

	if strings.Contains(title, " - ") {
		parts := strings.SplitN(title, " - ", youtubeExpectedSplitParts)
		if len(parts) == youtubeExpectedSplitParts {
			return strings.TrimSpace(parts[0])
		}
	}

	return authorName
}
