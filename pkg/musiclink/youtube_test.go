package musiclink

import (
	"errors"
	"net/url"
	"testing"
)

//nolint:dupl // Owns tests intentionally follow same pattern across all extractors for consistency.
func TestYouTubeExtractor_Owns(t *testing.T) {
	extractor := NewYouTubeExtractor()

	tests := []struct {
		name     string
		host     string
		expected bool
	}{
		{name: "Bare domain", host: "youtube.com", expected: true},
		{name: "www domain", host: "www.youtube.com", expected: true},
		{name: "Mobile domain", host: "m.youtube.com", expected: true},
		{name: "Short link domain", host: "youtu.be", expected: true},
		{name: "www short link domain", host: "www.youtu.be", expected: true},
		{name: "YouTube Music is not embedded", host: "music.youtube.com", expected: false},
		{name: "Spotify", host: "open.spotify.com", expected: false},
		{name: "Lookalike", host: "youtube.com.evil.example", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractor.Owns(tt.host); got != tt.expected {
				t.Errorf("Owns(%q) = %v, want %v", tt.host, got, tt.expected)
			}
		})
	}
}

func TestYouTubeExtractor_videoID(t *testing.T) {
	extractor := NewYouTubeExtractor()

	tests := []struct {
		name       string
		url        string
		expectedID string
	}{
		{
			name:       "Short link",
			url:        "https://youtu.be/dQw4w9WgXcQ",
			expectedID: "dQw4w9WgXcQ",
		},
		{
			name:       "Short link with share param",
			url:        "https://youtu.be/dQw4w9WgXcQ?si=abc",
			expectedID: "dQw4w9WgXcQ",
		},
		{
			name:       "Short link on any host containing the short domain",
			url:        "https://www.youtu.be/dQw4w9WgXcQ",
			expectedID: "dQw4w9WgXcQ",
		},
		{
			name:       "Watch URL",
			url:        "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			expectedID: "dQw4w9WgXcQ",
		},
		{
			name:       "Watch URL with additional parameters",
			url:        "https://www.youtube.com/watch?list=PLrAXtmErZgOeiKm4sgNOknGvNjby9efdf&v=dQw4w9WgXcQ",
			expectedID: "dQw4w9WgXcQ",
		},
		{
			name:       "Shorts URL",
			url:        "https://youtube.com/shorts/abcDEF12345?feature=share",
			expectedID: "abcDEF12345",
		},
		{
			name:       "Embed URL",
			url:        "https://www.youtube.com/embed/dQw4w9WgXcQ",
			expectedID: "dQw4w9WgXcQ",
		},
		{
			name:       "Encoded slash in shorts ID",
			url:        "https://www.youtube.com/shorts/a%2Fb",
			expectedID: "a%2Fb",
		},
		{
			name:       "Encoded slash in short link",
			url:        "https://youtu.be/a%2Fb",
			expectedID: "a%2Fb",
		},
		{
			name:       "Decoded v parameter is used as a path",
			url:        "https://www.youtube.com/watch?v=a%2Fb",
			expectedID: "a/b",
		},
		{
			name:       "Semicolon in v parameter",
			url:        "https://www.youtube.com/watch?v=abc;def",
			expectedID: "abc;def",
		},
		{
			name:       "IDs are not validated",
			url:        "https://www.youtube.com/watch?v=x",
			expectedID: "x",
		},
		{
			name:       "Watch without v",
			url:        "https://www.youtube.com/watch?list=abc",
			expectedID: "",
		},
		{
			name:       "Empty shorts segment",
			url:        "https://www.youtube.com/shorts/",
			expectedID: "",
		},
		{
			name:       "Channel page",
			url:        "https://www.youtube.com/@RickAstleyYT",
			expectedID: "",
		},
		{
			name:       "Short link without path",
			url:        "https://youtu.be/",
			expectedID: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			if err != nil {
				t.Fatalf("url.Parse(%q) failed: %v", tt.url, err)
			}
			if got := extractor.videoID(u); got != tt.expectedID {
				t.Errorf("videoID() = %q, want %q", got, tt.expectedID)
			}
		})
	}
}

func TestQueryValue(t *testing.T) {
	tests := []struct {
		rawQuery string
		want     string
	}{
		{rawQuery: "v=abc", want: "abc"},
		{rawQuery: "list=x&v=abc&v=def", want: "abc"},
		{rawQuery: "v=abc;def", want: "abc;def"},
		{rawQuery: "v=abc%zz", want: "abc%zz"},
		{rawQuery: "v=a+b%21", want: "a b!"},
		{rawQuery: "list=x", want: ""},
		{rawQuery: "", want: ""},
	}

	for _, tt := range tests {
		if got := queryValue(tt.rawQuery, "v"); got != tt.want {
			t.Errorf("queryValue(%q) = %q, want %q", tt.rawQuery, got, tt.want)
		}
	}
}

func TestYouTubeExtractor_Extract(t *testing.T) {
	extractor := NewYouTubeExtractor()

	u, _ := url.Parse("https://www.youtube.com/shorts/abc123")
	embed, err := extractor.Extract(u)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if want := "https://www.youtube.com/embed/abc123?autoplay=1&playsinline=1&rel=0"; embed.EmbedURL != want {
		t.Errorf("Extract() EmbedURL = %q, want %q", embed.EmbedURL, want)
	}
	if embed.Platform != PlatformYouTube {
		t.Errorf("Extract() Platform = %q, want %q", embed.Platform, PlatformYouTube)
	}
	if got := youtubeVideoIDFromEmbed(embed.EmbedURL); got != "abc123" {
		t.Errorf("youtubeVideoIDFromEmbed() = %q, want %q", got, "abc123")
	}

	u, _ = url.Parse("https://youtu.be/a%2Fb")
	embed, err = extractor.Extract(u)
	if err != nil {
		t.Fatalf("Extract() unexpected error: %v", err)
	}
	if want := "https://www.youtube.com/embed/a%2Fb?autoplay=1&playsinline=1&rel=0"; embed.EmbedURL != want {
		t.Errorf("Extract() EmbedURL = %q, want %q", embed.EmbedURL, want)
	}
	if got := youtubeVideoIDFromEmbed(embed.EmbedURL); got != "a%2Fb" {
		t.Errorf("youtubeVideoIDFromEmbed() = %q, want %q", got, "a%2Fb")
	}

	u, _ = url.Parse("https://www.youtube.com/feed/trending")
	if _, err := extractor.Extract(u); !errors.Is(err, ErrNoResourceID) {
		t.Errorf("Extract() error = %v, want %v", err, ErrNoResourceID)
	}
}

func TestCleanYouTubeTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Official Video",
			input:    "Rick Astley - Never Gonna Give You Up (Official Video)",
			expected: "Rick Astley - Never Gonna Give You Up",
		},
		{
			name:     "Official Music Video in brackets, any case",
			input:    "Song Name [official music video]",
			expected: "Song Name",
		},
		{
			name:     "Several markers",
			input:    "Song Name (Lyrics) (4K)",
			expected: "Song Name",
		},
		{
			name:     "No markers",
			input:    "Just A Song",
			expected: "Just A Song",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanYouTubeTitle(tt.input); got != tt.expected {
				t.Errorf("cleanYouTubeTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestYouTubeArtist(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		authorName string
		expected   string
	}{
		{
			name:       "VEVO channel",
			title:      "Never Gonna Give You Up",
			authorName: "RickAstleyVEVO",
			expected:   "Rick Astley",
		},
		{
			name:       "Topic channel",
			title:      "Never Gonna Give You Up",
			authorName: "Rick Astley - Topic",
			expected:   "Rick Astley",
		},
		{
			name:       "Artist in title",
			title:      "Rick Astley - Never Gonna Give You Up",
			authorName: "Some Uploader",
			expected:   "Rick Astley",
		},
		{
			name:       "Falls back to channel",
			title:      "Never Gonna Give You Up",
			authorName: "Rick Astley",
			expected:   "Rick Astley",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := youtubeArtist(tt.title, tt.authorName); got != tt.expected {
				t.Errorf("youtubeArtist() = %q, want %q", got, tt.expected)
			}
		})
	}
}
