package musiclink

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SpotifyOEmbedResponse represents the response from Spotify's oEmbed API.
type SpotifyOEmbedResponse struct {
	Title string `json:"title"`
}

// oEmbedEndpoints holds the oEmbed API base URL per provider.
type oEmbedEndpoints struct {
	youtube    string
	spotify    string
	soundcloud string
}

// Lookuper fetches display information for resolved embeds from the providers' oEmbed APIs.
type Lookuper struct {
	client    *http.Client
	endpoints oEmbedEndpoints
}

// NewLookuper creates a Lookuper using the public oEmbed endpoints.
func NewLookuper() *Lookuper {
	return &Lookuper{
		client: newHTTPClient(),
		endpoints: oEmbedEndpoints{
			youtube:    YouTubeOEmbedURL,
			spotify:    SpotifyOEmbedURL,
			soundcloud: SoundCloudOEmbedURL,
		},
	}
}

// Lookup fetches the title and artist of the media behind embed.
func (l *Lookuper) Lookup(ctx context.Context, embed *Embed) (*TrackInfo, error) {
	if embed == nil {
		return nil, errors.New("nothing to look up")
	}

	var title, artist string
	switch embed.Platform {
	case PlatformYouTube:
		videoID := youtubeVideoIDFromEmbed(embed.EmbedURL)
		if videoID == "" {
			return nil, ErrNoResourceID
		}
		var resp YouTubeOEmbedResponse
		videoURL := "https://www.youtube.com/watch?v=" + videoID
		if err := fetchOEmbedJSON(ctx, l.client, l.endpoints.youtube, videoURL, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch YouTube oEmbed data: %w", err)
		}
		title, artist = parseYouTubeTrackInfo(&resp)

	case PlatformSpotify:
		link := spotifyOpenLink(embed)
		if link == "" {
			return nil, ErrNoResourceID
		}
		var resp SpotifyOEmbedResponse
		if err := fetchOEmbedJSON(ctx, l.client, l.endpoints.spotify, link, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch Spotify oEmbed data: %w", err)
		}
		title = strings.TrimSpace(resp.Title)

	case PlatformSoundCloud:
		source := soundcloudSourceFromEmbed(embed.EmbedURL)
		if source == "" {
			return nil, ErrNoResourceID
		}
		var resp SoundCloudOEmbedResponse
		if err := fetchOEmbedJSON(ctx, l.client, l.endpoints.soundcloud, source, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch SoundCloud oEmbed data: %w", err)
		}
		title, artist = parseSoundCloudTrackInfo(&resp)

	default:
		return nil, fmt.Errorf("unsupported platform %q", embed.Platform)
	}

	return &TrackInfo{
		Title:    title,
		Artist:   artist,
		Platform: embed.Platform,
	}, nil
}
