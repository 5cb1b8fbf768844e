// Package spotify provides Spotify Web API lookups of song display information.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2/clientcredentials"

	"digibouquet/internal/core"
	"digibouquet/pkg/musiclink"
)

// ErrUnsupportedResource is returned for resource types the client does not look up.
var ErrUnsupportedResource = errors.New("unsupported Spotify resource type")

// Client looks up tracks, albums and playlists with the client-credentials flow.
type Client struct {
	config *core.SpotifyConfig
	logger *zap.Logger
	client *spotify.Client
}

type clientOptions struct {
	tokenURL string
	apiURL   string
}

// Option customizes the client endpoints.
type Option func(*clientOptions)

// WithEndpoints points the client at alternative token and API base URLs.
func WithEndpoints(tokenURL, apiURL string) Option {
	return func(o *clientOptions) {
		o.tokenURL = tokenURL
		o.apiURL = apiURL
	}
}

// NewClient creates a Spotify client. Tokens are fetched lazily and refreshed as needed.
func NewClient(ctx context.Context, config *core.SpotifyConfig, logger *zap.Logger, opts ...Option) *Client {
	o := clientOptions{tokenURL: spotifyauth.TokenURL}
	for _, opt := range opts {
		opt(&o)
	}

	credentials := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     o.tokenURL,
	}

	var clientOpts []spotify.ClientOption
	if o.apiURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(o.apiURL))
	}

	return &Client{
		config: config,
		logger: logger,
		client: spotify.New(credentials.Client(ctx), clientOpts...),
	}
}

// LookupResource implements core.SpotifyClient.
func (c *Client) LookupResource(ctx context.Context, kind, id string) (*core.SongInfo, error) {
	var info *core.SongInfo

	switch kind {
	case musiclink.SpotifyTrack:
		track, err := c.client.GetTrack(ctx, spotify.ID(id))
		if err != nil {
			return nil, fmt.Errorf("failed to get track: %w", err)
		}
		info = &core.SongInfo{Title: track.Name, Artist: joinArtists(track.Artists)}

	case musiclink.SpotifyAlbum:
		album, err := c.client.GetAlbum(ctx, spotify.ID(id))
		if err != nil {
			return nil, fmt.Errorf("failed to get album: %w", err)
		}
		info = &core.SongInfo{Title: album.Name, Artist: joinArtists(album.Artists)}

	case musiclink.SpotifyPlaylist:
		playlist, err := c.client.GetPlaylist(ctx, spotify.ID(id))
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist: %w", err)
		}
		info = &core.SongInfo{Title: playlist.Name, Artist: playlist.Owner.DisplayName}

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedResource, kind)
	}

	info.Platform = musiclink.PlatformSpotify

	c.logger.Debug("Spotify resource resolved",
		zap.String("kind", kind),
		zap.String("id", id),
		zap.String("title", info.Title))

	return info, nil
}

func joinArtists(artists []spotify.SimpleArtist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}
