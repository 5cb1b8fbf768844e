package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"digibouquet/pkg/musiclink"
)

type embedLookuper interface {
	Lookup(ctx context.Context, embed *musiclink.Embed) (*musiclink.TrackInfo, error)
}

// musicLinkLookupAdapter adapts pkg/musiclink to core.SongInfoResolver, preferring the
// Spotify API for Spotify links when a client is configured.
type musicLinkLookupAdapter struct {
	lookuper embedLookuper
	spotify  SpotifyClient
	logger   *zap.Logger
}

// NewMusicLinkLookupAdapter creates a song info resolver. spotify may be nil.
func NewMusicLinkLookupAdapter(spotify SpotifyClient, logger *zap.Logger) SongInfoResolver {
	return &musicLinkLookupAdapter{
		lookuper: musiclink.NewLookuper(),
		spotify:  spotify,
		logger:   logger,
	}
}

// Lookup resolves rawURL and fetches its display information.
func (a *musicLinkLookupAdapter) Lookup(ctx context.Context, rawURL string, hint musiclink.Platform) (*SongInfo, error) {
	embed := musiclink.ResolveEmbed(rawURL, hint)
	if embed == nil {
		return nil, ErrNoEmbed
	}

	if a.spotify != nil {
		if kind, id, ok := musiclink.SpotifyResource(embed); ok && kind != musiclink.SpotifyEpisode {
			info, err := a.spotify.LookupResource(ctx, kind, id)
			if err == nil {
				info.EmbedURL = embed.EmbedURL
				return info, nil
			}
			a.logger.Debug("Spotify API lookup failed, falling back to oEmbed",
				zap.String("kind", kind),
				zap.String("id", id),
				zap.Error(err))
		}
	}

	info, err := a.lookuper.Lookup(ctx, embed)
	if err != nil {
		return nil, fmt.Errorf("song info lookup failed: %w", err)
	}

	return &SongInfo{
		Title:    info.Title,
		Artist:   info.Artist,
		Platform: info.Platform,
		EmbedURL: embed.EmbedURL,
	}, nil
}
