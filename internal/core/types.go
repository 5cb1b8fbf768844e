package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digibouquet/pkg/musiclink"
)

var (
	// ErrNotFound is returned when a bouquet does not exist.
	ErrNotFound = errors.New("bouquet not found")
	// ErrInvalidShare is returned when a shared bouquet payload cannot be decoded.
	ErrInvalidShare = errors.New("invalid shared bouquet link")
	// ErrNoEmbed is returned when a song link does not resolve to a player.
	ErrNoEmbed = errors.New("no embeddable song")
)

// ValidationError reports a bouquet field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Card fonts.
const (
	FontMartian  = "martian"
	FontPlayfair = "playfair"
	FontCrimson  = "crimson"
	FontDMSerif  = "dmserif"
)

// DefaultCardColor is the background color used when a card has none.
const DefaultCardColor = "#F9F9EE"

// Flower is one kind of flower in a bouquet.
type Flower struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

// Letter is the card attached to a bouquet.
type Letter struct {
	Title        string             `json:"title,omitempty"`
	Recipient    string             `json:"recipient,omitempty"`
	Message      string             `json:"message,omitempty"`
	Sender       string             `json:"sender,omitempty"`
	CardColor    string             `json:"cardColor,omitempty"`
	SongURL      string             `json:"songUrl,omitempty"`
	SongTitle    string             `json:"songTitle,omitempty"`
	SongPlatform musiclink.Platform `json:"songPlatform,omitempty"`
}

// Bouquet is a composed bouquet with its card.
type Bouquet struct {
	ID        string    `json:"id,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	Flowers   []Flower  `json:"flowers"`
	Greenery  string    `json:"greenery,omitempty"`
	Font      string    `json:"font,omitempty"`
	Letter    Letter    `json:"letter"`
	CreatedAt time.Time `json:"createdAt"`
}

// Player is what the presentation layer needs to render a song player.
type Player struct {
	Embed *musiclink.Embed `json:"embed"`
	Label string           `json:"label"`
	// Allow is the iframe permission list the player surface must grant.
	Allow string `json:"allow"`
}

// BouquetView is a bouquet with everything derived for display.
type BouquetView struct {
	Bouquet    *Bouquet `json:"bouquet"`
	Title      string   `json:"title"`
	CardTitle  string   `json:"cardTitle"`
	Background string   `json:"background"`
	ShareLink  string   `json:"shareLink"`
	Player     *Player  `json:"player"`
	Footer     Footer   `json:"footer"`
}

// Footer is the localized credit line under a bouquet card.
type Footer struct {
	MadeWith    string `json:"madeWith"`
	MakeYourOwn string `json:"makeYourOwn"`
}

// SongInfo is display information for a bouquet song.
type SongInfo struct {
	Title    string             `json:"title"`
	Artist   string             `json:"artist,omitempty"`
	Platform musiclink.Platform `json:"platform"`
	EmbedURL string             `json:"embedUrl"`
}

// BouquetRepository persists bouquets by ID.
type BouquetRepository interface {
	Save(ctx context.Context, b *Bouquet) error
	Get(ctx context.Context, id string) (*Bouquet, error)
	Count(ctx context.Context) (int, error)
}

// SpotifyClient looks up Spotify resources by type and ID.
type SpotifyClient interface {
	LookupResource(ctx context.Context, kind, id string) (*SongInfo, error)
}

// SongInfoResolver resolves a song link to display information.
type SongInfoResolver interface {
	Lookup(ctx context.Context, rawURL string, hint musiclink.Platform) (*SongInfo, error)
}
