package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"digibouquet/internal/i18n"
	"digibouquet/pkg/musiclink"
)

const (
	// PlayerAllow is the iframe allow-list granted to song players.
	PlayerAllow = "autoplay; encrypted-media; clipboard-write"

	maxTitleLength     = 120
	maxNameLength      = 80
	maxMessageLength   = 2000
	maxSongTitleLength = 200
	maxSongURLLength   = 2048
	maxFlowerKinds     = 12
	maxFlowersPerKind  = 12
)

var cardColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var knownFonts = map[string]struct{}{
	FontMartian:  {},
	FontPlayfair: {},
	FontCrimson:  {},
	FontDMSerif:  {},
}

// BouquetService creates, loads and presents bouquets.
type BouquetService struct {
	repo      BouquetRepository
	songs     SongInfoResolver
	localizer *i18n.Localizer
	baseURL   string
	logger    *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewBouquetService creates a bouquet service. songs may be nil, which disables song lookups.
func NewBouquetService(config *Config, repo BouquetRepository, songs SongInfoResolver, logger *zap.Logger) *BouquetService {
	return &BouquetService{
		repo:      repo,
		songs:     songs,
		localizer: i18n.NewLocalizer(config.App.Language),
		baseURL:   strings.TrimRight(config.App.PublicBaseURL, "/"),
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Localizer returns the localizer used for user-facing strings.
func (s *BouquetService) Localizer() *i18n.Localizer {
	return s.localizer
}

// Create validates draft, assigns it an ID and stores it.
func (s *BouquetService) Create(ctx context.Context, draft *Bouquet) (*Bouquet, error) {
	b := normalizeBouquet(draft)
	if err := validateBouquet(b); err != nil {
		return nil, err
	}

	b.ID = s.newID()
	b.CreatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, b); err != nil {
		return nil, fmt.Errorf("failed to save bouquet: %w", err)
	}

	s.logger.Info("Bouquet created",
		zap.String("id", b.ID),
		zap.Int("flower_kinds", len(b.Flowers)),
		zap.Bool("has_song", b.Letter.SongURL != ""))

	return b, nil
}

// Get loads a stored bouquet.
func (s *BouquetService) Get(ctx context.Context, id string) (*Bouquet, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	return s.repo.Get(ctx, id)
}

// View derives everything the presentation layer needs for b.
func (s *BouquetService) View(b *Bouquet) *BouquetView {
	return &BouquetView{
		Bouquet:    b,
		Title:      s.MetadataTitle(b),
		CardTitle:  s.CardTitle(b),
		Background: Background(b),
		ShareLink:  s.ShareLink(b),
		Player:     PlayerFor(b),
		Footer: Footer{
			MadeWith:    s.localizer.T("card.made_with"),
			MakeYourOwn: s.localizer.T("card.make_your_own"),
		},
	}
}

// MetadataTitle is the link-preview title of b.
func (s *BouquetService) MetadataTitle(b *Bouquet) string {
	if b != nil {
		if sender := strings.TrimSpace(b.Letter.Sender); sender != "" {
			return s.localizer.T("title.from", sender)
		}
	}
	return s.localizer.T("title.default")
}

// CardTitle is the heading shown above the bouquet.
func (s *BouquetService) CardTitle(b *Bouquet) string {
	if title := strings.TrimSpace(b.Letter.Title); title != "" {
		return title
	}
	return s.localizer.T("card.default_title")
}

// ShareLink builds a link that carries the whole bouquet and needs no storage.
func (s *BouquetService) ShareLink(b *Bouquet) string {
	shared := *b
	shared.ID = ""
	shared.CreatedAt = time.Time{}

	payload, err := json.Marshal(&shared)
	if err != nil {
		s.logger.Error("Failed to encode shared bouquet", zap.Error(err))
		return ""
	}
	return s.baseURL + "/bouquet/shared?data=" + url.QueryEscape(string(payload))
}

// DecodeShared decodes the data parameter of a share link. The value may still be
// percent-encoded once more.
func (s *BouquetService) DecodeShared(data string) (*Bouquet, error) {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil, ErrInvalidShare
	}

	raw := []byte(data)
	if !json.Valid(raw) {
		unescaped, err := url.QueryUnescape(data)
		if err != nil {
			return nil, ErrInvalidShare
		}
		raw = []byte(unescaped)
	}

	var b Bouquet
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, ErrInvalidShare
	}

	return normalizeBouquet(&b), nil
}

// LookupSong fetches display information for a song link.
func (s *BouquetService) LookupSong(ctx context.Context, rawURL string, hint musiclink.Platform) (*SongInfo, error) {
	if s.songs == nil {
		return nil, ErrNoEmbed
	}
	return s.songs.Lookup(ctx, rawURL, hint)
}

// PlayerFor resolves the song of b. It returns nil when the song cannot be embedded.
func PlayerFor(b *Bouquet) *Player {
	embed := musiclink.ResolveEmbed(b.Letter.SongURL, b.Letter.SongPlatform)
	if embed == nil {
		return nil
	}

	label := strings.TrimSpace(b.Letter.SongTitle)
	if label == "" {
		label = strings.ToUpper(string(embed.Platform))
	}

	return &Player{
		Embed: embed,
		Label: label,
		Allow: PlayerAllow,
	}
}

// Background is the CSS page background for b.
func Background(b *Bouquet) string {
	color := b.Letter.CardColor
	if color == "" {
		color = DefaultCardColor
	}
	return fmt.Sprintf("linear-gradient(180deg, %s 0%%, #ffffff 100%%)", color)
}

func normalizeBouquet(in *Bouquet) *Bouquet {
	b := *in
	b.Flowers = append([]Flower(nil), in.Flowers...)
	for i := range b.Flowers {
		b.Flowers[i].ID = strings.TrimSpace(b.Flowers[i].ID)
	}

	b.Mode = strings.TrimSpace(b.Mode)
	b.Greenery = strings.TrimSpace(b.Greenery)
	b.Font = strings.ToLower(strings.TrimSpace(b.Font))
	if b.Font == "" {
		b.Font = FontMartian
	}

	b.Letter.Title = normalizeText(b.Letter.Title)
	b.Letter.Recipient = normalizeText(b.Letter.Recipient)
	b.Letter.Message = normalizeText(b.Letter.Message)
	b.Letter.Sender = normalizeText(b.Letter.Sender)
	b.Letter.SongTitle = normalizeText(b.Letter.SongTitle)
	b.Letter.SongURL = strings.TrimSpace(b.Letter.SongURL)
	b.Letter.CardColor = strings.TrimSpace(b.Letter.CardColor)
	b.Letter.SongPlatform = musiclink.ParsePlatform(string(b.Letter.SongPlatform))

	return &b
}

func validateBouquet(b *Bouquet) error {
	if len(b.Flowers) == 0 {
		return &ValidationError{Field: "flowers", Reason: "pick at least one flower"}
	}
	if len(b.Flowers) > maxFlowerKinds {
		return &ValidationError{Field: "flowers", Reason: fmt.Sprintf("at most %d kinds", maxFlowerKinds)}
	}
	for _, f := range b.Flowers {
		if f.ID == "" {
			return &ValidationError{Field: "flowers", Reason: "flower without id"}
		}
		if f.Count < 1 || f.Count > maxFlowersPerKind {
			return &ValidationError{Field: "flowers", Reason: fmt.Sprintf("count of %s out of range", f.ID)}
		}
	}

	if _, ok := knownFonts[b.Font]; !ok {
		return &ValidationError{Field: "font", Reason: fmt.Sprintf("unknown font %q", b.Font)}
	}
	if b.Letter.CardColor != "" && !cardColorRegex.MatchString(b.Letter.CardColor) {
		return &ValidationError{Field: "cardColor", Reason: "expected #rrggbb"}
	}

	limits := []struct {
		field string
		value string
		max   int
	}{
		{"title", b.Letter.Title, maxTitleLength},
		{"recipient", b.Letter.Recipient, maxNameLength},
		{"sender", b.Letter.Sender, maxNameLength},
		{"message", b.Letter.Message, maxMessageLength},
		{"songTitle", b.Letter.SongTitle, maxSongTitleLength},
		{"songUrl", b.Letter.SongURL, maxSongURLLength},
	}
	for _, l := range limits {
		if utf8.RuneCountInString(l.value) > l.max {
			return &ValidationError{Field: l.field, Reason: fmt.Sprintf("longer than %d characters", l.max)}
		}
	}

	return nil
}
