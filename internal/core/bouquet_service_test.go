package core

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"digibouquet/internal/i18n"
	"digibouquet/pkg/musiclink"
)

const testBouquetID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

type memoryRepo struct {
	bouquets map[string]*Bouquet
	gets     int
	saveErr  error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{bouquets: make(map[string]*Bouquet)}
}

func (r *memoryRepo) Save(_ context.Context, b *Bouquet) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.bouquets[b.ID] = b
	return nil
}

func (r *memoryRepo) Get(_ context.Context, id string) (*Bouquet, error) {
	r.gets++
	b, ok := r.bouquets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return b, nil
}

func (r *memoryRepo) Count(_ context.Context) (int, error) {
	return len(r.bouquets), nil
}

type fakeSongResolver struct {
	info *SongInfo
}

func (f *fakeSongResolver) Lookup(_ context.Context, _ string, _ musiclink.Platform) (*SongInfo, error) {
	return f.info, nil
}

var testNow = time.Date(2026, 2, 14, 9, 30, 0, 0, time.FixedZone("CET", 3600))

func newTestService(t *testing.T, repo BouquetRepository) *BouquetService {
	t.Helper()

	config := DefaultConfig()
	config.App.PublicBaseURL = "https://bouquet.example/"
	s := NewBouquetService(config, repo, nil, zap.NewNop())
	s.now = func() time.Time { return testNow }
	s.newID = func() string { return testBouquetID }
	return s
}

func validDraft() *Bouquet {
	return &Bouquet{
		Mode:     "color",
		Flowers:  []Flower{{ID: "rose", Count: 3}, {ID: " tulip ", Count: 1}},
		Greenery: "fern",
		Letter: Letter{
			Title:     "  Happy birthday  ",
			Recipient: "Sam",
			Message:   "dear sam,\nhave a lovely day",
			Sender:    "Pau",
			SongURL:   " https://youtu.be/dQw4w9WgXcQ ",
		},
	}
}

func TestBouquetService_Create(t *testing.T) {
	repo := newMemoryRepo()
	s := newTestService(t, repo)

	b, err := s.Create(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if b.ID != testBouquetID {
		t.Errorf("Create() ID = %q, want %q", b.ID, testBouquetID)
	}
	if !b.CreatedAt.Equal(testNow) || b.CreatedAt.Location() != time.UTC {
		t.Errorf("Create() CreatedAt = %v, want %v in UTC", b.CreatedAt, testNow)
	}
	if b.Font != FontMartian {
		t.Errorf("Create() Font = %q, want default %q", b.Font, FontMartian)
	}
	if b.Letter.Title != "Happy birthday" {
		t.Errorf("Create() Title = %q, want trimmed title", b.Letter.Title)
	}
	if b.Letter.SongURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Errorf("Create() SongURL = %q, want trimmed URL", b.Letter.SongURL)
	}
	if b.Flowers[1].ID != "tulip" {
		t.Errorf("Create() flower ID = %q, want %q", b.Flowers[1].ID, "tulip")
	}
	if _, ok := repo.bouquets[testBouquetID]; !ok {
		t.Error("Create() did not save the bouquet")
	}
}

func TestBouquetService_Create_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(b *Bouquet)
		wantField string
	}{
		{"No flowers", func(b *Bouquet) { b.Flowers = nil }, "flowers"},
		{"Zero count", func(b *Bouquet) { b.Flowers[0].Count = 0 }, "flowers"},
		{"Too many of one kind", func(b *Bouquet) { b.Flowers[0].Count = maxFlowersPerKind + 1 }, "flowers"},
		{"Flower without ID", func(b *Bouquet) { b.Flowers[0].ID = "  " }, "flowers"},
		{"Unknown font", func(b *Bouquet) { b.Font = "comic" }, "font"},
		{"Bad card color", func(b *Bouquet) { b.Letter.CardColor = "red" }, "cardColor"},
		{"Long title", func(b *Bouquet) { b.Letter.Title = strings.Repeat("a", maxTitleLength+1) }, "title"},
		{"Long message", func(b *Bouquet) { b.Letter.Message = strings.Repeat("é", maxMessageLength+1) }, "message"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepo()
			s := newTestService(t, repo)

			draft := validDraft()
			tt.mutate(draft)

			_, err := s.Create(context.Background(), draft)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("Create() error = %v, want ValidationError", err)
			}
			if validationErr.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", validationErr.Field, tt.wantField)
			}
			if len(repo.bouquets) != 0 {
				t.Error("invalid bouquet was saved")
			}
		})
	}
}

func TestBouquetService_Create_AcceptsLimits(t *testing.T) {
	s := newTestService(t, newMemoryRepo())

	draft := validDraft()
	draft.Font = " PlayFair "
	draft.Letter.CardColor = "#aBcDeF"
	draft.Letter.Message = strings.Repeat("é", maxMessageLength)

	b, err := s.Create(context.Background(), draft)
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if b.Font != FontPlayfair {
		t.Errorf("Create() Font = %q, want %q", b.Font, FontPlayfair)
	}
}

func TestBouquetService_Create_SaveError(t *testing.T) {
	repo := newMemoryRepo()
	repo.saveErr = errors.New("disk full")
	s := newTestService(t, repo)

	if _, err := s.Create(context.Background(), validDraft()); err == nil {
		t.Error("Create() expected error when saving fails")
	}
}

func TestBouquetService_Get(t *testing.T) {
	repo := newMemoryRepo()
	s := newTestService(t, repo)
	ctx := context.Background()

	if _, err := s.Create(ctx, validDraft()); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	b, err := s.Get(ctx, testBouquetID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if b.Letter.Sender != "Pau" {
		t.Errorf("Get() sender = %q, want %q", b.Letter.Sender, "Pau")
	}

	gets := repo.gets
	if _, err := s.Get(ctx, "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
	if repo.gets != gets {
		t.Error("malformed IDs should not reach the repository")
	}

	if _, err := s.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrNotFound)
	}
}

func TestBouquetService_Titles(t *testing.T) {
	s := newTestService(t, newMemoryRepo())

	tests := []struct {
		name      string
		bouquet   *Bouquet
		wantMeta  string
		wantTitle string
	}{
		{
			name:      "Sender and title",
			bouquet:   &Bouquet{Letter: Letter{Sender: " Pau ", Title: "For you"}},
			wantMeta:  "From Pau",
			wantTitle: "For you",
		},
		{
			name:      "Anonymous without title",
			bouquet:   &Bouquet{Letter: Letter{Sender: "   ", Title: "  "}},
			wantMeta:  "A bouquet for you",
			wantTitle: "Hi, I made this bouquet for you!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.MetadataTitle(tt.bouquet); got != tt.wantMeta {
				t.Errorf("MetadataTitle() = %q, want %q", got, tt.wantMeta)
			}
			if got := s.CardTitle(tt.bouquet); got != tt.wantTitle {
				t.Errorf("CardTitle() = %q, want %q", got, tt.wantTitle)
			}
		})
	}

	if got := s.MetadataTitle(nil); got != "A bouquet for you" {
		t.Errorf("MetadataTitle(nil) = %q, want default title", got)
	}
}

func TestBouquetService_ShareLinkRoundTrip(t *testing.T) {
	s := newTestService(t, newMemoryRepo())

	b, err := s.Create(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	link := s.ShareLink(b)
	if !strings.HasPrefix(link, "https://bouquet.example/bouquet/shared?data=") {
		t.Fatalf("ShareLink() = %q, want base URL prefix", link)
	}

	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("ShareLink() produced an invalid URL: %v", err)
	}
	data := parsed.Query().Get("data")

	decoded, err := s.DecodeShared(data)
	if err != nil {
		t.Fatalf("DecodeShared() unexpected error: %v", err)
	}

	want := *b
	want.ID = ""
	want.CreatedAt = time.Time{}
	if diff := cmp.Diff(&want, decoded); diff != "" {
		t.Errorf("DecodeShared() mismatch (-want +got):\n%s", diff)
	}

	// Links that were encoded once more still decode
	twice, err := s.DecodeShared(url.QueryEscape(data))
	if err != nil {
		t.Fatalf("DecodeShared() of doubly encoded data failed: %v", err)
	}
	if diff := cmp.Diff(&want, twice); diff != "" {
		t.Errorf("DecodeShared() doubly encoded mismatch (-want +got):\n%s", diff)
	}
}

func TestBouquetService_DecodeShared_Invalid(t *testing.T) {
	s := newTestService(t, newMemoryRepo())

	for _, data := range []string{"", "   ", "not json", "%zz", `{"flowers":`} {
		if _, err := s.DecodeShared(data); !errors.Is(err, ErrInvalidShare) {
			t.Errorf("DecodeShared(%q) error = %v, want %v", data, err, ErrInvalidShare)
		}
	}
}

func TestBouquetService_LookupSong(t *testing.T) {
	s := newTestService(t, newMemoryRepo())

	if _, err := s.LookupSong(context.Background(), "https://youtu.be/x", musiclink.PlatformAuto); !errors.Is(err, ErrNoEmbed) {
		t.Errorf("LookupSong() without resolver error = %v, want %v", err, ErrNoEmbed)
	}

	s.songs = &fakeSongResolver{info: &SongInfo{Title: "Song"}}
	info, err := s.LookupSong(context.Background(), "https://youtu.be/x", musiclink.PlatformAuto)
	if err != nil {
		t.Fatalf("LookupSong() unexpected error: %v", err)
	}
	if info.Title != "Song" {
		t.Errorf("LookupSong() title = %q, want %q", info.Title, "Song")
	}
}

func TestPlayerFor(t *testing.T) {
	tests := []struct {
		name      string
		letter    Letter
		wantNil   bool
		wantLabel string
		wantEmbed string
	}{
		{
			name:      "Song title is the label",
			letter:    Letter{SongURL: "https://youtu.be/dQw4w9WgXcQ", SongTitle: "  Our song  "},
			wantLabel: "Our song",
			wantEmbed: "https://www.youtube.com/embed/dQw4w9WgXcQ?autoplay=1&playsinline=1&rel=0",
		},
		{
			name:      "Platform name without title",
			letter:    Letter{SongURL: "https://open.spotify.com/track/abc"},
			wantLabel: "SPOTIFY",
			wantEmbed: "https://open.spotify.com/embed/track/abc",
		},
		{
			name:    "No song",
			letter:  Letter{},
			wantNil: true,
		},
		{
			name:    "Unsupported link",
			letter:  Letter{SongURL: "https://example.com/song.mp3"},
			wantNil: true,
		},
		{
			name:    "Hint that does not match",
			letter:  Letter{SongURL: "https://youtu.be/dQw4w9WgXcQ", SongPlatform: musiclink.PlatformSpotify},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := PlayerFor(&Bouquet{Letter: tt.letter})
			if tt.wantNil {
				if player != nil {
					t.Errorf("PlayerFor() = %+v, want nil", player)
				}
				return
			}
			if player == nil {
				t.Fatal("PlayerFor() = nil, want player")
			}
			if player.Label != tt.wantLabel {
				t.Errorf("PlayerFor() label = %q, want %q", player.Label, tt.wantLabel)
			}
			if player.Embed.EmbedURL != tt.wantEmbed {
				t.Errorf("PlayerFor() embed = %q, want %q", player.Embed.EmbedURL, tt.wantEmbed)
			}
			if player.Allow != PlayerAllow {
				t.Errorf("PlayerFor() allow = %q, want %q", player.Allow, PlayerAllow)
			}
		})
	}
}

func TestBackground(t *testing.T) {
	if got, want := Background(&Bouquet{}), "linear-gradient(180deg, #F9F9EE 0%, #ffffff 100%)"; got != want {
		t.Errorf("Background() = %q, want %q", got, want)
	}

	b := &Bouquet{Letter: Letter{CardColor: "#ffd1dc"}}
	if got, want := Background(b), "linear-gradient(180deg, #ffd1dc 0%, #ffffff 100%)"; got != want {
		t.Errorf("Background() = %q, want %q", got, want)
	}
}

func TestBouquetService_View(t *testing.T) {
	s := newTestService(t, newMemoryRepo())

	b, err := s.Create(context.Background(), validDraft())
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	view := s.View(b)
	if view.Title != "From Pau" || view.CardTitle != "Happy birthday" {
		t.Errorf("View() titles = (%q, %q)", view.Title, view.CardTitle)
	}
	if view.Player == nil || view.Player.Embed.Platform != musiclink.PlatformYouTube {
		t.Errorf("View() player = %+v, want YouTube player", view.Player)
	}
	if view.ShareLink == "" {
		t.Error("View() share link is empty")
	}
	want := Footer{MadeWith: "made with digibouquet", MakeYourOwn: "make a bouquet now!"}
	if view.Footer != want {
		t.Errorf("View() footer = %+v, want %+v", view.Footer, want)
	}
}

func TestBouquetService_ViewFooterLocalized(t *testing.T) {
	config := DefaultConfig()
	config.App.Language = i18n.BerneseGermanMessages
	s := NewBouquetService(config, newMemoryRepo(), nil, zap.NewNop())

	view := s.View(validDraft())
	want := Footer{MadeWith: "gmacht mit digibouquet", MakeYourOwn: "mach säuber es Strüssli!"}
	if view.Footer != want {
		t.Errorf("View() footer = %+v, want %+v", view.Footer, want)
	}
}
