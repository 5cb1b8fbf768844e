package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Page and preview titles
	"title.default":      "A bouquet for you",
	"title.from":         "From %s",
	"card.default_title": "Hi, I made this bouquet for you!",
	"card.made_with":     "made with digibouquet",
	"card.make_your_own": "make a bouquet now!",

	// Error messages
	"error.generic":       "Something went wrong. Please try again.",
	"error.not_found":     "404 - Bouquet not found",
	"error.invalid_share": "Invalid shared bouquet link.",
	"error.invalid":       "This bouquet can't be saved: %s",
	"error.flood":         "You're sending bouquets too fast. Please wait a minute.",
	"error.no_embed":      "This song link can't be played here.",
	"error.song_lookup":   "Couldn't look up this song right now.",
}
