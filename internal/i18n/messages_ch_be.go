package i18n

// berneseGermanMessages contains all Bernese Swiss German (Bärndütsch) translations
var berneseGermanMessages = map[string]string{
	// Page and preview titles
	"title.default":      "Es Blueme-Strüssli für di",
	"title.from":         "Vo %s",
	"card.default_title": "Hoi, das Strüssli han i für di gmacht!",
	"card.made_with":     "gmacht mit digibouquet",
	"card.make_your_own": "mach säuber es Strüssli!",

	// Error messages
	"error.generic":       "Öppis isch schief gloffe. Probier's haut nomau, bitte.",
	"error.not_found":     "404 - Das Strüssli git's nid",
	"error.invalid_share": "Dä Strüssli-Link isch kaputt.",
	"error.invalid":       "Das Strüssli cha nid gspicheret wärde: %s",
	"error.flood":         "Du schicksch z'viu Strüssli ufs mau. Wart bitte e Minute.",
	"error.no_embed":      "Dä Lied-Link cha hie nid abgspiut wärde.",
	"error.song_lookup":   "Ha ds Lied grad nid chönne nacheluege.",
}
