package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// normalizeText trims s, composes it to NFC and drops control characters other than
// newlines and tabs.
func normalizeText(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))

	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
