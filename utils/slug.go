package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip      = regexp.MustCompile(`[^a-z0-9\s]`)
	slugWhitespace = regexp.MustCompile(`\s+`)
)

// DeriveSlug turns a display name into a URL slug:
// "Café Crème!! 2024" becomes "cafe-creme-2024".
func DeriveSlug(name string) string {
	// Normalize accents
	t := norm.NFD.String(name)
	var b strings.Builder
	for _, r := range t {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsSpace(r):
			// regexp \s is ASCII only; NBSP and friends must still separate words
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}

	s := strings.ToLower(b.String())
	s = slugStrip.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	s = slugWhitespace.ReplaceAllString(s, "-")

	return strings.Trim(s, "-")
}
