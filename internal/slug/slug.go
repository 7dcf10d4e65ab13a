// Package slug turns titles and names into URL path segments.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Make lowercases text, strips diacritics, replaces whitespace runs with a
// single hyphen and drops every character outside [a-z0-9_-]. Whitespace
// separated only by dropped characters counts as one run. Hyphens left at
// either end are trimmed.
func Make(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}

	var b strings.Builder
	b.Grow(len(folded))
	inSpace := false
	for _, r := range strings.ToLower(strings.TrimSpace(folded)) {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteByte('-')
			}
			inSpace = true
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
			inSpace = false
		}
	}
	return strings.Trim(b.String(), "-")
}

// Derive returns current when it is non-blank, otherwise Make(source). Form
// handlers use it so an edited slug is never overwritten.
func Derive(source, current string) string {
	if strings.TrimSpace(current) != "" {
		return strings.TrimSpace(current)
	}
	return Make(source)
}
