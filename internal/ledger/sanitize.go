package ledger

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// SanitizeText strips HTML and unprintable characters from free text taken
// from institution exports. Line breaks and tabs become single spaces. Entities escaped by the policy are decoded
// again so "AT&T" stays "AT&T".
func SanitizeText(s string) string {
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return ' '
		case unicode.IsPrint(r):
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// csvSafe prefixes values that spreadsheets would evaluate as formulas.
func csvSafe(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	switch trimmed[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}
