package strings

import (
	"strings"
	"unicode"
)

// NormalizeText lowercases s, drops punctuation and collapses runs of
// whitespace to a single space.
//
// Example:
//
//	NormalizeText("  OFFICE  Rent, (March) ")
//	// Returns: "office rent march"
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		default:
			space = true
		}
	}
	return b.String()
}
