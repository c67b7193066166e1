package identifier

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonLetters = regexp.MustCompile(`[^a-z ]+`)

// Normalize folds a display name into its identifier alphabet: accents are
// stripped, case is lowered, and anything that is not a-z or a space is
// dropped. Leading and trailing whitespace is trimmed.
//
// Example: "  João  SILVA-2 " -> "joao  silva"
func Normalize(displayName string) string {
	// Decompose first so combining marks can be removed from their base letter.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, displayName)
	if err != nil {
		stripped = displayName
	}

	// Any Unicode space (NBSP, tabs, ...) separates tokens.
	spaced := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, stripped)

	lowered := strings.ToLower(spaced)
	return strings.TrimSpace(nonLetters.ReplaceAllString(lowered, ""))
}

// Tokens returns the non-empty whitespace separated words of the normalized
// display name.
func Tokens(displayName string) []string {
	return strings.Fields(Normalize(displayName))
}
