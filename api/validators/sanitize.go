package validators

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeText drops control characters other than newlines and tabs, trims the
// result and cuts it to at most maxRunes runes. maxRunes <= 0 disables the cut.
func SanitizeText(input string, maxRunes int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || r == utf8.RuneError {
			return -1
		}
		return r
	}, input)
	cleaned = strings.TrimSpace(cleaned)

	if maxRunes > 0 && utf8.RuneCountInString(cleaned) > maxRunes {
		runes := []rune(cleaned)
		cleaned = strings.TrimSpace(string(runes[:maxRunes]))
	}
	return cleaned
}
