package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Words splits an identifier into words on lower-to-upper case changes,
// whitespace, and the separators '-', '_' and '.'.
func Words(value string) []string {
	var words []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			words = append(words, string(current))
			current = current[:0]
		}
	}
	runes := []rune(strings.TrimSpace(value))
	for i, r := range runes {
		switch {
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			flush()
			continue
		case !unicode.IsLetter(r) && !unicode.IsNumber(r):
			continue
		}
		if len(current) > 0 && i > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsUpper(r) && unicode.IsLower(prev):
				flush()
			case unicode.IsUpper(r) && unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				// "HTTPServer" splits before the final capital.
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return words
}

// Title renders an identifier as space-separated title-cased words. Empty input
// yields an empty string.
func Title(value string) string {
	words := Words(value)
	if len(words) == 0 {
		return ""
	}
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
