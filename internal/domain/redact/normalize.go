package redact

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize lowercases a transcript word and strips every rune that is not a
// letter, digit, underscore or whitespace. It is applied before every
// profanity check so "Shit," "SHIT!" and "shit" classify the same.
func Normalize(word string) string {
	lower := cases.Lower(language.Und).String(word)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if isWordRune(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
