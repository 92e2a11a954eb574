package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// ValidateTaxID drops every non-digit and accepts the remainder only when it
// is exactly 10 or 12 digits long. It is total: any input yields either a
// valid identifier or false.
func ValidateTaxID(candidate string) (string, bool) {
	var b strings.Builder
	for _, r := range candidate {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	d := b.String()
	if len(d) != 10 && len(d) != 12 {
		return "", false
	}
	return d, true
}

// ValidateFullName keeps Russian letters and whitespace, collapses whitespace
// runs to one space and trims. An empty remainder is rejected.
func ValidateFullName(candidate string) (string, bool) {
	var b strings.Builder
	for _, r := range norm.NFC.String(candidate) {
		switch {
		case isRussianLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	if name == "" {
		return "", false
	}
	return name, true
}

// isRussianLetter covers А-Я, а-я and Ё/ё.
func isRussianLetter(r rune) bool {
	return (r >= 'А' && r <= 'я') || r == 'Ё' || r == 'ё'
}

// normalize composes decomposed sequences (и + U+0306, е + U+0308) so the
// patterns see single runes.
func normalize(text string) string {
	return norm.NFC.String(text)
}
