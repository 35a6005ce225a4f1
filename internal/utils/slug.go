package utils

import (
	"strings"
	"unicode"
)

// Slugify lowercases a title and reduces it to hyphen-separated ASCII words.
// Runes outside [a-z0-9] act as separators; consecutive separators collapse
// to a single hyphen. The result never starts or ends with a hyphen.
//
// Collision handling (the "-1", "-2" suffix) is the repository's concern,
// not this function's.
func Slugify(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			// Non-ASCII letters and digits are dropped rather than transliterated.
			continue
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
