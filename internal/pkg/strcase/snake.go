// Package strcase converts Go identifiers into the snake_case names used in
// JSON payloads and validation messages.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerSnake converts an identifier to snake_case. Initialisms stay
// together: "FirebaseUID" becomes "firebase_uid", "HTTPServer" becomes
// "http_server".
func ToLowerSnake(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) && wordBoundary(runes, i) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

func wordBoundary(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}

	// end of an initialism followed by a regular word: the "S" in "HTTPServer"
	return unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
