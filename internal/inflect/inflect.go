// Package inflect holds the word-level text transforms used to normalize
// session type labels.
package inflect

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gertd/go-pluralize"
)

var client = pluralize.NewClient()

// TitleCase lower-cases s and upper-cases the first letter of every
// space-separated word. Blank input yields "".
func TitleCase(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	words := strings.Split(strings.ToLower(s), " ")
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		if size == 0 {
			continue
		}
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// Singular turns a plural label into its singular form, word-inflection
// aware: "Breakout Sessions" becomes "Breakout Session".
func Singular(s string) string {
	if s == "" {
		return ""
	}
	return client.Singular(s)
}

// Plural is the inverse of Singular.
func Plural(s string) string {
	if s == "" {
		return ""
	}
	return client.Plural(s)
}

// SessionType normalizes a raw type attribute into a grouping label.
func SessionType(raw string) string {
	return TitleCase(Singular(strings.TrimSpace(raw)))
}
