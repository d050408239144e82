package cache

import (
	"strings"
	"unicode"
)

// toSnake lowers s and joins its words with KeySeparator. Words break on
// lower-to-upper changes, at the end of an acronym and between letters and
// digits. Runes that are neither letters nor digits only separate words, so
// glob metacharacters and escapes never reach a key.
func toSnake(s string) string {
	runes := []rune(s)
	words := make([]string, 0, 4)
	word := make([]rune, 0, len(runes))

	flush := func() {
		if len(word) > 0 {
			words = append(words, strings.ToLower(string(word)))
			word = word[:0]
		}
	}

	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if len(word) > 0 && startsWord(runes, i) {
			flush()
		}
		word = append(word, r)
	}
	flush()

	return strings.Join(words, KeySeparator)
}

// startsWord reports whether runes[i] opens a new word. runes[i-1] is known
// to be a letter or digit.
func startsWord(runes []rune, i int) bool {
	prev, r := runes[i-1], runes[i]
	if unicode.IsDigit(r) != unicode.IsDigit(prev) {
		return true
	}
	if !unicode.IsUpper(r) {
		return false
	}
	nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
	return unicode.IsLower(prev) || (unicode.IsUpper(prev) && nextLower)
}
