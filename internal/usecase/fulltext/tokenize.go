package fulltext

import (
	"strings"
	"unicode"
)

// token is a lowercased word and its position within the source text.
type token struct {
	word  string
	start int // byte offsets into the source
	end   int
}

// tokenize splits text into lowercased letter/digit runs.
func tokenize(text string) []token {
	var (
		out   []token
		start = -1
	)
	for i, r := range text {
		isWord := unicode.IsLetter(r) || unicode.IsDigit(r)
		switch {
		case isWord && start < 0:
			start = i
		case !isWord && start >= 0:
			out = append(out, token{word: strings.ToLower(text[start:i]), start: start, end: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, token{word: strings.ToLower(text[start:]), start: start, end: len(text)})
	}
	return out
}

// queryWords returns the distinct query words in input order.
func queryWords(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tokenize(text) {
		if !seen[t.word] {
			seen[t.word] = true
			out = append(out, t.word)
		}
	}
	return out
}
