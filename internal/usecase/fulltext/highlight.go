package fulltext

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pkgdex/internal/domain/index"
)

const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// highlight wraps words of text that match any query word in <mark> tags.
// The original casing of the text is kept.
func highlight(text string, words []string, tol index.TypoTolerance) string {
	if text == "" || len(words) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, t := range tokenize(text) {
		if !matchesAny(t.word, words, tol) {
			continue
		}
		b.WriteString(text[last:t.start])
		b.WriteString(markOpen)
		b.WriteString(text[t.start:t.end])
		b.WriteString(markClose)
		last = t.end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

func matchesAny(docWord string, words []string, tol index.TypoTolerance) bool {
	for i, w := range words {
		allowed := tol.AllowedTypos(utf8.RuneCountInString(w))
		if _, ok := matchWord(docWord, w, allowed, i == len(words)-1); ok {
			return true
		}
	}
	return false
}
