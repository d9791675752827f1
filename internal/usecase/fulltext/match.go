package fulltext

import (
	"strings"
	"unicode/utf8"

	"github.com/xrash/smetrics"
)

// termMatch is how one query word matched one document word.
type termMatch struct {
	typos int
	exact bool
}

// matchWord reports whether a document word matches a query word within
// maxTypos edits. With prefix, a document word starting with the query word
// matches without typos but is not exact.
func matchWord(docWord, qWord string, maxTypos int, prefix bool) (termMatch, bool) {
	if docWord == qWord {
		return termMatch{exact: true}, true
	}
	if prefix && strings.HasPrefix(docWord, qWord) {
		return termMatch{}, true
	}
	if maxTypos == 0 {
		return termMatch{}, false
	}
	if abs(utf8.RuneCountInString(docWord)-utf8.RuneCountInString(qWord)) > maxTypos {
		return termMatch{}, false
	}
	d := smetrics.WagnerFischer(docWord, qWord, 1, 1, 1)
	if d > maxTypos {
		return termMatch{}, false
	}
	return termMatch{typos: d}, true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
