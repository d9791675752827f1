package index

import "github.com/kailas-cloud/pkgdex/internal/domain/search/filter"

// Term is one query word as sent to the index.
type Term struct {
	Word string
	// Fuzz is the edit distance tolerated for the word.
	Fuzz   int
	Prefix bool
}

// Query asks the index for a candidate window. Ranking beyond the
// engine score happens locally.
type Query struct {
	Terms    []Term
	Filters  []filter.Condition
	SortAttr string
	SortAsc  bool
	Offset   int
	Limit    int
}

// Hit is one candidate returned by the index with its engine score.
type Hit struct {
	Doc   Document
	Score float64
}

// Candidates is a window of hits plus the engine's total match count.
type Candidates struct {
	Hits  []Hit
	Total int
}
