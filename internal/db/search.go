package db

import "github.com/kailas-cloud/pkgdex/internal/domain/search/filter"

// TextTerm is one query word with its allowed edit distance.
type TextTerm struct {
	Word string
	// Fuzz is the Levenshtein distance tolerated for this word (0-3).
	Fuzz int
	// Prefix also matches words starting with Word.
	Prefix bool
}

// TextQuery is the input for a full-text search.
// No terms means "match everything" (filters still apply).
type TextQuery struct {
	IndexName    string
	Terms        []TextTerm
	Filters      []filter.Condition
	Offset       int
	Limit        int
	SortBy       string
	SortAsc      bool
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
