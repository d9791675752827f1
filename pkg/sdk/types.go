package pkgdex

import "time"

// SearchMode selects the retrieval strategy. There is no fallback between modes.
type SearchMode string

// Search mode constants.
const (
	ModeKeyword       SearchMode = "keyword"
	ModeSemantic      SearchMode = "semantic"
	ModeHybrid        SearchMode = "hybrid"
	ModeExternalIndex SearchMode = "external-index"
)

// Query holds search input. Zero values mean "not set".
// Semantic and hybrid modes honour Text, Language and Limit only.
type Query struct {
	Text     string
	Language string
	License  string
	Category string
	MinStars int
	// SortBy is one of relevance, stars, downloads, recent, name, popularity.
	SortBy string
	Page   int
	Limit  int
}

// Package is the public projection of a catalog record.
type Package struct {
	ID          int64
	Slug        string
	Name        string
	Description string
	Language    string
	License     string
	Categories  []string
	Stars       int
	Forks       int
	Downloads   int64
	UpdatedAt   time.Time
}

// Hit is one search result.
type Hit struct {
	Package
	// Relevance is the similarity for semantic hits, the fixed keyword weight
	// for keyword-only hybrid hits and the index score for external-index hits.
	Relevance float64
	// Source is "semantic", "keyword" or "index"; empty for keyword mode.
	Source     string
	Highlights map[string]string
}

// Result is one page of hits.
type Result struct {
	Hits       []Hit
	Total      int
	Page       int
	Limit      int
	TotalPages int
	// ProcessingTime is set for external-index queries.
	ProcessingTime time.Duration
}

// JobReport summarizes a batch job run.
type JobReport struct {
	Processed int
	Failed    int
	Skipped   int
	Deleted   int
	Duration  time.Duration
}
