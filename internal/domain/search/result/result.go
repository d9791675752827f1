package result

import "github.com/kailas-cloud/pkgdex/internal/domain/catalog"

// Source names the retrieval strategy that produced a hit.
type Source string

// Result sources.
const (
	SourceSemantic Source = "semantic"
	SourceKeyword  Source = "keyword"
	SourceIndex    Source = "index"
)

// Result is a single search hit. Never persisted.
type Result struct {
	pkg        catalog.Summary
	relevance  float64
	source     Source
	highlights map[string]string
}

// New creates a search result.
// relevance is a similarity in [0,1] for semantic hits and a fixed weight for keyword hits.
func New(pkg catalog.Summary, relevance float64, source Source) Result {
	return Result{pkg: pkg, relevance: relevance, source: source}
}

// WithHighlights returns a copy carrying highlighted field values.
func (r Result) WithHighlights(h map[string]string) Result {
	r.highlights = h
	return r
}

// Package returns the package summary.
func (r *Result) Package() catalog.Summary { return r.pkg }

// ID returns the package identifier.
func (r *Result) ID() int64 { return r.pkg.ID }

// Slug returns the package slug.
func (r *Result) Slug() string { return r.pkg.Slug }

// Relevance returns the sort signal.
func (r *Result) Relevance() float64 { return r.relevance }

// Source returns the producing strategy.
func (r *Result) Source() Source { return r.source }

// Highlights returns highlighted name/description, if any.
func (r *Result) Highlights() map[string]string { return r.highlights }
