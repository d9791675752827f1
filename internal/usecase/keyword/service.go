package keyword

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/result"
)

// DefaultRelevance is the relevance weight carried by keyword hits,
// which have no natural similarity score.
const DefaultRelevance = 0.5

// Page is one page of keyword results plus the total match count.
type Page struct {
	Results []result.Result
	Total   int
}

// Service is the keyword query engine over the system of record.
type Service struct {
	repo      Repository
	relevance float64
}

// New creates a keyword engine. relevance <= 0 selects DefaultRelevance.
func New(repo Repository, relevance float64) *Service {
	if relevance <= 0 {
		relevance = DefaultRelevance
	}
	return &Service{repo: repo, relevance: relevance}
}

// Search matches text as a case-insensitive substring of name or description.
// Empty text lists everything the criteria admit.
func (s *Service) Search(
	ctx context.Context, text string, criteria filter.Criteria, sortBy order.Key, offset, limit int,
) (Page, error) {
	text = strings.TrimSpace(text)
	pg, err := s.repo.SearchKeyword(ctx, &query.Keyword{
		Text:     text,
		Criteria: criteria,
		Sort:     sortBy,
		Offset:   offset,
		Limit:    limit,
	})
	if err != nil {
		return Page{}, fmt.Errorf("keyword search: %w", err)
	}

	records := pg.Records
	if text != "" && sortBy == order.Relevance {
		records = Rerank(records, text)
	}

	out := make([]result.Result, 0, len(records))
	for i := range records {
		out = append(out, result.New(records[i].Summary(), s.relevance, result.SourceKeyword))
	}
	return Page{Results: out, Total: pg.Total}, nil
}

// Rerank applies the relevance ladder on top of store order:
// name equals > slug equals > name contains > slug contains > everything else.
// Within a tier the store order (stars, then id) is kept.
func Rerank(records []catalog.PackageRecord, text string) []catalog.PackageRecord {
	q := strings.ToLower(text)
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b catalog.PackageRecord) int {
		return tier(&a, q) - tier(&b, q)
	})
	return out
}

func tier(p *catalog.PackageRecord, q string) int {
	name, slug := strings.ToLower(p.Name), strings.ToLower(p.Slug)
	switch {
	case name == q:
		return 0
	case slug == q:
		return 1
	case strings.Contains(name, q):
		return 2
	case strings.Contains(slug, q):
		return 3
	default:
		return 4
	}
}
