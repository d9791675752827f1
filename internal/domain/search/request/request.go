package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/mode"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/page"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in bytes.
	MaxQueryLength = 512

	DefaultLimit = 20
	MaxLimit     = 100

	// Semantic and hybrid results are not paginated and are capped lower.
	DefaultVectorLimit = 10
	MaxVectorLimit     = 50
)

// Request is a validated search query.
type Request struct {
	query      string
	searchMode mode.Mode
	criteria   filter.Criteria
	sortBy     order.Key
	page       int
	limit      int
}

// New validates and normalizes search parameters.
// Zero page/limit pick mode-specific defaults; oversized limits are clamped.
func New(
	query string,
	m mode.Mode,
	criteria filter.Criteria,
	sortBy order.Key,
	pageNum, limit int,
) (Request, error) {
	query = strings.TrimSpace(query)
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidQuery, MaxQueryLength)
	}
	if m == "" {
		m = mode.Keyword
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidQuery, m)
	}
	if m.RequiresQuery() && query == "" {
		return Request{}, fmt.Errorf("%w: query is required for %s search", domain.ErrInvalidQuery, m)
	}
	if sortBy == "" {
		sortBy = order.Relevance
	}
	if pageNum < 0 || limit < 0 {
		return Request{}, fmt.Errorf("%w: page and limit must be positive", domain.ErrInvalidQuery)
	}
	if pageNum == 0 {
		pageNum = 1
	}

	defLimit, maxLimit := DefaultLimit, MaxLimit
	if m.RequiresQuery() {
		defLimit, maxLimit = DefaultVectorLimit, MaxVectorLimit
		pageNum = 1
	}
	if limit == 0 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return Request{
		query:      query,
		searchMode: m,
		criteria:   criteria,
		sortBy:     sortBy,
		page:       pageNum,
		limit:      limit,
	}, nil
}

// Query returns the trimmed search text ("" when absent).
func (r *Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r *Request) Mode() mode.Mode { return r.searchMode }

// Criteria returns the filters.
func (r *Request) Criteria() filter.Criteria { return r.criteria }

// SortBy returns the sort key.
func (r *Request) SortBy() order.Key { return r.sortBy }

// Page returns the 1-indexed page number.
func (r *Request) Page() int { return r.page }

// Limit returns the page size.
func (r *Request) Limit() int { return r.limit }

// Offset returns (page-1)*limit.
func (r *Request) Offset() int { return page.Offset(r.page, r.limit) }

// IsDegenerate reports a keyword request with nothing to search for:
// no query text and no language filter.
func (r *Request) IsDegenerate() bool {
	return r.query == "" && !r.criteria.HasLanguage()
}
