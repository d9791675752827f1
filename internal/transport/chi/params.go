package chi

import (
	"fmt"
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/mode"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/request"
)

// searchParams are the query-string parameters shared by the search routes.
// Absent parameters stay nil.
type searchParams struct {
	Q        *string
	Language *string
	License  *string
	Category *string
	SortBy   *string
	MinStars *int
	Page     *int
	Limit    *int
}

func bindSearchParams(r *http.Request) (searchParams, error) {
	var p searchParams
	q := r.URL.Query()
	bindings := []struct {
		name string
		dest any
	}{
		{"q", &p.Q},
		{"language", &p.Language},
		{"license", &p.License},
		{"category", &p.Category},
		{"sortBy", &p.SortBy},
		{"minStars", &p.MinStars},
		{"page", &p.Page},
		{"limit", &p.Limit},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return searchParams{}, fmt.Errorf("%w: invalid format for parameter %s", domain.ErrInvalidQuery, b.name)
		}
	}
	return p, nil
}

// request validates the parameters into a search request for mode m.
// The vector modes only honour q, language and limit.
func (p *searchParams) request(m mode.Mode) (request.Request, error) {
	var (
		criteria filter.Criteria
		sortBy   order.Key
		err      error
	)
	if m.RequiresQuery() {
		criteria = filter.ByLanguage(deref(p.Language))
	} else {
		criteria, err = filter.New(deref(p.Language), deref(p.License), deref(p.Category), derefInt(p.MinStars))
		if err != nil {
			return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		sortBy, err = order.Parse(deref(p.SortBy))
		if err != nil {
			return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
	}

	if p.Page != nil && *p.Page < 1 {
		return request.Request{}, fmt.Errorf("%w: page must be >= 1", domain.ErrInvalidQuery)
	}
	if p.Limit != nil && *p.Limit < 1 {
		return request.Request{}, fmt.Errorf("%w: limit must be >= 1", domain.ErrInvalidQuery)
	}

	req, err := request.New(deref(p.Q), m, criteria, sortBy, derefInt(p.Page), derefInt(p.Limit))
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
