package keyword

import (
	"context"

	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
)

// Repository runs substring queries against the system of record.
type Repository interface {
	SearchKeyword(ctx context.Context, q *query.Keyword) (query.Page, error)
}
