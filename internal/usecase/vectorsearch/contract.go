package vectorsearch

import (
	"context"

	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
)

// Repository runs nearest-neighbour queries over stored embeddings.
type Repository interface {
	Nearest(ctx context.Context, q *query.Nearest) ([]query.ScoredRecord, error)
}
