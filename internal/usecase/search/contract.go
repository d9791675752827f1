package search

import (
	"context"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/result"
	"github.com/kailas-cloud/pkgdex/internal/usecase/fulltext"
	"github.com/kailas-cloud/pkgdex/internal/usecase/keyword"
)

// KeywordEngine runs substring queries against the system of record.
type KeywordEngine interface {
	Search(
		ctx context.Context, text string, criteria filter.Criteria, sortBy order.Key, offset, limit int,
	) (keyword.Page, error)
}

// VectorSearcher ranks embedded packages by similarity.
type VectorSearcher interface {
	Search(
		ctx context.Context, vec []float32, k int, minSimilarity float64, language string,
	) ([]result.Result, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// FullTextIndex answers queries against the external full-text index.
type FullTextIndex interface {
	Query(ctx context.Context, p *fulltext.Params) (fulltext.Result, error)
}
