package vectorsearch

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/result"
)

// Service ranks embedded packages by cosine similarity to a query vector.
//
// Ranking is an exact full scan in the store; there is no ANN index, which
// bounds practical catalog size to the low thousands. Ties keep the store
// order: ascending package id.
type Service struct {
	repo Repository
}

// New creates a vector search service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search returns up to k packages with similarity >= minSimilarity, most
// similar first. language ("" = any) narrows membership before ranking.
// The threshold is applied after ranking.
func (s *Service) Search(
	ctx context.Context, vec []float32, k int, minSimilarity float64, language string,
) ([]result.Result, error) {
	if k <= 0 {
		return []result.Result{}, nil
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidQuery)
	}

	scored, err := s.repo.Nearest(ctx, &query.Nearest{
		Vector:   vec,
		K:        k,
		Language: catalog.NormalizeLanguage(language),
	})
	if err != nil {
		return nil, fmt.Errorf("nearest: %w", err)
	}

	out := make([]result.Result, 0, len(scored))
	for i := range scored {
		sim := domain.ClampSimilarity(scored[i].Similarity)
		if sim < minSimilarity {
			continue
		}
		out = append(out, result.New(scored[i].Record.Summary(), sim, result.SourceSemantic))
	}
	return out, nil
}
