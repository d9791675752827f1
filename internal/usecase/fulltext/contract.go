package fulltext

import (
	"context"

	"github.com/kailas-cloud/pkgdex/internal/domain/index"
)

// Repository is the full-text index backend.
type Repository interface {
	Ping(ctx context.Context) error
	LoadSettings(ctx context.Context) (index.Settings, bool, error)
	SaveSettings(ctx context.Context, s *index.Settings) error
	EnsureIndex(ctx context.Context, s *index.Settings, recreate bool) (bool, error)
	Upsert(ctx context.Context, docs []index.Document) error
	Slugs(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, slugs []string) error
	Search(ctx context.Context, q *index.Query) (index.Candidates, error)
	Count(ctx context.Context) (int, error)
}
