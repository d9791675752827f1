package jobs

import (
	"context"
	"time"

	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/usecase/fulltext"
)

// EmbeddingStore reads records that need a vector and writes vectors back.
type EmbeddingStore interface {
	PendingEmbeddings(ctx context.Context, afterID int64, limit int, force bool) ([]catalog.PackageRecord, error)
	CountPendingEmbeddings(ctx context.Context, force bool) (int, error)
	SaveEmbedding(ctx context.Context, id int64, vec []float32, at time.Time) error
}

// Embedder vectorizes package text in order.
// On failure it returns the vectors embedded so far and a *domain.BatchItemError.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// RecordLister pages through the full catalog in id order.
type RecordLister interface {
	ListAll(ctx context.Context, afterID int64, limit int) ([]catalog.PackageRecord, error)
	CountAll(ctx context.Context) (int, error)
}

// IndexSyncer pushes index settings and rebuilds the full-text index.
type IndexSyncer interface {
	Initialize(ctx context.Context) (bool, error)
	Sync(ctx context.Context, records []catalog.PackageRecord) (fulltext.SyncReport, error)
}
