package jobs

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
)

// IndexJob rebuilds the full-text index from a snapshot of the catalog.
type IndexJob struct {
	records  RecordLister
	index    IndexSyncer
	pageSize int
	logger   *zap.Logger
}

// NewIndexJob creates the index job.
func NewIndexJob(records RecordLister, index IndexSyncer, pageSize int, logger *zap.Logger) *IndexJob {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &IndexJob{records: records, index: index, pageSize: pageSize, logger: logger}
}

// Init pushes the index settings only.
func (j *IndexJob) Init(ctx context.Context) (bool, error) {
	created, err := j.index.Initialize(ctx)
	if err != nil {
		return false, fmt.Errorf("initialize index: %w", err)
	}
	return created, nil
}

// Run initializes the index, then loads the whole catalog and rebuilds
// the index from it. Progress reports snapshot loading.
func (j *IndexJob) Run(ctx context.Context, progress Progress) (r Report, err error) {
	start := time.Now()
	defer r.finish(JobIndex, start)

	if _, err := j.Init(ctx); err != nil {
		return r, err
	}

	records, err := j.snapshot(ctx, progress)
	if err != nil {
		return r, err
	}

	sr, err := j.index.Sync(ctx, records)
	r.Processed, r.Failed, r.Deleted = sr.Indexed, sr.Failed, sr.Deleted
	if err != nil {
		return r, fmt.Errorf("sync index: %w", err)
	}

	j.logger.Info("Index job finished",
		zap.Int("records", len(records)),
		zap.Int("indexed", r.Processed),
		zap.Int("failed", r.Failed),
		zap.Int("deleted", r.Deleted),
		zap.Duration("duration", time.Since(start)),
	)
	return r, nil
}

func (j *IndexJob) snapshot(ctx context.Context, progress Progress) ([]catalog.PackageRecord, error) {
	total, err := j.records.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	out := make([]catalog.PackageRecord, 0, total)
	var afterID int64
	for {
		page, err := j.records.ListAll(ctx, afterID, j.pageSize)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		if len(page) == 0 {
			return out, nil
		}
		out = append(out, page...)
		progress.report(len(out), total)
		afterID = page[len(page)-1].ID
	}
}
