package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
)

// EmbeddingOptions tunes the embedding job.
type EmbeddingOptions struct {
	PageSize int
	// CheckpointEvery logs progress every N records. Zero disables it.
	CheckpointEvery int
}

// EmbeddingJob generates vectors for records whose embedding is missing or
// older than the record. Each page goes through the batch embedder, which
// embeds sequentially.
type EmbeddingJob struct {
	store  EmbeddingStore
	embed  Embedder
	opts   EmbeddingOptions
	logger *zap.Logger
	now    func() time.Time
}

// NewEmbeddingJob creates the embedding job.
func NewEmbeddingJob(store EmbeddingStore, embed Embedder, opts EmbeddingOptions, logger *zap.Logger) *EmbeddingJob {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &EmbeddingJob{store: store, embed: embed, opts: opts, logger: logger, now: time.Now}
}

// Run embeds every pending record; with force, every record.
// A failing record is logged and counted. The job aborts when the model is
// unavailable or ctx is done, returning the partial report.
func (j *EmbeddingJob) Run(ctx context.Context, force bool, progress Progress) (r Report, err error) {
	start := time.Now()
	defer r.finish(JobEmbeddings, start)

	total, err := j.store.CountPendingEmbeddings(ctx, force)
	if err != nil {
		return r, fmt.Errorf("count pending embeddings: %w", err)
	}
	j.logger.Info("Embedding job started", zap.Int("pending", total), zap.Bool("force", force))

	var afterID int64
	for {
		page, err := j.store.PendingEmbeddings(ctx, afterID, j.opts.PageSize, force)
		if err != nil {
			return r, fmt.Errorf("list pending embeddings: %w", err)
		}
		if len(page) == 0 {
			break
		}

		if err := j.embedPage(ctx, page, &r, total, progress); err != nil {
			return r, err
		}
		afterID = page[len(page)-1].ID
	}

	j.logger.Info("Embedding job finished",
		zap.Int("processed", r.Processed),
		zap.Int("failed", r.Failed),
		zap.Int("skipped", r.Skipped),
		zap.Duration("duration", time.Since(start)),
	)
	return r, nil
}

// embedPage runs the page through the batch embedder. A failing record is
// counted and the batch resumes after it.
func (j *EmbeddingJob) embedPage(
	ctx context.Context, page []catalog.PackageRecord, r *Report, total int, progress Progress,
) error {
	texts := make([]string, len(page))
	for i := range page {
		texts[i] = catalog.EmbeddingText(&page[i])
	}

	for next := 0; next < len(page); {
		if err := ctx.Err(); err != nil {
			return err
		}
		vecs, err := j.embed.EmbedBatch(ctx, texts[next:])
		for k, vec := range vecs {
			j.save(ctx, &page[next+k], vec, r)
			j.tick(r, total, progress)
		}
		next += len(vecs)
		if err == nil {
			break
		}

		if errors.Is(err, domain.ErrModelUnavailable) {
			j.logger.Error("Embedding model unavailable, aborting", zap.Error(err))
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var item *domain.BatchItemError
		if !errors.As(err, &item) {
			return fmt.Errorf("embed page: %w", err)
		}
		r.Failed++
		j.logger.Warn("Embedding failed",
			zap.Int64("id", page[next].ID),
			zap.String("slug", page[next].Slug),
			zap.Error(item.Err),
		)
		j.tick(r, total, progress)
		next++
	}
	return nil
}

// save stores one vector. A record deleted since it was listed is skipped.
func (j *EmbeddingJob) save(ctx context.Context, rec *catalog.PackageRecord, vec []float32, r *Report) {
	err := j.store.SaveEmbedding(ctx, rec.ID, vec, j.now())
	switch {
	case err == nil:
		r.Processed++
	case errors.Is(err, domain.ErrNotFound):
		r.Skipped++
	default:
		r.Failed++
		j.logger.Warn("Saving embedding failed",
			zap.Int64("id", rec.ID),
			zap.String("slug", rec.Slug),
			zap.Error(err),
		)
	}
}

func (j *EmbeddingJob) tick(r *Report, total int, progress Progress) {
	done := r.Processed + r.Failed + r.Skipped
	progress.report(done, total)
	if n := j.opts.CheckpointEvery; n > 0 && done%n == 0 {
		j.logger.Info("Embedding checkpoint",
			zap.Int("processed", r.Processed),
			zap.Int("failed", r.Failed),
			zap.Int("total", total),
		)
	}
}
