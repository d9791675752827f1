package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/metrics"
)

// ModelLoader prepares the embedding model and reports its output dimension.
type ModelLoader interface {
	Load(ctx context.Context) (int, error)
}

// Options tunes the generator.
type Options struct {
	// Timeout bounds every single embedding call. Zero disables it.
	Timeout time.Duration
	// LoadTimeout bounds the one-time model load.
	LoadTimeout time.Duration
	// CheckpointEvery logs batch progress every N items. Zero disables it.
	CheckpointEvery int
}

// Generator turns text into unit-length vectors.
//
// The model is loaded lazily on first use, once per process: concurrent first
// callers share one in-flight load. A failed load is remembered and every
// later call fails with domain.ErrModelUnavailable.
type Generator struct {
	inner  domain.Embedder
	loader ModelLoader
	opts   Options
	logger *zap.Logger

	loadGroup singleflight.Group
	mu        sync.RWMutex
	dims      int
	loadErr   error
}

// NewGenerator creates a generator over a provider client.
func NewGenerator(inner domain.Embedder, loader ModelLoader, opts Options, logger *zap.Logger) *Generator {
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = time.Minute
	}
	return &Generator{inner: inner, loader: loader, opts: opts, logger: logger}
}

// Dimensions returns the loaded model dimension, loading it if needed.
func (g *Generator) Dimensions(ctx context.Context) (int, error) {
	return g.ensureModel(ctx)
}

// Embed returns the unit-normalized embedding of text.
func (g *Generator) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	dims, err := g.ensureModel(ctx)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}

	if g.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.opts.Timeout)
		defer cancel()
	}

	res, err := g.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}
	if len(res.Embedding) != dims {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w: got %d dims, model has %d",
			domain.ErrEmbeddingProviderError, domain.ErrVectorDimMismatch, len(res.Embedding), dims)
	}

	unit, err := domain.Normalize(res.Embedding)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	res.Embedding = unit
	return res, nil
}

// EmbedBatch embeds texts one at a time, preserving order.
// Texts are processed sequentially to bound peak memory. It stops at the first
// error and returns the vectors embedded so far with a *domain.BatchItemError.
func (g *Generator) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	start := time.Now()

	for i, text := range texts {
		res, err := g.Embed(ctx, text)
		if err != nil {
			metrics.EmbeddingBatchTotal.WithLabelValues("failed").Inc()
			return out, &domain.BatchItemError{Index: i, Err: err}
		}
		metrics.EmbeddingBatchTotal.WithLabelValues("ok").Inc()
		out = append(out, res.Embedding)

		if n := i + 1; g.opts.CheckpointEvery > 0 && n%g.opts.CheckpointEvery == 0 {
			g.logger.Info("Embedding batch checkpoint",
				zap.Int("processed", n),
				zap.Int("total", len(texts)),
				zap.Duration("elapsed", time.Since(start)),
			)
		}
	}
	return out, nil
}

// HealthCheck reports a failed model load, otherwise checks the provider.
// The provider is found on the inner embedder or, when that is a decorator
// without a health check, on the loader.
func (g *Generator) HealthCheck(ctx context.Context) error {
	g.mu.RLock()
	loadErr := g.loadErr
	g.mu.RUnlock()
	if loadErr != nil {
		return loadErr
	}

	hc, ok := g.inner.(domain.HealthChecker)
	if !ok {
		hc, ok = g.loader.(domain.HealthChecker)
	}
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, err)
	}
	return nil
}

func (g *Generator) ensureModel(ctx context.Context) (int, error) {
	g.mu.RLock()
	dims, loadErr := g.dims, g.loadErr
	g.mu.RUnlock()
	if loadErr != nil {
		return 0, loadErr
	}
	if dims > 0 {
		return dims, nil
	}

	ch := g.loadGroup.DoChan("model", func() (any, error) {
		return g.load(ctx)
	})
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("wait for model load: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return 0, r.Err
		}
		return r.Val.(int), nil //nolint:forcetypeassert // load always returns int
	}
}

// load is detached from the caller's cancellation; only LoadTimeout bounds it.
func (g *Generator) load(ctx context.Context) (int, error) {
	g.mu.RLock()
	dims, loadErr := g.dims, g.loadErr
	g.mu.RUnlock()
	if loadErr != nil {
		return 0, loadErr
	}
	if dims > 0 {
		return dims, nil
	}

	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.opts.LoadTimeout)
	defer cancel()

	start := time.Now()
	dims, err := g.loader.Load(loadCtx)
	if err == nil && dims <= 0 {
		err = fmt.Errorf("model reported %d dimensions", dims)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		if !errors.Is(err, domain.ErrModelUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrModelUnavailable, err)
		}
		g.loadErr = err
		metrics.EmbeddingModelLoaded.Set(0)
		g.logger.Error("Embedding model load failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return 0, err
	}
	g.dims = dims
	metrics.EmbeddingModelLoaded.Set(1)
	g.logger.Info("Embedding model ready", zap.Int("dims", dims), zap.Duration("duration", time.Since(start)))
	return dims, nil
}
