// Package app assembles the components shared by the API server and the sync CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/config"
	"github.com/kailas-cloud/pkgdex/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/pkgdex/internal/db/redis"
	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/index"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
	"github.com/kailas-cloud/pkgdex/internal/metrics"
	"github.com/kailas-cloud/pkgdex/internal/repository/embcache"
	"github.com/kailas-cloud/pkgdex/internal/repository/ftindex"
	"github.com/kailas-cloud/pkgdex/internal/repository/memstore"
	"github.com/kailas-cloud/pkgdex/internal/repository/packages"
	openaiEmb "github.com/kailas-cloud/pkgdex/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/pkgdex/internal/usecase/embedding"
	"github.com/kailas-cloud/pkgdex/internal/usecase/fulltext"
	healthuc "github.com/kailas-cloud/pkgdex/internal/usecase/health"
	"github.com/kailas-cloud/pkgdex/internal/usecase/jobs"
	"github.com/kailas-cloud/pkgdex/internal/usecase/keyword"
	searchuc "github.com/kailas-cloud/pkgdex/internal/usecase/search"
	"github.com/kailas-cloud/pkgdex/internal/usecase/vectorsearch"
)

// Records is the system of record as seen by every consumer.
// Implemented by packages.Repo (postgres) and memstore.MemoryStore.
type Records interface {
	Ping(ctx context.Context) error
	SearchKeyword(ctx context.Context, q *query.Keyword) (query.Page, error)
	Nearest(ctx context.Context, q *query.Nearest) ([]query.ScoredRecord, error)
	PendingEmbeddings(ctx context.Context, afterID int64, limit int, force bool) ([]catalog.PackageRecord, error)
	CountPendingEmbeddings(ctx context.Context, force bool) (int, error)
	SaveEmbedding(ctx context.Context, id int64, vec []float32, at time.Time) error
	ListAll(ctx context.Context, afterID int64, limit int) ([]catalog.PackageRecord, error)
	CountAll(ctx context.Context) (int, error)
}

var (
	_ Records = (*packages.Repo)(nil)
	_ Records = (*memstore.MemoryStore)(nil)
)

// Components are the long-lived dependencies built from config.
type Components struct {
	Records Records
	Redis   *dbRedis.Store
	// Generator owns the model load; health reports a failed load through it.
	Generator *embeddinguc.Generator
	// Documents embeds catalog text; Queries adds the query cache when enabled.
	Documents domain.BatchEmbedder
	Queries   domain.Embedder
	FullText  *fulltext.Service

	closers []func()
}

// Build connects every backing service. The caller must call Close.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{}

	records, err := openRecords(ctx, cfg, logger, c)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Records = records

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("create redis store: %w", err)
	}
	c.Redis = store
	c.closers = append(c.closers, store.Close)

	readiness := time.Duration(cfg.Redis.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		c.Close()
		return nil, fmt.Errorf("redis not ready: %w", err)
	}
	logger.Info("Connected to redis", zap.Strings("addrs", cfg.Redis.Addrs))

	c.Generator, c.Documents, c.Queries = buildEmbedders(cfg, store, logger)

	settings := index.DefaultSettings()
	settings.TypoTolerance = index.TypoTolerance{
		OneTypo:  cfg.Index.OneTypoMinLen,
		TwoTypos: cfg.Index.TwoTypoMinLen,
	}
	c.FullText, err = fulltext.New(
		ftindex.New(store, cfg.Redis.KeyPrefix),
		settings,
		fulltext.Options{
			Window:    cfg.Search.Window,
			ChunkSize: cfg.Index.ChunkSize,
			Workers:   cfg.Index.Workers,
		},
		logger,
	)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("full-text service: %w", err)
	}

	return c, nil
}

// SearchService builds the search dispatcher over every engine.
func (c *Components) SearchService(cfg *config.Config, logger *zap.Logger) *searchuc.Service {
	return searchuc.New(
		keyword.New(c.Records, cfg.Search.KeywordWeight),
		vectorsearch.New(c.Records),
		c.Queries,
		c.FullText,
		searchuc.Options{
			SemanticMinSimilarity: cfg.Search.SemanticMinSimilarity,
			Fusion: searchuc.FusionOptions{
				SemanticShare: cfg.Search.HybridSemanticShare,
				KeywordWeight: cfg.Search.KeywordWeight,
				MinSimilarity: cfg.Search.HybridMinSimilarity,
			},
			ExternalTimeout: time.Duration(cfg.Search.ExternalTimeoutMs) * time.Millisecond,
		},
		logger,
	)
}

// HealthService builds the component health aggregator.
func (c *Components) HealthService(cfg *config.Config) *healthuc.Service {
	return healthuc.New(c.Records, c.Redis, c.Generator, c.FullText).
		WithTimeout(time.Duration(cfg.Index.HealthTimeoutS) * time.Second)
}

// EmbeddingJob builds the embedding batch job.
func (c *Components) EmbeddingJob(cfg *config.Config, logger *zap.Logger) *jobs.EmbeddingJob {
	return jobs.NewEmbeddingJob(c.Records, c.Documents, jobs.EmbeddingOptions{
		PageSize:        cfg.Sync.PageSize,
		CheckpointEvery: cfg.Sync.CheckpointEvery,
	}, logger)
}

// IndexJob builds the full-text rebuild job.
func (c *Components) IndexJob(cfg *config.Config, logger *zap.Logger) *jobs.IndexJob {
	return jobs.NewIndexJob(c.Records, c.FullText, cfg.Sync.PageSize, logger)
}

// Close releases connections in reverse order.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func openRecords(ctx context.Context, cfg *config.Config, logger *zap.Logger, c *Components) (Records, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		if cfg.Database.SeedFile == "" {
			logger.Warn("Memory driver without seed file, catalog is empty")
			return memstore.NewMemoryStore(), nil
		}
		store, err := memstore.LoadFile(cfg.Database.SeedFile)
		if err != nil {
			return nil, fmt.Errorf("load seed file: %w", err)
		}
		logger.Info("Loaded in-memory catalog", zap.String("file", cfg.Database.SeedFile))
		return store, nil
	case config.DriverPostgres:
		conn, err := postgres.Open(ctx, postgres.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime(),
		})
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		c.closers = append(c.closers, func() { _ = conn.Close() })

		if err := postgres.ApplyMigrations(ctx, conn, cfg.Embedding.Dimensions); err != nil {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info("Connected to postgres")
		return packages.New(conn), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}

// buildEmbedders assembles the decorator chain:
// OpenAI -> Instrumented -> Generator (lazy load, normalization) -> Cached (queries only) -> Instruction.
func buildEmbedders(
	cfg *config.Config, store *dbRedis.Store, logger *zap.Logger,
) (*embeddinguc.Generator, domain.BatchEmbedder, domain.Embedder) {
	const provider = "openai"

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   provider,
		Logger:     logger,
	})

	instrumented := embeddinguc.NewInstrumentedEmbedder(base, provider, cfg.Embedding.Model, logger)
	generator := embeddinguc.NewGenerator(instrumented, base, embeddinguc.Options{
		Timeout:         time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		LoadTimeout:     time.Duration(cfg.Embedding.LoadTimeoutSec) * time.Second,
		CheckpointEvery: cfg.Sync.CheckpointEvery,
	}, logger)

	var documents domain.BatchEmbedder = generator
	var queries domain.Embedder = generator
	if cfg.Embedding.CacheTTLSec > 0 {
		queries = embcache.New(generator, store, embcache.Options{
			KeyPrefix: cfg.Redis.KeyPrefix,
			Model:     cfg.Embedding.Model,
			TTL:       time.Duration(cfg.Embedding.CacheTTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	// Instruction prefix (outermost, so the cache key includes it)
	if in := cfg.Embedding.DocumentInstruction; in != "" {
		documents = domain.NewInstructionEmbedder(documents, in)
	}
	if in := cfg.Embedding.QueryInstruction; in != "" {
		queries = domain.NewInstructionEmbedder(queries, in)
	}

	logger.Info("Embedders created",
		zap.String("base_url", cfg.Embedding.BaseURL),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
		zap.Bool("query_cache", cfg.Embedding.CacheTTLSec > 0),
	)
	return generator, documents, queries
}
