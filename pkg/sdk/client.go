package pkgdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/app"
	"github.com/kailas-cloud/pkgdex/internal/config"
	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/mode"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/request"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/result"
	"github.com/kailas-cloud/pkgdex/internal/usecase/jobs"
	searchuc "github.com/kailas-cloud/pkgdex/internal/usecase/search"
)

// Internal interfaces, swapped for mocks in tests.
type searchUseCase interface {
	Dispatch(ctx context.Context, req *request.Request) (searchuc.Response, error)
}

type embeddingJob interface {
	Run(ctx context.Context, force bool, progress jobs.Progress) (jobs.Report, error)
}

type indexJob interface {
	Init(ctx context.Context) (bool, error)
	Run(ctx context.Context, progress jobs.Progress) (jobs.Report, error)
}

// Client is the pkgdex SDK entry point.
type Client struct {
	close      func()
	search     searchUseCase
	embeddings embeddingJob
	index      indexJob
	health     healthUseCase
	obs        *observer
}

// New connects to the backing services and prepares every engine.
// The provided context bounds connection setup.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := config.Config{}
	co := clientOptions{}
	for _, o := range opts {
		if f, ok := o.(clientOption); ok {
			f(&co)
			continue
		}
		o.apply(&cfg)
	}
	cfg.ApplyDefaults()

	if len(cfg.Redis.Addrs) == 0 {
		return nil, errors.New("pkgdex: redis address required (use WithRedis)")
	}
	if cfg.Embedding.BaseURL == "" || cfg.Embedding.Model == "" {
		return nil, errors.New("pkgdex: embedding server required (use WithEmbeddingServer)")
	}

	obs, err := newObserver(co.logger, co.metricsReg)
	if err != nil {
		return nil, err
	}

	// Internal components log through zap; the SDK reports through slog.
	logger := zap.NewNop()
	comps, err := app.Build(ctx, &cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("pkgdex: %w", err)
	}

	return &Client{
		close:      comps.Close,
		search:     comps.SearchService(&cfg, logger),
		embeddings: comps.EmbeddingJob(&cfg, logger),
		index:      comps.IndexJob(&cfg, logger),
		health:     comps.HealthService(&cfg),
		obs:        obs,
	}, nil
}

// Close releases all connections.
func (c *Client) Close() {
	if c.close != nil {
		c.close()
	}
}

// Search runs q in the given mode.
func (c *Client) Search(ctx context.Context, m SearchMode, q Query) (res Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search."+string(m), start, err, "hits", len(res.Hits)) }()

	req, err := toRequest(mode.Mode(m), &q)
	if err != nil {
		return Result{}, err
	}
	resp, err := c.search.Dispatch(ctx, &req)
	if err != nil {
		return Result{}, fmt.Errorf("search: %w", err)
	}

	hits := make([]Hit, len(resp.Results))
	for i := range resp.Results {
		hits[i] = toHit(&resp.Results[i])
	}
	res = Result{Hits: hits, ProcessingTime: resp.ProcessingTime}
	if m == ModeKeyword || m == ModeExternalIndex {
		res.Total = resp.Pagination.Total
		res.Page = resp.Pagination.Page
		res.Limit = resp.Pagination.Limit
		res.TotalPages = resp.Pagination.TotalPages
	} else {
		res.Total = len(hits)
		res.Page = 1
		res.Limit = req.Limit()
		res.TotalPages = 1
	}
	return res, nil
}

// SyncEmbeddings embeds packages whose vector is missing or stale; with
// force, every package.
func (c *Client) SyncEmbeddings(ctx context.Context, force bool) (rep JobReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("sync.embeddings", start, err, "processed", rep.Processed) }()

	r, err := c.embeddings.Run(ctx, force, nil)
	rep = toJobReport(r)
	if err != nil {
		return rep, fmt.Errorf("sync embeddings: %w", err)
	}
	return rep, nil
}

// InitIndex creates the full-text index or updates its settings.
// Returns true when the schema changed and a rebuild is needed.
func (c *Client) InitIndex(ctx context.Context) (changed bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.init", start, err) }()

	if changed, err = c.index.Init(ctx); err != nil {
		return false, fmt.Errorf("init index: %w", err)
	}
	return changed, nil
}

// RebuildIndex rewrites every full-text document from the catalog.
func (c *Client) RebuildIndex(ctx context.Context) (rep JobReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index.rebuild", start, err, "processed", rep.Processed) }()

	r, err := c.index.Run(ctx, nil)
	rep = toJobReport(r)
	if err != nil {
		return rep, fmt.Errorf("rebuild index: %w", err)
	}
	return rep, nil
}

func toRequest(m mode.Mode, q *Query) (request.Request, error) {
	var (
		criteria filter.Criteria
		sortBy   order.Key
		err      error
	)
	if m.RequiresQuery() {
		criteria = filter.ByLanguage(q.Language)
	} else {
		criteria, err = filter.New(q.Language, q.License, q.Category, q.MinStars)
		if err != nil {
			return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
		sortBy, err = order.Parse(q.SortBy)
		if err != nil {
			return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
		}
	}
	req, err := request.New(q.Text, m, criteria, sortBy, q.Page, q.Limit)
	if err != nil {
		return request.Request{}, fmt.Errorf("build search request: %w", err)
	}
	return req, nil
}

func toHit(r *result.Result) Hit {
	p := r.Package()
	return Hit{
		Package: Package{
			ID:          p.ID,
			Slug:        p.Slug,
			Name:        p.Name,
			Description: p.Description,
			Language:    p.Language,
			License:     p.License,
			Categories:  p.Categories,
			Stars:       p.Stars,
			Forks:       p.Forks,
			Downloads:   p.Downloads,
			UpdatedAt:   p.UpdatedAt,
		},
		Relevance:  r.Relevance(),
		Source:     string(r.Source()),
		Highlights: r.Highlights(),
	}
}

func toJobReport(r jobs.Report) JobReport {
	return JobReport{
		Processed: r.Processed,
		Failed:    r.Failed,
		Skipped:   r.Skipped,
		Deleted:   r.Deleted,
		Duration:  time.Duration(r.DurationMs) * time.Millisecond,
	}
}
