package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/mode"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/page"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/request"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/result"
	"github.com/kailas-cloud/pkgdex/internal/metrics"
	"github.com/kailas-cloud/pkgdex/internal/usecase/fulltext"
)

// Defaults for Options.
const (
	DefaultSemanticMinSimilarity = 0.3
	DefaultExternalTimeout       = 5 * time.Second
)

// Options tunes the dispatcher.
type Options struct {
	SemanticMinSimilarity float64
	Fusion                FusionOptions
	// ExternalTimeout bounds one call to the full-text index.
	ExternalTimeout time.Duration
}

// Response is one search answer. Pagination is meaningful for the paged
// modes (keyword, external-index); ProcessingTime for external-index.
type Response struct {
	Results        []result.Result
	Pagination     page.Pagination
	ProcessingTime time.Duration
}

// Service is the single entry point for every search mode.
// Mode selection is explicit: a failing mode never falls back to another.
type Service struct {
	keyword KeywordEngine
	vectors VectorSearcher
	embed   Embedder
	index   FullTextIndex
	opts    Options
	logger  *zap.Logger
}

// New creates the search dispatcher.
func New(
	kw KeywordEngine, vectors VectorSearcher, embed Embedder, index FullTextIndex,
	opts Options, logger *zap.Logger,
) *Service {
	if opts.SemanticMinSimilarity <= 0 {
		opts.SemanticMinSimilarity = DefaultSemanticMinSimilarity
	}
	if opts.ExternalTimeout <= 0 {
		opts.ExternalTimeout = DefaultExternalTimeout
	}
	opts.Fusion.applyDefaults()
	return &Service{keyword: kw, vectors: vectors, embed: embed, index: index, opts: opts, logger: logger}
}

// Dispatch routes the request to the engine named by its mode and records metrics.
func (s *Service) Dispatch(ctx context.Context, req *request.Request) (Response, error) {
	start := time.Now()
	m := req.Mode()

	var (
		resp Response
		err  error
	)
	switch m {
	case mode.Keyword:
		resp, err = s.Keyword(ctx, req)
	case mode.Semantic:
		resp, err = s.Semantic(ctx, req)
	case mode.Hybrid:
		resp, err = s.Hybrid(ctx, req)
	case mode.ExternalIndex:
		resp, err = s.ExternalIndex(ctx, req)
	default:
		return Response{}, fmt.Errorf("unsupported search mode: %s", m)
	}

	metrics.SearchDuration.WithLabelValues(string(m)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(m), "error").Inc()
		s.logger.Warn("Search failed", zap.String("mode", string(m)), zap.Error(err))
		return Response{}, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(m), "ok").Inc()
	metrics.SearchResultsReturned.WithLabelValues(string(m)).Observe(float64(len(resp.Results)))
	return resp, nil
}

// Keyword runs substring search against the system of record.
// A request with no text and no language filter returns an empty page.
func (s *Service) Keyword(ctx context.Context, req *request.Request) (Response, error) {
	if req.IsDegenerate() {
		return Response{Results: []result.Result{}, Pagination: page.New(0, req.Page(), req.Limit())}, nil
	}

	pg, err := s.keyword.Search(ctx, req.Query(), req.Criteria(), req.SortBy(), req.Offset(), req.Limit())
	if err != nil {
		return Response{}, err
	}
	return Response{Results: pg.Results, Pagination: page.New(pg.Total, req.Page(), req.Limit())}, nil
}

// Semantic embeds the query and ranks by similarity.
func (s *Service) Semantic(ctx context.Context, req *request.Request) (Response, error) {
	results, err := s.semantic(ctx, req.Query(), req.Limit(), s.opts.SemanticMinSimilarity, req.Criteria().Language())
	if err != nil {
		return Response{}, err
	}
	return Response{Results: results, Pagination: page.New(len(results), 1, req.Limit())}, nil
}

// Hybrid runs the semantic and keyword legs concurrently and fuses them.
// Either leg failing fails the whole request.
func (s *Service) Hybrid(ctx context.Context, req *request.Request) (Response, error) {
	limit := req.Limit()
	semK, kwK := s.opts.Fusion.quotas(limit)
	language := req.Criteria().Language()

	var semantic, kw []result.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		semantic, err = s.semantic(gctx, req.Query(), semK, s.opts.Fusion.MinSimilarity, language)
		if err != nil {
			return fmt.Errorf("hybrid semantic leg: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		pg, err := s.keyword.Search(gctx, req.Query(), filter.ByLanguage(language), order.Stars, 0, kwK)
		if err != nil {
			return fmt.Errorf("hybrid keyword leg: %w", err)
		}
		kw = pg.Results
		return nil
	})
	if err := g.Wait(); err != nil {
		return Response{}, err
	}

	results := fuse(semantic, kw, s.opts.Fusion.KeywordWeight, limit)
	return Response{Results: results, Pagination: page.New(len(results), 1, limit)}, nil
}

// ExternalIndex delegates to the full-text index under ExternalTimeout.
func (s *Service) ExternalIndex(ctx context.Context, req *request.Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.ExternalTimeout)
	defer cancel()

	res, err := s.index.Query(ctx, &fulltext.Params{
		Text:     req.Query(),
		Criteria: req.Criteria(),
		Sort:     req.SortBy(),
		Offset:   req.Offset(),
		Limit:    req.Limit(),
	})
	if err != nil {
		return Response{}, err
	}

	results := make([]result.Result, 0, len(res.Hits))
	for i := range res.Hits {
		h := &res.Hits[i]
		results = append(results,
			result.New(h.Doc.Summary(), h.Score, result.SourceIndex).WithHighlights(h.Highlights))
	}
	return Response{
		Results:        results,
		Pagination:     page.New(res.Total, req.Page(), req.Limit()),
		ProcessingTime: res.ProcessingTime,
	}, nil
}

func (s *Service) semantic(
	ctx context.Context, text string, k int, minSimilarity float64, language string,
) ([]result.Result, error) {
	emb, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	results, err := s.vectors.Search(ctx, emb.Embedding, k, minSimilarity, language)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return results, nil
}
