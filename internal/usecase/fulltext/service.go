package fulltext

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/index"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/page"
)

// Defaults for Options.
const (
	DefaultWindow    = 1000
	DefaultChunkSize = 500
	DefaultWorkers   = 4
)

// Options tunes query and sync behaviour.
type Options struct {
	// Window caps the candidates fetched for local ranking (max total hits).
	Window    int
	ChunkSize int
	// Workers bounds concurrent chunk writes during Sync.
	Workers int
}

// Params is a full-text query.
type Params struct {
	Text     string
	Criteria filter.Criteria
	Sort     order.Key
	Offset   int
	Limit    int
}

// Hit is a ranked document with highlighted name and description.
type Hit struct {
	Doc        index.Document
	Score      float64
	Highlights map[string]string
}

// Result is one page of hits.
type Result struct {
	Hits           []Hit
	Total          int
	ProcessingTime time.Duration
}

// SyncReport summarizes a full rebuild.
type SyncReport struct {
	Indexed int
	Failed  int
	Deleted int
}

// Service keeps the full-text index consistent with the system of record
// and answers typo-tolerant queries against it.
type Service struct {
	repo     Repository
	settings index.Settings
	opts     Options
	logger   *zap.Logger
}

// New validates settings and creates the service.
func New(repo Repository, settings index.Settings, opts Options, logger *zap.Logger) (*Service, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Service{repo: repo, settings: settings, opts: opts, logger: logger}, nil
}

// Settings returns the configured index settings.
func (s *Service) Settings() index.Settings { return s.settings }

// Initialize pushes the index configuration. It is idempotent: when the
// stored settings match, nothing changes. Changed settings drop and recreate
// the index; documents are kept and re-indexed by the engine.
// Reports whether the index schema was (re)created.
func (s *Service) Initialize(ctx context.Context) (bool, error) {
	stored, found, err := s.repo.LoadSettings(ctx)
	if err != nil {
		return false, fmt.Errorf("load index settings: %w", err)
	}
	changed := !found || !stored.Equal(&s.settings)

	created, err := s.repo.EnsureIndex(ctx, &s.settings, changed)
	if err != nil {
		return false, fmt.Errorf("ensure index: %w", err)
	}
	if changed {
		if err := s.repo.SaveSettings(ctx, &s.settings); err != nil {
			return false, fmt.Errorf("save index settings: %w", err)
		}
	}

	s.logger.Info("Full-text index initialized",
		zap.Bool("settings_changed", changed),
		zap.Bool("created", created),
		zap.Strings("searchable", s.settings.SearchableAttributes),
	)
	return created, nil
}

// Sync rebuilds the index from a full snapshot of records: every document is
// rewritten, then documents whose slug is no longer in the snapshot are removed.
// Failed chunks are logged and counted; the rebuild continues.
func (s *Service) Sync(ctx context.Context, records []catalog.PackageRecord) (SyncReport, error) {
	docs := make([]index.Document, len(records))
	keep := make(map[string]struct{}, len(records))
	for i := range records {
		docs[i] = index.FromRecord(&records[i])
		keep[records[i].Slug] = struct{}{}
	}

	indexed, failed, err := s.upsertChunks(ctx, docs)
	if err != nil {
		return SyncReport{}, err
	}
	report := SyncReport{Indexed: indexed, Failed: failed}
	if indexed == 0 && failed > 0 {
		return report, fmt.Errorf("%w: every chunk failed", domain.ErrIndexUnavailable)
	}

	deleted, err := s.deleteOrphans(ctx, keep)
	if err != nil {
		s.logger.Warn("Orphan cleanup failed, stale documents remain", zap.Error(err))
	}
	report.Deleted = deleted

	s.logger.Info("Full-text index synced",
		zap.Int("indexed", report.Indexed),
		zap.Int("failed", report.Failed),
		zap.Int("deleted", report.Deleted),
	)
	return report, nil
}

func (s *Service) upsertChunks(ctx context.Context, docs []index.Document) (indexed, failed int, err error) {
	pool, err := ants.NewPool(s.opts.Workers)
	if err != nil {
		return 0, 0, fmt.Errorf("create sync pool: %w", err)
	}
	defer pool.Release()

	var (
		wg         sync.WaitGroup
		okN, failN atomic.Int64
	)
	for start := 0; start < len(docs); start += s.opts.ChunkSize {
		chunk := docs[start:min(start+s.opts.ChunkSize, len(docs))]
		offset := start
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.repo.Upsert(ctx, chunk); err != nil {
				failN.Add(int64(len(chunk)))
				s.logger.Error("Index chunk failed",
					zap.Int("offset", offset),
					zap.Int("size", len(chunk)),
					zap.Error(err),
				)
				return
			}
			okN.Add(int64(len(chunk)))
		})
		if submitErr != nil {
			wg.Done()
			failN.Add(int64(len(chunk)))
			s.logger.Error("Index chunk not scheduled", zap.Int("offset", offset), zap.Error(submitErr))
		}
	}
	wg.Wait()
	return int(okN.Load()), int(failN.Load()), nil
}

func (s *Service) deleteOrphans(ctx context.Context, keep map[string]struct{}) (int, error) {
	slugs, err := s.repo.Slugs(ctx)
	if err != nil {
		return 0, err
	}
	var orphans []string
	for _, slug := range slugs {
		if _, ok := keep[slug]; !ok {
			orphans = append(orphans, slug)
		}
	}
	if err := s.repo.Delete(ctx, orphans); err != nil {
		return 0, err
	}
	return len(orphans), nil
}

// Query runs a full-text search. Without text, the engine sorts and pages
// natively. With text, a candidate window is fetched and ranked locally by
// the configured ranking rules, then sliced by offset/limit.
func (s *Service) Query(ctx context.Context, p *Params) (Result, error) {
	start := time.Now()
	words := queryWords(p.Text)
	sortAttr := index.SortAttribute(p.Sort)

	q := &index.Query{Filters: p.Criteria.Conditions()}

	if len(words) == 0 {
		q.SortAttr, q.SortAsc = sortAttr, p.Sort.Ascending()
		if q.SortAttr == "" {
			q.SortAttr = index.AttrStars
		}
		q.Offset, q.Limit = p.Offset, p.Limit
		cands, err := s.repo.Search(ctx, q)
		if err != nil {
			return Result{}, fmt.Errorf("full-text query: %w", err)
		}
		return Result{Hits: s.toHits(cands.Hits, nil), Total: cands.Total, ProcessingTime: time.Since(start)}, nil
	}

	q.Terms = make([]index.Term, len(words))
	for i, w := range words {
		q.Terms[i] = index.Term{
			Word:   w,
			Fuzz:   s.settings.TypoTolerance.AllowedTypos(len([]rune(w))),
			Prefix: i == len(words)-1,
		}
	}
	q.Limit = s.opts.Window

	cands, err := s.repo.Search(ctx, q)
	if err != nil {
		return Result{}, fmt.Errorf("full-text query: %w", err)
	}

	r := &ranker{settings: &s.settings, words: words, text: p.Text, sortAttr: sortAttr, sortAsc: p.Sort.Ascending()}
	ranked := r.rank(cands.Hits)

	window := page.Slice(ranked, p.Offset, p.Limit)
	return Result{Hits: s.toHits(window, words), Total: len(ranked), ProcessingTime: time.Since(start)}, nil
}

func (s *Service) toHits(hits []index.Hit, words []string) []Hit {
	out := make([]Hit, len(hits))
	for i := range hits {
		d := hits[i].Doc
		out[i] = Hit{
			Doc:   d,
			Score: hits[i].Score,
			Highlights: map[string]string{
				index.AttrName:        highlight(d.Name, words, s.settings.TypoTolerance),
				index.AttrDescription: highlight(d.Description, words, s.settings.TypoTolerance),
			},
		}
	}
	return out
}

// Health checks the backend and returns the indexed document count.
func (s *Service) Health(ctx context.Context) (int, error) {
	if err := s.repo.Ping(ctx); err != nil {
		return 0, err
	}
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	return n, nil
}
