package ftindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/pkgdex/internal/db"
	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/index"
)

const upsertChunk = 500

// store is the consumer interface for the full-text index (ISP).
type store interface {
	db.Pinger
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string) (int, error)
}

// Repo stores index documents as hashes under <prefix>pkg:<slug>
// and serves queries through the <prefix>packages:idx FT index.
type Repo struct {
	store  store
	prefix string
}

// New creates a full-text index repository. prefix namespaces every key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// IndexName returns the FT index name.
func (r *Repo) IndexName() string { return r.prefix + "packages:idx" }

func (r *Repo) docPrefix() string   { return r.prefix + "pkg:" }
func (r *Repo) settingsKey() string { return r.prefix + "fts:settings" }
func (r *Repo) docKey(slug string) string {
	return r.docPrefix() + slug
}

// Ping checks index backend connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// LoadSettings returns the settings the index was last built with.
// found is false when none were persisted yet.
func (r *Repo) LoadSettings(ctx context.Context) (s index.Settings, found bool, err error) {
	raw, err := r.store.Get(ctx, r.settingsKey())
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return index.Settings{}, false, nil
		}
		return index.Settings{}, false, fmt.Errorf("%w: load settings: %w", domain.ErrIndexUnavailable, err)
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		// Unreadable settings are treated as absent so the index gets rebuilt.
		return index.Settings{}, false, nil
	}
	return s, true, nil
}

// SaveSettings persists the settings the index was built with.
func (r *Repo) SaveSettings(ctx context.Context, s *index.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := r.store.Set(ctx, r.settingsKey(), data); err != nil {
		return fmt.Errorf("%w: save settings: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// EnsureIndex creates the FT index when missing. With recreate, an existing
// index is dropped first (documents are kept; the engine re-scans them).
// Returns true when an index was created.
func (r *Repo) EnsureIndex(ctx context.Context, s *index.Settings, recreate bool) (bool, error) {
	name := r.IndexName()
	exists, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("%w: check index: %w", domain.ErrIndexUnavailable, err)
	}
	if exists && !recreate {
		return false, nil
	}
	if exists {
		if err := r.store.DropIndex(ctx, name); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
			return false, fmt.Errorf("%w: drop index: %w", domain.ErrIndexUnavailable, err)
		}
	}

	def, err := buildIndex(name, r.docPrefix(), s)
	if err != nil {
		return false, fmt.Errorf("build index definition: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return false, nil
		}
		return false, fmt.Errorf("%w: create index: %w", domain.ErrIndexUnavailable, err)
	}
	return true, nil
}

// Upsert writes documents in pipelined chunks.
func (r *Repo) Upsert(ctx context.Context, docs []index.Document) error {
	for start := 0; start < len(docs); start += upsertChunk {
		end := min(start+upsertChunk, len(docs))
		items := make([]db.HashSetItem, 0, end-start)
		for i := start; i < end; i++ {
			items = append(items, db.HashSetItem{Key: r.docKey(docs[i].Slug), Fields: toHash(&docs[i])})
		}
		if err := r.store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("%w: upsert documents: %w", domain.ErrIndexUnavailable, err)
		}
	}
	return nil
}

// Slugs lists the slugs of every indexed document.
func (r *Repo) Slugs(ctx context.Context) ([]string, error) {
	keys, err := r.store.Scan(ctx, r.docPrefix()+"*")
	if err != nil {
		return nil, fmt.Errorf("%w: scan documents: %w", domain.ErrIndexUnavailable, err)
	}
	slugs := make([]string, 0, len(keys))
	for _, k := range keys {
		slugs = append(slugs, strings.TrimPrefix(k, r.docPrefix()))
	}
	return slugs, nil
}

// Delete removes documents by slug.
func (r *Repo) Delete(ctx context.Context, slugs []string) error {
	if len(slugs) == 0 {
		return nil
	}
	keys := make([]string, len(slugs))
	for i, s := range slugs {
		keys[i] = r.docKey(s)
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("%w: delete documents: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Search fetches a scored candidate window.
func (r *Repo) Search(ctx context.Context, q *index.Query) (index.Candidates, error) {
	terms := make([]db.TextTerm, len(q.Terms))
	for i, t := range q.Terms {
		terms[i] = db.TextTerm{Word: t.Word, Fuzz: t.Fuzz, Prefix: t.Prefix}
	}

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName: r.IndexName(),
		Terms:     terms,
		Filters:   q.Filters,
		Offset:    q.Offset,
		Limit:     q.Limit,
		SortBy:    q.SortAttr,
		SortAsc:   q.SortAsc,
	})
	if err != nil {
		return index.Candidates{}, fmt.Errorf("%w: search: %w", domain.ErrIndexUnavailable, err)
	}

	hits := make([]index.Hit, 0, len(res.Entries))
	for _, e := range res.Entries {
		doc := fromHash(e.Fields)
		if doc.Slug == "" {
			doc.Slug = strings.TrimPrefix(e.Key, r.docPrefix())
		}
		hits = append(hits, index.Hit{Doc: doc, Score: e.Score})
	}
	return index.Candidates{Hits: hits, Total: res.Total}, nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.IndexName())
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrIndexUnavailable, err)
	}
	return n, nil
}
