package memstore

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/page"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
)

// MemoryStore is an in-process system of record with the same query
// semantics as the PostgreSQL repository. Used for local runs and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	pkgs map[int64]catalog.PackageRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pkgs: make(map[int64]catalog.PackageRecord)}
}

// LoadFile seeds the store from a JSON array of records.
func LoadFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path) //nolint:gosec // seed path comes from config
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var recs []catalog.PackageRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	s := NewMemoryStore()
	for _, r := range recs {
		s.Put(r)
	}
	return s, nil
}

// Put inserts or replaces a record by id.
func (s *MemoryStore) Put(rec catalog.PackageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pkgs[rec.ID] = rec
}

// Get returns a record by id.
func (s *MemoryStore) Get(id int64) (catalog.PackageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.pkgs[id]
	if !ok {
		return catalog.PackageRecord{}, fmt.Errorf("package %d: %w", id, domain.ErrNotFound)
	}
	return rec, nil
}

// Ping always succeeds.
func (s *MemoryStore) Ping(_ context.Context) error { return nil }

// SearchKeyword mirrors the SQL keyword search: case-insensitive substring on
// name or description, AND-ed filters, ordering ending with ascending id.
func (s *MemoryStore) SearchKeyword(_ context.Context, q *query.Keyword) (query.Page, error) {
	needle := strings.ToLower(q.Text)
	var matched []catalog.PackageRecord
	for _, rec := range s.sorted() {
		if needle != "" &&
			!strings.Contains(strings.ToLower(rec.Name), needle) &&
			!strings.Contains(strings.ToLower(rec.Description), needle) {
			continue
		}
		if !matchesCriteria(&rec, q) {
			continue
		}
		matched = append(matched, rec)
	}

	slices.SortStableFunc(matched, func(a, b catalog.PackageRecord) int {
		return compareKeyword(&a, &b, q)
	})

	return query.Page{Records: page.Slice(matched, q.Offset, q.Limit), Total: len(matched)}, nil
}

// Nearest ranks embedded records by cosine similarity, ties by ascending id.
func (s *MemoryStore) Nearest(_ context.Context, q *query.Nearest) ([]query.ScoredRecord, error) {
	var out []query.ScoredRecord
	for _, rec := range s.sorted() {
		if !rec.HasEmbedding() {
			continue
		}
		if q.Language != "" && rec.Language != q.Language {
			continue
		}
		sim, err := domain.CosineSimilarity(q.Vector, rec.Embedding)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", rec.Slug, err)
		}
		out = append(out, query.ScoredRecord{Record: rec, Similarity: sim})
	}
	slices.SortStableFunc(out, func(a, b query.ScoredRecord) int {
		if c := cmp.Compare(b.Similarity, a.Similarity); c != 0 {
			return c
		}
		return cmp.Compare(a.Record.ID, b.Record.ID)
	})
	if len(out) > q.K {
		out = out[:q.K]
	}
	return out, nil
}

// PendingEmbeddings returns records after afterID needing a vector (all when force).
func (s *MemoryStore) PendingEmbeddings(_ context.Context, afterID int64, limit int, force bool) ([]catalog.PackageRecord, error) {
	var out []catalog.PackageRecord
	for _, rec := range s.sorted() {
		if rec.ID <= afterID || (!force && !rec.EmbeddingStale()) {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// CountPendingEmbeddings counts records PendingEmbeddings would visit.
func (s *MemoryStore) CountPendingEmbeddings(_ context.Context, force bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.pkgs {
		if force || rec.EmbeddingStale() {
			n++
		}
	}
	return n, nil
}

// SaveEmbedding stores a vector for a record.
func (s *MemoryStore) SaveEmbedding(_ context.Context, id int64, vec []float32, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.pkgs[id]
	if !ok {
		return fmt.Errorf("package %d: %w", id, domain.ErrNotFound)
	}
	rec.Embedding = slices.Clone(vec)
	rec.EmbeddedAt = &at
	s.pkgs[id] = rec
	return nil
}

// ListAll pages through records by id.
func (s *MemoryStore) ListAll(_ context.Context, afterID int64, limit int) ([]catalog.PackageRecord, error) {
	var out []catalog.PackageRecord
	for _, rec := range s.sorted() {
		if rec.ID <= afterID {
			continue
		}
		out = append(out, rec)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// CountAll returns the number of records.
func (s *MemoryStore) CountAll(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pkgs), nil
}

// sorted snapshots records in ascending id order.
func (s *MemoryStore) sorted() []catalog.PackageRecord {
	s.mu.RLock()
	out := make([]catalog.PackageRecord, 0, len(s.pkgs))
	for _, rec := range s.pkgs {
		out = append(out, rec)
	}
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b catalog.PackageRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func matchesCriteria(rec *catalog.PackageRecord, q *query.Keyword) bool {
	c := q.Criteria
	if c.Language() != "" && rec.Language != c.Language() {
		return false
	}
	if c.License() != "" && !strings.EqualFold(rec.License, c.License()) {
		return false
	}
	if c.MinStars() > 0 && rec.Stars < c.MinStars() {
		return false
	}
	if c.Category() != "" && !slices.Contains(rec.CategorySlugs(), c.Category()) {
		return false
	}
	return true
}

func compareKeyword(a, b *catalog.PackageRecord, q *query.Keyword) int {
	var c int
	switch q.Sort {
	case order.Stars:
		c = cmp.Compare(b.Stars, a.Stars)
	case order.Downloads:
		c = cmp.Compare(b.Downloads, a.Downloads)
	case order.Recent:
		c = b.UpdatedAt.Compare(a.UpdatedAt)
	case order.Name:
		c = cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	case order.Popularity:
		c = cmp.Compare(b.Popularity(), a.Popularity())
	default:
		if q.Text != "" {
			c = cmp.Compare(exactName(b, q.Text), exactName(a, q.Text))
		}
		if c == 0 {
			c = cmp.Compare(b.Stars, a.Stars)
		}
	}
	if c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

func exactName(rec *catalog.PackageRecord, text string) int {
	if strings.EqualFold(rec.Name, text) {
		return 1
	}
	return 0
}
