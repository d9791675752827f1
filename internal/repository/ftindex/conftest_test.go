package ftindex

import (
	"context"
	"path"
	"slices"
	"testing"

	"github.com/kailas-cloud/pkgdex/internal/db"
)

// mockStore implements the consumer interface for tests.
// Hashes and KV values live in maps; index calls go through function fields.
type mockStore struct {
	hashes map[string]map[string]string
	kv     map[string][]byte
	hsetN  int

	pingErr       error
	indexExists   bool
	created       []*db.IndexDefinition
	dropped       []string
	createIndexFn func(def *db.IndexDefinition) error
	searchTextFn  func(q *db.TextQuery) (*db.SearchResult, error)
	searchCountFn func(index string) (int, error)
}

func newMockStore() *mockStore {
	return &mockStore{
		hashes: make(map[string]map[string]string),
		kv:     make(map[string][]byte),
	}
}

func (m *mockStore) Ping(_ context.Context) error { return m.pingErr }

func (m *mockStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.hsetN++
	for _, it := range items {
		m.hashes[it.Key] = it.Fields
	}
	return nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.hashes, k)
	}
	return nil
}

func (m *mockStore) Scan(_ context.Context, pattern string) ([]string, error) {
	var out []string
	for k := range m.hashes {
		if ok, _ := path.Match(pattern, k); ok {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *mockStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) Set(_ context.Context, key string, value []byte) error {
	m.kv[key] = value
	return nil
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(def)
	}
	m.created = append(m.created, def)
	m.indexExists = true
	return nil
}

func (m *mockStore) DropIndex(_ context.Context, name string) error {
	m.dropped = append(m.dropped, name)
	m.indexExists = false
	return nil
}

func (m *mockStore) IndexExists(_ context.Context, _ string) (bool, error) {
	return m.indexExists, nil
}

func (m *mockStore) SearchText(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(_ context.Context, index string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(index)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms, "pkgdex:"), ms
}
