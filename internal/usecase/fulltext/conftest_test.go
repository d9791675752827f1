package fulltext

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pkgdex/internal/domain/index"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
)

// fakeRepo is an in-memory index. Search returns every document that passes
// the tag filters, scored by scoreFn (default 1).
type fakeRepo struct {
	mu        sync.Mutex
	docs      map[string]index.Document
	settings  *index.Settings
	indexed   bool
	creates   int
	recreates int
	upsertErr func(chunk []index.Document) error
	searchErr error
	scoreFn   func(d *index.Document) float64
	lastQuery *index.Query
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[string]index.Document)}
}

func (f *fakeRepo) Ping(_ context.Context) error { return nil }

func (f *fakeRepo) LoadSettings(_ context.Context) (index.Settings, bool, error) {
	if f.settings == nil {
		return index.Settings{}, false, nil
	}
	return *f.settings, true, nil
}

func (f *fakeRepo) SaveSettings(_ context.Context, s *index.Settings) error {
	cp := *s
	f.settings = &cp
	return nil
}

func (f *fakeRepo) EnsureIndex(_ context.Context, _ *index.Settings, recreate bool) (bool, error) {
	if f.indexed && !recreate {
		return false, nil
	}
	if f.indexed {
		f.recreates++
	}
	f.indexed = true
	f.creates++
	return true, nil
}

func (f *fakeRepo) Upsert(_ context.Context, docs []index.Document) error {
	if f.upsertErr != nil {
		if err := f.upsertErr(docs); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range docs {
		f.docs[d.Slug] = d
	}
	return nil
}

func (f *fakeRepo) Slugs(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(f.docs))
	for s := range f.docs {
		out = append(out, s)
	}
	slices.Sort(out)
	return out, nil
}

func (f *fakeRepo) Delete(_ context.Context, slugs []string) error {
	for _, s := range slugs {
		delete(f.docs, s)
	}
	return nil
}

func (f *fakeRepo) Search(_ context.Context, q *index.Query) (index.Candidates, error) {
	f.lastQuery = q
	if f.searchErr != nil {
		return index.Candidates{}, f.searchErr
	}
	var hits []index.Hit
	for _, d := range f.docs {
		if !passes(&d, q.Filters) {
			continue
		}
		score := 1.0
		if f.scoreFn != nil {
			score = f.scoreFn(&d)
		}
		hits = append(hits, index.Hit{Doc: d, Score: score})
	}
	slices.SortFunc(hits, func(a, b index.Hit) int {
		if q.SortAttr != "" {
			if c := cmp.Compare(b.Doc.SortValue(q.SortAttr), a.Doc.SortValue(q.SortAttr)); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.Doc.Slug, b.Doc.Slug)
	})
	total := len(hits)
	hits = hits[min(q.Offset, total):min(q.Offset+q.Limit, total)]
	return index.Candidates{Hits: hits, Total: total}, nil
}

func (f *fakeRepo) Count(_ context.Context) (int, error) {
	if !f.indexed {
		return 0, errors.New("no such index")
	}
	return len(f.docs), nil
}

func passes(d *index.Document, conds []filter.Condition) bool {
	for _, c := range conds {
		switch {
		case c.Key() == filter.FieldLanguage && d.Language != c.Match():
			return false
		case c.Key() == filter.FieldStars && float64(d.Stars) < *c.Min():
			return false
		}
	}
	return true
}

func newTestService(t *testing.T, repo *fakeRepo) *Service {
	t.Helper()
	svc, err := New(repo, index.DefaultSettings(), Options{ChunkSize: 2, Workers: 2}, zap.NewNop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func doc(slug, name, desc string, stars int) index.Document {
	return index.Document{Slug: slug, Name: name, Description: desc, Language: "GO", Stars: stars}
}
