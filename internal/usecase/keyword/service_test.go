package keyword

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
	"github.com/kailas-cloud/pkgdex/internal/repository/memstore"
)

type mockRepo struct {
	page query.Page
	err  error
	last *query.Keyword
}

func (m *mockRepo) SearchKeyword(_ context.Context, q *query.Keyword) (query.Page, error) {
	m.last = q
	return m.page, m.err
}

func rec(id int64, slug, name string, stars int) catalog.PackageRecord {
	return catalog.PackageRecord{ID: id, Slug: slug, Name: name, Stars: stars}
}

func TestRerank_Ladder(t *testing.T) {
	in := []catalog.PackageRecord{
		rec(1, "other", "unrelated", 900),
		rec(2, "requests-mock", "Requests Mock", 800),
		rec(3, "py-requests", "py-requests", 700),
		rec(4, "requests", "python-requests", 600),
		rec(5, "requests-org", "Requests", 500),
	}
	got := Rerank(in, "requests")
	want := []int64{5, 4, 2, 3, 1}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}
	if in[0].ID != 1 {
		t.Error("input slice must not be reordered in place")
	}
}

func TestRerank_KeepsStoreOrderWithinTier(t *testing.T) {
	in := []catalog.PackageRecord{
		rec(7, "a-http", "a-http", 10),
		rec(3, "b-http", "b-http", 5),
	}
	got := Rerank(in, "http")
	if got[0].ID != 7 || got[1].ID != 3 {
		t.Errorf("expected store order preserved, got %d, %d", got[0].ID, got[1].ID)
	}
}

func TestSearch_PassesQueryAndWeight(t *testing.T) {
	repo := &mockRepo{page: query.Page{Records: []catalog.PackageRecord{rec(1, "x", "x", 1)}, Total: 41}}
	svc := New(repo, 0)

	pg, err := svc.Search(context.Background(), "  x  ", filter.ByLanguage("go"), order.Stars, 20, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.last.Text != "x" || repo.last.Offset != 20 || repo.last.Limit != 10 || repo.last.Sort != order.Stars {
		t.Errorf("unexpected store query: %+v", repo.last)
	}
	if pg.Total != 41 || pg.Results[0].Relevance() != DefaultRelevance {
		t.Errorf("unexpected page: total=%d relevance=%f", pg.Total, pg.Results[0].Relevance())
	}
}

func TestSearch_NoRerankForExplicitSort(t *testing.T) {
	repo := &mockRepo{page: query.Page{Records: []catalog.PackageRecord{
		rec(1, "fasthttp", "fasthttp", 100), rec(2, "http", "http", 1),
	}}}
	pg, _ := New(repo, 0.5).Search(context.Background(), "http", filter.Criteria{}, order.Stars, 0, 10)
	if pg.Results[0].Slug() != "fasthttp" {
		t.Errorf("explicit sort must keep store order, got %s first", pg.Results[0].Slug())
	}
}

func TestSearch_StoreError(t *testing.T) {
	repo := &mockRepo{err: domain.ErrStoreUnavailable}
	_, err := New(repo, 0.5).Search(context.Background(), "x", filter.Criteria{}, order.Relevance, 0, 10)
	if !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestSearch_ExactNameBeatsPopularity(t *testing.T) {
	store := memstore.NewMemoryStore()
	store.Put(catalog.PackageRecord{ID: 1, Slug: "django-rest-framework", Name: "django-rest-framework",
		Description: "Web APIs for Django", Language: "PYTHON", Stars: 28000})
	store.Put(catalog.PackageRecord{ID: 2, Slug: "django", Name: "django",
		Description: "The Web framework for perfectionists", Language: "PYTHON", Stars: 5})
	store.Put(catalog.PackageRecord{ID: 3, Slug: "django-debug-toolbar", Name: "django-debug-toolbar",
		Description: "Debug panels for Django", Language: "PYTHON", Stars: 8000})
	store.Put(catalog.PackageRecord{ID: 4, Slug: "django-rs", Name: "django-rs", Language: "RUST", Stars: 99999})

	c, _ := filter.New("python", "", "", 0)
	pg, err := New(store, 0.5).Search(context.Background(), "django", c, order.Relevance, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pg.Total != 3 {
		t.Fatalf("expected 3 python matches, got %d", pg.Total)
	}
	if pg.Results[0].Slug() != "django" {
		t.Errorf("expected django first, got %s", pg.Results[0].Slug())
	}
}
