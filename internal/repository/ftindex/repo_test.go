package ftindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kailas-cloud/pkgdex/internal/db"
	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/index"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
)

func sampleDoc(slug string) index.Document {
	return index.Document{
		ID: 1, Slug: slug, Name: "Fast " + slug, Description: "desc",
		Language: "GO", License: "MIT",
		Categories: []string{"Web", "HTTP"}, CategorySlugs: []string{"web", "http"},
		Stars: 12, Forks: 3, Downloads: 4000, Popularity: 22, UpdatedAt: 1700000000,
	}
}

func TestHashRoundTrip(t *testing.T) {
	d := sampleDoc("fasthttp")
	got := fromHash(toHash(&d))
	if got.Slug != d.Slug || got.Stars != 12 || got.Downloads != 4000 || got.UpdatedAt != d.UpdatedAt {
		t.Errorf("scalar fields lost: %+v", got)
	}
	if strings.Join(got.Categories, ",") != "Web,HTTP" || strings.Join(got.CategorySlugs, ",") != "web,http" {
		t.Errorf("categories lost: %+v / %+v", got.Categories, got.CategorySlugs)
	}
}

func TestFromHash_EmptyCategories(t *testing.T) {
	got := fromHash(map[string]string{"slug": "x", "stars": "oops"})
	if got.Categories == nil || len(got.Categories) != 0 {
		t.Errorf("expected empty non-nil categories, got %v", got.Categories)
	}
	if got.Stars != 0 {
		t.Errorf("malformed number should decode as 0, got %d", got.Stars)
	}
}

func TestBuildIndex_Defaults(t *testing.T) {
	s := index.DefaultSettings()
	def, err := buildIndex("pkgdex:packages:idx", "pkgdex:pkg:", &s)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	str := def.String()
	for _, want := range []string{
		"PREFIX pkgdex:pkg:",
		"name TEXT WEIGHT 5 SORTABLE",
		"description TEXT WEIGHT 3",
		"categories TEXT WEIGHT 1",
		"category_slugs AS category TAG",
		"stars NUMERIC SORTABLE",
		"updated_at NUMERIC SORTABLE",
	} {
		if !strings.Contains(str, want) {
			t.Errorf("index missing %q:\n%s", want, str)
		}
	}
}

func TestEnsureIndex(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()
	s := index.DefaultSettings()

	created, err := repo.EnsureIndex(ctx, &s, false)
	if err != nil || !created {
		t.Fatalf("expected creation, got %v, %v", created, err)
	}
	created, err = repo.EnsureIndex(ctx, &s, false)
	if err != nil || created {
		t.Fatalf("existing index must be kept, got %v, %v", created, err)
	}
	created, err = repo.EnsureIndex(ctx, &s, true)
	if err != nil || !created {
		t.Fatalf("expected recreation, got %v, %v", created, err)
	}
	if len(ms.dropped) != 1 || len(ms.created) != 2 {
		t.Errorf("expected 1 drop and 2 creates, got %d/%d", len(ms.dropped), len(ms.created))
	}
}

func TestEnsureIndex_CreateFailure(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ *db.IndexDefinition) error { return errors.New("boom") }
	s := index.DefaultSettings()

	_, err := repo.EnsureIndex(context.Background(), &s, false)
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestSettingsPersistence(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	if _, found, err := repo.LoadSettings(ctx); err != nil || found {
		t.Fatalf("expected no settings, got found=%v err=%v", found, err)
	}

	s := index.DefaultSettings()
	if err := repo.SaveSettings(ctx, &s); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, ok := ms.kv["pkgdex:fts:settings"]; !ok {
		t.Fatal("settings not stored under prefixed key")
	}
	got, found, err := repo.LoadSettings(ctx)
	if err != nil || !found || !got.Equal(&s) {
		t.Errorf("round trip failed: %+v found=%v err=%v", got, found, err)
	}

	ms.kv["pkgdex:fts:settings"] = []byte("{garbage")
	if _, found, err := repo.LoadSettings(ctx); err != nil || found {
		t.Errorf("corrupt settings should read as absent, got found=%v err=%v", found, err)
	}
}

func TestUpsertChunksAndOrphans(t *testing.T) {
	repo, ms := newTestRepo(t)
	ctx := context.Background()

	docs := make([]index.Document, upsertChunk+1)
	for i := range docs {
		docs[i] = sampleDoc(fmt.Sprintf("pkg-%04d", i))
	}
	if err := repo.Upsert(ctx, docs); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if ms.hsetN != 2 {
		t.Errorf("expected 2 pipelined chunks, got %d", ms.hsetN)
	}

	slugs, err := repo.Slugs(ctx)
	if err != nil || len(slugs) != len(docs) {
		t.Fatalf("expected %d slugs, got %d (%v)", len(docs), len(slugs), err)
	}
	if slugs[0] != "pkg-0000" {
		t.Errorf("prefix not trimmed: %s", slugs[0])
	}

	if err := repo.Delete(ctx, []string{"pkg-0000"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := ms.hashes["pkgdex:pkg:pkg-0000"]; ok {
		t.Error("document not deleted")
	}
}

func TestSearch(t *testing.T) {
	repo, ms := newTestRepo(t)
	lang, _ := filter.NewMatch(filter.FieldLanguage, "GO")
	d := sampleDoc("fasthttp")

	var captured *db.TextQuery
	ms.searchTextFn = func(q *db.TextQuery) (*db.SearchResult, error) {
		captured = q
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "pkgdex:pkg:fasthttp", Score: 2.5, Fields: toHash(&d)},
		}}, nil
	}

	got, err := repo.Search(context.Background(), &index.Query{
		Terms:    []index.Term{{Word: "fast", Fuzz: 0, Prefix: true}},
		Filters:  []filter.Condition{lang},
		SortAttr: index.AttrStars,
		Limit:    1000,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if captured.IndexName != "pkgdex:packages:idx" || captured.Limit != 1000 || captured.SortBy != "stars" {
		t.Errorf("unexpected query: %+v", captured)
	}
	if got.Total != 1 || got.Hits[0].Doc.Slug != "fasthttp" || got.Hits[0].Score != 2.5 {
		t.Errorf("unexpected candidates: %+v", got)
	}
}

func TestSearch_BackendError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchTextFn = func(_ *db.TextQuery) (*db.SearchResult, error) {
		return nil, errors.New("connection refused")
	}
	_, err := repo.Search(context.Background(), &index.Query{Limit: 10})
	if !errors.Is(err, domain.ErrIndexUnavailable) {
		t.Errorf("expected ErrIndexUnavailable, got %v", err)
	}
}
