package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/mode"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
)

func TestNew_KeywordDefaults(t *testing.T) {
	r, err := New("  django ", "", filter.Criteria{}, "", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "django" {
		t.Errorf("Query() = %q", r.Query())
	}
	if r.Mode() != mode.Keyword {
		t.Errorf("Mode() = %q, want keyword", r.Mode())
	}
	if r.SortBy() != order.Relevance {
		t.Errorf("SortBy() = %q", r.SortBy())
	}
	if r.Page() != 1 || r.Limit() != DefaultLimit {
		t.Errorf("page/limit = %d/%d", r.Page(), r.Limit())
	}
	if r.Offset() != 0 {
		t.Errorf("Offset() = %d", r.Offset())
	}
}

func TestNew_Offset(t *testing.T) {
	r, err := New("x", mode.Keyword, filter.Criteria{}, order.Stars, 3, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Offset() != 30 {
		t.Errorf("Offset() = %d, want 30", r.Offset())
	}
}

func TestNew_ClampsLimit(t *testing.T) {
	r, _ := New("x", mode.Keyword, filter.Criteria{}, "", 1, 1000)
	if r.Limit() != MaxLimit {
		t.Errorf("keyword limit = %d, want %d", r.Limit(), MaxLimit)
	}
	r, _ = New("x", mode.Semantic, filter.Criteria{}, "", 1, 1000)
	if r.Limit() != MaxVectorLimit {
		t.Errorf("semantic limit = %d, want %d", r.Limit(), MaxVectorLimit)
	}
}

func TestNew_VectorModesIgnorePage(t *testing.T) {
	r, err := New("x", mode.Hybrid, filter.Criteria{}, "", 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Page() != 1 {
		t.Errorf("Page() = %d, want 1", r.Page())
	}
	if r.Limit() != DefaultVectorLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), DefaultVectorLimit)
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		m     mode.Mode
		page  int
		limit int
	}{
		{"semantic without query", "", mode.Semantic, 1, 10},
		{"hybrid without query", "   ", mode.Hybrid, 1, 10},
		{"invalid mode", "x", "geo", 1, 10},
		{"negative page", "x", mode.Keyword, -1, 10},
		{"negative limit", "x", mode.Keyword, 1, -5},
		{"too long", strings.Repeat("a", MaxQueryLength+1), mode.Keyword, 1, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.query, tt.m, filter.Criteria{}, "", tt.page, tt.limit)
			if !errors.Is(err, domain.ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestIsDegenerate(t *testing.T) {
	all, _ := filter.New("all", "", "", 0)
	r, _ := New("", mode.Keyword, all, "", 1, 20)
	if !r.IsDegenerate() {
		t.Error("empty query with language=all should be degenerate")
	}

	r, _ = New("", mode.Keyword, filter.ByLanguage("python"), "", 1, 20)
	if r.IsDegenerate() {
		t.Error("language filter alone is a valid browse")
	}

	r, _ = New("django", mode.Keyword, filter.Criteria{}, "", 1, 20)
	if r.IsDegenerate() {
		t.Error("query text is never degenerate")
	}
}
