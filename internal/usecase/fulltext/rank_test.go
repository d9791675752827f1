package fulltext

import (
	"testing"

	"github.com/kailas-cloud/pkgdex/internal/domain/index"
)

func slugs(hits []index.Hit) []string {
	out := make([]string, len(hits))
	for i := range hits {
		out[i] = hits[i].Doc.Slug
	}
	return out
}

func newRanker(settings *index.Settings, text, sortAttr string) *ranker {
	return &ranker{settings: settings, words: queryWords(text), text: text, sortAttr: sortAttr}
}

func TestTokenize(t *testing.T) {
	toks := tokenize("Fast, HTTP-router (v2)")
	want := []string{"fast", "http", "router", "v2"}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %+v", len(want), toks)
	}
	for i, w := range want {
		if toks[i].word != w {
			t.Errorf("token %d: expected %q, got %q", i, w, toks[i].word)
		}
	}
	if got := queryWords("web Web framework"); len(got) != 2 {
		t.Errorf("expected deduplicated words, got %v", got)
	}
}

func TestMatchWord(t *testing.T) {
	tests := []struct {
		doc, q    string
		maxTypos  int
		prefix    bool
		ok, exact bool
		typos     int
	}{
		{"django", "django", 1, false, true, true, 0},
		{"django", "djang", 0, true, true, false, 0},
		{"django", "djang", 0, false, false, false, 0},
		{"fastapi", "fastapl", 1, false, true, false, 1},
		{"fastapi", "fustapl", 1, false, false, false, 0},
		{"kubernetes", "kubernetse", 2, false, true, false, 2},
		{"kubernetes", "kubernetse", 1, false, false, false, 0}, // a swap is two edits
	}
	for _, tt := range tests {
		m, ok := matchWord(tt.doc, tt.q, tt.maxTypos, tt.prefix)
		if ok != tt.ok {
			t.Errorf("%s~%s: expected ok=%v", tt.doc, tt.q, tt.ok)
			continue
		}
		if ok && (m.exact != tt.exact || m.typos != tt.typos) {
			t.Errorf("%s~%s: expected exact=%v typos=%d, got %+v", tt.doc, tt.q, tt.exact, tt.typos, m)
		}
	}
}

func TestRank_WordsFirst(t *testing.T) {
	s := index.DefaultSettings()
	hits := []index.Hit{
		{Doc: doc("one", "web toolkit", "", 0), Score: 9},
		{Doc: doc("both", "web framework", "", 0), Score: 1},
	}
	got := slugs(newRanker(&s, "web framework", "").rank(hits))
	if got[0] != "both" {
		t.Errorf("document matching more words must rank first, got %v", got)
	}
}

func TestRank_TypoBeforeAttribute(t *testing.T) {
	s := index.DefaultSettings()
	hits := []index.Hit{
		{Doc: doc("typo", "routr", "", 0)},               // name, one typo
		{Doc: doc("clean", "mux", "a router for go", 0)}, // description, exact
	}
	got := slugs(newRanker(&s, "router", "").rank(hits))
	if got[0] != "clean" {
		t.Errorf("fewer typos must beat higher attribute, got %v", got)
	}
}

func TestRank_AttributePriority(t *testing.T) {
	s := index.DefaultSettings()
	hits := []index.Hit{
		{Doc: doc("in-desc", "gizmo", "a cache library", 0), Score: 5},
		{Doc: doc("in-name", "cache", "something else", 0), Score: 1},
	}
	got := slugs(newRanker(&s, "cache", "").rank(hits))
	if got[0] != "in-name" {
		t.Errorf("name match must beat description match, got %v", got)
	}
}

func TestRank_ProximityBeforeAttribute(t *testing.T) {
	s := index.DefaultSettings()
	hits := []index.Hit{
		{Doc: doc("split", "fast", "json parser", 0)},
		{Doc: doc("near", "gizmo", "fast json parser", 0)},
	}
	got := slugs(newRanker(&s, "fast json", "").rank(hits))
	if got[0] != "near" {
		t.Errorf("adjacent words must rank first, got %v", got)
	}
}

func TestRank_SortRule(t *testing.T) {
	s := index.DefaultSettings()
	hits := []index.Hit{
		{Doc: doc("low", "cache", "", 10)},
		{Doc: doc("high", "cache", "", 500)},
	}
	got := slugs(newRanker(&s, "cache", index.AttrStars).rank(hits))
	if got[0] != "high" {
		t.Errorf("explicit sort must order equal-relevance hits, got %v", got)
	}
}

func TestRank_ExactnessAndTieBreak(t *testing.T) {
	s := index.DefaultSettings()
	hits := []index.Hit{
		{Doc: doc("b-prefix", "requestsx", "", 0), Score: 2},
		{Doc: doc("exact", "requests", "", 0), Score: 1},
		{Doc: doc("a-prefix", "requestsy", "", 0), Score: 2},
	}
	got := slugs(newRanker(&s, "requests", "").rank(hits))
	want := []string{"exact", "a-prefix", "b-prefix"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestRank_RuleOrderMatters(t *testing.T) {
	hits := []index.Hit{
		{Doc: doc("name-one-word", "cache", "", 0)},
		{Doc: doc("desc-two-words", "gizmo", "redis cache", 0)},
	}

	s := index.DefaultSettings()
	if got := slugs(newRanker(&s, "redis cache", "").rank(hits)); got[0] != "desc-two-words" {
		t.Errorf("default order: words first, got %v", got)
	}

	s.RankingRules = []index.RankingRule{
		index.RuleAttribute, index.RuleWords, index.RuleTypo,
		index.RuleProximity, index.RuleSort, index.RuleExactness,
	}
	if got := slugs(newRanker(&s, "redis cache", "").rank(hits)); got[0] != "name-one-word" {
		t.Errorf("attribute-first order: name match first, got %v", got)
	}
}

func TestHighlight(t *testing.T) {
	tol := index.DefaultSettings().TypoTolerance
	tests := []struct {
		text  string
		words []string
		want  string
	}{
		{"Fast HTTP server", []string{"http"}, "Fast <mark>HTTP</mark> server"},
		{"Django REST", []string{"djang"}, "<mark>Django</mark> REST"},
		{"nothing here", []string{"zzz"}, "nothing here"},
		{"no words", nil, "no words"},
	}
	for _, tt := range tests {
		if got := highlight(tt.text, tt.words, tol); got != tt.want {
			t.Errorf("highlight(%q): expected %q, got %q", tt.text, tt.want, got)
		}
	}
}
