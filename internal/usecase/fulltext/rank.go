package fulltext

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/pkgdex/internal/domain/index"
)

// proximity cost of two consecutive query words that are not close together.
const maxProximity = 8

// features are the per-document signals the ranking rules compare.
type features struct {
	words     int
	typos     int
	proximity int
	attribute int
	exact     int
	fullExact bool
}

// wordHit locates the best match of one query word.
type wordHit struct {
	matched bool
	typos   int
	exact   bool
	attr    int
	pos     int
}

type ranker struct {
	settings *index.Settings
	words    []string
	text     string
	sortAttr string
	sortAsc  bool
}

func (r *ranker) features(d *index.Document) features {
	hits := make([]wordHit, len(r.words))
	for ai, attr := range r.settings.SearchableAttributes {
		toks := tokenize(d.Field(attr))
		for wi, w := range r.words {
			allowed := r.settings.TypoTolerance.AllowedTypos(utf8.RuneCountInString(w))
			prefix := wi == len(r.words)-1
			for pos, t := range toks {
				m, ok := matchWord(t.word, w, allowed, prefix)
				if !ok {
					continue
				}
				cand := wordHit{matched: true, typos: m.typos, exact: m.exact, attr: ai, pos: pos}
				if better(cand, hits[wi]) {
					hits[wi] = cand
				}
			}
		}
	}

	f := features{attribute: len(r.settings.SearchableAttributes)}
	for _, h := range hits {
		if !h.matched {
			continue
		}
		f.words++
		f.typos += h.typos
		if h.exact {
			f.exact++
		}
		f.attribute = min(f.attribute, h.attr)
	}
	for i := 1; i < len(hits); i++ {
		a, b := hits[i-1], hits[i]
		if !a.matched || !b.matched || a.attr != b.attr {
			f.proximity += maxProximity
			continue
		}
		f.proximity += min(abs(b.pos-a.pos)-1, maxProximity-1)
	}
	f.fullExact = strings.EqualFold(d.Name, r.text) || strings.EqualFold(d.Slug, r.text)
	return f
}

// better prefers fewer typos, then exact words, then higher-priority attributes, then earlier positions.
func better(a, b wordHit) bool {
	if !b.matched {
		return true
	}
	if a.typos != b.typos {
		return a.typos < b.typos
	}
	if a.exact != b.exact {
		return a.exact
	}
	if a.attr != b.attr {
		return a.attr < b.attr
	}
	return a.pos < b.pos
}

type scored struct {
	hit index.Hit
	f   features
}

// rank orders hits by the ranking-rule ladder, then engine score desc, then slug.
func (r *ranker) rank(hits []index.Hit) []index.Hit {
	items := make([]scored, len(hits))
	for i := range hits {
		items[i] = scored{hit: hits[i], f: r.features(&hits[i].Doc)}
	}

	slices.SortStableFunc(items, func(a, b scored) int {
		for _, rule := range r.settings.RankingRules {
			if c := r.compare(rule, &a, &b); c != 0 {
				return c
			}
		}
		if c := cmp.Compare(b.hit.Score, a.hit.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.hit.Doc.Slug, b.hit.Doc.Slug)
	})

	out := make([]index.Hit, len(items))
	for i := range items {
		out[i] = items[i].hit
	}
	return out
}

func (r *ranker) compare(rule index.RankingRule, a, b *scored) int {
	switch rule {
	case index.RuleWords:
		return cmp.Compare(b.f.words, a.f.words)
	case index.RuleTypo:
		return cmp.Compare(a.f.typos, b.f.typos)
	case index.RuleProximity:
		return cmp.Compare(a.f.proximity, b.f.proximity)
	case index.RuleAttribute:
		return cmp.Compare(a.f.attribute, b.f.attribute)
	case index.RuleSort:
		return r.compareSort(&a.hit.Doc, &b.hit.Doc)
	case index.RuleExactness:
		if c := cmp.Compare(b.f.exact, a.f.exact); c != 0 {
			return c
		}
		return boolDesc(a.f.fullExact, b.f.fullExact)
	}
	return 0
}

func (r *ranker) compareSort(a, b *index.Document) int {
	switch r.sortAttr {
	case "":
		return 0
	case index.AttrName:
		c := cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		if !r.sortAsc {
			c = -c
		}
		return c
	}
	c := cmp.Compare(a.SortValue(r.sortAttr), b.SortValue(r.sortAttr))
	if !r.sortAsc {
		c = -c
	}
	return c
}

func boolDesc(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}
