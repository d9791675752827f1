package index

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/pkgdex/internal/domain"
)

// Document attribute names.
const (
	AttrName        = "name"
	AttrSlug        = "slug"
	AttrDescription = "description"
	AttrReadme      = "readme"
	AttrCategories  = "categories"
	AttrLanguage    = "language"
	AttrLicense     = "license"
	AttrStars       = "stars"
	AttrDownloads   = "downloads"
	AttrUpdatedAt   = "updated_at"
	AttrPopularity  = "popularity"
)

// RankingRule is one step of the ordered ranking ladder.
type RankingRule string

// Ranking rules. The order in DefaultRankingRules is a product decision:
// changing it changes which hits surface first for ambiguous queries.
const (
	RuleWords     RankingRule = "words"
	RuleTypo      RankingRule = "typo"
	RuleProximity RankingRule = "proximity"
	RuleAttribute RankingRule = "attribute"
	RuleSort      RankingRule = "sort"
	RuleExactness RankingRule = "exactness"
)

// DefaultRankingRules is the canonical ladder order.
var DefaultRankingRules = []RankingRule{
	RuleWords, RuleTypo, RuleProximity, RuleAttribute, RuleSort, RuleExactness,
}

// TypoTolerance holds the minimum word lengths at which typos are forgiven.
type TypoTolerance struct {
	OneTypo  int `json:"oneTypo" yaml:"one_typo"`
	TwoTypos int `json:"twoTypos" yaml:"two_typos"`
}

// AllowedTypos returns how many edits a query word of the given rune length may carry.
func (t TypoTolerance) AllowedTypos(wordLen int) int {
	switch {
	case wordLen >= t.TwoTypos:
		return 2
	case wordLen >= t.OneTypo:
		return 1
	default:
		return 0
	}
}

// Settings is the full-text index configuration pushed at initialization time.
type Settings struct {
	SearchableAttributes []string      `json:"searchableAttributes"`
	FilterableAttributes []string      `json:"filterableAttributes"`
	SortableAttributes   []string      `json:"sortableAttributes"`
	RankingRules         []RankingRule `json:"rankingRules"`
	TypoTolerance        TypoTolerance `json:"typoTolerance"`
}

// DefaultSettings returns the catalog index configuration.
// Searchable attributes are listed in priority order.
func DefaultSettings() Settings {
	return Settings{
		SearchableAttributes: []string{AttrName, AttrSlug, AttrDescription, AttrReadme, AttrCategories},
		FilterableAttributes: []string{AttrLanguage, AttrLicense, AttrStars, AttrCategories},
		SortableAttributes:   []string{AttrStars, AttrDownloads, AttrUpdatedAt, AttrName, AttrPopularity},
		RankingRules:         slices.Clone(DefaultRankingRules),
		TypoTolerance:        TypoTolerance{OneTypo: 5, TwoTypos: 9},
	}
}

// Validate checks the settings for internal consistency.
func (s *Settings) Validate() error {
	if len(s.SearchableAttributes) == 0 {
		return fmt.Errorf("%w: at least one searchable attribute is required", domain.ErrInvalidSettings)
	}
	if err := noDuplicates("searchable", s.SearchableAttributes); err != nil {
		return err
	}
	for _, a := range s.SearchableAttributes {
		if !slices.Contains(textAttributes, a) {
			return fmt.Errorf("%w: %q is not a text attribute", domain.ErrInvalidSettings, a)
		}
	}
	for _, a := range s.FilterableAttributes {
		if !slices.Contains(filterAttributes, a) {
			return fmt.Errorf("%w: %q is not filterable", domain.ErrInvalidSettings, a)
		}
	}
	for _, a := range s.SortableAttributes {
		if !slices.Contains(sortAttributes, a) {
			return fmt.Errorf("%w: %q is not sortable", domain.ErrInvalidSettings, a)
		}
	}

	if len(s.RankingRules) != len(DefaultRankingRules) {
		return fmt.Errorf("%w: expected %d ranking rules, got %d",
			domain.ErrInvalidSettings, len(DefaultRankingRules), len(s.RankingRules))
	}
	seen := make(map[RankingRule]bool, len(s.RankingRules))
	for _, r := range s.RankingRules {
		if !slices.Contains(DefaultRankingRules, r) {
			return fmt.Errorf("%w: unknown ranking rule %q", domain.ErrInvalidSettings, r)
		}
		if seen[r] {
			return fmt.Errorf("%w: duplicate ranking rule %q", domain.ErrInvalidSettings, r)
		}
		seen[r] = true
	}

	t := s.TypoTolerance
	if t.OneTypo <= 0 || t.TwoTypos <= t.OneTypo {
		return fmt.Errorf("%w: typo thresholds must satisfy 0 < oneTypo < twoTypos (got %d, %d)",
			domain.ErrInvalidSettings, t.OneTypo, t.TwoTypos)
	}
	return nil
}

// Equal reports whether two settings produce the same index.
func (s *Settings) Equal(o *Settings) bool {
	return slices.Equal(s.SearchableAttributes, o.SearchableAttributes) &&
		slices.Equal(s.FilterableAttributes, o.FilterableAttributes) &&
		slices.Equal(s.SortableAttributes, o.SortableAttributes) &&
		slices.Equal(s.RankingRules, o.RankingRules) &&
		s.TypoTolerance == o.TypoTolerance
}

// AttributeRank returns the priority position of a searchable attribute (0 = highest),
// or len(SearchableAttributes) when the attribute is not searchable.
func (s *Settings) AttributeRank(attr string) int {
	if i := slices.Index(s.SearchableAttributes, attr); i >= 0 {
		return i
	}
	return len(s.SearchableAttributes)
}

var (
	textAttributes   = []string{AttrName, AttrSlug, AttrDescription, AttrReadme, AttrCategories}
	filterAttributes = []string{AttrLanguage, AttrLicense, AttrStars, AttrCategories}
	sortAttributes   = []string{AttrStars, AttrDownloads, AttrUpdatedAt, AttrName, AttrPopularity}
)

func noDuplicates(kind string, attrs []string) error {
	seen := make(map[string]bool, len(attrs))
	for _, a := range attrs {
		if seen[a] {
			return fmt.Errorf("%w: duplicate %s attribute %q", domain.ErrInvalidSettings, kind, a)
		}
		seen[a] = true
	}
	return nil
}
