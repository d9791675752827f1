package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
)

// Filterable field names shared by every store.
const (
	FieldLanguage = "language"
	FieldLicense  = "license"
	FieldStars    = "stars"
	FieldCategory = "category"
)

// Criteria is the validated filter part of a search query.
// Filters narrow membership only; they never change scores.
type Criteria struct {
	language string
	license  string
	category string
	minStars int
}

// New validates and normalizes filter input.
// Language "all" or empty means no language filter.
func New(language, license, category string, minStars int) (Criteria, error) {
	if minStars < 0 {
		return Criteria{}, fmt.Errorf("minStars must be non-negative, got %d", minStars)
	}
	return Criteria{
		language: catalog.NormalizeLanguage(language),
		license:  strings.TrimSpace(license),
		category: strings.ToLower(strings.TrimSpace(category)),
		minStars: minStars,
	}, nil
}

// ByLanguage is a shortcut for a language-only filter.
func ByLanguage(language string) Criteria {
	return Criteria{language: catalog.NormalizeLanguage(language)}
}

// Language returns the normalized language tag ("" = any).
func (c Criteria) Language() string { return c.language }

// License returns the license filter ("" = any).
func (c Criteria) License() string { return c.license }

// Category returns the category slug filter ("" = any).
func (c Criteria) Category() string { return c.category }

// MinStars returns the minimum star count (0 = any).
func (c Criteria) MinStars() int { return c.minStars }

// HasLanguage reports whether a concrete language was requested.
func (c Criteria) HasLanguage() bool { return c.language != "" }

// IsEmpty reports whether no filter is set.
func (c Criteria) IsEmpty() bool {
	return c.language == "" && c.license == "" && c.category == "" && c.minStars == 0
}

// Conditions flattens the criteria into store-agnostic conditions, in a fixed order.
func (c Criteria) Conditions() []Condition {
	var out []Condition
	if c.language != "" {
		out = append(out, Condition{key: FieldLanguage, match: c.language})
	}
	if c.license != "" {
		out = append(out, Condition{key: FieldLicense, match: c.license})
	}
	if c.category != "" {
		out = append(out, Condition{key: FieldCategory, match: c.category})
	}
	if c.minStars > 0 {
		m := float64(c.minStars)
		out = append(out, Condition{key: FieldStars, min: &m})
	}
	return out
}

// Condition is a single filter clause: either an exact tag match or a lower numeric bound.
type Condition struct {
	key   string
	match string
	min   *float64
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewAtLeast creates an inclusive lower-bound numeric condition.
func NewAtLeast(key string, minValue float64) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, min: &minValue}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Min returns the inclusive lower bound.
func (c Condition) Min() *float64 { return c.min }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a numeric bound condition.
func (c Condition) IsRange() bool { return c.min != nil }
