package ftindex

import (
	"slices"

	"github.com/kailas-cloud/pkgdex/internal/db"
	"github.com/kailas-cloud/pkgdex/internal/domain/index"
)

// buildIndex derives the FT index definition from settings.
// Searchable attributes become TEXT fields weighted by priority (first = heaviest).
func buildIndex(name, keyPrefix string, s *index.Settings) (*db.IndexDefinition, error) {
	b := db.NewIndex(name).Prefix(keyPrefix)
	sortable := func(attr string) bool { return slices.Contains(s.SortableAttributes, attr) }

	n := len(s.SearchableAttributes)
	for i, attr := range s.SearchableAttributes {
		b.TextWeighted(attr, float64(n-i))
		if attr == index.AttrName || attr == index.AttrSlug {
			b.NoStem()
		}
		if attr == index.AttrName && sortable(attr) {
			b.Sortable()
		}
	}
	if sortable(index.AttrName) && !slices.Contains(s.SearchableAttributes, index.AttrName) {
		b.Tag(index.AttrName).Sortable()
	}

	for _, attr := range s.FilterableAttributes {
		switch attr {
		case index.AttrLanguage, index.AttrLicense:
			b.Tag(attr)
		case index.AttrCategories:
			b.TagWithOpts(fieldCategorySlugs, tagSep, false).As(filterCategory)
		}
	}

	for _, attr := range []string{index.AttrStars, index.AttrDownloads, index.AttrUpdatedAt, index.AttrPopularity} {
		isSort := sortable(attr)
		if !isSort && !slices.Contains(s.FilterableAttributes, attr) {
			continue
		}
		b.Numeric(attr)
		if isSort {
			b.Sortable()
		}
	}

	return b.Build()
}

// filterCategory is the alias category filters are issued against.
const filterCategory = "category"
