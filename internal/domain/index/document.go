package index

import (
	"strings"
	"time"

	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
)

// MaxReadmeRunes bounds the readme text shipped to the index.
const MaxReadmeRunes = 2000

// Document is the denormalized, derived projection of a package pushed to the
// full-text index. It is rebuilt wholesale on every sync.
type Document struct {
	ID            int64
	Slug          string
	Name          string
	Description   string
	Readme        string
	Language      string
	License       string
	Categories    []string
	CategorySlugs []string
	Stars         int
	Forks         int
	Downloads     int64
	Popularity    int64
	UpdatedAt     int64 // unix seconds
}

// FromRecord projects a record with resolved category names into a Document.
func FromRecord(p *catalog.PackageRecord) Document {
	readme := []rune(p.Readme)
	if len(readme) > MaxReadmeRunes {
		readme = readme[:MaxReadmeRunes]
	}
	return Document{
		ID:            p.ID,
		Slug:          p.Slug,
		Name:          p.Name,
		Description:   p.Description,
		Readme:        string(readme),
		Language:      p.Language,
		License:       p.License,
		Categories:    p.CategoryNames(),
		CategorySlugs: p.CategorySlugs(),
		Stars:         p.Stars,
		Forks:         p.Forks,
		Downloads:     p.Downloads,
		Popularity:    p.Popularity(),
		UpdatedAt:     p.UpdatedAt.Unix(),
	}
}

// Summary projects the document back into the API package shape.
func (d *Document) Summary() catalog.Summary {
	return catalog.Summary{
		ID:          d.ID,
		Slug:        d.Slug,
		Name:        d.Name,
		Description: d.Description,
		Language:    d.Language,
		License:     d.License,
		Categories:  d.Categories,
		Stars:       d.Stars,
		Forks:       d.Forks,
		Downloads:   d.Downloads,
		UpdatedAt:   time.Unix(d.UpdatedAt, 0).UTC(),
	}
}

// Field returns the text of a searchable attribute.
func (d *Document) Field(name string) string {
	switch name {
	case AttrName:
		return d.Name
	case AttrSlug:
		return d.Slug
	case AttrDescription:
		return d.Description
	case AttrReadme:
		return d.Readme
	case AttrCategories:
		return strings.Join(d.Categories, " ")
	}
	return ""
}

// SortValue returns the numeric value of a sortable attribute.
// Name is not numeric and returns 0.
func (d *Document) SortValue(name string) float64 {
	switch name {
	case AttrStars:
		return float64(d.Stars)
	case AttrDownloads:
		return float64(d.Downloads)
	case AttrUpdatedAt:
		return float64(d.UpdatedAt)
	case AttrPopularity:
		return float64(d.Popularity)
	}
	return 0
}

// SortAttribute maps a sort key to the sortable attribute it orders by.
// Relevance has no attribute and returns "".
func SortAttribute(k order.Key) string {
	switch k {
	case order.Stars:
		return AttrStars
	case order.Downloads:
		return AttrDownloads
	case order.Recent:
		return AttrUpdatedAt
	case order.Name:
		return AttrName
	case order.Popularity:
		return AttrPopularity
	}
	return ""
}
