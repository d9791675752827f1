package ftindex

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/pkgdex/internal/domain/index"
)

// Hash field names. Category names are stored as TEXT joined by ";",
// category slugs as a TAG list joined by ",".
const (
	fieldID            = "id"
	fieldForks         = "forks"
	fieldCategorySlugs = "category_slugs"
	categorySep        = ";"
	tagSep             = ","
)

func toHash(d *index.Document) map[string]string {
	return map[string]string{
		fieldID:               strconv.FormatInt(d.ID, 10),
		index.AttrSlug:        d.Slug,
		index.AttrName:        d.Name,
		index.AttrDescription: d.Description,
		index.AttrReadme:      d.Readme,
		index.AttrLanguage:    d.Language,
		index.AttrLicense:     d.License,
		index.AttrCategories:  strings.Join(d.Categories, categorySep),
		fieldCategorySlugs:    strings.Join(d.CategorySlugs, tagSep),
		index.AttrStars:       strconv.Itoa(d.Stars),
		fieldForks:            strconv.Itoa(d.Forks),
		index.AttrDownloads:   strconv.FormatInt(d.Downloads, 10),
		index.AttrPopularity:  strconv.FormatInt(d.Popularity, 10),
		index.AttrUpdatedAt:   strconv.FormatInt(d.UpdatedAt, 10),
	}
}

// fromHash rebuilds a document. Malformed numbers decode as zero.
func fromHash(m map[string]string) index.Document {
	return index.Document{
		ID:            parseInt(m[fieldID]),
		Slug:          m[index.AttrSlug],
		Name:          m[index.AttrName],
		Description:   m[index.AttrDescription],
		Readme:        m[index.AttrReadme],
		Language:      m[index.AttrLanguage],
		License:       m[index.AttrLicense],
		Categories:    splitNonEmpty(m[index.AttrCategories], categorySep),
		CategorySlugs: splitNonEmpty(m[fieldCategorySlugs], tagSep),
		Stars:         int(parseInt(m[index.AttrStars])),
		Forks:         int(parseInt(m[fieldForks])),
		Downloads:     parseInt(m[index.AttrDownloads]),
		Popularity:    parseInt(m[index.AttrPopularity]),
		UpdatedAt:     parseInt(m[index.AttrUpdatedAt]),
	}
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, sep)
}
