package packages

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/pkgdex/internal/domain/search/filter"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/order"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
)

// summaryColumns is the projection shared by every search query.
const summaryColumns = `p.id, p.slug, p.name, p.description, p.language, p.license,
       p.stars, p.forks, p.downloads, p.created_at, p.updated_at,
       ARRAY(SELECT c.slug FROM package_categories pc JOIN categories c ON c.id = pc.category_id
             WHERE pc.package_id = p.id ORDER BY c.name, c.slug) AS category_slugs,
       ARRAY(SELECT c.name FROM package_categories pc JOIN categories c ON c.id = pc.category_id
             WHERE pc.package_id = p.id ORDER BY c.name, c.slug) AS category_names`

// args accumulates positional parameters and hands out $n placeholders.
type args struct {
	values []any
}

func (a *args) add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// keywordWhere builds the WHERE clause shared by the keyword page and count queries.
func keywordWhere(q *query.Keyword, a *args) string {
	var conds []string

	if q.Text != "" {
		p := a.add("%" + escapeLike(q.Text) + "%")
		conds = append(conds, fmt.Sprintf("(p.name ILIKE %s OR p.description ILIKE %s)", p, p))
	}
	conds = append(conds, criteriaConds(q.Criteria, a)...)

	if len(conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conds, " AND ")
}

func criteriaConds(c filter.Criteria, a *args) []string {
	var conds []string
	if c.Language() != "" {
		conds = append(conds, "p.language = "+a.add(c.Language()))
	}
	if c.License() != "" {
		// Licenses match case-insensitively, like the index TAG filter.
		conds = append(conds, "lower(p.license) = lower("+a.add(c.License())+")")
	}
	if c.MinStars() > 0 {
		conds = append(conds, "p.stars >= "+a.add(c.MinStars()))
	}
	if c.Category() != "" {
		conds = append(conds, "EXISTS (SELECT 1 FROM package_categories pc JOIN categories c ON c.id = pc.category_id "+
			"WHERE pc.package_id = p.id AND c.slug = "+a.add(c.Category())+")")
	}
	return conds
}

// keywordOrder returns the store-level ORDER BY. Every ordering ends with p.id
// so pages never overlap on ties.
func keywordOrder(q *query.Keyword, a *args) string {
	switch q.Sort {
	case order.Stars:
		return "ORDER BY p.stars DESC, p.id ASC"
	case order.Downloads:
		return "ORDER BY p.downloads DESC, p.id ASC"
	case order.Recent:
		return "ORDER BY p.updated_at DESC, p.id ASC"
	case order.Name:
		return "ORDER BY lower(p.name) ASC, p.id ASC"
	case order.Popularity:
		return "ORDER BY (p.stars + 2 * p.forks + p.downloads / 1000) DESC, p.id ASC"
	}
	// Relevance: exact name match first, then stars.
	if q.Text != "" {
		return "ORDER BY (lower(p.name) = lower(" + a.add(q.Text) + ")) DESC, p.stars DESC, p.id ASC"
	}
	return "ORDER BY p.stars DESC, p.id ASC"
}

func buildKeywordQuery(q *query.Keyword) (string, []any) {
	a := &args{}
	where := keywordWhere(q, a)
	orderBy := keywordOrder(q, a)
	limit := a.add(q.Limit)
	offset := a.add(q.Offset)

	sql := "SELECT " + summaryColumns + "\nFROM packages p\n" + where + "\n" + orderBy +
		"\nLIMIT " + limit + " OFFSET " + offset
	return sql, a.values
}

func buildKeywordCount(q *query.Keyword) (string, []any) {
	a := &args{}
	where := keywordWhere(q, a)
	return "SELECT COUNT(*) FROM packages p " + where, a.values
}

// buildNearestQuery ranks embedded rows by cosine distance (pgvector <=>).
// Ties break by ascending id. This is an exact scan: no ANN index is used.
func buildNearestQuery(q *query.Nearest) (string, []any) {
	a := &args{}
	vec := a.add(vectorToString(q.Vector))

	conds := []string{"p.embedding IS NOT NULL"}
	if q.Language != "" {
		conds = append(conds, "p.language = "+a.add(q.Language))
	}
	limit := a.add(q.K)

	sql := "SELECT " + summaryColumns + ",\n       1 - (p.embedding <=> " + vec + "::vector) AS similarity\n" +
		"FROM packages p\nWHERE " + strings.Join(conds, " AND ") +
		"\nORDER BY p.embedding <=> " + vec + "::vector, p.id ASC\nLIMIT " + limit
	return sql, a.values
}

// buildPendingEmbeddingsQuery pages through records needing a (re)embedding by id.
func buildPendingEmbeddingsQuery(afterID int64, limit int, force bool) (string, []any) {
	a := &args{}
	conds := []string{"p.id > " + a.add(afterID)}
	if !force {
		conds = append(conds, "(p.embedding IS NULL OR p.embedded_at IS NULL OR p.embedded_at < p.updated_at)")
	}
	sql := "SELECT " + summaryColumns + ", p.readme\nFROM packages p\nWHERE " + strings.Join(conds, " AND ") +
		"\nORDER BY p.id ASC\nLIMIT " + a.add(limit)
	return sql, a.values
}

func buildPendingEmbeddingsCount(force bool) string {
	if force {
		return "SELECT COUNT(*) FROM packages p"
	}
	return "SELECT COUNT(*) FROM packages p WHERE p.embedding IS NULL OR p.embedded_at IS NULL OR p.embedded_at < p.updated_at"
}

func buildListAllQuery(afterID int64, limit int) (string, []any) {
	a := &args{}
	sql := "SELECT " + summaryColumns + ", p.readme\nFROM packages p\nWHERE p.id > " + a.add(afterID) +
		"\nORDER BY p.id ASC\nLIMIT " + a.add(limit)
	return sql, a.values
}

const saveEmbeddingSQL = `UPDATE packages SET embedding = $2::vector, embedded_at = $3 WHERE id = $1`

// escapeLike escapes ILIKE wildcards so user text matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// vectorToString converts a float32 slice to pgvector text format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = strconv.FormatFloat(float64(val), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
