package packages

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/kailas-cloud/pkgdex/internal/domain"
	"github.com/kailas-cloud/pkgdex/internal/domain/catalog"
	"github.com/kailas-cloud/pkgdex/internal/domain/search/query"
)

// querier is the consumer interface over *sql.DB (ISP).
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PingContext(ctx context.Context) error
}

// Repo is the PostgreSQL system of record for packages.
type Repo struct {
	db querier
}

// New creates a packages repository.
func New(db querier) *Repo {
	return &Repo{db: db}
}

// Ping checks database connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// SearchKeyword runs a substring search on name/description with filters and sort.
func (r *Repo) SearchKeyword(ctx context.Context, q *query.Keyword) (query.Page, error) {
	countSQL, countArgs := buildKeywordCount(q)
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return query.Page{}, fmt.Errorf("%w: count keyword matches: %w", domain.ErrStoreUnavailable, err)
	}
	if total == 0 || q.Offset >= total {
		return query.Page{Records: []catalog.PackageRecord{}, Total: total}, nil
	}

	pageSQL, pageArgs := buildKeywordQuery(q)
	rows, err := r.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return query.Page{}, fmt.Errorf("%w: keyword search: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	records := make([]catalog.PackageRecord, 0, q.Limit)
	for rows.Next() {
		rec, err := scanSummary(rows)
		if err != nil {
			return query.Page{}, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return query.Page{}, fmt.Errorf("%w: iterate keyword rows: %w", domain.ErrStoreUnavailable, err)
	}

	return query.Page{Records: records, Total: total}, nil
}

// Nearest returns up to K embedded records ordered by cosine similarity descending.
func (r *Repo) Nearest(ctx context.Context, q *query.Nearest) ([]query.ScoredRecord, error) {
	sqlStr, args := buildNearestQuery(q)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	out := make([]query.ScoredRecord, 0, q.K)
	for rows.Next() {
		var (
			rec        catalog.PackageRecord
			slugs      []string
			names      []string
			similarity float64
		)
		if err := rows.Scan(
			&rec.ID, &rec.Slug, &rec.Name, &rec.Description, &rec.Language, &rec.License,
			&rec.Stars, &rec.Forks, &rec.Downloads, &rec.CreatedAt, &rec.UpdatedAt,
			pq.Array(&slugs), pq.Array(&names), &similarity,
		); err != nil {
			return nil, fmt.Errorf("scan vector row: %w", err)
		}
		rec.Categories = zipCategories(slugs, names)
		out = append(out, query.ScoredRecord{Record: rec, Similarity: similarity})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate vector rows: %w", domain.ErrStoreUnavailable, err)
	}
	return out, nil
}

// PendingEmbeddings returns records after afterID that lack an up-to-date embedding
// (every record when force is set), ordered by id.
func (r *Repo) PendingEmbeddings(ctx context.Context, afterID int64, limit int, force bool) ([]catalog.PackageRecord, error) {
	sqlStr, args := buildPendingEmbeddingsQuery(afterID, limit, force)
	return r.queryFull(ctx, sqlStr, args)
}

// CountPendingEmbeddings counts records PendingEmbeddings would visit.
func (r *Repo) CountPendingEmbeddings(ctx context.Context, force bool) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, buildPendingEmbeddingsCount(force)).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count pending embeddings: %w", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

// SaveEmbedding stores a unit-normalized vector and its generation time.
func (r *Repo) SaveEmbedding(ctx context.Context, id int64, vec []float32, at time.Time) error {
	res, err := r.db.ExecContext(ctx, saveEmbeddingSQL, id, vectorToString(vec), at)
	if err != nil {
		return fmt.Errorf("%w: save embedding %d: %w", domain.ErrStoreUnavailable, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("package %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// ListAll pages through every record (with readme and categories) by id.
func (r *Repo) ListAll(ctx context.Context, afterID int64, limit int) ([]catalog.PackageRecord, error) {
	sqlStr, args := buildListAllQuery(afterID, limit)
	return r.queryFull(ctx, sqlStr, args)
}

// CountAll returns the number of packages.
func (r *Repo) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM packages").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count packages: %w", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

func (r *Repo) queryFull(ctx context.Context, sqlStr string, args []any) ([]catalog.PackageRecord, error) {
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list packages: %w", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []catalog.PackageRecord
	for rows.Next() {
		var (
			rec   catalog.PackageRecord
			slugs []string
			names []string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Slug, &rec.Name, &rec.Description, &rec.Language, &rec.License,
			&rec.Stars, &rec.Forks, &rec.Downloads, &rec.CreatedAt, &rec.UpdatedAt,
			pq.Array(&slugs), pq.Array(&names), &rec.Readme,
		); err != nil {
			return nil, fmt.Errorf("scan package row: %w", err)
		}
		rec.Categories = zipCategories(slugs, names)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate package rows: %w", domain.ErrStoreUnavailable, err)
	}
	return out, nil
}

func scanSummary(rows *sql.Rows) (catalog.PackageRecord, error) {
	var (
		rec   catalog.PackageRecord
		slugs []string
		names []string
	)
	if err := rows.Scan(
		&rec.ID, &rec.Slug, &rec.Name, &rec.Description, &rec.Language, &rec.License,
		&rec.Stars, &rec.Forks, &rec.Downloads, &rec.CreatedAt, &rec.UpdatedAt,
		pq.Array(&slugs), pq.Array(&names),
	); err != nil {
		return catalog.PackageRecord{}, fmt.Errorf("scan package row: %w", err)
	}
	rec.Categories = zipCategories(slugs, names)
	return rec, nil
}

func zipCategories(slugs, names []string) []catalog.Category {
	n := min(len(slugs), len(names))
	out := make([]catalog.Category, n)
	for i := range n {
		out[i] = catalog.Category{Slug: slugs[i], Name: names[i]}
	}
	return out
}
