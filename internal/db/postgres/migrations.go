package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Migration is one forward schema step.
type Migration struct {
	Version string
	Up      func(dims int) string
}

// AllMigrations lists schema migrations in order.
var AllMigrations = []Migration{
	{Version: "1.0.0", Up: migrationV1Up},
	{Version: "1.1.0", Up: migrationV11Up},
}

// migrationV1Up creates the catalog tables. The embedding column has no ANN
// index: similarity queries are an exact full scan over embedded rows.
func migrationV1Up(dims int) string {
	return fmt.Sprintf(`
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS packages (
    id BIGSERIAL PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    readme TEXT NOT NULL DEFAULT '',
    language TEXT NOT NULL DEFAULT '',
    license TEXT NOT NULL DEFAULT '',
    stars INTEGER NOT NULL DEFAULT 0,
    forks INTEGER NOT NULL DEFAULT 0,
    downloads BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    embedding vector(%d),
    embedded_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_packages_language ON packages(language);
CREATE INDEX IF NOT EXISTS idx_packages_stars ON packages(stars DESC);

CREATE TABLE IF NOT EXISTS categories (
    id BIGSERIAL PRIMARY KEY,
    slug TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS package_categories (
    package_id BIGINT NOT NULL REFERENCES packages(id) ON DELETE CASCADE,
    category_id BIGINT NOT NULL REFERENCES categories(id) ON DELETE CASCADE,
    PRIMARY KEY (package_id, category_id)
);
`, dims)
}

func migrationV11Up(_ int) string {
	return `
CREATE INDEX IF NOT EXISTS idx_packages_pending_embedding
    ON packages(id) WHERE embedding IS NULL;
`
}

// ApplyMigrations runs every migration newer than the recorded schema version,
// each in its own transaction.
func ApplyMigrations(ctx context.Context, conn *sql.DB, dims int) error {
	if dims <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", dims)
	}

	current, err := currentVersion(ctx, conn)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		v, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %s: %w", m.Version, err)
		}
		if !current.LessThan(v) {
			continue
		}

		if err := applyOne(ctx, conn, m, dims); err != nil {
			return err
		}
		current = v
	}

	return nil
}

func applyOne(ctx context.Context, conn *sql.DB, m Migration, dims int) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", m.Version, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.Up(dims)); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_version (version) VALUES ($1)", m.Version,
	); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Version, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", m.Version, err)
	}
	return nil
}

// currentVersion returns the highest applied version, or 0.0.0 on a fresh database.
func currentVersion(ctx context.Context, conn *sql.DB) (*semver.Version, error) {
	var exists bool
	err := conn.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = 'schema_version')",
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check schema_version table: %w", err)
	}
	if !exists {
		return semver.MustParse("0.0.0"), nil
	}

	rows, err := conn.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		return nil, fmt.Errorf("read schema_version: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan schema_version: %w", err)
		}
		versions = append(versions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schema_version: %w", err)
	}

	return highestVersion(versions)
}

func highestVersion(versions []string) (*semver.Version, error) {
	highest := semver.MustParse("0.0.0")
	for _, s := range versions {
		v, err := semver.NewVersion(s)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("invalid recorded schema version %q", s), err)
		}
		if v.GreaterThan(highest) {
			highest = v
		}
	}
	return highest, nil
}
