package persistence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

const ledgerTable = `
    CREATE TABLE IF NOT EXISTS schema_migrations (
        version    TEXT PRIMARY KEY,
        applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`

// RunMigrations applies the pending .up.sql files in the /migrations
// directory in lexical order. Each version is applied at most once: the
// ledger records the applied versions, and each pending file runs inside its
// own transaction together with its ledger insert.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}

	if _, err := pool.Exec(ctx, ledgerTable); err != nil {
		return fmt.Errorf("create migration ledger: %w", err)
	}

	applied, err := appliedVersions(ctx, pool)
	if err != nil {
		return err
	}

	versions, err := upMigrations(migrationsDir)
	if err != nil {
		return err
	}

	pending := 0
	for _, version := range versions {
		if applied[version] {
			continue
		}
		content, err := os.ReadFile(upMigrationPath(migrationsDir, version))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", version, err)
		}

		logger.Info("applying migration", zap.String("version", version))
		tx, err := pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, version); err != nil {
			_ = tx.Rollback(ctx)
			return fmt.Errorf("record migration %s: %w", version, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return fmt.Errorf("commit migration %s: %w", version, err)
		}
		pending++
	}

	logger.Info("migrations applied", zap.Int("pending", pending), zap.Int("total", len(versions)))
	return nil
}

// RollbackLastMigration reverts the most recently applied version by running
// its .down.sql counterpart and removing the ledger row, inside one
// transaction. It is a no-op on an empty ledger.
func RollbackLastMigration(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping rollback")
		return nil
	}

	var version string
	err := pool.QueryRow(ctx, `SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Info("no applied migrations to roll back")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read migration ledger: %w", err)
	}

	content, err := os.ReadFile(downMigrationPath(migrationsDir, version))
	if err != nil {
		return fmt.Errorf("read down migration %s: %w", version, err)
	}

	logger.Info("rolling back migration", zap.String("version", version))
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rollback %s: %w", version, err)
	}
	if _, err := tx.Exec(ctx, string(content)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("roll back migration %s: %w", version, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, version); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("unrecord migration %s: %w", version, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rollback %s: %w", version, err)
	}
	return nil
}

// upMigrations lists the migration versions in the directory, sorted in apply
// order. A version is the filename with the .up.sql suffix stripped; every up
// file must have a matching down file.
func upMigrations(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), upSuffix) {
			continue
		}
		version := strings.TrimSuffix(entry.Name(), upSuffix)
		if _, err := os.Stat(downMigrationPath(dir, version)); err != nil {
			return nil, fmt.Errorf("migration %s has no down file: %w", version, err)
		}
		versions = append(versions, version)
	}

	sort.Strings(versions)
	return versions, nil
}

func upMigrationPath(dir, version string) string {
	return filepath.Join(dir, version+upSuffix)
}

func downMigrationPath(dir, version string) string {
	return filepath.Join(dir, version+downSuffix)
}

func appliedVersions(ctx context.Context, pool *pgxpool.Pool) (map[string]bool, error) {
	rows, err := pool.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}
