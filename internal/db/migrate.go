package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/udisondev/skirmish/internal/db/migrations"
)

// ErrSchemaAhead is returned when the database was migrated by a newer build.
var ErrSchemaAhead = errors.New("database schema is newer than this build")

// LatestMigration returns the highest version among the embedded migrations.
func LatestMigration() (int64, error) {
	return latestIn(migrations.FS)
}

func latestIn(fsys fs.FS) (int64, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return 0, fmt.Errorf("listing migrations: %w", err)
	}
	var latest int64
	for _, name := range names {
		v, err := goose.NumericComponent(name)
		if err != nil {
			return 0, fmt.Errorf("migration %s: %w", name, err)
		}
		latest = max(latest, v)
	}
	return latest, nil
}

// RunMigrations brings the rule_sets and class_assignments tables up to the
// embedded schema and returns the resulting version.
// A database already past that version is left untouched and ErrSchemaAhead is returned.
func RunMigrations(ctx context.Context, dsn string) (int64, error) {
	latest, err := LatestMigration()
	if err != nil {
		return 0, err
	}

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		return 0, fmt.Errorf("opening sql connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("setting goose dialect: %w", err)
	}

	current, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	if current > latest {
		return current, fmt.Errorf("%w: database at %d, build knows %d", ErrSchemaAhead, current, latest)
	}
	if current == latest {
		slog.Debug("database schema up to date", "version", current)
		return current, nil
	}

	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return 0, fmt.Errorf("running migrations from %d: %w", current, err)
	}
	slog.Info("database schema migrated", "from", current, "to", latest)
	return latest, nil
}
