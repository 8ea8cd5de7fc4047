package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationFiles embed.FS

// goose keeps dialect and base FS in package globals.
var gooseMu sync.Mutex

// RunMigrations applies embedded Postgres migrations via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	return runMigrations(ctx, database, "postgres", "migrations/postgres")
}

// RunSQLiteMigrations applies the embedded SQLite migrations to a local store file.
func RunSQLiteMigrations(ctx context.Context, database *sql.DB) error {
	return runMigrations(ctx, database, "sqlite3", "migrations/sqlite")
}

func runMigrations(ctx context.Context, database *sql.DB, dialect, dir string) error {
	if database == nil {
		return nil
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, dir); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	return nil
}
