// Package sqlite is the default device-local kv backend: a single SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"resume-roaster/internal/shared/storage/db"
	"resume-roaster/internal/shared/storage/kv"
)

// Store implements kv.Store on top of a SQLite database file.
type Store struct {
	DB *sql.DB

	now func() time.Time
}

// Open opens the SQLite file at path and applies the embedded schema.
func Open(ctx context.Context, path string) (*Store, error) {
	database, err := db.OpenSQLite(ctx, path, db.DefaultSQLiteOptions())
	if err != nil {
		return nil, err
	}
	if err := db.RunSQLiteMigrations(ctx, database); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{DB: database}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := kv.CheckKey(key); err != nil {
		return "", false, err
	}
	var value string
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}
	const query = `
INSERT INTO kv_entries (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := s.DB.ExecContext(ctx, query, key, value, s.timestamp()); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := kv.CheckKey(key); err != nil {
		return err
	}
	if _, err := s.DB.ExecContext(ctx, `DELETE FROM kv_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("kv delete %q: %w", key, err)
	}
	return nil
}

func (s *Store) timestamp() string {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return now().UTC().Format(time.RFC3339)
}

var _ kv.Store = (*Store)(nil)
