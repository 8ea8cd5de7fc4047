package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestOpenRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "roaster.db")

	store, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	_, ok, err := store.Get(ctx, "resume_roaster_user")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "resume_roaster_user", "alice"))
	require.NoError(t, store.Set(ctx, "resume_roaster_user", "bob"))

	got, ok, err := store.Get(ctx, "resume_roaster_user")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "bob", got)

	require.NoError(t, store.Delete(ctx, "resume_roaster_user"))
	require.NoError(t, store.Delete(ctx, "resume_roaster_user"))
	_, ok, err = store.Get(ctx, "resume_roaster_user")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestOpenReopensExistingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "roaster.db")

	first, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "resume_roaster_data_alice", `[{"id":"1"}]`))
	require.NoError(t, first.Close())

	second, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	got, ok, err := second.Get(ctx, "resume_roaster_data_alice")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `[{"id":"1"}]`, got)
}

func TestSetWritesTimestamp(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := &Store{DB: database, now: func() time.Time { return fixed }}

	mock.ExpectExec("INSERT INTO kv_entries").
		WithArgs("k", "v", "2026-01-02T03:04:05Z").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Set(context.Background(), "k", "v"))
	require.NoError(t, mock.ExpectationsWereMet())
}
