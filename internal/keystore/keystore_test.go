package keystore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyberwise/cyberwise-core/internal/cryptox"
	"github.com/cyberwise/cyberwise-core/internal/storage/kv"
)

func setupRepo(t *testing.T) (*sql.DB, kv.Repository) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "store.db")
	db, err := kv.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, kv.NewSQLiteRepository(db)
}

func TestGetOrCreate_GeneratesAndPersists(t *testing.T) {
	ctx := context.Background()
	_, repo := setupRepo(t)
	store := NewStore(repo, nil)

	key, err := store.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Len(t, key, cryptox.KeySize)

	stored, err := repo.Get(ctx, StorageKey)
	require.NoError(t, err)
	require.Equal(t, key, stored)
}

func TestGetOrCreate_ReturnsSameKeyAcrossCalls(t *testing.T) {
	ctx := context.Background()
	_, repo := setupRepo(t)
	store := NewStore(repo, nil)

	first, err := store.GetOrCreate(ctx)
	require.NoError(t, err)

	second, err := store.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestGetOrCreate_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "store.db")

	db, err := kv.InitDatabase(ctx, dsn)
	require.NoError(t, err)
	first, err := NewStore(kv.NewSQLiteRepository(db), nil).GetOrCreate(ctx)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = kv.InitDatabase(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	second, err := NewStore(kv.NewSQLiteRepository(db), nil).GetOrCreate(ctx)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestGetOrCreate_ReplacesCorruptKey(t *testing.T) {
	ctx := context.Background()
	_, repo := setupRepo(t)
	store := NewStore(repo, nil)

	original, err := store.GetOrCreate(ctx)
	require.NoError(t, err)

	// Truncated key bytes, as after a partial write. A fresh store stands
	// in for the next process start.
	require.NoError(t, repo.Set(ctx, StorageKey, append([]byte(nil), original[:7]...)))

	replaced, err := NewStore(repo, nil).GetOrCreate(ctx)
	require.NoError(t, err)
	require.Len(t, replaced, cryptox.KeySize)
	require.NotEqual(t, original, replaced)
}

func TestGetOrCreate_CachesWithinProcess(t *testing.T) {
	ctx := context.Background()
	_, repo := setupRepo(t)
	store := NewStore(repo, nil)

	key, err := store.GetOrCreate(ctx)
	require.NoError(t, err)

	// Mangling stored bytes is invisible until the next process start.
	require.NoError(t, repo.Set(ctx, StorageKey, []byte("garbage")))

	cached, err := store.GetOrCreate(ctx)
	require.NoError(t, err)
	require.Equal(t, key, cached)
}
