package vault

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cyberwise/cyberwise-core/internal/common"
	"github.com/cyberwise/cyberwise-core/internal/keystore"
	"github.com/cyberwise/cyberwise-core/internal/storage/kv"
)

func setupService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "store.db")
	db, err := kv.InitDatabase(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	keys := keystore.NewStore(kv.NewSQLiteRepository(db), nil)
	return NewService(db, keys, nil), db
}

func TestAddDecrypt_RoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	entry, err := svc.Add(ctx, "Email", "S3cret!", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)
	require.Equal(t, "Email", entry.Title)
	require.Equal(t, "alice", entry.OwnerUsername)
	require.NotEqual(t, []byte("S3cret!"), entry.Ciphertext)

	secret, err := svc.Decrypt(ctx, *entry)
	require.NoError(t, err)
	require.Equal(t, "S3cret!", secret)
}

func TestAdd_PersistsAcrossServiceInstances(t *testing.T) {
	ctx := context.Background()
	svc, db := setupService(t)

	entry, err := svc.Add(ctx, "Email", "S3cret!", "alice")
	require.NoError(t, err)

	again := NewService(db, keystore.NewStore(kv.NewSQLiteRepository(db), nil), nil)
	entries, err := again.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, entry.ID, entries[0].ID)

	secret, err := again.Decrypt(ctx, entries[0])
	require.NoError(t, err)
	require.Equal(t, "S3cret!", secret)
}

func TestList_OwnerFilterIsAdvisory(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Add(ctx, "Email", "a-secret", "alice")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "Bank", "b-secret", "bob")
	require.NoError(t, err)

	aliceOnly, err := svc.List(ctx, "Alice")
	require.NoError(t, err)
	require.Len(t, aliceOnly, 1)

	// Ownership is a label: bob's entry decrypts fine for anyone holding
	// the vault, the filter just has to be skipped.
	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, e := range all {
		_, err := svc.Decrypt(ctx, e)
		require.NoError(t, err)
	}
}

func TestUpdate_TitleOnlyKeepsSecret(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	entry, err := svc.Add(ctx, "Email", "S3cret!", "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, entry.ID, "Webmail", ""))

	entries, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "Webmail", entries[0].Title)

	secret, err := svc.Decrypt(ctx, entries[0])
	require.NoError(t, err)
	require.Equal(t, "S3cret!", secret)
}

func TestUpdate_SecretOnlyKeepsTitle(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	entry, err := svc.Add(ctx, "Email", "old", "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, entry.ID, "", "new"))

	entries, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, "Email", entries[0].Title)

	secret, err := svc.Decrypt(ctx, entries[0])
	require.NoError(t, err)
	require.Equal(t, "new", secret)
}

func TestUpdate_UnknownID(t *testing.T) {
	svc, _ := setupService(t)
	err := svc.Update(context.Background(), "nope", "t", "s")
	require.ErrorIs(t, err, common.ErrorEntryNotFound)
}

func TestDelete_RemovesEntry(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	entry, err := svc.Add(ctx, "Email", "S3cret!", "alice")
	require.NoError(t, err)
	keep, err := svc.Add(ctx, "Bank", "0therS3cret", "alice")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, entry.ID))

	entries, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, keep.ID, entries[0].ID)
}

func TestDelete_UnknownID(t *testing.T) {
	svc, _ := setupService(t)
	err := svc.Delete(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorEntryNotFound)
}

func TestDecrypt_FailsAfterKeyRegeneration(t *testing.T) {
	ctx := context.Background()
	svc, db := setupService(t)
	repo := kv.NewSQLiteRepository(db)

	entry, err := svc.Add(ctx, "Email", "S3cret!", "alice")
	require.NoError(t, err)

	// Simulate key loss: on the next start the keystore finds corrupt
	// bytes and silently generates a replacement key.
	require.NoError(t, repo.Set(ctx, keystore.StorageKey, []byte("garbage")))
	restarted := NewService(db, keystore.NewStore(repo, nil), nil)

	_, err = restarted.Decrypt(ctx, *entry)
	require.ErrorIs(t, err, common.ErrorCryptoFailure)
}

func TestLoad_CorruptCollectionTreatedAsEmpty(t *testing.T) {
	ctx := context.Background()
	svc, db := setupService(t)
	repo := kv.NewSQLiteRepository(db)

	require.NoError(t, repo.Set(ctx, StorageKey, []byte(`[{"id": truncated`)))

	entries, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestAdd_PersistenceFailureIsSilent(t *testing.T) {
	ctx := context.Background()
	svc, db := setupService(t)

	// Warm the key cache, then force every subsequent write to fail.
	_, err := svc.Add(ctx, "First", "warm-up", "alice")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	entry, err := svc.Add(ctx, "Email", "S3cret!", "alice")
	require.NoError(t, err)
	require.NotNil(t, entry)
}
