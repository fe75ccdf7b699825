// Package keystore owns the single symmetric key protecting the credential
// vault. The key is generated once per installation, persisted in the local
// kv store, and never rotated.
//
// If the persisted bytes are absent or unusable, a fresh key is generated
// and written in their place. Everything sealed under the previous key
// becomes permanently undecryptable at that point; the replacement is
// logged, not surfaced. This mirrors the behavior of the app this core was
// extracted from and is covered by tests.
package keystore

import (
	"context"

	"github.com/cyberwise/cyberwise-core/internal/cryptox"
	"github.com/cyberwise/cyberwise-core/internal/logging"
	"github.com/cyberwise/cyberwise-core/internal/storage/kv"
)

// StorageKey is the kv key holding the raw key bytes. It lives in the same
// store as the vault ciphertext it protects.
const StorageKey = "encryptionKey"

type Store struct {
	repo kv.Repository
	log  logging.Logger

	// key caches the loaded key for the lifetime of the process.
	key []byte
}

func NewStore(repo kv.Repository, log logging.Logger) *Store {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Store{repo: repo, log: log}
}

// GetOrCreate returns the installation key, generating and persisting a new
// 256-bit key when no usable one is stored. The key is read from storage
// once and then held in memory.
func (s *Store) GetOrCreate(ctx context.Context) ([]byte, error) {
	if s.key != nil {
		return s.key, nil
	}

	stored, err := s.repo.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}

	if len(stored) == cryptox.KeySize {
		s.key = stored
		return stored, nil
	}

	if stored != nil {
		s.log.Warn(ctx, "stored cipher key is unusable, generating a new one; previously sealed entries are lost",
			"stored_len", len(stored))
	}

	key := cryptox.GenerateKey()
	if err := s.repo.Set(ctx, StorageKey, key); err != nil {
		return nil, err
	}
	s.key = key
	return key, nil
}
