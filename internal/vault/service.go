package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cyberwise/cyberwise-core/internal/common"
	"github.com/cyberwise/cyberwise-core/internal/cryptox"
	"github.com/cyberwise/cyberwise-core/internal/dbx"
	"github.com/cyberwise/cyberwise-core/internal/keystore"
	"github.com/cyberwise/cyberwise-core/internal/logging"
	"github.com/cyberwise/cyberwise-core/internal/storage/kv"
)

// StorageKey is the kv key holding the serialized entry collection.
const StorageKey = "savedPasswords"

// Service provides CRUD over encrypted entries. Every mutation rewrites the
// whole collection (whole-record replace). The cipher key is fetched lazily
// from the keystore on first use.
//
// Failed persistence is logged and otherwise swallowed: the caller sees the
// operation succeed while the store keeps its previous contents. That is the
// contract of the app this core was extracted from; tests pin it down.
type Service struct {
	db   *sql.DB
	keys *keystore.Store
	log  logging.Logger
}

func NewService(db *sql.DB, keys *keystore.Store, log logging.Logger) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{db: db, keys: keys, log: log}
}

// Add seals secret under the installation key and appends the new entry to
// the collection. It returns no entry when sealing fails.
func (s *Service) Add(ctx context.Context, title, secret, owner string) (*Entry, error) {
	key, err := s.keys.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	blob, err := cryptox.Seal([]byte(secret), key)
	if err != nil {
		return nil, err
	}

	entry := Entry{
		ID:            uuid.NewString(),
		Title:         title,
		OwnerUsername: owner,
		Ciphertext:    blob,
	}

	s.mutate(ctx, func(entries []Entry) []Entry {
		return append(entries, entry)
	})
	return &entry, nil
}

// Update replaces the title and/or reseals the secret of the entry with the
// given id. An empty newTitle keeps the current title; an empty newSecret
// keeps the current ciphertext.
func (s *Service) Update(ctx context.Context, id, newTitle, newSecret string) error {
	var blob []byte
	if newSecret != "" {
		key, err := s.keys.GetOrCreate(ctx)
		if err != nil {
			return err
		}
		if blob, err = cryptox.Seal([]byte(newSecret), key); err != nil {
			return err
		}
	}

	found := false
	s.mutate(ctx, func(entries []Entry) []Entry {
		for i := range entries {
			if entries[i].ID != id {
				continue
			}
			found = true
			if newTitle != "" {
				entries[i].Title = newTitle
			}
			if blob != nil {
				entries[i].Ciphertext = blob
			}
		}
		return entries
	})

	if !found {
		return common.ErrorEntryNotFound
	}
	return nil
}

// Delete removes the entry with the given id and persists the reduced
// collection.
func (s *Service) Delete(ctx context.Context, id string) error {
	found := false
	s.mutate(ctx, func(entries []Entry) []Entry {
		kept := entries[:0]
		for _, e := range entries {
			if e.ID == id {
				found = true
				continue
			}
			kept = append(kept, e)
		}
		return kept
	})

	if !found {
		return common.ErrorEntryNotFound
	}
	return nil
}

// Decrypt opens the entry's ciphertext with the current installation key.
// It fails with common.ErrorCryptoFailure when the key no longer matches or
// the blob is corrupt.
func (s *Service) Decrypt(ctx context.Context, entry Entry) (string, error) {
	key, err := s.keys.GetOrCreate(ctx)
	if err != nil {
		return "", err
	}

	plaintext, err := cryptox.Open(entry.Ciphertext, key)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// List returns the stored entries. A non-empty owner filters to that owner's
// entries (case-insensitive); the filter is advisory only.
func (s *Service) List(ctx context.Context, owner string) ([]Entry, error) {
	repo := kv.NewSQLiteRepository(s.db)
	entries := s.load(ctx, repo)
	if owner == "" {
		return entries, nil
	}

	filtered := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if strings.EqualFold(e.OwnerUsername, owner) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// mutate runs fn over the stored collection and writes the result back,
// read-modify-write in one transaction. Persistence failures are logged and
// swallowed.
func (s *Service) mutate(ctx context.Context, fn func([]Entry) []Entry) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := kv.NewSQLiteRepository(tx)
		entries := fn(s.load(ctx, repo))

		data, err := json.Marshal(entries)
		if err != nil {
			return fmt.Errorf("marshal entries: %w", err)
		}
		return repo.Set(ctx, StorageKey, data)
	})
	if err != nil {
		s.log.Warn(ctx, "failed to persist vault entries", "error", err)
	}
}

// load reads the collection, collapsing absent and corrupt data into an
// empty list.
func (s *Service) load(ctx context.Context, repo kv.Repository) []Entry {
	data, err := repo.Get(ctx, StorageKey)
	if err != nil || data == nil {
		if err != nil {
			s.log.Warn(ctx, "failed to read vault entries", "error", err)
		}
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn(ctx, "stored vault entries are corrupt, treating as empty", "error", err)
		return nil
	}
	return entries
}
