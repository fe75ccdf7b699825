package accounts

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cyberwise/cyberwise-core/internal/common"
	"github.com/cyberwise/cyberwise-core/internal/filex"
	"github.com/cyberwise/cyberwise-core/internal/logging"
)

// Repository persists the collection of registered accounts. Usernames are
// matched case-insensitively everywhere.
type Repository interface {
	GetAll(ctx context.Context) ([]Account, error)
	// FindByUsername returns the matching account, or an error wrapping
	// common.ErrorNotFound.
	FindByUsername(ctx context.Context, username string) (*Account, error)
	// Append adds a new account and rewrites the whole collection.
	Append(ctx context.Context, account Account) error
	// Replace swaps the stored record with the same username for the given
	// one and rewrites the whole collection.
	Replace(ctx context.Context, account Account) error
	// Delete removes the account and rewrites the reduced collection.
	Delete(ctx context.Context, username string) error
}

// registeredUsersFile is the single serialized collection inside the
// repository directory.
const registeredUsersFile = "registeredUsers.json"

// FileRepository stores all accounts as one JSON array in a directory,
// written atomically on every change. An absent or corrupt file reads as
// an empty collection ("no data found"), never as a hard failure.
type FileRepository struct {
	path string
	log  logging.Logger
}

func NewFileRepository(dir string, log logging.Logger) *FileRepository {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &FileRepository{path: filepath.Join(dir, registeredUsersFile), log: log}
}

func (r *FileRepository) GetAll(ctx context.Context) ([]Account, error) {
	var all []Account
	if err := filex.ReadJSON(r.path, &all); err != nil {
		r.log.Debug(ctx, "no stored accounts found", "error", err)
		return nil, nil
	}
	return all, nil
}

func (r *FileRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	all, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if strings.EqualFold(all[i].Username, username) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: account %q", common.ErrorNotFound, username)
}

func (r *FileRepository) Append(ctx context.Context, account Account) error {
	all, err := r.GetAll(ctx)
	if err != nil {
		return err
	}
	return r.save(append(all, account))
}

func (r *FileRepository) Replace(ctx context.Context, account Account) error {
	all, err := r.GetAll(ctx)
	if err != nil {
		return err
	}
	for i := range all {
		if strings.EqualFold(all[i].Username, account.Username) {
			all[i] = account
			return r.save(all)
		}
	}
	return fmt.Errorf("%w: account %q", common.ErrorNotFound, account.Username)
}

func (r *FileRepository) Delete(ctx context.Context, username string) error {
	all, err := r.GetAll(ctx)
	if err != nil {
		return err
	}
	kept := all[:0]
	found := false
	for _, a := range all {
		if strings.EqualFold(a.Username, username) {
			found = true
			continue
		}
		kept = append(kept, a)
	}
	if !found {
		return fmt.Errorf("%w: account %q", common.ErrorNotFound, username)
	}
	return r.save(kept)
}

func (r *FileRepository) save(all []Account) error {
	if all == nil {
		all = []Account{}
	}
	return filex.WriteJSON(r.path, all)
}
