// Package session provides the observable session façade UI layers bind to,
// and the signed on-disk session cache behind "remember me".
package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cyberwise/cyberwise-core/internal/accounts"
	"github.com/cyberwise/cyberwise-core/internal/common"
	"github.com/cyberwise/cyberwise-core/internal/filex"
	"github.com/cyberwise/cyberwise-core/internal/keystore"
)

// sessionFile is the single serialized record caching the active session.
const sessionFile = "userData.json"

// cacheClaims embeds the active account record in a signed token.
type cacheClaims struct {
	Account accounts.Account `json:"account"`
	jwt.RegisteredClaims
}

// FileCache persists the active session as one HS256-signed record, keyed
// by the installation key. Editing the file by hand (or any corruption)
// makes it unreadable, which downgrades the next start to logged-out
// instead of letting a forged record bypass the password.
type FileCache struct {
	path string
	keys *keystore.Store
}

func NewFileCache(dir string, keys *keystore.Store) *FileCache {
	return &FileCache{path: filepath.Join(dir, sessionFile), keys: keys}
}

// Store writes the signed session record, replacing any previous one.
func (c *FileCache) Store(ctx context.Context, account accounts.Account) error {
	key, err := c.keys.GetOrCreate(ctx)
	if err != nil {
		return err
	}

	claims := cacheClaims{
		Account: account,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  account.Username,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return fmt.Errorf("sign session record: %w", err)
	}

	return filex.WriteFileAtomic(c.path, []byte(signed), 0o600)
}

// Load returns the cached account. An absent file and an unverifiable one
// (corrupt, truncated, tampered with, or signed under a lost key) all
// collapse into common.ErrorNotFound.
func (c *FileCache) Load(ctx context.Context) (*accounts.Account, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read session cache: %v", common.ErrorNotFound, err)
	}

	key, err := c.keys.GetOrCreate(ctx)
	if err != nil {
		return nil, err
	}

	var claims cacheClaims
	_, err = jwt.ParseWithClaims(string(data), &claims,
		func(t *jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: verify session cache: %v", common.ErrorNotFound, err)
	}

	return &claims.Account, nil
}

// Clear discards the cached session record.
func (c *FileCache) Clear(ctx context.Context) error {
	return filex.Remove(c.path)
}
