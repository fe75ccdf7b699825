// Package filex provides small filesystem helpers: directory creation and
// atomic JSON file persistence (write to temp file, then rename).
package filex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cyberwise/cyberwise-core/internal/common"
)

// EnsureDir creates dir (and parents) if missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// WriteFileAtomic writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a half-written file.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = os.Remove(tmpName)
		if werr != nil {
			return fmt.Errorf("write temp file: %w", werr)
		}
		return fmt.Errorf("close temp file: %w", cerr)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// WriteJSON marshals v and writes it atomically to path.
func WriteJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	return WriteFileAtomic(path, data, 0o600)
}

// ReadJSON reads path and unmarshals it into v. A missing file and an
// unreadable or corrupt file are deliberately indistinguishable: both
// return an error wrapping common.ErrorNotFound, so callers degrade to
// "no data found" instead of failing hard.
func ReadJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", common.ErrorNotFound, path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: decode %s: %v", common.ErrorNotFound, path, err)
	}
	return nil
}

// Remove deletes path, treating a missing file as success.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
