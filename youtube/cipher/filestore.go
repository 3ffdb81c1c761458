package cipher

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// FileStore persists Operations on disk, one JSON file per script identity,
// so later processes can skip locating the decipher function.
type FileStore struct {
	dir string
}

type storedOperations struct {
	Key        string     `json:"key"`
	Operations Operations `json:"operations"`
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("operations store directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewError(ErrCodeOperationsStoreIO, "create operations store", err.Error())
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the root directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

// Load returns the stored operations for key. A missing or unreadable entry
// reports false; corrupt entries are removed.
func (s *FileStore) Load(key string) (Operations, bool) {
	fn := s.path(key)
	b, err := os.ReadFile(fn)
	if err != nil {
		return Operations{}, false
	}
	var e storedOperations
	if err := json.Unmarshal(b, &e); err != nil || e.Key != key || e.Operations.FunctionName == "" {
		_ = os.Remove(fn)
		return Operations{}, false
	}
	return e.Operations, true
}

// Save writes ops for key atomically.
func (s *FileStore) Save(key string, ops Operations) error {
	b, err := json.MarshalIndent(storedOperations{Key: key, Operations: ops}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode operations: %w", err)
	}
	if err := renameio.WriteFile(s.path(key), b, fs.FileMode(0o644)); err != nil {
		return NewError(ErrCodeOperationsStoreIO, "write operations", err.Error())
	}
	return nil
}

// Delete removes the entry for key if present.
func (s *FileStore) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return NewError(ErrCodeOperationsStoreIO, "delete operations", err.Error())
	}
	return nil
}
