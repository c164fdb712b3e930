package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// BlobStore persists report files under opaque storage keys. Keys are
// generated, collision-free, and unrelated to the user-facing filename.
type BlobStore interface {
	// NewKey generates a unique storage key for a file with the given
	// original name.
	NewKey(originalName string) string
	Save(key string, r io.Reader) error
	Open(key string) (io.ReadCloser, error)
	Remove(key string) error
}

// FileStore is a BlobStore over a filesystem. Production uses the OS
// filesystem rooted at the upload directory; tests swap in a memory fs.
type FileStore struct {
	fs afero.Fs
}

// NewFileStore creates a store rooted at dir on the OS filesystem.
func NewFileStore(dir string) (*FileStore, error) {
	base := afero.NewOsFs()
	if err := base.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{fs: afero.NewBasePathFs(base, dir)}, nil
}

// NewFileStoreFS creates a store over an arbitrary filesystem.
func NewFileStoreFS(fs afero.Fs) *FileStore {
	return &FileStore{fs: fs}
}

// NewKey builds a storage key from a nanosecond timestamp, a random fragment,
// and the sanitized original name. Two uploads in the same instant still get
// distinct keys because of the random fragment.
func (s *FileStore) NewKey(originalName string) string {
	name := filepath.Base(originalName)
	name = strings.ReplaceAll(name, " ", "_")
	return fmt.Sprintf("%d_%s_%s", time.Now().UnixNano(), uuid.NewString()[:8], name)
}

// Save writes the blob under key.
func (s *FileStore) Save(key string, r io.Reader) error {
	f, err := s.fs.Create(key)
	if err != nil {
		return fmt.Errorf("create blob %s: %w", key, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write blob %s: %w", key, err)
	}
	return nil
}

// Open returns a reader for the blob under key.
func (s *FileStore) Open(key string) (io.ReadCloser, error) {
	f, err := s.fs.Open(key)
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}
	return f, nil
}

// Remove deletes the blob under key. Missing blobs are not an error.
func (s *FileStore) Remove(key string) error {
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob %s: %w", key, err)
	}
	return nil
}
