package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend persists raw object envelopes keyed by hash. Implementations do
// not interpret the bytes; hashing and validation live in Store.
type Backend interface {
	// Has reports whether an object is stored under h.
	Has(h Hash) (bool, error)
	// Get returns the raw envelope stored under h, or an error wrapping
	// ErrObjectNotFound.
	Get(h Hash) ([]byte, error)
	// Put stores raw under h. The write must be durable when Put returns.
	Put(h Hash, raw []byte) error
	// Close releases any resources held by the backend.
	Close() error
}

// FileBackend stores one file per object with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
type FileBackend struct {
	root string
}

// NewFileBackend creates a FileBackend rooted at the given directory. The
// objects/ subdirectory is created lazily on first write.
func NewFileBackend(root string) *FileBackend {
	return &FileBackend{root: root}
}

// objectPath returns the filesystem path for a given hash.
func (b *FileBackend) objectPath(h Hash) string {
	return filepath.Join(b.root, "objects", string(h[:2]), string(h[2:]))
}

func (b *FileBackend) Has(h Hash) (bool, error) {
	if len(h) < 3 {
		return false, nil
	}
	_, err := os.Stat(b.objectPath(h))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (b *FileBackend) Get(h Hash) ([]byte, error) {
	if len(h) < 3 {
		return nil, fmt.Errorf("object %s: %w", h, ErrObjectNotFound)
	}
	raw, err := os.ReadFile(b.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object %s: %w", h, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", h, err)
	}
	return raw, nil
}

// Put writes raw atomically: data goes to a temp file which is synced and
// then renamed into place.
func (b *FileBackend) Put(h Hash, raw []byte) error {
	dir := filepath.Join(b.root, "objects", string(h[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("object write sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, b.objectPath(h)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("object write rename: %w", err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
