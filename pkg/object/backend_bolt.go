package object

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	boltObjectsBucket = "objects"
	boltOpenTimeout   = 2 * time.Second
)

// BoltBackend keeps every object envelope in a single BoltDB file, keyed by
// hash inside the "objects" bucket.
type BoltBackend struct {
	db *bolt.DB
}

// OpenBoltBackend opens (or creates) the BoltDB file at path.
func OpenBoltBackend(path string) (*BoltBackend, error) {
	if path == "" {
		return nil, errors.New("bolt backend: path is required")
	}

	cleaned := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleaned), 0o755); err != nil {
		return nil, fmt.Errorf("bolt backend mkdir: %w", err)
	}

	db, err := bolt.Open(cleaned, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("bolt backend open: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltObjectsBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bolt backend init: %w", err)
	}

	return &BoltBackend{db: db}, nil
}

func (b *BoltBackend) Has(h Hash) (bool, error) {
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltObjectsBucket))
		if bucket == nil {
			return errors.New("objects bucket missing")
		}
		found = bucket.Get([]byte(h)) != nil
		return nil
	})
	return found, err
}

func (b *BoltBackend) Get(h Hash) ([]byte, error) {
	var result []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltObjectsBucket))
		if bucket == nil {
			return errors.New("objects bucket missing")
		}
		data := bucket.Get([]byte(h))
		if data == nil {
			return fmt.Errorf("object %s: %w", h, ErrObjectNotFound)
		}
		// Bolt-owned memory is only valid inside the transaction.
		result = append([]byte{}, data...)
		return nil
	})
	return result, err
}

// Put stores raw under h. Bolt commits with fsync, so the object is durable
// once Update returns.
func (b *BoltBackend) Put(h Hash, raw []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(boltObjectsBucket))
		if bucket == nil {
			return errors.New("objects bucket missing")
		}
		return bucket.Put([]byte(h), raw)
	})
}

func (b *BoltBackend) Close() error {
	return b.db.Close()
}
