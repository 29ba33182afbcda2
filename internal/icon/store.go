package icon

import (
	"fmt"
	"os"
	"path/filepath"

	bolt "go.etcd.io/bbolt"
)

var iconBucket = []byte("icons")

// Store persists favicon bytes in a bbolt database so icons survive process
// restarts. It is safe for concurrent use; bbolt serializes writers.
type Store struct {
	db *bolt.DB
}

// OpenStore opens (creating if needed) the icon database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create icon store dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open icon store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(iconBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create icon bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the stored bytes for an origin, or nil when absent.
func (s *Store) Load(origin string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(iconBucket).Get([]byte(origin))
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	return data, err
}

// Save stores icon bytes under an origin.
func (s *Store) Save(origin string, data []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(iconBucket).Put([]byte(origin), data)
	})
}

// Delete removes an origin's icon, if present.
func (s *Store) Delete(origin string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(iconBucket).Delete([]byte(origin))
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
