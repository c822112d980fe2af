package store

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/cockroachdb/pebble/v2"
)

// Pebble persists keys in a PebbleDB directory so the session id and display
// name survive process restarts.
type Pebble struct {
	db *pebble.DB
}

// OpenPebble opens (or creates) the database at dir.
func OpenPebble(dir string) (*Pebble, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	// Accept default options; the store holds a handful of tiny keys.
	db, err := pebble.Open(filepath.Clean(dir), &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Pebble{db: db}, nil
}

// Get returns the stored value, or "" when the key is absent.
func (s *Pebble) Get(key string) (string, error) {
	value, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer closer.Close()
	return string(value), nil
}

// Set stores value under key, synced to disk before returning.
func (s *Pebble) Set(key, value string) error {
	return s.db.Set([]byte(key), []byte(value), pebble.Sync)
}

// Close closes the underlying database.
func (s *Pebble) Close() error {
	return s.db.Close()
}
