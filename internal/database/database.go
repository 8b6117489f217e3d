package database

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// New opens the library database file, creating it if needed. The open
// timeout guards against another process holding the file lock.
func New(path string) (*bbolt.DB, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	return db, nil
}
