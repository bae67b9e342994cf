package bolt

import (
	"os"
	"path/filepath"
	"time"

	bboltlib "go.etcd.io/bbolt"
)

var (
	bucketTasks    = []byte("tasks")
	bucketUsers    = []byte("users")
	bucketProjects = []byte("projects")
	bucketComments = []byte("comments")
)

// Store wraps a bbolt database file holding all entities. It is the embedded
// alternative to the Postgres backend, selected once at process start.
// bbolt serializes writers, so each Update is an atomic count-then-write unit.
type Store struct {
	db *bboltlib.DB
}

// Open initializes the database file and ensures all buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bboltlib.Open(path, 0o600, &bboltlib.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bboltlib.Tx) error {
		for _, bucket := range [][]byte{bucketTasks, bucketUsers, bucketProjects, bucketComments} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Stats exposes bbolt statistics for monitoring endpoints.
func (s *Store) Stats() bboltlib.Stats {
	if s == nil || s.db == nil {
		return bboltlib.Stats{}
	}
	return s.db.Stats()
}
