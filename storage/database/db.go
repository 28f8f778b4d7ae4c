package database

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/trezcool/registro/core"
)

// The whole store lives in one bucket, one key per collection:
// `user` (session identity), `users`, `courses`, `activities`, `grades`.
// Each key holds the full collection as JSON, rewritten on every mutation.
var (
	StoreBucket = []byte("Store")

	KeySessionUser = []byte("user")
	KeyUsers       = []byte("users")
	KeyCourses     = []byte("courses")
	KeyActivities  = []byte("activities")
	KeyGrades      = []byte("grades")
)

// Open opens (or creates) the bolt file and ensures the store bucket exists.
// bolt holds an exclusive file lock: a second process opening the same profile
// fails fast instead of silently racing.
func Open(conf *core.Config) (*bolt.DB, error) {
	path := conf.Database.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(StoreBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "creating store bucket")
	}
	return db, nil
}
