package boltdb

import (
	"encoding/json"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/trezcool/registro/storage/database"
)

// loadJSON unmarshals the collection stored under key into v.
// A key that was never written is not an error; v is left untouched.
func loadJSON(db *bolt.DB, key []byte, v interface{}) error {
	return db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(database.StoreBucket).Get(key)
		if data == nil {
			return nil
		}
		return errors.Wrapf(json.Unmarshal(data, v), "unmarshalling %s", key)
	})
}

// saveJSON rewrites the whole collection stored under key.
func saveJSON(db *bolt.DB, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "marshalling %s", key)
	}
	return db.Update(func(tx *bolt.Tx) error {
		return errors.Wrapf(tx.Bucket(database.StoreBucket).Put(key, data), "putting %s", key)
	})
}

// deleteKey drops the key entirely.
func deleteKey(db *bolt.DB, key []byte) error {
	return db.Update(func(tx *bolt.Tx) error {
		return errors.Wrapf(tx.Bucket(database.StoreBucket).Delete(key), "deleting %s", key)
	})
}
