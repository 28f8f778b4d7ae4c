package boltdb

import (
	"encoding/json"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"

	"github.com/trezcool/registro/core/user"
	"github.com/trezcool/registro/storage/database"
)

type userRepository struct {
	db *bolt.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *bolt.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) LoadUsers() ([]user.StoredUser, error) {
	var users []user.StoredUser
	if err := loadJSON(repo.db, database.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (repo *userRepository) SaveUsers(users []user.StoredUser) error {
	return saveJSON(repo.db, database.KeyUsers, users)
}

func (repo *userRepository) LoadSessionUser() (user.User, error) {
	var usr user.User
	var found bool
	err := repo.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(database.StoreBucket).Get(database.KeySessionUser)
		if data == nil {
			return nil
		}
		found = true
		return errors.Wrap(json.Unmarshal(data, &usr), "unmarshalling session user")
	})
	if err != nil {
		return user.User{}, err
	}
	if !found {
		return user.User{}, user.ErrNoSession
	}
	return usr, nil
}

func (repo *userRepository) SaveSessionUser(usr user.User) error {
	return saveJSON(repo.db, database.KeySessionUser, usr)
}

func (repo *userRepository) ClearSessionUser() error {
	return deleteKey(repo.db, database.KeySessionUser)
}
