package inmemdb

import (
	"sync"

	"github.com/trezcool/registro/core/user"
)

type userRepository struct {
	mutex   sync.RWMutex
	users   []user.StoredUser
	session *user.User
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository() user.Repository {
	return &userRepository{}
}

func (repo *userRepository) LoadUsers() ([]user.StoredUser, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	return append([]user.StoredUser(nil), repo.users...), nil
}

func (repo *userRepository) SaveUsers(users []user.StoredUser) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.users = append([]user.StoredUser(nil), users...)
	return nil
}

func (repo *userRepository) LoadSessionUser() (user.User, error) {
	repo.mutex.RLock()
	defer repo.mutex.RUnlock()
	if repo.session == nil {
		return user.User{}, user.ErrNoSession
	}
	return *repo.session, nil
}

func (repo *userRepository) SaveSessionUser(usr user.User) error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.session = &usr
	return nil
}

func (repo *userRepository) ClearSessionUser() error {
	repo.mutex.Lock()
	defer repo.mutex.Unlock()
	repo.session = nil
	return nil
}
