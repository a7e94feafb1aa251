//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"chat-relay/errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

type IUserRepository interface {
	CreateUser(username, hashedPassword string) error
	GetUser(username string) (UserRecord, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// CreateUser persists the user under "user:{username}". Usernames are
// the primary key, so an existing key means the name is taken.
func (u *UserRepository) CreateUser(username, hashedPassword string) error {
	record := UserRecord{
		Username:     username,
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}
	data := encodeUserRecord(record)

	return u.db.Update(func(txn *badger.Txn) error {
		key := []byte("user:" + username)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrUserAlreadyExists
		}
		return txn.Set(key, data)
	})
}

// GetUser returns ErrUnknownUser when no user is stored under the
// given name.
func (u *UserRepository) GetUser(username string) (UserRecord, error) {
	var data []byte
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte("user:" + username))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err == badger.ErrKeyNotFound {
		return UserRecord{}, fmt.Errorf("%w: %s", errors.ErrUnknownUser, username)
	}
	if err != nil {
		return UserRecord{}, err
	}
	return DecodeUserRecord(data)
}
