//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/shekharshaurya-coder/finalWork/domain"
	"github.com/shekharshaurya-coder/finalWork/errors"
)

type IUserRepository interface {
	CreateUser(username, email, hashedPassword string) (string, error)
	GetUserByEmail(email string) (User, error)
	GetUserByID(id string) (User, error)
	GetUserByUsername(username string) (User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

// User is the stored representation of an account. The messaging pipeline
// only ever reads it through ToIdentity.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name,omitempty"`
	PasswordHash string    `json:"password_hash"`
	Roles        []string  `json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

// ToIdentity projects the stored account onto the read-only identity model.
func (u User) ToIdentity() domain.User {
	return domain.User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
	}
}

func userKey(id string) []byte       { return []byte("user:id:" + id) }
func emailKey(email string) []byte   { return []byte("user:email:" + email) }
func nameKey(username string) []byte { return []byte("user:name:" + username) }

// CreateUser persists the account and both lookup pointers (email, username)
// in one transaction. Returns the newly generated user id.
func (u UserRepository) CreateUser(username, email, hashedPassword string) (string, error) {
	newID := uuid.New().String()
	user := User{
		ID:           newID,
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		CreatedAt:    time.Now().UTC(),
	}

	data, err := json.Marshal(user)
	if err != nil {
		return "", fmt.Errorf("marshal failed: %w", err)
	}

	err = u.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(emailKey(email)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if _, err := txn.Get(nameKey(username)); err == nil {
			return errors.ErrUserAlreadyExists
		}
		if err := txn.Set(userKey(newID), data); err != nil {
			return err
		}
		if err := txn.Set(emailKey(email), []byte(newID)); err != nil {
			return err
		}
		return txn.Set(nameKey(username), []byte(newID))
	})

	return newID, err
}

func (u UserRepository) GetUserByID(id string) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		return readUser(txn, userKey(id), &user)
	})
	if err != nil {
		return User{}, errors.ErrRecipientNotFound
	}
	return user, nil
}

func (u UserRepository) GetUserByUsername(username string) (User, error) {
	return u.resolve(nameKey(username))
}

func (u UserRepository) GetUserByEmail(email string) (User, error) {
	return u.resolve(emailKey(email))
}

// resolve follows a lookup pointer (email or username) to the account record.
func (u UserRepository) resolve(pointer []byte) (User, error) {
	var user User
	err := u.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(pointer)
		if err != nil {
			return err
		}
		var id []byte
		if id, err = item.ValueCopy(nil); err != nil {
			return err
		}
		return readUser(txn, userKey(string(id)), &user)
	})
	if err != nil {
		return User{}, errors.ErrRecipientNotFound
	}
	return user, nil
}

func readUser(txn *badger.Txn, key []byte, user *User) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, user)
	})
}
