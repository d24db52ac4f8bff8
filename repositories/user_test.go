package repositories

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shekharshaurya-coder/finalWork/errors"
)

func Test_CreateUser_And_Lookups(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	userID, err := repository.CreateUser("alice", "alice@example.com", "hashed")
	req.NoError(err)
	req.NotEmpty(userID)

	byID, err := repository.GetUserByID(userID)
	req.NoError(err)
	req.Equal("alice", byID.Username)

	byName, err := repository.GetUserByUsername("alice")
	req.NoError(err)
	req.Equal(userID, byName.ID)

	byEmail, err := repository.GetUserByEmail("alice@example.com")
	req.NoError(err)
	req.Equal(userID, byEmail.ID)
	req.Equal("hashed", byEmail.PasswordHash)
}

func Test_CreateUser_Duplicate_Email_Rejected(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice", "alice@example.com", "hashed")
	req.NoError(err)

	_, err = repository.CreateUser("alice2", "alice@example.com", "hashed")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_CreateUser_Duplicate_Username_Rejected(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.CreateUser("alice", "alice@example.com", "hashed")
	req.NoError(err)

	_, err = repository.CreateUser("alice", "other@example.com", "hashed")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_GetUser_Unknown_Maps_To_NotFound(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openTestDB(t))

	_, err := repository.GetUserByID("ghost")
	req.ErrorIs(err, errors.ErrRecipientNotFound)

	_, err = repository.GetUserByUsername("ghost")
	req.ErrorIs(err, errors.ErrRecipientNotFound)
}
