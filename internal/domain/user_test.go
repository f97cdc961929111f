package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("learner@example.com", "correct horse battery")
	require.NoError(t, err)

	assert.Equal(t, "learner@example.com", user.Email)
	assert.Equal(t, "correct horse battery", user.Password)
	assert.Empty(t, user.HashedPassword)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid user",
			email:    "learner@example.com",
			password: "correct horse battery",
			wantErr:  nil,
		},
		{
			name:     "empty email",
			email:    "",
			password: "correct horse battery",
			wantErr:  ErrEmptyEmail,
		},
		{
			name:     "email without at sign",
			email:    "learner.example.com",
			password: "correct horse battery",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "email without domain dot",
			email:    "learner@example",
			password: "correct horse battery",
			wantErr:  ErrInvalidEmail,
		},
		{
			name:     "password too short",
			email:    "learner@example.com",
			password: "short",
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "password too long",
			email:    "learner@example.com",
			password: strings.Repeat("x", 73),
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "no password at all",
			email:    "learner@example.com",
			password: "",
			wantErr:  ErrEmptyPassword,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewUser(tc.email, tc.password)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestUserValidateHashOnly(t *testing.T) {
	t.Parallel()

	user, err := NewUser("learner@example.com", "correct horse battery")
	require.NoError(t, err)

	// Users loaded from the store carry only the hash.
	user.Password = ""
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	assert.NoError(t, user.Validate())
}
