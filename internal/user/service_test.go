package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterHashesPasswordAndRejectsDuplicates(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	created, err := svc.Register(context.Background(), User{
		Email:     "reader@example.com",
		Password:  "secret",
		FirstName: "Ada",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "secret", created.Password, "password must be stored hashed")

	_, err = svc.Register(context.Background(), User{Email: "reader@example.com", Password: "other"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthenticate(t *testing.T) {
	svc := NewService(NewInMemoryRepository(nil))

	_, err := svc.Register(context.Background(), User{Email: "reader@example.com", Password: "secret"})
	require.NoError(t, err)

	u, err := svc.Authenticate(context.Background(), "reader@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", u.Email)

	_, err = svc.Authenticate(context.Background(), "reader@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody@example.com", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestExists(t *testing.T) {
	svc := NewService(NewInMemoryRepository([]User{{ID: 42, Email: "reader@example.com"}}))

	ok, err := svc.Exists(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Exists(context.Background(), 7)
	require.NoError(t, err)
	assert.False(t, ok)
}
