package pubcms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndVerifyUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, "ana", "secret"))

	ok, err := s.VerifyUser(ctx, "ana", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.VerifyUser(ctx, "ana", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.VerifyUser(ctx, "Ana", "secret")
	require.NoError(t, err)
	assert.False(t, ok, "lookup is case-sensitive")

	ok, err = s.VerifyUser(ctx, "nobody", "secret")
	require.NoError(t, err)
	assert.False(t, ok)

	var hash string
	require.NoError(t, s.db.QueryRow(`SELECT password_hash FROM users WHERE username = 'ana'`).Scan(&hash))
	assert.NotEqual(t, "secret", hash, "password stored hashed")
}

func TestCreateUserDuplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, "ana", "one"))
	err := s.CreateUser(ctx, "ana", "two")
	assert.ErrorIs(t, err, ErrConflict)

	ok, err := s.VerifyUser(ctx, "ana", "one")
	require.NoError(t, err)
	assert.True(t, ok, "original credentials unchanged")
}

func TestCreateUserInvalid(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.CreateUser(ctx, "  ", "pw"), ErrInvalidInput)
	assert.ErrorIs(t, s.CreateUser(ctx, "ana", ""), ErrInvalidInput)
}

func TestRenameUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, "ana", "one"))
	require.NoError(t, s.CreateUser(ctx, "bob", "two"))

	require.NoError(t, s.RenameUser(ctx, "ana", "maria", "three"))
	ok, err := s.VerifyUser(ctx, "maria", "three")
	require.NoError(t, err)
	assert.True(t, ok)
	exists, err := s.UserExists(ctx, "ana")
	require.NoError(t, err)
	assert.False(t, exists)

	assert.ErrorIs(t, s.RenameUser(ctx, "maria", "bob", "x"), ErrConflict)
	assert.ErrorIs(t, s.RenameUser(ctx, "ghost", "casper", "x"), ErrNotFound)
}

func TestEnsureBootstrapUser(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, generated, err := s.EnsureBootstrapUser(ctx, "admin", "")
	require.NoError(t, err)
	assert.True(t, created)
	require.NotEmpty(t, generated)

	ok, err := s.VerifyUser(ctx, "admin", generated)
	require.NoError(t, err)
	assert.True(t, ok)

	rotate, err := s.MustRotate(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, rotate)

	created, _, err = s.EnsureBootstrapUser(ctx, "admin", "other")
	require.NoError(t, err)
	assert.False(t, created, "only seeded into an empty table")

	require.NoError(t, s.RenameUser(ctx, "admin", "editor", "fresh"))
	rotate, err = s.MustRotate(ctx, "editor")
	require.NoError(t, err)
	assert.False(t, rotate, "rename clears rotation")

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"editor"}, users)
}

func TestEnsureBootstrapUserConfiguredPassword(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	created, generated, err := s.EnsureBootstrapUser(ctx, "root", "configured")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, generated)

	ok, err := s.VerifyUser(ctx, "root", "configured")
	require.NoError(t, err)
	assert.True(t, ok)
}
