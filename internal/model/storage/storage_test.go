package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expense-tracker/internal/entity/user"
)

func Test_OnUnknownSession_ShouldReturnEmptyCredentials(t *testing.T) {
	s := NewInMemStorage()

	c, err := s.GetCredentials(context.Background(), 42)

	require.NoError(t, err)
	assert.Empty(t, c.Token)
	assert.Nil(t, c.User)
}

func Test_OnScopedStore_ShouldKeepSessionsApart(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStorage()
	alice := ForSession(s, 1)
	bob := ForSession(s, 2)

	require.NoError(t, alice.SetToken(ctx, "alice-token"))
	require.NoError(t, alice.SetUser(ctx, user.User{ID: "u1", Username: "alice"}))
	require.NoError(t, bob.SetToken(ctx, "bob-token"))

	token, err := alice.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice-token", token)

	u, err := alice.User(ctx)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Username)

	require.NoError(t, alice.Clear(ctx))

	token, err = alice.Token(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = bob.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "bob-token", token)
}

func Test_OnReturnedUser_ShouldNotAliasStoredRecord(t *testing.T) {
	ctx := context.Background()
	s := NewInMemStorage()
	require.NoError(t, s.SaveUser(ctx, 7, user.User{Username: "alice"}))

	c, err := s.GetCredentials(ctx, 7)
	require.NoError(t, err)
	c.User.Username = "mallory"

	c, err = s.GetCredentials(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.User.Username)
}
