package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_OnSaveToken_ShouldUpsertSessionRow(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

	sql, args, err := upsertQuery(7, "token", "tok-1", now).ToSql()

	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO sessions (id,token,updated_at) VALUES ($1,$2,$3) "+
			"ON CONFLICT(id) DO UPDATE SET token = $4, updated_at = $5",
		sql)
	assert.Equal(t, []interface{}{int64(7), "tok-1", now, "tok-1", now}, args)
}

func Test_OnSaveUser_ShouldUpsertUserColumnOnly(t *testing.T) {
	now := time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
	raw := []byte(`{"_id":"u1"}`)

	sql, args, err := upsertQuery(7, "user_record", raw, now).ToSql()

	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO sessions (id,user_record,updated_at) VALUES ($1,$2,$3) "+
			"ON CONFLICT(id) DO UPDATE SET user_record = $4, updated_at = $5",
		sql)
	assert.Len(t, args, 5)
	assert.NotContains(t, sql, "token")
}

func Test_OnReadAndClear_ShouldFilterBySession(t *testing.T) {
	sql, args, err := credentialsQuery(7).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT token, user_record FROM sessions WHERE id = $1", sql)
	assert.Equal(t, []interface{}{int64(7)}, args)

	sql, args, err = clearQuery(7).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM sessions WHERE id = $1", sql)
	assert.Equal(t, []interface{}{int64(7)}, args)
}
