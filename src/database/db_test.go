package database

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaEmbedded(t *testing.T) {
	require.NotEmpty(t, schemaSQL)
	assert.True(t, strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS admins"))
	assert.True(t, strings.Contains(schemaSQL, "CREATE TABLE IF NOT EXISTS admin_sessions"))
	assert.True(t, strings.Contains(schemaSQL, "idx_admin_sessions_token_hash"))
}

func TestHealth_Uninitialized(t *testing.T) {
	var db *Database
	assert.ErrorIs(t, db.Health(context.Background()), ErrNotInitialized)
	assert.ErrorIs(t, (&Database{}).Health(context.Background()), ErrNotInitialized)
}

func TestHealth_LiveDatabase(t *testing.T) {
	WithTestDB(t, func(tdb *TestDB) {
		db := NewDatabaseFromPool(tdb.Pool)
		require.NoError(t, db.Health(context.Background()))

		id, err := tdb.CreateTestAdmin("Probe@Manehej.com", "hash")
		require.NoError(t, err)

		var email string
		require.NoError(t, db.QueryRow(context.Background(), `SELECT email FROM admins WHERE id = $1`, id).Scan(&email))
		assert.Equal(t, "probe@manehej.com", email)
	})
}
