package session_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	session "github.com/aarothfresh/go-session"
)

func setupBunStorage(t *testing.T) *session.BunTokenStorage {
	t.Helper()

	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	bunDB := bun.NewDB(db, sqlitedialect.New())

	storage := session.NewBunTokenStorage(bunDB)
	require.NoError(t, storage.CreateTable(context.Background()))

	return storage
}

func TestBunStorageReadAbsent(t *testing.T) {
	storage := setupBunStorage(t)

	token, err := storage.Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestBunStorageWriteThenRead(t *testing.T) {
	storage := setupBunStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Write(ctx, "first-token"))

	token, err := storage.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first-token", token)
}

func TestBunStorageWriteOverwrites(t *testing.T) {
	storage := setupBunStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Write(ctx, "first-token"))
	require.NoError(t, storage.Write(ctx, "second-token"))

	token, err := storage.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second-token", token)
}

func TestBunStorageClear(t *testing.T) {
	storage := setupBunStorage(t)
	ctx := context.Background()

	require.NoError(t, storage.Write(ctx, "token"))
	require.NoError(t, storage.Clear(ctx))

	token, err := storage.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing an already empty cell is not an error.
	require.NoError(t, storage.Clear(ctx))
}

func TestBunStorageKeysAreIsolated(t *testing.T) {
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	bunDB := bun.NewDB(db, sqlitedialect.New())
	ctx := context.Background()

	first := session.NewBunTokenStorage(bunDB).WithKey("profile-a")
	require.NoError(t, first.CreateTable(ctx))
	second := session.NewBunTokenStorage(bunDB).WithKey("profile-b")

	require.NoError(t, first.Write(ctx, "token-a"))
	require.NoError(t, second.Write(ctx, "token-b"))
	require.NoError(t, second.Clear(ctx))

	token, err := first.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-a", token)
}
