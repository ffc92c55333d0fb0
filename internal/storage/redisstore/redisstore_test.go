package redisstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessrules/internal/storage"
	"chessrules/internal/testutil/suite"
)

func TestStore_SaveLoadDelete(t *testing.T) {
	ctx, st := suite.New(t)
	store := New(st.Redis)

	// Given: a saved record
	rec := storage.GameRecord{
		GameID:    "123",
		StateJSON: `{"turn":"b"}`,
		FEN:       "8/8/8/8/8/8/8/8 b - - 0 1",
		Turn:      "b",
		Version:   3,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveGame(ctx, rec))

	// When: it is loaded back
	got, err := store.LoadGame(ctx, "123")

	// Then: it matches
	require.NoError(t, err)
	assert.Equal(t, rec.StateJSON, got.StateJSON)
	assert.Equal(t, rec.Version, got.Version)
	assert.True(t, rec.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, store.IsHealthy())

	// And: after deletion it is gone
	require.NoError(t, store.DeleteGame(ctx, "123"))
	_, err = store.LoadGame(ctx, "123")
	assert.ErrorIs(t, err, storage.ErrGameNotFound)
}

func TestStore_LoadMissing(t *testing.T) {
	ctx, st := suite.New(t)
	store := New(st.Redis)

	_, err := store.LoadGame(ctx, "9999999")

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrGameNotFound)
}

func TestStore_ListGames(t *testing.T) {
	ctx, st := suite.New(t)
	store := New(st.Redis)

	// Given: two saved games with different update times
	older := time.Now().UTC().Add(-time.Minute).Truncate(time.Second)
	newer := older.Add(30 * time.Second)
	require.NoError(t, store.SaveGame(ctx, storage.GameRecord{GameID: "a", Turn: "w", UpdatedAt: older}))
	require.NoError(t, store.SaveGame(ctx, storage.GameRecord{GameID: "b", Turn: "b", UpdatedAt: newer}))

	// And: an unrelated key in the same database
	require.NoError(t, st.Redis.Set(ctx, "other", "x", 0).Err())

	// When: the games are listed
	games, err := store.ListGames(ctx)

	// Then: only game keys come back, newest first
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "b", games[0].GameID)
	assert.Equal(t, "a", games[1].GameID)
}
