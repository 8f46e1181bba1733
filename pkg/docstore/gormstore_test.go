package docstore_test

import (
	"context"
	"testing"

	"ittweb/internal/testutil"
	"ittweb/pkg/docstore"
	"ittweb/pkg/models/player"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Full round trip over a real postgres.
func TestGormStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	db, cleanup := testutil.NewTestConnection(t)
	defer cleanup()

	store := docstore.NewGormStore(db)
	ctx := context.Background()

	t.Run("setAndGet", func(t *testing.T) {
		record := player.StandingsRecord{
			PlayerID:   "grimreaper",
			PlayerName: "GrimReaper",
			Category:   "default",
			Score:      1240.5,
			Wins:       30,
			Losses:     10,
			Games:      42,
		}

		require.NoError(t, store.Set(ctx, player.StandingsCollection, record.DocID(), &record))

		var read player.StandingsRecord
		require.NoError(t, store.Get(ctx, player.StandingsCollection, "grimreaper_default", &read))
		assert.Equal(t, record, read)

		// Set fully replaces the previous document.
		record.Score = 1300
		require.NoError(t, store.Set(ctx, player.StandingsCollection, record.DocID(), &record))
		require.NoError(t, store.Get(ctx, player.StandingsCollection, "grimreaper_default", &read))
		assert.Equal(t, 1300.0, read.Score)
	})

	t.Run("getMissing", func(t *testing.T) {
		var read player.StandingsRecord
		err := store.Get(ctx, player.StandingsCollection, "nobody_default", &read)
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("updateMergesFields", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "settings", "site", map[string]any{
			"title": "standings",
			"theme": "dark",
		}))

		require.NoError(t, store.Update(ctx, "settings", "site", map[string]any{
			"theme": "light",
		}))

		var read map[string]any
		require.NoError(t, store.Get(ctx, "settings", "site", &read))
		assert.Equal(t, "standings", read["title"])
		assert.Equal(t, "light", read["theme"])

		err := store.Update(ctx, "settings", "missing", map[string]any{"a": 1})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("updateWithRetryCreates", func(t *testing.T) {
		err := store.UpdateWithRetry(ctx, player.ProfileCollection, "stormcaller", 3, func(raw []byte) (any, error) {
			assert.Nil(t, raw)
			return &player.Profile{ID: "stormcaller", Name: "StormCaller", TotalGames: 1}, nil
		})
		require.NoError(t, err)

		err = store.UpdateWithRetry(ctx, player.ProfileCollection, "stormcaller", 3, func(raw []byte) (any, error) {
			assert.NotNil(t, raw)
			return &player.Profile{ID: "stormcaller", Name: "StormCaller", TotalGames: 2}, nil
		})
		require.NoError(t, err)

		var read player.Profile
		require.NoError(t, store.Get(ctx, player.ProfileCollection, "stormcaller", &read))
		assert.Equal(t, 2, read.TotalGames)
	})

	t.Run("indexedQuery", func(t *testing.T) {
		seed := []player.StandingsRecord{
			{PlayerID: "a", PlayerName: "A", Category: "ranked", Score: 1100, Games: 20},
			{PlayerID: "b", PlayerName: "B", Category: "ranked", Score: 1300, Games: 15},
			{PlayerID: "c", PlayerName: "C", Category: "ranked", Score: 1200, Games: 5},
			{PlayerID: "d", PlayerName: "D", Category: "casual", Score: 1400, Games: 30},
		}
		for _, record := range seed {
			require.NoError(t, store.Set(ctx, player.StandingsCollection, record.DocID(), &record))
		}

		var records []player.StandingsRecord
		err := store.Query(ctx, player.StandingsCollection, docstore.Query{
			Filters: []docstore.Filter{
				{Field: "category", Op: docstore.OpEqual, Value: "ranked"},
				{Field: "games", Op: docstore.OpGreaterOrEqual, Value: 10},
			},
			OrderBy:    "score",
			Descending: true,
		}, &records)
		require.NoError(t, err)

		require.Len(t, records, 2)
		assert.Equal(t, "b", records[0].PlayerID)
		assert.Equal(t, "a", records[1].PlayerID)

		count, err := store.Count(ctx, player.StandingsCollection, []docstore.Filter{
			{Field: "category", Op: docstore.OpEqual, Value: "ranked"},
			{Field: "games", Op: docstore.OpGreaterOrEqual, Value: 10},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("missingIndexFails", func(t *testing.T) {
		var records []player.StandingsRecord
		err := store.Query(ctx, player.StandingsCollection, docstore.Query{
			Filters: []docstore.Filter{
				{Field: "wins", Op: docstore.OpGreaterOrEqual, Value: 1},
			},
		}, &records)

		assert.Error(t, err)
		assert.True(t, docstore.IsIndexUnavailable(err))
	})

	t.Run("plainScanNeedsNoIndex", func(t *testing.T) {
		var records []player.StandingsRecord
		err := store.Query(ctx, player.StandingsCollection, docstore.Query{}, &records)

		require.NoError(t, err)
		assert.NotEmpty(t, records)
	})
}
