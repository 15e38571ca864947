package services

import (
	"context"
	"testing"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/migration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgressStoreRoundTrip(t *testing.T) {
	rdb := newFakeRedis()
	store := NewProgressStore(rdb, time.Hour)
	ctx := context.Background()

	store.Report(ctx, migration.Progress{RunID: "r1", State: migration.StateProcessingMood, Percent: 35, Genre: "Trap"})
	store.Report(ctx, migration.Progress{RunID: "r1", State: migration.StateFinalizing, Percent: 90})

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, migration.StateFinalizing, got.State)
	assert.Equal(t, 90, got.Percent)
	assert.Empty(t, got.Genre)
	assert.Equal(t, time.Hour, rdb.ttl["migration:progress:r1"])
}

func TestProgressStoreDefaultTTL(t *testing.T) {
	rdb := newFakeRedis()
	NewProgressStore(rdb, 0).Report(context.Background(), migration.Progress{RunID: "r"})
	assert.Equal(t, 24*time.Hour, rdb.ttl["migration:progress:r"])
}

func TestProgressStoreErrors(t *testing.T) {
	rdb := newFakeRedis()
	store := NewProgressStore(rdb, time.Hour)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrProgressNotFound)

	rdb.data["migration:progress:bad"] = "{not json"
	_, err = store.Get(ctx, "bad")
	assert.Error(t, err)

	rdb.err = errBoom
	store.Report(ctx, migration.Progress{RunID: "r"})
	_, err = store.Get(ctx, "r")
	assert.ErrorIs(t, err, errBoom)
}
