package services

import (
	"context"
	"testing"

	"github.com/GabKongroo/NothingSpecial/internal/repository"
	"github.com/GabKongroo/NothingSpecial/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStats struct{}

func (failingStats) CatalogStats(context.Context) (repository.CatalogStats, error) {
	return repository.CatalogStats{}, errBoom
}

func TestStatsDashboard(t *testing.T) {
	store := memory.NewStore()
	seedBeats(t, store, "A", "B")

	stats, err := NewStatsService(store).Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalBeats)
	assert.Zero(t, stats.ExclusiveBeats)

	_, err = NewStatsService(failingStats{}).Dashboard(context.Background())
	assert.ErrorIs(t, err, errBoom)
}
