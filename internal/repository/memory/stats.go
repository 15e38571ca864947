package memory

import (
	"context"

	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
)

var _ repository.StatsRepository = (*Store)(nil)

func (s *Store) CatalogStats(_ context.Context) (repository.CatalogStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paid := make(map[uint]bool)
	for _, o := range s.orders {
		if o.Status == models.OrderStatusPaid && o.BeatID != nil {
			paid[*o.BeatID] = true
		}
	}

	var stats repository.CatalogStats
	for id, b := range s.beats {
		stats.TotalBeats++
		if b.IsExclusive {
			stats.ExclusiveBeats++
			if paid[id] {
				stats.SoldExclusiveCount++
			}
		}
	}
	for _, b := range s.bundles {
		if b.IsActive {
			stats.ActiveBundles++
		}
	}
	return stats, nil
}
