package services

import (
	"context"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
)

type StatsService struct {
	stats repository.StatsRepository
}

func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats}
}

// Dashboard returns the counters shown on the admin landing page.
func (s *StatsService) Dashboard(ctx context.Context) (repository.CatalogStats, error) {
	stats, err := s.stats.CatalogStats(ctx)
	if err != nil {
		logger.Error("catalog stats failed", logger.ErrorField(err))
		return repository.CatalogStats{}, err
	}
	return stats, nil
}
