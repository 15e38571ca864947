package repository

import (
	"context"

	"github.com/GabKongroo/NothingSpecial/internal/models"
	"gorm.io/gorm"
)

// CatalogStats are the dashboard counters of the admin panel.
type CatalogStats struct {
	TotalBeats         int64 `json:"total_beats"`
	ExclusiveBeats     int64 `json:"exclusive_beats"`
	ActiveBundles      int64 `json:"active_bundles"`
	SoldExclusiveCount int64 `json:"sold_exclusive_count"`
}

// StatsRepository computes catalog counters.
type StatsRepository interface {
	CatalogStats(ctx context.Context) (CatalogStats, error)
}

type GormStatsRepository struct {
	db *gorm.DB
}

func NewGormStatsRepository(db *gorm.DB) *GormStatsRepository {
	return &GormStatsRepository{db: db}
}

// CatalogStats counts an exclusive beat as sold once it has a paid order.
func (r *GormStatsRepository) CatalogStats(ctx context.Context) (CatalogStats, error) {
	var stats CatalogStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&models.Beat{}).Count(&stats.TotalBeats).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Beat{}).Where("is_exclusive = ?", true).Count(&stats.ExclusiveBeats).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&models.Bundle{}).Where("is_active = ?", true).Count(&stats.ActiveBundles).Error; err != nil {
		return stats, err
	}

	paid := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("beat_id").
		Where("status = ? AND beat_id IS NOT NULL", models.OrderStatusPaid)
	err := db.Model(&models.Beat{}).
		Where("is_exclusive = ?", true).
		Where("id IN (?)", paid).
		Count(&stats.SoldExclusiveCount).Error
	return stats, err
}
