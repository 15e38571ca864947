package repository

import (
	"context"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/models"
	"gorm.io/gorm"
)

// BeatRepository defines catalog operations on beats.
type BeatRepository interface {
	// List returns beats ordered by id, optionally filtered by a
	// case-insensitive title substring.
	List(ctx context.Context, titleQuery string) ([]models.Beat, error)

	// FindByIDs returns the beats with the given ids, ordered by id. Unknown
	// ids are ignored.
	FindByIDs(ctx context.Context, ids []uint) ([]models.Beat, error)

	// ExistsBySource reports whether a beat with the same source location is
	// already catalogued.
	ExistsBySource(ctx context.Context, genre, mood, folder, title string) (bool, error)

	Create(ctx context.Context, beat *models.Beat) error

	// UpdatePricing persists the price, discount and exclusivity columns.
	UpdatePricing(ctx context.Context, beat *models.Beat) error

	// ReleaseExpiredReservations clears exclusive holds that expired before
	// now, skipping beats that already have a paid order.
	ReleaseExpiredReservations(ctx context.Context, now time.Time) (int64, error)

	// WithTx runs fn inside a transaction. Any error returned by fn rolls
	// back every write made through the repository passed to it.
	WithTx(ctx context.Context, fn func(BeatRepository) error) error
}

var pricingColumns = []string{"price", "original_price", "is_exclusive", "is_discounted", "discount_percent"}

// GormBeatRepository is the PostgreSQL implementation of BeatRepository.
type GormBeatRepository struct {
	db *gorm.DB
}

func NewGormBeatRepository(db *gorm.DB) *GormBeatRepository {
	return &GormBeatRepository{db: db}
}

func (r *GormBeatRepository) List(ctx context.Context, titleQuery string) ([]models.Beat, error) {
	var beats []models.Beat
	query := r.db.WithContext(ctx).Order("id ASC")
	if titleQuery != "" {
		query = query.Where("title ILIKE ?", "%"+titleQuery+"%")
	}
	if err := query.Find(&beats).Error; err != nil {
		return nil, err
	}
	return beats, nil
}

func (r *GormBeatRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Beat, error) {
	var beats []models.Beat
	if len(ids) == 0 {
		return beats, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&beats).Error; err != nil {
		return nil, err
	}
	return beats, nil
}

func (r *GormBeatRepository) ExistsBySource(ctx context.Context, genre, mood, folder, title string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Beat{}).
		Where("genre = ? AND mood = ? AND folder = ? AND title = ?", genre, mood, folder, title).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormBeatRepository) Create(ctx context.Context, beat *models.Beat) error {
	return r.db.WithContext(ctx).Create(beat).Error
}

func (r *GormBeatRepository) UpdatePricing(ctx context.Context, beat *models.Beat) error {
	result := r.db.WithContext(ctx).Model(beat).Select(pricingColumns).Updates(beat)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBeatNotFound
	}
	return nil
}

func (r *GormBeatRepository) ReleaseExpiredReservations(ctx context.Context, now time.Time) (int64, error) {
	paid := r.db.WithContext(ctx).Model(&models.Order{}).
		Select("beat_id").
		Where("status = ? AND beat_id IS NOT NULL", models.OrderStatusPaid)

	result := r.db.WithContext(ctx).Model(&models.Beat{}).
		Where("reservation_expires_at IS NOT NULL AND reservation_expires_at < ?", now).
		Where("id NOT IN (?)", paid).
		Updates(map[string]interface{}{
			"reserved_by":            nil,
			"reserved_at":            nil,
			"reservation_expires_at": nil,
			"available":              true,
		})
	return result.RowsAffected, result.Error
}

func (r *GormBeatRepository) WithTx(ctx context.Context, fn func(BeatRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormBeatRepository{db: tx})
	})
}
