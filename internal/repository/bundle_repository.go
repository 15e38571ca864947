package repository

import (
	"context"
	"errors"

	"github.com/GabKongroo/NothingSpecial/internal/models"
	"gorm.io/gorm"
)

// BundleRepository defines bundle persistence. Membership is replaced as a
// whole on create and update.
type BundleRepository interface {
	List(ctx context.Context) ([]models.Bundle, error)
	Get(ctx context.Context, id uint) (*models.Bundle, error)
	Create(ctx context.Context, bundle *models.Bundle, beatIDs []uint) error
	Update(ctx context.Context, bundle *models.Bundle, beatIDs []uint) error

	// Delete removes the bundle together with its memberships and orders.
	Delete(ctx context.Context, id uint) error

	SetImageKey(ctx context.Context, id uint, key string) error
}

// GormBundleRepository is the PostgreSQL implementation of BundleRepository.
type GormBundleRepository struct {
	db *gorm.DB
}

func NewGormBundleRepository(db *gorm.DB) *GormBundleRepository {
	return &GormBundleRepository{db: db}
}

func (r *GormBundleRepository) List(ctx context.Context) ([]models.Bundle, error) {
	var bundles []models.Bundle
	err := r.db.WithContext(ctx).
		Preload("Beats", func(db *gorm.DB) *gorm.DB { return db.Order("beats.id ASC") }).
		Order("id ASC").
		Find(&bundles).Error
	if err != nil {
		return nil, err
	}
	return bundles, nil
}

func (r *GormBundleRepository) Get(ctx context.Context, id uint) (*models.Bundle, error) {
	var bundle models.Bundle
	err := r.db.WithContext(ctx).
		Preload("Beats", func(db *gorm.DB) *gorm.DB { return db.Order("beats.id ASC") }).
		First(&bundle, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBundleNotFound
		}
		return nil, err
	}
	return &bundle, nil
}

func (r *GormBundleRepository) Create(ctx context.Context, bundle *models.Bundle, beatIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Beats").Create(bundle).Error; err != nil {
			return err
		}
		return replaceMembers(tx, bundle.ID, beatIDs)
	})
}

func (r *GormBundleRepository) Update(ctx context.Context, bundle *models.Bundle, beatIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(bundle).
			Select("name", "description", "individual_price", "bundle_price", "discount_percent", "is_active").
			Updates(bundle)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBundleNotFound
		}
		return replaceMembers(tx, bundle.ID, beatIDs)
	})
}

func replaceMembers(tx *gorm.DB, bundleID uint, beatIDs []uint) error {
	if err := tx.Where("bundle_id = ?", bundleID).Delete(&models.BundleBeat{}).Error; err != nil {
		return err
	}
	if len(beatIDs) == 0 {
		return nil
	}
	rows := make([]models.BundleBeat, len(beatIDs))
	for i, id := range beatIDs {
		rows[i] = models.BundleBeat{BundleID: bundleID, BeatID: id}
	}
	return tx.Create(&rows).Error
}

func (r *GormBundleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("bundle_id = ?", id).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bundle_id = ?", id).Delete(&models.BundleBeat{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Bundle{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrBundleNotFound
		}
		return nil
	})
}

func (r *GormBundleRepository) SetImageKey(ctx context.Context, id uint, key string) error {
	result := r.db.WithContext(ctx).Model(&models.Bundle{}).Where("id = ?", id).Update("image_key", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBundleNotFound
	}
	return nil
}
