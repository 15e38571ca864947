package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "catalog.db")), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	return db
}

func seedBeats(t *testing.T, repo *GormBeatRepository, titles ...string) []uint {
	t.Helper()
	ids := make([]uint, 0, len(titles))
	for _, title := range titles {
		beat := &models.Beat{Title: title, Genre: "Trap", Mood: "Dark", Folder: title, Price: 19.99, Available: true}
		require.NoError(t, repo.Create(context.Background(), beat))
		ids = append(ids, beat.ID)
	}
	return ids
}

func TestGormBeatCreateKeepsZeroValues(t *testing.T) {
	repo := NewGormBeatRepository(openTestDB(t))
	ctx := context.Background()

	beat := &models.Beat{Title: "Free", Genre: "Lofi", Mood: "Chill", Folder: "Free", Price: 0, Available: false}
	require.NoError(t, repo.Create(ctx, beat))

	got, err := repo.FindByIDs(ctx, []uint{beat.ID})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Price)
	assert.False(t, got[0].Available)
}

func TestGormBeatLookups(t *testing.T) {
	repo := NewGormBeatRepository(openTestDB(t))
	ctx := context.Background()
	ids := seedBeats(t, repo, "Night Drive", "Sunrise", "Echo")

	got, err := repo.FindByIDs(ctx, []uint{ids[2], 999, ids[0]})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[0], got[0].ID)
	assert.Equal(t, ids[2], got[1].ID)

	none, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)

	ok, err := repo.ExistsBySource(ctx, "Trap", "Dark", "Sunrise", "Sunrise")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ExistsBySource(ctx, "Trap", "Chill", "Sunrise", "Sunrise")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGormUpdatePricing(t *testing.T) {
	repo := NewGormBeatRepository(openTestDB(t))
	ctx := context.Background()
	ids := seedBeats(t, repo, "A")

	original := 30.0
	beat := &models.Beat{ID: ids[0], Price: 0, OriginalPrice: &original, IsDiscounted: true, DiscountPercent: 100}
	require.NoError(t, repo.UpdatePricing(ctx, beat))

	got, err := repo.FindByIDs(ctx, ids)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Price)
	require.NotNil(t, got[0].OriginalPrice)
	assert.Equal(t, 30.0, *got[0].OriginalPrice)
	assert.True(t, got[0].IsDiscounted)
	assert.Equal(t, 100, got[0].DiscountPercent)
	assert.Equal(t, "A", got[0].Title)

	err = repo.UpdatePricing(ctx, &models.Beat{ID: 999, Price: 5})
	assert.ErrorIs(t, err, ErrBeatNotFound)
}

func TestGormWithTxRollsBack(t *testing.T) {
	repo := NewGormBeatRepository(openTestDB(t))
	ctx := context.Background()
	ids := seedBeats(t, repo, "A", "B")
	errStop := errors.New("stop")

	err := repo.WithTx(ctx, func(tx BeatRepository) error {
		if err := tx.UpdatePricing(ctx, &models.Beat{ID: ids[0], Price: 5}); err != nil {
			return err
		}
		return errStop
	})
	require.ErrorIs(t, err, errStop)

	got, err := repo.FindByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 19.99, got[0].Price)
	assert.Equal(t, 19.99, got[1].Price)

	require.NoError(t, repo.WithTx(ctx, func(tx BeatRepository) error {
		return tx.UpdatePricing(ctx, &models.Beat{ID: ids[1], Price: 9})
	}))
	got, err = repo.FindByIDs(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, 9.0, got[1].Price)
}

func TestGormReleaseExpiredReservations(t *testing.T) {
	db := openTestDB(t)
	repo := NewGormBeatRepository(db)
	ctx := context.Background()
	ids := seedBeats(t, repo, "Expired", "Sold", "Held")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	holder := "buyer@example.com"
	for i, expires := range []time.Time{past, past, future} {
		require.NoError(t, db.Model(&models.Beat{}).Where("id = ?", ids[i]).Updates(map[string]interface{}{
			"reserved_by":            holder,
			"reserved_at":            past,
			"reservation_expires_at": expires,
			"available":              false,
		}).Error)
	}
	require.NoError(t, db.Create(&models.Order{BeatID: &ids[1], Amount: 19.99, Status: models.OrderStatusPaid}).Error)

	released, err := repo.ReleaseExpiredReservations(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), released)

	got, err := repo.FindByIDs(ctx, ids)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Nil(t, got[0].ReservedBy)
	assert.Nil(t, got[0].ReservationExpiresAt)
	assert.True(t, got[0].Available)
	assert.NotNil(t, got[1].ReservedBy)
	assert.False(t, got[1].Available)
	assert.NotNil(t, got[2].ReservedBy)
}

func TestGormBundleKeepsInactiveFlag(t *testing.T) {
	db := openTestDB(t)
	beats := NewGormBeatRepository(db)
	bundles := NewGormBundleRepository(db)
	ctx := context.Background()
	ids := seedBeats(t, beats, "A", "B")

	bundle := &models.Bundle{Name: "Draft", IndividualPrice: 39.98, BundlePrice: 30, DiscountPercent: 25, IsActive: false}
	require.NoError(t, bundles.Create(ctx, bundle, []uint{ids[1], ids[0]}))

	got, err := bundles.Get(ctx, bundle.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, []uint{ids[0], ids[1]}, got.BeatIDs())

	stats, err := NewGormStatsRepository(db).CatalogStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.ActiveBundles)
}

func TestGormBundleUpdateAndDelete(t *testing.T) {
	db := openTestDB(t)
	beats := NewGormBeatRepository(db)
	bundles := NewGormBundleRepository(db)
	ctx := context.Background()
	ids := seedBeats(t, beats, "A", "B", "C")

	bundle := &models.Bundle{Name: "Pack", BundlePrice: 30, IsActive: true}
	require.NoError(t, bundles.Create(ctx, bundle, ids[:2]))

	bundle.Name = "Pack v2"
	bundle.IsActive = false
	require.NoError(t, bundles.Update(ctx, bundle, ids[1:]))

	got, err := bundles.Get(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pack v2", got.Name)
	assert.False(t, got.IsActive)
	assert.Equal(t, []uint{ids[1], ids[2]}, got.BeatIDs())

	require.NoError(t, bundles.SetImageKey(ctx, bundle.ID, "bundles/pack.png"))
	got, err = bundles.Get(ctx, bundle.ID)
	require.NoError(t, err)
	assert.Equal(t, "bundles/pack.png", got.ImageKey)

	require.NoError(t, db.Create(&models.Order{BundleID: &bundle.ID, Amount: 30, Status: models.OrderStatusPaid}).Error)
	require.NoError(t, bundles.Delete(ctx, bundle.ID))

	var members, orders int64
	require.NoError(t, db.Model(&models.BundleBeat{}).Where("bundle_id = ?", bundle.ID).Count(&members).Error)
	require.NoError(t, db.Model(&models.Order{}).Where("bundle_id = ?", bundle.ID).Count(&orders).Error)
	assert.Zero(t, members)
	assert.Zero(t, orders)

	_, err = bundles.Get(ctx, bundle.ID)
	assert.ErrorIs(t, err, ErrBundleNotFound)
	assert.ErrorIs(t, bundles.Delete(ctx, bundle.ID), ErrBundleNotFound)
	assert.ErrorIs(t, bundles.Update(ctx, &models.Bundle{ID: 999, Name: "x"}, nil), ErrBundleNotFound)
}

func TestGormCatalogStats(t *testing.T) {
	db := openTestDB(t)
	beats := NewGormBeatRepository(db)
	ctx := context.Background()
	ids := seedBeats(t, beats, "A", "B", "C")

	for _, id := range ids[:2] {
		require.NoError(t, beats.UpdatePricing(ctx, &models.Beat{ID: id, Price: 50, IsExclusive: true}))
	}
	require.NoError(t, db.Create(&models.Order{BeatID: &ids[0], Amount: 50, Status: models.OrderStatusPaid}).Error)
	require.NoError(t, db.Create(&models.Order{BeatID: &ids[1], Amount: 50, Status: models.OrderStatusPending}).Error)
	require.NoError(t, NewGormBundleRepository(db).Create(ctx, &models.Bundle{Name: "Live", BundlePrice: 10, IsActive: true}, ids))

	stats, err := NewGormStatsRepository(db).CatalogStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, CatalogStats{TotalBeats: 3, ExclusiveBeats: 2, ActiveBundles: 1, SoldExclusiveCount: 1}, stats)
}
