package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/migration"
	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/pricing"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
	"github.com/GabKongroo/NothingSpecial/pkg/validation"
	"github.com/google/uuid"
)

var (
	ErrBundleNameRequired    = errors.New("bundle name is required")
	ErrEmptyBundle           = errors.New("select at least one beat")
	ErrInvalidBundlePrice    = errors.New("bundle price must be > 0")
	ErrBundleAboveIndividual = errors.New("bundle price cannot exceed the sum of individual prices")
	ErrUnknownBeats          = errors.New("one or more beats do not exist")
	ErrUnsupportedImage      = errors.New("unsupported image type")
)

var bundleImageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// BundleInput is the operator supplied part of a bundle.
type BundleInput struct {
	Name        string
	Description string
	BundlePrice float64
	IsActive    bool
	BeatIDs     []uint
}

type BundleService struct {
	bundles repository.BundleRepository
	beats   repository.BeatRepository
	store   migration.ObjectStore
	bucket  string
	auditor Auditor
}

func NewBundleService(bundles repository.BundleRepository, beats repository.BeatRepository, store migration.ObjectStore, bucket string, auditor Auditor) *BundleService {
	return &BundleService{bundles: bundles, beats: beats, store: store, bucket: bucket, auditor: auditor}
}

func (s *BundleService) List(ctx context.Context) ([]models.Bundle, error) {
	return s.bundles.List(ctx)
}

func (s *BundleService) Get(ctx context.Context, id uint) (*models.Bundle, error) {
	return s.bundles.Get(ctx, id)
}

// price validates in and derives the individual price and discount from the
// current member beat prices.
func (s *BundleService) price(ctx context.Context, in BundleInput) (*models.Bundle, []uint, error) {
	name := validation.SanitizeString(in.Name)
	if name == "" {
		return nil, nil, ErrBundleNameRequired
	}
	ids := uniqueIDs(in.BeatIDs)
	if len(ids) == 0 {
		return nil, nil, ErrEmptyBundle
	}
	if in.BundlePrice <= 0 {
		return nil, nil, ErrInvalidBundlePrice
	}

	beats, err := s.beats.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	if len(beats) != len(ids) {
		return nil, nil, ErrUnknownBeats
	}
	prices := make([]float64, len(beats))
	for i, b := range beats {
		prices[i] = b.Price
	}
	individual := pricing.SumPrices(prices)
	if in.BundlePrice > individual {
		return nil, nil, ErrBundleAboveIndividual
	}

	return &models.Bundle{
		Name:            name,
		Description:     validation.SanitizeString(in.Description),
		IndividualPrice: individual,
		BundlePrice:     in.BundlePrice,
		DiscountPercent: pricing.BundleDiscountPercent(individual, in.BundlePrice),
		IsActive:        in.IsActive,
	}, ids, nil
}

func (s *BundleService) Create(ctx context.Context, actor string, in BundleInput) (*models.Bundle, error) {
	bundle, ids, err := s.price(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := s.bundles.Create(ctx, bundle, ids); err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "create_bundle", bundle.ID, map[string]interface{}{"beat_ids": ids, "bundle_price": bundle.BundlePrice})
	return s.bundles.Get(ctx, bundle.ID)
}

func (s *BundleService) Update(ctx context.Context, actor string, id uint, in BundleInput) (*models.Bundle, error) {
	if _, err := s.bundles.Get(ctx, id); err != nil {
		return nil, err
	}
	bundle, ids, err := s.price(ctx, in)
	if err != nil {
		return nil, err
	}
	bundle.ID = id
	if err := s.bundles.Update(ctx, bundle, ids); err != nil {
		return nil, err
	}
	s.audit(ctx, actor, "update_bundle", id, map[string]interface{}{"beat_ids": ids, "bundle_price": bundle.BundlePrice})
	return s.bundles.Get(ctx, id)
}

// Delete removes the bundle, its memberships and its orders. The promotional
// image is removed best effort.
func (s *BundleService) Delete(ctx context.Context, actor string, id uint) error {
	bundle, err := s.bundles.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.bundles.Delete(ctx, id); err != nil {
		return err
	}
	s.removeImage(ctx, bundle.ImageKey)
	s.audit(ctx, actor, "delete_bundle", id, map[string]interface{}{"name": bundle.Name})
	return nil
}

// UploadImage stores a promotional image in the public bucket and links it
// to the bundle, replacing any previous one.
func (s *BundleService) UploadImage(ctx context.Context, actor string, id uint, filename string, data []byte) (*models.Bundle, error) {
	ext := strings.ToLower(path.Ext(filename))
	contentType, ok := bundleImageTypes[ext]
	if !ok {
		return nil, ErrUnsupportedImage
	}
	bundle, err := s.bundles.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("bundles/%d-%s%s", id, uuid.New().String(), ext)
	if err := s.store.Put(ctx, s.bucket, key, data, contentType); err != nil {
		return nil, err
	}
	if err := s.bundles.SetImageKey(ctx, id, key); err != nil {
		s.removeImage(ctx, key)
		return nil, err
	}
	if bundle.ImageKey != "" && bundle.ImageKey != key {
		s.removeImage(ctx, bundle.ImageKey)
	}
	s.audit(ctx, actor, "upload_bundle_image", id, map[string]interface{}{"key": key})
	return s.bundles.Get(ctx, id)
}

func (s *BundleService) removeImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.store.Delete(ctx, s.bucket, key); err != nil {
		logger.Warn("bundle image cleanup failed", logger.String("key", key), logger.ErrorField(err))
	}
}

func (s *BundleService) audit(ctx context.Context, actor, action string, id uint, details map[string]interface{}) {
	if s.auditor == nil {
		return
	}
	_ = s.auditor.LogAction(ctx, actor, action, "bundle", strconv.FormatUint(uint64(id), 10), details, "")
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
