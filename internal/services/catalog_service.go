package services

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/events"
	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/pricing"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
)

// BeatView is a beat as shown in the pricing editor.
type BeatView struct {
	ID              uint     `json:"id"`
	Title           string   `json:"title"`
	Genre           string   `json:"genre"`
	Mood            string   `json:"mood"`
	Price           float64  `json:"price"`
	OriginalPrice   float64  `json:"original_price"`
	DiscountedPrice *float64 `json:"discounted_price"`
	IsExclusive     bool     `json:"is_exclusive"`
	IsDiscounted    bool     `json:"is_discounted"`
	DiscountPercent int      `json:"discount_percent"`
	Available       bool     `json:"available"`
	PreviewURL      string   `json:"preview_url,omitempty"`
	ImageURL        string   `json:"image_url,omitempty"`
}

type CatalogService struct {
	beats     repository.BeatRepository
	publisher events.Publisher
	auditor   Auditor
	publicURL string
}

func NewCatalogService(beats repository.BeatRepository, publisher events.Publisher, auditor Auditor, publicURL string) *CatalogService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &CatalogService{beats: beats, publisher: publisher, auditor: auditor, publicURL: publicURL}
}

func (s *CatalogService) view(b models.Beat) BeatView {
	v := BeatView{
		ID:              b.ID,
		Title:           b.Title,
		Genre:           b.Genre,
		Mood:            b.Mood,
		Price:           b.Price,
		OriginalPrice:   b.EffectiveOriginalPrice(),
		IsExclusive:     b.IsExclusive,
		IsDiscounted:    b.IsDiscounted,
		DiscountPercent: b.DiscountPercent,
		Available:       b.Available,
		PreviewURL:      PublicObjectURL(s.publicURL, b.PreviewKey),
		ImageURL:        PublicObjectURL(s.publicURL, b.ImageKey),
	}
	if b.IsDiscounted {
		price := b.Price
		v.DiscountedPrice = &price
	}
	return v
}

// ListBeats returns beats ordered by id, filtered by title when query is set.
func (s *CatalogService) ListBeats(ctx context.Context, query string) ([]BeatView, error) {
	beats, err := s.beats.List(ctx, query)
	if err != nil {
		return nil, err
	}
	views := make([]BeatView, len(beats))
	for i, b := range beats {
		views[i] = s.view(b)
	}
	return views, nil
}

// ApplyEdits reconciles every edit in ascending beat id order inside one
// transaction. The first rejection aborts the batch and is returned as a
// *pricing.Rejection; nothing is persisted in that case. Ids that match no
// beat are ignored.
func (s *CatalogService) ApplyEdits(ctx context.Context, actor, ipAddress string, edits map[uint]pricing.Edit) ([]BeatView, error) {
	ids := make([]uint, 0, len(edits))
	for id := range edits {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var updated []uint
	err := s.beats.WithTx(ctx, func(tx repository.BeatRepository) error {
		beats, err := tx.FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for i := range beats {
			beat := &beats[i]
			next, rej := pricing.Reconcile(beat.ID, beat.Title, stateOf(beat), edits[beat.ID])
			if rej != nil {
				return rej
			}
			applyState(beat, next)
			if err := tx.UpdatePricing(ctx, beat); err != nil {
				return err
			}
			updated = append(updated, beat.ID)
		}
		return nil
	})
	if err != nil {
		var rej *pricing.Rejection
		if errors.As(err, &rej) {
			logger.Info("catalog edit rejected",
				logger.Uint("beat_id", rej.BeatID),
				logger.String("reason", string(rej.Reason)))
		} else {
			logger.Error("catalog edit failed", logger.ErrorField(err))
		}
		return nil, err
	}

	if len(updated) > 0 {
		s.afterCommit(ctx, actor, ipAddress, updated)
	}
	return s.ListBeats(ctx, "")
}

func (s *CatalogService) afterCommit(ctx context.Context, actor, ipAddress string, ids []uint) {
	_ = s.publisher.Publish(ctx, events.RoutingPricesUpdated, events.PricesUpdatedEvent{
		BeatIDs:    ids,
		Actor:      actor,
		OccurredAt: time.Now().UTC(),
	})
	if s.auditor != nil {
		target := ""
		if len(ids) == 1 {
			target = strconv.FormatUint(uint64(ids[0]), 10)
		}
		_ = s.auditor.LogAction(ctx, actor, "update_prices", "beat", target, map[string]interface{}{"beat_ids": ids}, ipAddress)
	}
	logger.Info("catalog prices updated", logger.Int("beats", len(ids)), logger.String("actor", actor))
}

// ReleaseExpiredReservations frees exclusive holds whose window elapsed.
func (s *CatalogService) ReleaseExpiredReservations(ctx context.Context) (int64, error) {
	return s.beats.ReleaseExpiredReservations(ctx, time.Now())
}

func stateOf(b *models.Beat) pricing.State {
	return pricing.State{
		Price:           b.Price,
		OriginalPrice:   b.OriginalPrice,
		IsExclusive:     b.IsExclusive,
		IsDiscounted:    b.IsDiscounted,
		DiscountPercent: b.DiscountPercent,
	}
}

func applyState(b *models.Beat, st pricing.State) {
	b.Price = st.Price
	b.OriginalPrice = st.OriginalPrice
	b.IsExclusive = st.IsExclusive
	b.IsDiscounted = st.IsDiscounted
	b.DiscountPercent = st.DiscountPercent
}
