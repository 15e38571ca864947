package memory

import (
	"context"
	"sort"

	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
)

// BundleRepository implements repository.BundleRepository.
type BundleRepository struct {
	s *Store
}

var _ repository.BundleRepository = (*BundleRepository)(nil)

func (r *BundleRepository) load(b models.Bundle) models.Bundle {
	b.Beats = nil
	for _, id := range r.s.members[b.ID] {
		if beat, ok := r.s.beats[id]; ok {
			b.Beats = append(b.Beats, cloneBeat(beat))
		}
	}
	sort.Slice(b.Beats, func(i, j int) bool { return b.Beats[i].ID < b.Beats[j].ID })
	return b
}

func (r *BundleRepository) List(_ context.Context) ([]models.Bundle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Bundle, 0, len(r.s.bundles))
	for _, b := range r.s.bundles {
		out = append(out, r.load(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *BundleRepository) Get(_ context.Context, id uint) (*models.Bundle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bundles[id]
	if !ok {
		return nil, repository.ErrBundleNotFound
	}
	loaded := r.load(b)
	return &loaded, nil
}

func (r *BundleRepository) Create(_ context.Context, bundle *models.Bundle, beatIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	bundle.ID = r.s.id("bundles")
	now := r.s.now()
	bundle.CreatedAt, bundle.UpdatedAt = now, now
	stored := *bundle
	stored.Beats = nil
	r.s.bundles[bundle.ID] = stored
	r.s.members[bundle.ID] = append([]uint(nil), beatIDs...)
	return nil
}

func (r *BundleRepository) Update(_ context.Context, bundle *models.Bundle, beatIDs []uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.bundles[bundle.ID]
	if !ok {
		return repository.ErrBundleNotFound
	}
	stored.Name = bundle.Name
	stored.Description = bundle.Description
	stored.IndividualPrice = bundle.IndividualPrice
	stored.BundlePrice = bundle.BundlePrice
	stored.DiscountPercent = bundle.DiscountPercent
	stored.IsActive = bundle.IsActive
	stored.UpdatedAt = r.s.now()
	r.s.bundles[bundle.ID] = stored
	r.s.members[bundle.ID] = append([]uint(nil), beatIDs...)
	return nil
}

func (r *BundleRepository) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.bundles[id]; !ok {
		return repository.ErrBundleNotFound
	}
	for oid, o := range r.s.orders {
		if o.BundleID != nil && *o.BundleID == id {
			delete(r.s.orders, oid)
		}
	}
	delete(r.s.members, id)
	delete(r.s.bundles, id)
	return nil
}

func (r *BundleRepository) SetImageKey(_ context.Context, id uint, key string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bundles[id]
	if !ok {
		return repository.ErrBundleNotFound
	}
	b.ImageKey = key
	r.s.bundles[id] = b
	return nil
}
