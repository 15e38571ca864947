// Package memory provides in-process implementations of the repository
// interfaces. Snapshot based transactions make it suitable for tests and for
// the local migration dry runs.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
)

// Store holds beats, bundles, memberships and orders.
type Store struct {
	mu      sync.Mutex
	txMu    sync.Mutex
	beats   map[uint]models.Beat
	bundles map[uint]models.Bundle
	members map[uint][]uint
	orders  map[uint]models.Order
	nextID  map[string]uint
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{
		beats:   make(map[uint]models.Beat),
		bundles: make(map[uint]models.Bundle),
		members: make(map[uint][]uint),
		orders:  make(map[uint]models.Order),
		nextID:  make(map[string]uint),
		now:     time.Now,
	}
}

// Beats returns a BeatRepository view of the store.
func (s *Store) Beats() *BeatRepository { return &BeatRepository{s: s} }

// Bundles returns a BundleRepository view of the store.
func (s *Store) Bundles() *BundleRepository { return &BundleRepository{s: s} }

func (s *Store) id(table string) uint {
	s.nextID[table]++
	return s.nextID[table]
}

// AddOrder inserts an order and returns its id.
func (s *Store) AddOrder(order models.Order) uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	order.ID = s.id("orders")
	s.orders[order.ID] = order
	return order.ID
}

// Orders returns all orders ordered by id.
func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Members returns the beat ids of a bundle.
func (s *Store) Members(bundleID uint) []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint(nil), s.members[bundleID]...)
}

type snapshot struct {
	beats map[uint]models.Beat
	next  map[string]uint
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{beats: make(map[uint]models.Beat, len(s.beats)), next: make(map[string]uint, len(s.nextID))}
	for id, b := range s.beats {
		snap.beats[id] = cloneBeat(b)
	}
	for k, v := range s.nextID {
		snap.next[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beats = snap.beats
	s.nextID = snap.next
}

func cloneBeat(b models.Beat) models.Beat {
	if b.OriginalPrice != nil {
		v := *b.OriginalPrice
		b.OriginalPrice = &v
	}
	if b.ReservedBy != nil {
		v := *b.ReservedBy
		b.ReservedBy = &v
	}
	if b.ReservedAt != nil {
		v := *b.ReservedAt
		b.ReservedAt = &v
	}
	if b.ReservationExpiresAt != nil {
		v := *b.ReservationExpiresAt
		b.ReservationExpiresAt = &v
	}
	return b
}

// BeatRepository implements repository.BeatRepository.
type BeatRepository struct {
	s *Store
}

var _ repository.BeatRepository = (*BeatRepository)(nil)

func (r *BeatRepository) List(_ context.Context, titleQuery string) ([]models.Beat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	q := strings.ToLower(titleQuery)
	out := make([]models.Beat, 0, len(r.s.beats))
	for _, b := range r.s.beats {
		if q == "" || strings.Contains(strings.ToLower(b.Title), q) {
			out = append(out, cloneBeat(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *BeatRepository) FindByIDs(_ context.Context, ids []uint) ([]models.Beat, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := make(map[uint]bool, len(ids))
	out := make([]models.Beat, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.s.beats[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, cloneBeat(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *BeatRepository) ExistsBySource(_ context.Context, genre, mood, folder, title string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.beats {
		if b.Genre == genre && b.Mood == mood && b.Folder == folder && b.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *BeatRepository) Create(_ context.Context, beat *models.Beat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	beat.ID = r.s.id("beats")
	now := r.s.now()
	beat.CreatedAt, beat.UpdatedAt = now, now
	r.s.beats[beat.ID] = cloneBeat(*beat)
	return nil
}

func (r *BeatRepository) UpdatePricing(_ context.Context, beat *models.Beat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.beats[beat.ID]
	if !ok {
		return repository.ErrBeatNotFound
	}
	updated := cloneBeat(*beat)
	stored.Price = updated.Price
	stored.OriginalPrice = updated.OriginalPrice
	stored.IsExclusive = updated.IsExclusive
	stored.IsDiscounted = updated.IsDiscounted
	stored.DiscountPercent = updated.DiscountPercent
	r.s.beats[beat.ID] = stored
	return nil
}

func (r *BeatRepository) ReleaseExpiredReservations(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	paid := make(map[uint]bool)
	for _, o := range r.s.orders {
		if o.Status == models.OrderStatusPaid && o.BeatID != nil {
			paid[*o.BeatID] = true
		}
	}
	var released int64
	for id, b := range r.s.beats {
		if b.ReservationExpiresAt == nil || !b.ReservationExpiresAt.Before(now) || paid[id] {
			continue
		}
		b.ReservedBy, b.ReservedAt, b.ReservationExpiresAt = nil, nil, nil
		b.Available = true
		r.s.beats[id] = b
		released++
	}
	return released, nil
}

// WithTx serializes transactions and restores the beat table when fn fails.
func (r *BeatRepository) WithTx(_ context.Context, fn func(repository.BeatRepository) error) error {
	r.s.txMu.Lock()
	defer r.s.txMu.Unlock()
	snap := r.s.snapshot()
	if err := fn(r); err != nil {
		r.s.restore(snap)
		return err
	}
	return nil
}
