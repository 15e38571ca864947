package services

import (
	"context"
	"errors"
	"testing"

	"github.com/GabKongroo/NothingSpecial/internal/events"
	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/pricing"
	"github.com/GabKongroo/NothingSpecial/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fp(v float64) *float64 { return &v }

func seedBeats(t *testing.T, store *memory.Store, titles ...string) []uint {
	t.Helper()
	var ids []uint
	for _, title := range titles {
		price := 20.0
		b := &models.Beat{Title: title, Genre: "Trap", Mood: "Dark", Folder: title, Price: price, OriginalPrice: &price, Available: true, PreviewKey: "previews/" + title + "_spoiler.mp3"}
		require.NoError(t, store.Beats().Create(context.Background(), b))
		ids = append(ids, b.ID)
	}
	return ids
}

func TestCatalogListBeatsView(t *testing.T) {
	store := memory.NewStore()
	ids := seedBeats(t, store, "Night Drive", "Sunrise")
	legacy := &models.Beat{Title: "Legacy", Price: 9.99}
	require.NoError(t, store.Beats().Create(context.Background(), legacy))

	svc := NewCatalogService(store.Beats(), nil, nil, "https://cdn.example.com")
	_, err := svc.ApplyEdits(context.Background(), "operator", "", map[uint]pricing.Edit{
		ids[0]: {IsDiscounted: true, DiscountedPrice: fp(15)},
	})
	require.NoError(t, err)

	views, err := svc.ListBeats(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, views, 3)

	require.NotNil(t, views[0].DiscountedPrice)
	assert.Equal(t, 15.0, *views[0].DiscountedPrice)
	assert.Equal(t, 20.0, views[0].OriginalPrice)
	assert.Equal(t, "https://cdn.example.com/previews/Night%20Drive_spoiler.mp3", views[0].PreviewURL)
	assert.Nil(t, views[1].DiscountedPrice)
	assert.Equal(t, 9.99, views[2].OriginalPrice)

	filtered, err := svc.ListBeats(context.Background(), "sun")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Sunrise", filtered[0].Title)
}

func TestCatalogApplyEditsCommits(t *testing.T) {
	store := memory.NewStore()
	ids := seedBeats(t, store, "A", "B")
	pub := &fakePublisher{}
	audit := &fakeAuditor{}
	svc := NewCatalogService(store.Beats(), pub, audit, "")

	views, err := svc.ApplyEdits(context.Background(), "operator", "10.0.0.1", map[uint]pricing.Edit{
		ids[0]: {OriginalPrice: fp(20), DiscountedPrice: fp(15), IsDiscounted: true},
		ids[1]: {OriginalPrice: fp(25), IsExclusive: true},
		999:    {IsDiscounted: true, DiscountedPrice: fp(1)},
	})
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, 15.0, views[0].Price)
	assert.Equal(t, 25, views[0].DiscountPercent)
	assert.True(t, views[0].IsDiscounted)
	assert.Equal(t, 25.0, views[1].Price)
	assert.True(t, views[1].IsExclusive)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.RoutingPricesUpdated, pub.events[0].routingKey)
	ev := pub.events[0].event.(events.PricesUpdatedEvent)
	assert.Equal(t, ids, ev.BeatIDs)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "update_prices", audit.entries[0].action)
}

func TestCatalogApplyEditsIsAtomic(t *testing.T) {
	for failAt := 0; failAt < 3; failAt++ {
		store := memory.NewStore()
		ids := seedBeats(t, store, "A", "B", "C")
		pub := &fakePublisher{}
		svc := NewCatalogService(store.Beats(), pub, nil, "")
		before, err := store.Beats().List(context.Background(), "")
		require.NoError(t, err)

		edits := map[uint]pricing.Edit{}
		for i, id := range ids {
			if i == failAt {
				edits[id] = pricing.Edit{IsDiscounted: true, DiscountedPrice: fp(30)}
			} else {
				edits[id] = pricing.Edit{OriginalPrice: fp(50), IsExclusive: true}
			}
		}

		_, err = svc.ApplyEdits(context.Background(), "operator", "", edits)
		var rej *pricing.Rejection
		require.True(t, errors.As(err, &rej))
		assert.Equal(t, ids[failAt], rej.BeatID)
		assert.Equal(t, pricing.ReasonExceedsOriginal, rej.Reason)

		after, err := store.Beats().List(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Empty(t, pub.events)
	}
}

func TestCatalogApplyEditsStopsAtFirstRejection(t *testing.T) {
	store := memory.NewStore()
	ids := seedBeats(t, store, "A", "B")
	svc := NewCatalogService(store.Beats(), nil, nil, "")

	_, err := svc.ApplyEdits(context.Background(), "operator", "", map[uint]pricing.Edit{
		ids[1]: {DiscountPercent: 10},
		ids[0]: {DiscountedPrice: fp(5)},
	})
	var rej *pricing.Rejection
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, ids[0], rej.BeatID)
	assert.Equal(t, pricing.ReasonDiscountFlagForPrice, rej.Reason)
}

func TestCatalogApplyEditsNoMatchingBeats(t *testing.T) {
	store := memory.NewStore()
	pub := &fakePublisher{}
	svc := NewCatalogService(store.Beats(), pub, nil, "")

	views, err := svc.ApplyEdits(context.Background(), "operator", "", map[uint]pricing.Edit{42: {}})
	require.NoError(t, err)
	assert.Empty(t, views)
	assert.Empty(t, pub.events)
}
