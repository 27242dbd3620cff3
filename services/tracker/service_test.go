package tracker

import (
	"context"
	"testing"
	"time"

	"pricewatch-backend/lib/testutil"
	"pricewatch-backend/lib/timezone"
	"pricewatch-backend/services/tracker/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func setupTracker(t *testing.T) (Service, context.Context) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/tracker",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	service := NewService(setup.DB)
	require.NoError(t, service.Seed(ctx))
	return service, ctx
}

func TestSeedIdempotent(t *testing.T) {
	service, ctx := setupTracker(t)

	// a second seeding must not duplicate or overwrite rows
	require.NoError(t, service.Seed(ctx))

	items, err := service.AllItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
}

func TestSubscriptionLifecycle(t *testing.T) {
	service, ctx := setupTracker(t)

	require.NoError(t, service.UpsertUser(ctx, 1, "alice"))

	require.NoError(t, service.Subscribe(ctx, 1, "USD"))

	usdID, err := service.qry.GetItemIdByName(ctx, "USD")
	require.NoError(t, err)
	itemID, ok, err := service.SubscriptionOf(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, usdID, itemID)

	// switching replaces the row instead of adding a second one
	require.NoError(t, service.Subscribe(ctx, 1, "EUR"))

	eurID, err := service.qry.GetItemIdByName(ctx, "EUR")
	require.NoError(t, err)
	subs, err := service.AllSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, eurID, subs[0].ItemID)

	require.NoError(t, service.Unsubscribe(ctx, 1))
	_, ok, err = service.SubscriptionOf(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)

	// unsubscribing again is a no-op
	require.NoError(t, service.Unsubscribe(ctx, 1))
}

func TestSubscribeUnknownItem(t *testing.T) {
	service, ctx := setupTracker(t)

	require.NoError(t, service.UpsertUser(ctx, 1, "alice"))

	err := service.Subscribe(ctx, 1, "DOGE")
	require.ErrorIs(t, err, ErrUnknownItem)

	subs, err := service.AllSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 0)
}

func TestSuggestItem(t *testing.T) {
	service, ctx := setupTracker(t)

	suggestion, ok, err := service.SuggestItem(ctx, "usd")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "USD", suggestion)

	_, ok, err = service.SuggestItem(ctx, "something else entirely")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPriceHistoryDefaultWindow(t *testing.T) {
	service, ctx := setupTracker(t)

	itemID, err := service.qry.GetItemIdByName(ctx, "USD")
	require.NoError(t, err)

	now := timezone.Now()
	old := db.CreatePricePointParams{
		ItemID:     itemID,
		Price:      55,
		Observedat: now.Add(-8 * 24 * time.Hour).Unix(),
	}
	recent := db.CreatePricePointParams{
		ItemID:     itemID,
		Price:      60.5,
		Observedat: now.Add(-24 * time.Hour).Unix(),
	}
	require.NoError(t, service.qry.CreatePricePoint(ctx, old))
	require.NoError(t, service.qry.CreatePricePoint(ctx, recent))

	sevenDays, err := service.PriceHistory(ctx, itemID, 7*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, sevenDays, 1)
	require.Equal(t, 60.5, sevenDays[0].Price)

	// a non-positive window behaves exactly like seven days
	defaulted, err := service.PriceHistory(ctx, itemID, 0)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(sevenDays, defaulted))

	negative, err := service.PriceHistory(ctx, itemID, -time.Hour)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(sevenDays, negative))
}

func TestLatestPrice(t *testing.T) {
	service, ctx := setupTracker(t)

	itemID, err := service.qry.GetItemIdByName(ctx, "BRENT")
	require.NoError(t, err)

	_, ok, err := service.LatestPrice(ctx, itemID)
	require.NoError(t, err)
	require.False(t, ok)

	for _, price := range []float64{1.0, 2.0, 3.0} {
		require.NoError(t, service.RecordPrice(ctx, itemID, price))
	}

	point, ok, err := service.LatestPrice(ctx, itemID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 3.0, point.Price)

	// the full series is returned in insertion order and a 3 point
	// series passes through Sample unchanged
	points, err := service.PriceHistory(ctx, itemID, 0)
	require.NoError(t, err)
	require.Len(t, points, 3)
	require.Empty(t, cmp.Diff(points, Sample(points)))
}

func TestStickyErrorFlag(t *testing.T) {
	service, ctx := setupTracker(t)

	pollable, err := service.PollableItems(ctx)
	require.NoError(t, err)
	require.Len(t, pollable, 3)

	itemID, err := service.qry.GetItemIdByName(ctx, "EUR")
	require.NoError(t, err)
	require.NoError(t, service.MarkError(ctx, itemID))

	pollable, err = service.PollableItems(ctx)
	require.NoError(t, err)
	require.Len(t, pollable, 2)
	for _, item := range pollable {
		require.NotEqual(t, itemID, item.ItemID)
	}

	// the explicit operator reset brings the item back
	require.NoError(t, service.ClearError(ctx, itemID))
	pollable, err = service.PollableItems(ctx)
	require.NoError(t, err)
	require.Len(t, pollable, 3)
}
