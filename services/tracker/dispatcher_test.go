package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu       sync.Mutex
	sent     map[int64][]string
	failFor  map[int64]bool
	attempts map[int64]int
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		sent:     map[int64][]string{},
		failFor:  map[int64]bool{},
		attempts: map[int64]int{},
	}
}

func (f *fakeNotifier) SendText(ctx context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[userID]++
	if f.failFor[userID] {
		return errors.New("blocked by user")
	}
	f.sent[userID] = append(f.sent[userID], text)
	return nil
}

func TestBroadcast(t *testing.T) {
	service, ctx := setupTracker(t)

	usdID, err := service.qry.GetItemIdByName(ctx, "USD")
	require.NoError(t, err)
	eurID, err := service.qry.GetItemIdByName(ctx, "EUR")
	require.NoError(t, err)
	_, err = service.qry.GetItemIdByName(ctx, "BRENT")
	require.NoError(t, err)

	for id, name := range map[int64]string{1: "alice", 2: "bob", 3: "carol"} {
		require.NoError(t, service.UpsertUser(ctx, id, name))
	}
	require.NoError(t, service.Subscribe(ctx, 1, "USD"))
	require.NoError(t, service.Subscribe(ctx, 2, "EUR"))
	require.NoError(t, service.Subscribe(ctx, 3, "BRENT"))

	require.NoError(t, service.RecordPrice(ctx, usdID, 60.5))
	require.NoError(t, service.RecordPrice(ctx, eurID, 70.25))
	// BRENT has no history at all

	notifier := newFakeNotifier()
	notifier.failFor[1] = true

	d := NewDispatcher(service, notifier, "")
	d.broadcastOnce(ctx)

	// alice's failed delivery doesn't stop bob's
	require.Equal(t, 1, notifier.attempts[1])
	require.Equal(t, []string{"Current price: 70.25 RUB"}, notifier.sent[2])

	// carol's item has no observations yet, she is skipped silently
	require.Equal(t, 0, notifier.attempts[3])
}

func TestDispatcherRejectsBadCronSpec(t *testing.T) {
	service, ctx := setupTracker(t)

	d := NewDispatcher(service, newFakeNotifier(), "not a cron spec")
	require.Error(t, d.Start(ctx))
}
