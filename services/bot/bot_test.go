package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"pricewatch-backend/lib/testutil"
	"pricewatch-backend/services/tracker"
	"pricewatch-backend/services/tracker/db"

	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sent: map[int64][]string{}}
}

func (f *fakeTransport) SendText(ctx context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[userID] = append(f.sent[userID], text)
	return nil
}

func (f *fakeTransport) last(userID int64) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	messages := f.sent[userID]
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1]
}

func (f *fakeTransport) count(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent[userID])
}

func setupBot(t *testing.T) (*Bot, tracker.Service, *fakeTransport, context.Context) {
	setup, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "services/bot",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	t.Cleanup(cancel)

	service := tracker.NewService(setup.DB)
	require.NoError(t, service.Seed(ctx))

	transport := newFakeTransport()
	return New(service, transport), service, transport, ctx
}

func TestStartAndHelp(t *testing.T) {
	b, _, transport, ctx := setupBot(t)

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "start"})
	require.Contains(t, transport.last(1), "alice")

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "help"})
	require.Contains(t, transport.last(1), "/sub")

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "frobnicate"})
	require.Contains(t, transport.last(1), "Unknown command")
}

func TestListItems(t *testing.T) {
	b, _, transport, ctx := setupBot(t)

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "list"})
	listing := transport.last(1)
	for _, name := range []string{"USD", "EUR", "BRENT"} {
		require.Contains(t, listing, name)
	}
}

func TestSubscribeDialog(t *testing.T) {
	b, service, transport, ctx := setupBot(t)

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "sub"})
	require.Contains(t, transport.last(1), "Enter the item name")

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "USD"})
	require.Equal(t, "Subscribed to USD.", transport.last(1))

	_, ok, err := service.SubscriptionOf(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "unsub"})
	require.Equal(t, "Subscription removed.", transport.last(1))

	_, ok, err = service.SubscriptionOf(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSubscribeUnknownItemSuggests(t *testing.T) {
	b, service, transport, ctx := setupBot(t)

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "sub"})
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "usdd"})
	require.Contains(t, transport.last(1), "no such item")
	require.Contains(t, transport.last(1), "USD")

	_, ok, err := service.SubscriptionOf(ctx, 1)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCancelDiscardsPendingInput(t *testing.T) {
	b, _, transport, ctx := setupBot(t)

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "hist"})
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "cancel"})
	require.Equal(t, "Dialog cancelled.", transport.last(1))

	// the discarded dialog no longer consumes free text
	before := transport.count(1)
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "5"})
	require.Equal(t, before, transport.count(1))
}

func TestHistoryDialog(t *testing.T) {
	b, service, transport, ctx := setupBot(t)

	// no subscription yet
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "hist"})
	require.Contains(t, transport.last(1), "number of days")
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "5"})
	require.Equal(t, "You have no active subscription.", transport.last(1))

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "sub"})
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "USD"})

	// a malformed day count reports a format error and ends the
	// dialog without touching anything
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "hist"})
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "soon"})
	require.Equal(t, "That is not a valid number of days.", transport.last(1))
	before := transport.count(1)
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "5"})
	require.Equal(t, before, transport.count(1))

	itemID, ok, err := service.SubscriptionOf(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	for _, price := range []float64{60.1, 60.2, 60.3} {
		require.NoError(t, service.RecordPrice(ctx, itemID, price))
	}

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "hist"})
	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "7"})
	history := transport.last(1)
	require.Contains(t, history, "60.1")
	require.Contains(t, history, "60.3")
	require.Contains(t, history, "RUB")
	require.Len(t, strings.Split(strings.TrimRight(history, "\n"), "\n"), 3)
}

func TestSessionsAreIndependentPerUser(t *testing.T) {
	b, _, transport, ctx := setupBot(t)

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Command: "sub"})
	b.HandleMessage(ctx, Message{UserID: 2, Username: "bob", Command: "hist"})

	b.HandleMessage(ctx, Message{UserID: 1, Username: "alice", Text: "EUR"})
	require.Equal(t, "Subscribed to EUR.", transport.last(1))

	b.HandleMessage(ctx, Message{UserID: 2, Username: "bob", Text: "nope"})
	require.Equal(t, "That is not a valid number of days.", transport.last(2))
}
