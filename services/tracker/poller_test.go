package tracker

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pricewatch-backend/lib/mailer"

	"github.com/stretchr/testify/require"
)

func TestPollCycle(t *testing.T) {
	service, ctx := setupTracker(t)

	var brokenHits, goodHits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken":
			brokenHits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			goodHits.Add(1)
			w.Write([]byte(`price: 42,5`))
		}
	}))
	defer server.Close()

	// seeded items point at real sites, keep them out of this test
	for _, name := range []string{"USD", "EUR", "BRENT"} {
		item, found, err := service.ItemByName(ctx, name)
		require.NoError(t, err)
		require.True(t, found)
		require.NoError(t, service.MarkError(ctx, item.ItemID))
	}

	// the broken item has the lower id and is polled first, its
	// failure must not stop the good item from being polled
	require.NoError(t, service.CreateItem(ctx, "BROKEN", server.URL+"/broken", `price: ([\d,]+)`, "RUB"))
	require.NoError(t, service.CreateItem(ctx, "GOOD", server.URL+"/good", `price: ([\d,]+)`, "RUB"))

	p := NewPoller(service, time.Second*30, mailer.New(mailer.SmtpConfig{}))
	p.pollOnce(ctx)

	good, found, err := service.ItemByName(ctx, "GOOD")
	require.NoError(t, err)
	require.True(t, found)
	point, ok, err := service.LatestPrice(ctx, good.ItemID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 42.5, point.Price)

	broken, found, err := service.ItemByName(ctx, "BROKEN")
	require.NoError(t, err)
	require.True(t, found)
	require.EqualValues(t, 1, broken.Error)

	// a flagged item is never fetched again
	p.pollOnce(ctx)
	require.EqualValues(t, 1, brokenHits.Load())
	require.EqualValues(t, 2, goodHits.Load())
}

func TestPollCycleFlagsUnparseablePage(t *testing.T) {
	service, ctx := setupTracker(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer server.Close()

	for _, name := range []string{"USD", "EUR", "BRENT"} {
		item, found, err := service.ItemByName(ctx, name)
		require.NoError(t, err)
		require.True(t, found)
		require.NoError(t, service.MarkError(ctx, item.ItemID))
	}

	require.NoError(t, service.CreateItem(ctx, "EMPTY", server.URL, `price: ([\d,]+)`, "RUB"))

	p := NewPoller(service, time.Second*30, mailer.New(mailer.SmtpConfig{}))
	p.pollOnce(ctx)

	item, found, err := service.ItemByName(ctx, "EMPTY")
	require.NoError(t, err)
	require.True(t, found)
	require.EqualValues(t, 1, item.Error)

	_, ok, err := service.LatestPrice(ctx, item.ItemID)
	require.NoError(t, err)
	require.False(t, ok)
}
