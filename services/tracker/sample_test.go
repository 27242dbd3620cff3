package tracker

import (
	"testing"

	"pricewatch-backend/services/tracker/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func series(n int) []db.PriceHistory {
	points := make([]db.PriceHistory, n)
	for i := range points {
		points[i] = db.PriceHistory{
			PriceID:    int64(i + 1),
			ItemID:     1,
			Price:      float64(i),
			Observedat: int64(1700000000 + i*60),
		}
	}
	return points
}

func TestSampleShortSeriesUnchanged(t *testing.T) {
	for _, n := range []int{0, 1, 3, 9} {
		points := series(n)
		require.Empty(t, cmp.Diff(points, Sample(points)), "n=%d", n)
	}
}

func TestSampleTenPointsIsIdentity(t *testing.T) {
	points := series(10)
	require.Empty(t, cmp.Diff(points, Sample(points)))
}

func TestSampleSelectsEvenlySpacedIndices(t *testing.T) {
	points := series(11)
	sampled := Sample(points)
	require.Len(t, sampled, 10)

	// round(i*10/9) for i in 0..9
	expected := []int{0, 1, 2, 3, 4, 6, 7, 8, 9, 10}
	for i, idx := range expected {
		require.Equal(t, points[idx], sampled[i])
	}
}

func TestSampleLongSeries(t *testing.T) {
	points := series(100)
	sampled := Sample(points)
	require.Len(t, sampled, 10)

	// endpoints are always included
	require.Equal(t, points[0], sampled[0])
	require.Equal(t, points[99], sampled[9])

	// deterministic for identical input
	require.Empty(t, cmp.Diff(sampled, Sample(points)))
}
