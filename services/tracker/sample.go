package tracker

import (
	"math"

	"pricewatch-backend/services/tracker/db"
)

// Sample reduces an ordered price series to at most 10 representative
// points for display. Fewer than 10 points come back unchanged;
// otherwise exactly 10 indices are picked via round(i*(n-1)/9), so the
// result always includes the first and last point. The rounding (and
// the duplicate indices it can produce when n is just above 10) is the
// exported display contract and must stay bit-for-bit deterministic.
func Sample(points []db.PriceHistory) []db.PriceHistory {
	n := len(points)
	if n < 10 {
		return points
	}

	result := make([]db.PriceHistory, 10)
	for i := 0; i < 10; i++ {
		idx := int(math.Round(float64(i) * float64(n-1) / 9))
		result[i] = points[idx]
	}
	return result
}
