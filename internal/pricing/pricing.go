// Package pricing derives in-game player prices from ATP rankings.
package pricing

import "math"

const (
	// BasePrice is the cost of the world number one.
	BasePrice = 20
	// MaxRank is the deepest ranking the model differentiates.
	MaxRank = 200
	// MinPrice is the floor applied to every price.
	MinPrice = 2
)

// Price maps a positive ranking to an integer price using logarithmic
// decay: the top of the rankings is expensive and the curve flattens out
// quickly. Rank 1 prices at BasePrice, ranks at or beyond MaxRank at
// MinPrice, and the result never increases as rank grows. Callers must
// reject non-positive ranks before calling.
func Price(rank int) int {
	if rank >= MaxRank {
		return MinPrice
	}
	scale := math.Log(float64(MaxRank + 1))
	price := int(math.Round(BasePrice * (scale - math.Log(float64(rank))) / scale))
	if price < MinPrice {
		return MinPrice
	}
	return price
}
