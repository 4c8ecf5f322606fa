package marketintel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"copytrader/pkg/marketintel"
	"copytrader/pkg/venue"
)

func bookWith(bidSize, askSize, bidPrice, askPrice float64) venue.OrderBook {
	return venue.OrderBook{
		MarketID: "m1",
		Bids:     []venue.BookLevel{{Price: bidPrice, Size: bidSize}},
		Asks:     []venue.BookLevel{{Price: askPrice, Size: askSize}},
	}
}

func TestAnalyzer_CalculateLiquidityScore(t *testing.T) {
	a := marketintel.NewAnalyzer()
	assert.Equal(t, 0.0, a.CalculateLiquidityScore(venue.OrderBook{}))

	full := bookWith(6000, 6000, 0.5, 0.51)
	assert.Equal(t, 1.0, a.CalculateLiquidityScore(full))

	partial := bookWith(2000, 3000, 0.5, 0.51)
	assert.InDelta(t, 0.5, a.CalculateLiquidityScore(partial), 0.0001)
}

func TestAnalyzer_CalculateSpreadScore(t *testing.T) {
	a := marketintel.NewAnalyzer()
	tight := bookWith(100, 100, 0.50, 0.505)
	assert.Greater(t, a.CalculateSpreadScore(tight), 0.5)

	wide := bookWith(100, 100, 0.40, 0.60)
	assert.Equal(t, 0.0, a.CalculateSpreadScore(wide))
}

func TestAnalyzer_CalculateVolatilityScore(t *testing.T) {
	a := marketintel.NewAnalyzer()
	assert.Equal(t, 0.5, a.CalculateVolatilityScore(nil))
	assert.Equal(t, 1.0, a.CalculateVolatilityScore([]float64{0.5, 0.5, 0.5}))
}

func TestAnalyzer_CalculateTimeDecayScore(t *testing.T) {
	a := marketintel.NewAnalyzer()
	assert.Equal(t, 0.0, a.CalculateTimeDecayScore(time.Now().Add(-time.Hour)))
	assert.Equal(t, 1.0, a.CalculateTimeDecayScore(time.Now().Add(48*time.Hour)))
}

func TestQuality_OverallScore(t *testing.T) {
	q := marketintel.Quality{LiquidityScore: 1, SpreadScore: 1, VolatilityScore: 1, TimeDecayScore: 1}
	assert.InDelta(t, 1.0, q.OverallScore(), 0.0001)
}
