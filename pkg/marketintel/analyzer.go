package marketintel

import (
	"math"
	"time"

	"copytrader/pkg/venue"
)

// Quality carries the four component quality scores for a market, grounded
// on original_source's MarketQuality.
type Quality struct {
	LiquidityScore   float64
	SpreadScore      float64
	VolatilityScore  float64
	TimeDecayScore   float64
}

const (
	liquidityWeight  = 0.3
	spreadWeight     = 0.3
	volatilityWeight = 0.2
	timeDecayWeight  = 0.2
)

// OverallScore is the weighted average of the four component scores.
func (q Quality) OverallScore() float64 {
	return q.LiquidityScore*liquidityWeight +
		q.SpreadScore*spreadWeight +
		q.VolatilityScore*volatilityWeight +
		q.TimeDecayScore*timeDecayWeight
}

// Analyzer scores market quality for trading decisions, grounded on
// original_source's MarketAnalyzer.
type Analyzer struct {
	MinLiquidity          float64
	MaxSpreadPercent       float64
	MaxVolatility          float64
	MinHoursToResolution   float64
}

// NewAnalyzer constructs an Analyzer with the original's default thresholds.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		MinLiquidity:         10000.0,
		MaxSpreadPercent:     0.05,
		MaxVolatility:        0.3,
		MinHoursToResolution: 24.0,
	}
}

// CalculateLiquidityScore normalizes total order book depth against
// MinLiquidity.
func (a *Analyzer) CalculateLiquidityScore(book venue.OrderBook) float64 {
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return 0
	}
	var totalBid, totalAsk float64
	for _, l := range book.Bids {
		totalBid += l.Size
	}
	for _, l := range book.Asks {
		totalAsk += l.Size
	}
	score := (totalBid + totalAsk) / a.MinLiquidity
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// CalculateSpreadScore scores the best bid/ask spread against
// MaxSpreadPercent.
func (a *Analyzer) CalculateSpreadScore(book venue.OrderBook) float64 {
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return 0
	}
	bid, ask := book.BestBidAsk()
	if bid <= 0 || ask <= bid {
		return 0
	}
	mid := (bid + ask) / 2
	spreadPercent := (ask - bid) / mid

	score := 1 - spreadPercent/a.MaxSpreadPercent
	if score < 0 {
		score = 0
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// CalculateVolatilityScore scores price stability: lower std-dev of recent
// prices yields a score closer to 1.0.
func (a *Analyzer) CalculateVolatilityScore(prices []float64) float64 {
	if len(prices) < 2 {
		return 0.5
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	mean := sum / float64(len(prices))

	var variance float64
	for _, p := range prices {
		diff := p - mean
		variance += diff * diff
	}
	variance /= float64(len(prices))
	stdDev := math.Sqrt(variance)

	score := 1 - stdDev/a.MaxVolatility
	if score < 0 {
		score = 0
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// CalculateTimeDecayScore scores remaining time until resolution against
// MinHoursToResolution.
func (a *Analyzer) CalculateTimeDecayScore(resolutionTime time.Time) float64 {
	remaining := time.Until(resolutionTime)
	if remaining <= 0 {
		return 0
	}
	hoursRemaining := remaining.Hours()
	score := hoursRemaining / a.MinHoursToResolution
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// GetQualityScore computes the full Quality breakdown for a market.
func (a *Analyzer) GetQualityScore(book venue.OrderBook, priceHistory []float64, resolutionTime time.Time) Quality {
	return Quality{
		LiquidityScore:  a.CalculateLiquidityScore(book),
		SpreadScore:     a.CalculateSpreadScore(book),
		VolatilityScore: a.CalculateVolatilityScore(priceHistory),
		TimeDecayScore:  a.CalculateTimeDecayScore(resolutionTime),
	}
}
