package walletintel

import (
	"context"
	"fmt"
	"math"
	"time"

	"copytrader/internal/model"
)

const timingScoreCapSeconds = 60.0

// MetricsStore persists wallet metrics, narrowed from
// internal/model.WalletMetricsModel to the one operation this package uses.
type MetricsStore interface {
	Upsert(ctx context.Context, rec *model.WalletMetricsRecord) error
}

// Tracker analyzes wallet trading performance and persists the resulting
// metrics, grounded on original_source's WalletTracker.
type Tracker struct {
	store MetricsStore
}

// NewTracker constructs a Tracker bound to a metrics store.
func NewTracker(store MetricsStore) *Tracker {
	return &Tracker{store: store}
}

// CalculateWinRate returns the fraction of trades with positive profit.
func CalculateWinRate(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	wins := 0
	for _, t := range trades {
		if t.Profit > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(trades))
}

// CalculateROI returns total profit divided by total size invested.
func CalculateROI(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	var totalProfit, totalInvested float64
	for _, t := range trades {
		totalProfit += t.Profit
		totalInvested += t.Size
	}
	if totalInvested == 0 {
		return 0
	}
	return totalProfit / totalInvested
}

// CalculateTimingScore measures how early a wallet enters positions before
// price moves, normalized against a 60-second cap.
func CalculateTimingScore(trades []Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	var deltas []float64
	for _, t := range trades {
		if t.EntryTime.IsZero() || t.PriceMoveStart.IsZero() {
			continue
		}
		if t.PriceMoveStart.After(t.EntryTime) {
			deltas = append(deltas, t.PriceMoveStart.Sub(t.EntryTime).Seconds())
		}
	}
	if len(deltas) == 0 {
		return 0.5
	}
	var sum float64
	for _, d := range deltas {
		sum += d
	}
	avg := sum / float64(len(deltas))
	score := avg / timingScoreCapSeconds
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// CalculateConsistency scores return-variance consistency: lower standard
// deviation of profit yields a score closer to 1.0.
func CalculateConsistency(trades []Trade) float64 {
	if len(trades) < 2 {
		return 0.5
	}
	var sum float64
	for _, t := range trades {
		sum += t.Profit
	}
	avg := sum / float64(len(trades))

	var variance float64
	for _, t := range trades {
		diff := t.Profit - avg
		variance += diff * diff
	}
	variance /= float64(len(trades))
	stdDev := math.Sqrt(variance)

	score := 1 - stdDev/100
	if score < 0 {
		score = 0
	}
	return score
}

// AnalyzeWallet computes fresh metrics from a trade history and persists
// them, grounded on WalletTracker.analyze_wallet.
func (t *Tracker) AnalyzeWallet(ctx context.Context, walletAddress string, trades []Trade) (Metrics, error) {
	metrics := Metrics{
		WalletAddress: walletAddress,
		WinRate:       CalculateWinRate(trades),
		ROI:           CalculateROI(trades),
		TimingScore:   CalculateTimingScore(trades),
		Consistency:   CalculateConsistency(trades),
		TotalTrades:   len(trades),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := t.store.Upsert(ctx, &model.WalletMetricsRecord{
		WalletAddress: metrics.WalletAddress,
		TotalTrades:   metrics.TotalTrades,
		WinningTrades: winningTradeCount(trades),
		TotalPnL:      sumProfit(trades),
		AvgROI:        metrics.ROI,
		UpdatedAt:     metrics.UpdatedAt,
	}); err != nil {
		return Metrics{}, fmt.Errorf("walletintel: save metrics: %w", err)
	}

	return metrics, nil
}

func winningTradeCount(trades []Trade) int {
	n := 0
	for _, t := range trades {
		if t.Profit > 0 {
			n++
		}
	}
	return n
}

func sumProfit(trades []Trade) float64 {
	var sum float64
	for _, t := range trades {
		sum += t.Profit
	}
	return sum
}
