// Package walletintel implements the supplemented wallet confidence tracker and
// auto-disable checker, grounded on original_source's
// core/intelligence/{wallet_metrics,wallet_tracker,auto_disable}.py.
package walletintel

import "time"

// Trade is the minimal per-trade shape the scoring functions consume,
// mirroring the dict fields original_source reads off each trade record
// ("profit", "size", "entry_time", "price_move_start").
type Trade struct {
	Profit         float64
	Size           float64
	EntryTime      time.Time
	PriceMoveStart time.Time
}

// Metrics carries the performance scores for a tracked wallet, grounded on
// WalletMetrics.
type Metrics struct {
	WalletAddress string
	WinRate       float64
	ROI           float64
	TimingScore   float64
	Consistency   float64
	TotalTrades   int
	UpdatedAt     time.Time
}

const (
	winRateWeight    = 0.3
	roiWeight        = 0.3
	timingWeight     = 0.2
	consistencyWeight = 0.2

	roiNormalizationCap = 0.5
)

// ConfidenceScore applies the default weighting to the metrics, mirroring
// WalletMetrics.confidence_score / calculate_confidence.
func (m Metrics) ConfidenceScore() float64 {
	normalizedROI := m.ROI
	if normalizedROI < 0 {
		normalizedROI = 0
	}
	if normalizedROI > roiNormalizationCap {
		normalizedROI = roiNormalizationCap
	}
	normalizedROI /= roiNormalizationCap

	return m.WinRate*winRateWeight +
		normalizedROI*roiWeight +
		m.TimingScore*timingWeight +
		m.Consistency*consistencyWeight
}
