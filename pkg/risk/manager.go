package risk

import (
	"context"
	"fmt"
	"time"

	"copytrader/pkg/advisor"
)

// Violation enumerates the risk rules a trade can trip, mirroring
// original_source's RiskViolation enum.
type Violation string

const (
	ViolationDailyLossExceeded Violation = "daily_loss_exceeded"
	ViolationExposureExceeded  Violation = "exposure_exceeded"
	ViolationTradeSizeExceeded Violation = "trade_size_exceeded"
	ViolationSlippageExceeded  Violation = "slippage_exceeded"
)

// ExposureCache is the subset of internal/volatile.Store the risk manager
// reads, narrowed to a protocol-style interface per the teacher's
// dependency-injection convention.
type ExposureCache interface {
	GetDailyPnL(ctx context.Context, date string) (float64, error)
	GetOpenExposure(ctx context.Context) (float64, error)
}

// dateBucket returns the UTC calendar-day bucket used to key daily P&L,
// matching internal/volatile.DateBucket's format.
func dateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Manager validates and adjusts advisor verdicts against configured risk
// limits, grounded verbatim on original_source's RiskManager.validate.
type Manager struct {
	cache   ExposureCache
	cfg     Config
	slippage *SlippageGuard
}

// NewManager constructs a risk Manager bound to a cache and limit set.
func NewManager(cache ExposureCache, cfg Config) *Manager {
	return &Manager{
		cache:    cache,
		cfg:      cfg,
		slippage: NewSlippageGuard(cfg.MaxSlippagePct),
	}
}

// Validate applies the daily-loss, trade-size, and exposure checks in order,
// returning the original verdict, an adjusted-size verdict, or a rejection.
func (m *Manager) Validate(ctx context.Context, verdict advisor.Verdict) (advisor.Verdict, error) {
	if !verdict.Execute {
		return verdict, nil
	}

	dailyPnL, err := m.cache.GetDailyPnL(ctx, dateBucket(time.Now()))
	if err != nil {
		return advisor.Verdict{}, fmt.Errorf("risk: read daily pnl: %w", err)
	}
	if dailyPnL <= -m.cfg.MaxDailyLoss {
		return advisor.RejectVerdict(fmt.Sprintf(
			"Trade blocked: %s (daily P&L: %.2f, limit: -%.2f)",
			ViolationDailyLossExceeded, dailyPnL, m.cfg.MaxDailyLoss)), nil
	}

	adjustedSize := verdict.Size
	if adjustedSize > m.cfg.MaxSingleTrade {
		adjustedSize = m.cfg.MaxSingleTrade
	}

	currentExposure, err := m.cache.GetOpenExposure(ctx)
	if err != nil {
		return advisor.Verdict{}, fmt.Errorf("risk: read open exposure: %w", err)
	}
	remainingCapacity := m.cfg.MaxTotalExposure - currentExposure
	if remainingCapacity <= 0 {
		return advisor.RejectVerdict(fmt.Sprintf(
			"Trade blocked: %s (current exposure: %.2f, limit: %.2f)",
			ViolationExposureExceeded, currentExposure, m.cfg.MaxTotalExposure)), nil
	}
	if adjustedSize > remainingCapacity {
		adjustedSize = remainingCapacity
	}

	if adjustedSize != verdict.Size {
		adjusted := verdict
		adjusted.Size = adjustedSize
		adjusted.Reasoning = fmt.Sprintf("%s [Size adjusted by risk manager]", verdict.Reasoning)
		return adjusted, nil
	}

	return verdict, nil
}

// ValidateSlippage checks a verdict against the current market spread.
// Should be called before Validate, mirroring RiskManager.validate_slippage.
func (m *Manager) ValidateSlippage(verdict advisor.Verdict, spreadPct float64) advisor.Verdict {
	if !verdict.Execute {
		return verdict
	}
	if spreadPct > m.cfg.MaxSlippagePct {
		return advisor.RejectVerdict(fmt.Sprintf(
			"Trade blocked: %s (spread: %.2f%%, limit: %.2f%%)",
			ViolationSlippageExceeded, spreadPct, m.cfg.MaxSlippagePct))
	}
	return verdict
}
