package walletintel

import "fmt"

// DisableCheckResult reports whether a wallet should be auto-disabled and
// why, mirroring original_source's DisableCheckResult.
type DisableCheckResult struct {
	ShouldDisable bool
	Reason        string
}

// AutoDisableChecker flags underperforming or inactive wallets for
// deactivation, grounded on original_source's AutoDisableChecker.
type AutoDisableChecker struct {
	MinConfidence float64
	MaxDrawdown   float64 // negative fraction, e.g. -0.20
	InactiveDays  int
}

// NewAutoDisableChecker constructs a checker with the original defaults
// (min_confidence=0.3, max_drawdown=-0.20, inactive_days=30).
func NewAutoDisableChecker() *AutoDisableChecker {
	return &AutoDisableChecker{MinConfidence: 0.3, MaxDrawdown: -0.20, InactiveDays: 30}
}

// CheckWallet evaluates confidence, 7-day drawdown, and inactivity in order,
// mirroring AutoDisableChecker.check_wallet.
func (c *AutoDisableChecker) CheckWallet(confidenceScore, drawdown7d float64, lastTradeDaysAgo int) DisableCheckResult {
	if confidenceScore < c.MinConfidence {
		return DisableCheckResult{
			ShouldDisable: true,
			Reason:        fmt.Sprintf("Confidence score %.2f below threshold %.2f", confidenceScore, c.MinConfidence),
		}
	}

	if drawdown7d < c.MaxDrawdown {
		return DisableCheckResult{
			ShouldDisable: true,
			Reason:        fmt.Sprintf("Drawdown %.1f%% exceeds limit %.1f%%", drawdown7d*100, c.MaxDrawdown*100),
		}
	}

	if lastTradeDaysAgo > c.InactiveDays {
		return DisableCheckResult{
			ShouldDisable: true,
			Reason:        fmt.Sprintf("Inactive for %d days", lastTradeDaysAgo),
		}
	}

	return DisableCheckResult{ShouldDisable: false}
}
