// Package execution implements the C10 executors: paper simulation, live
// order submission, and the mode-aware dispatcher that picks between them.
// Grounded on original_source's
// core/execution/{paper,live,mode_executor}.py.
package execution

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/pkg/advisor"
	"copytrader/pkg/decision"
	"copytrader/pkg/signal"
)

// ExposureCache tracks open exposure for paper fills, narrowed from
// internal/volatile.Store.
type ExposureCache interface {
	IncrOpenExposure(ctx context.Context, delta float64) (float64, error)
}

// PaperExecutor simulates trade execution without placing real orders,
// tracking exposure via the cache for risk management, grounded on
// PaperExecutor.
type PaperExecutor struct {
	cache ExposureCache
}

// NewPaperExecutor constructs a PaperExecutor over an exposure cache.
func NewPaperExecutor(cache ExposureCache) *PaperExecutor {
	return &PaperExecutor{cache: cache}
}

// Execute simulates a fill at the signal's price with the verdict's size,
// grounded verbatim on PaperExecutor.execute.
func (e *PaperExecutor) Execute(ctx context.Context, sig signal.TradeSignal, verdict advisor.Verdict) (decision.ExecutionResult, error) {
	if !verdict.Execute {
		logx.WithContext(ctx).Infof("execution: paper trade rejected: decision.execute=false, reason=%s", verdict.Reasoning)
		return decision.ExecutionResult{
			Success:   false,
			PaperMode: true,
			Message:   fmt.Sprintf("Trade rejected: %s", verdict.Reasoning),
		}, nil
	}

	executedSize := verdict.Size
	executedPrice := sig.Price

	if _, err := e.cache.IncrOpenExposure(ctx, executedSize); err != nil {
		return decision.ExecutionResult{}, fmt.Errorf("execution: update open exposure: %w", err)
	}

	logx.WithContext(ctx).Infof("execution: paper trade executed market=%s side=%s size=%.4f price=%.4f",
		sig.MarketID, sig.Side, executedSize, executedPrice)

	return decision.ExecutionResult{
		Success:       true,
		ExecutedSize:  executedSize,
		ExecutedPrice: executedPrice,
		PaperMode:     true,
		Message:       fmt.Sprintf("Paper trade executed: %s %.4f @ %.4f", sig.Side, executedSize, executedPrice),
	}, nil
}

var _ decision.Executor = (*PaperExecutor)(nil)
