package execution

import (
	"context"
	"fmt"

	"copytrader/pkg/advisor"
	"copytrader/pkg/decision"
	"copytrader/pkg/orders"
	"copytrader/pkg/signal"
)

// LiveExecutor submits real orders to the primary venue via the order
// manager's retry-with-backoff submission, grounded on original_source's
// LiveExecutor/OrderManager collaboration (live.py, manager.py).
type LiveExecutor struct {
	manager *orders.Manager
}

// NewLiveExecutor wraps an orders.Manager as a decision.Executor.
func NewLiveExecutor(manager *orders.Manager) *LiveExecutor {
	return &LiveExecutor{manager: manager}
}

// IsConfigured reports whether this executor is ready to place live orders:
// true whenever an order manager is attached. Credentials are not checked
// here; ModeAwareExecutor checks them separately.
func (e *LiveExecutor) IsConfigured() bool {
	return e.manager != nil
}

// Execute creates and submits a live order for the signal, returning its
// final state as an ExecutionResult.
func (e *LiveExecutor) Execute(ctx context.Context, sig signal.TradeSignal, verdict advisor.Verdict) (decision.ExecutionResult, error) {
	order, err := e.manager.CreateOrder(ctx, sig.ID, sig.MarketID, string(sig.Side), verdict.Size, sig.Price, 3)
	if err != nil {
		return decision.ExecutionResult{}, fmt.Errorf("execution: create live order: %w", err)
	}

	final, err := e.manager.ExecuteWithRetry(ctx, order)
	if err != nil {
		return decision.ExecutionResult{}, fmt.Errorf("execution: submit live order: %w", err)
	}

	success := final.Status == orders.StatusFilled || final.Status == orders.StatusPartial
	price := 0.0
	if final.FilledPrice != nil {
		price = *final.FilledPrice
	}

	message := fmt.Sprintf("Live trade %s", final.Status)
	if !success {
		message = fmt.Sprintf("Live execution failed: %s", final.FailureReason)
	}

	return decision.ExecutionResult{
		Success:       success,
		ExecutedSize:  final.FilledSize,
		ExecutedPrice: price,
		PaperMode:     false,
		Message:       message,
		VenueOrderID:  final.ExternalID,
	}, nil
}

var _ decision.Executor = (*LiveExecutor)(nil)
