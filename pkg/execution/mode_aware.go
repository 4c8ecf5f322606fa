package execution

import (
	"context"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/pkg/advisor"
	"copytrader/pkg/decision"
	"copytrader/pkg/safety"
	"copytrader/pkg/signal"
)

// ModeCache reads the system's current paper/live mode, narrowed from
// internal/volatile.Store.
type ModeCache interface {
	GetMode(ctx context.Context) (string, error)
	GetLiveConfirmed(ctx context.Context) (bool, error)
}

const liveMode = "live"

// ModeAwareExecutor dispatches to the paper or live executor based on the
// current system mode, enforcing safety checks before any live execution.
// Grounded on ModeAwareExecutor.
type ModeAwareExecutor struct {
	cache    ModeCache
	guard    *safety.Guard
	paper    decision.Executor
	live     *LiveExecutor
	hasCreds bool
}

// NewModeAwareExecutor wires mode detection, safety checks, and both
// executors. live may be nil if live trading credentials are not
// configured; hasCredentials should reflect whether the primary venue
// client was constructed with real API credentials.
func NewModeAwareExecutor(cache ModeCache, guard *safety.Guard, paper decision.Executor, live *LiveExecutor, hasCredentials bool) *ModeAwareExecutor {
	return &ModeAwareExecutor{cache: cache, guard: guard, paper: paper, live: live, hasCreds: hasCredentials}
}

// Execute selects paper or live execution based on the cached mode,
// grounded verbatim on ModeAwareExecutor.execute's fallback chain: no live
// executor configured, live mode unconfirmed, or emergency stop active all
// fall back to paper mode (the latter instead returns a blocked result).
func (e *ModeAwareExecutor) Execute(ctx context.Context, sig signal.TradeSignal, verdict advisor.Verdict) (decision.ExecutionResult, error) {
	mode, err := e.cache.GetMode(ctx)
	if err != nil {
		return decision.ExecutionResult{}, fmt.Errorf("execution: get mode: %w", err)
	}

	if mode != liveMode {
		logx.WithContext(ctx).Debug("execution: executing in paper mode")
		return e.paper.Execute(ctx, sig, verdict)
	}
	return e.executeLive(ctx, sig, verdict)
}

func (e *ModeAwareExecutor) executeLive(ctx context.Context, sig signal.TradeSignal, verdict advisor.Verdict) (decision.ExecutionResult, error) {
	if e.live == nil || !e.live.IsConfigured() {
		logx.WithContext(ctx).Info("execution: live executor not configured, falling back to paper mode")
		return e.paper.Execute(ctx, sig, verdict)
	}

	if !e.hasCreds {
		logx.WithContext(ctx).Info("execution: live mode requires API credentials, falling back to paper mode")
		return e.paper.Execute(ctx, sig, verdict)
	}

	liveConfirmed, err := e.cache.GetLiveConfirmed(ctx)
	if err != nil {
		return decision.ExecutionResult{}, fmt.Errorf("execution: get live confirmed: %w", err)
	}
	if !liveConfirmed {
		logx.WithContext(ctx).Info("execution: live mode not confirmed, falling back to paper mode")
		return e.paper.Execute(ctx, sig, verdict)
	}

	if err := e.guard.CheckExecutionAllowed(ctx); err != nil {
		if !errors.Is(err, safety.ErrLiveModeBlocked) {
			return decision.ExecutionResult{}, fmt.Errorf("execution: check emergency stop: %w", err)
		}
		return decision.ExecutionResult{
			Success:   false,
			PaperMode: false,
			Message:   err.Error(),
		}, nil
	}

	logx.WithContext(ctx).Infof("execution: executing LIVE trade market=%s side=%s size=%.4f", sig.MarketID, sig.Side, verdict.Size)
	result, err := e.live.Execute(ctx, sig, verdict)
	if err != nil {
		logx.WithContext(ctx).Errorf("execution: live execution failed: %v", err)
		return decision.ExecutionResult{
			Success:   false,
			PaperMode: false,
			Message:   fmt.Sprintf("Live execution failed: %s", err),
		}, nil
	}
	return result, nil
}

var _ decision.Executor = (*ModeAwareExecutor)(nil)
