// Package safety implements the C12 safety guard: credential checks, live
// mode confirmation, emergency stop, and the first-live-trade
// acknowledgement gate. Grounded on original_source's
// core/execution/safety.py SafetyGuard.
package safety

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/internal/volatile"
)

// ErrLiveModeBlocked is returned whenever a live-mode precondition is not
// met, grounded on LiveModeBlockedError.
var ErrLiveModeBlocked = errors.New("safety: live mode blocked")

// blockedError wraps ErrLiveModeBlocked with the specific reason, so callers
// can both errors.Is(err, ErrLiveModeBlocked) and read the message.
type blockedError struct {
	reason string
}

func (e *blockedError) Error() string { return e.reason }
func (e *blockedError) Unwrap() error { return ErrLiveModeBlocked }

func blocked(format string, args ...interface{}) error {
	return &blockedError{reason: fmt.Sprintf(format, args...)}
}

// Guard guards against unsafe execution conditions, grounded on
// SafetyGuard.
type Guard struct {
	store volatile.Store
}

// NewGuard constructs a Guard over the volatile store.
func NewGuard(store volatile.Store) *Guard {
	return &Guard{store: store}
}

// CheckLiveModeAllowed verifies credentials, live-mode confirmation, and the
// emergency stop, in that order, grounded verbatim on
// check_live_mode_allowed.
func (g *Guard) CheckLiveModeAllowed(ctx context.Context, hasCredentials, liveConfirmed bool) error {
	if !hasCredentials {
		return blocked("Live mode requires API credentials. Configure the primary venue's API key and secret.")
	}
	if !liveConfirmed {
		return blocked("Live mode requires explicit confirmation. Set live_mode_confirmed=true in settings.")
	}
	return g.CheckExecutionAllowed(ctx)
}

// CheckExecutionAllowed returns ErrLiveModeBlocked if an emergency stop is
// active, grounded on check_execution_allowed.
func (g *Guard) CheckExecutionAllowed(ctx context.Context) error {
	es, err := g.store.GetEmergencyStop(ctx)
	if err != nil {
		return fmt.Errorf("safety: get emergency stop: %w", err)
	}
	if es.Active {
		return blocked("Execution blocked by emergency stop: %s", es.Reason)
	}
	return nil
}

// ActivateEmergencyStop halts all execution until ResetEmergencyStop is
// called, grounded on activate_emergency_stop.
func (g *Guard) ActivateEmergencyStop(ctx context.Context, reason string) error {
	logx.WithContext(ctx).Errorf("safety: EMERGENCY STOP ACTIVATED: %s", reason)
	return g.store.SetEmergencyStop(ctx, volatile.EmergencyStop{
		Active: true,
		Reason: reason,
		Time:   time.Now().UTC(),
	})
}

// ResetEmergencyStop clears an active emergency stop, grounded on
// reset_emergency_stop.
func (g *Guard) ResetEmergencyStop(ctx context.Context) error {
	logx.WithContext(ctx).Info("safety: emergency stop reset")
	return g.store.ClearEmergencyStop(ctx)
}

// IsStopped reports whether an emergency stop is currently active.
func (g *Guard) IsStopped(ctx context.Context) (bool, error) {
	es, err := g.store.GetEmergencyStop(ctx)
	if err != nil {
		return false, fmt.Errorf("safety: get emergency stop: %w", err)
	}
	return es.Active, nil
}

// CheckFirstLiveTrade reports whether the first-live-trade warning still
// needs acknowledgement, grounded on check_first_live_trade.
func (g *Guard) CheckFirstLiveTrade(ctx context.Context) (bool, error) {
	acked, err := g.store.IsFirstLiveAcknowledged(ctx)
	if err != nil {
		return false, fmt.Errorf("safety: check first-live ack: %w", err)
	}
	return !acked, nil
}

// AcknowledgeFirstLiveTrade records that the operator acknowledged the
// first-live-trade warning, grounded on acknowledge_first_live_trade.
func (g *Guard) AcknowledgeFirstLiveTrade(ctx context.Context) error {
	logx.WithContext(ctx).Info("safety: first live trade warning acknowledged")
	return g.store.AcknowledgeFirstLive(ctx)
}
