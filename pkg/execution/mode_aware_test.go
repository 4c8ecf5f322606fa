package execution_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/internal/volatile"
	"copytrader/pkg/advisor"
	"copytrader/pkg/decision"
	"copytrader/pkg/execution"
	"copytrader/pkg/orders"
	"copytrader/pkg/safety"
	"copytrader/pkg/signal"
)

type fakeModeStore struct {
	volatile.Store
	mode          string
	emergencyStop volatile.EmergencyStop
	liveConfirmed bool
}

func (f *fakeModeStore) GetMode(ctx context.Context) (string, error) {
	return f.mode, nil
}

func (f *fakeModeStore) GetEmergencyStop(ctx context.Context) (*volatile.EmergencyStop, error) {
	es := f.emergencyStop
	return &es, nil
}

func (f *fakeModeStore) GetLiveConfirmed(ctx context.Context) (bool, error) {
	return f.liveConfirmed, nil
}

type fakePaperExecutor struct {
	called bool
	result decision.ExecutionResult
}

func (f *fakePaperExecutor) Execute(ctx context.Context, sig signal.TradeSignal, verdict advisor.Verdict) (decision.ExecutionResult, error) {
	f.called = true
	return f.result, nil
}

func TestModeAwareExecutor_PaperModeUsesPaperExecutor(t *testing.T) {
	store := &fakeModeStore{mode: "paper"}
	guard := safety.NewGuard(store)
	paper := &fakePaperExecutor{result: decision.ExecutionResult{Success: true, PaperMode: true}}

	executor := execution.NewModeAwareExecutor(store, guard, paper, nil, false)
	result, err := executor.Execute(context.Background(), signal.TradeSignal{}, advisor.ApproveVerdict(10, 0.5, "ok", advisor.UrgencyNormal))

	require.NoError(t, err)
	assert.True(t, paper.called)
	assert.True(t, result.PaperMode)
}

func TestModeAwareExecutor_LiveModeWithoutLiveExecutorFallsBackToPaper(t *testing.T) {
	store := &fakeModeStore{mode: "live"}
	guard := safety.NewGuard(store)
	paper := &fakePaperExecutor{result: decision.ExecutionResult{Success: true, PaperMode: true}}

	executor := execution.NewModeAwareExecutor(store, guard, paper, nil, true)
	result, err := executor.Execute(context.Background(), signal.TradeSignal{}, advisor.ApproveVerdict(10, 0.5, "ok", advisor.UrgencyNormal))

	require.NoError(t, err)
	assert.True(t, paper.called)
	assert.True(t, result.PaperMode)
}

type fakeOrderStore struct{}

func (fakeOrderStore) SaveOrder(ctx context.Context, orderID string, v any) error { return nil }
func (fakeOrderStore) GetOrder(ctx context.Context, orderID string, out any) (bool, error) {
	return false, nil
}

func TestModeAwareExecutor_LiveModeWithoutConfirmationFallsBackToPaper(t *testing.T) {
	store := &fakeModeStore{mode: "live", liveConfirmed: false}
	guard := safety.NewGuard(store)
	paper := &fakePaperExecutor{result: decision.ExecutionResult{Success: true, PaperMode: true}}
	live := execution.NewLiveExecutor(orders.NewManager(fakeOrderStore{}, nil, time.Second, 2.0))

	executor := execution.NewModeAwareExecutor(store, guard, paper, live, true)
	result, err := executor.Execute(context.Background(), signal.TradeSignal{}, advisor.ApproveVerdict(10, 0.5, "ok", advisor.UrgencyNormal))

	require.NoError(t, err)
	assert.True(t, paper.called)
	assert.True(t, result.PaperMode)
}

func TestModeAwareExecutor_LiveModeBlockedByEmergencyStop(t *testing.T) {
	store := &fakeModeStore{mode: "live", liveConfirmed: true, emergencyStop: volatile.EmergencyStop{Active: true, Reason: "halt"}}
	guard := safety.NewGuard(store)
	paper := &fakePaperExecutor{}
	live := execution.NewLiveExecutor(orders.NewManager(fakeOrderStore{}, nil, time.Second, 2.0))

	executor := execution.NewModeAwareExecutor(store, guard, paper, live, true)
	result, err := executor.Execute(context.Background(), signal.TradeSignal{}, advisor.ApproveVerdict(10, 0.5, "ok", advisor.UrgencyNormal))

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.False(t, paper.called)
	assert.Contains(t, result.Message, "halt")
}
