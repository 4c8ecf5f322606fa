package safety_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/internal/volatile"
	"copytrader/pkg/safety"
)

type fakeStore struct {
	volatile.Store
	emergencyStop   volatile.EmergencyStop
	firstLiveAcked  bool
}

func (f *fakeStore) GetEmergencyStop(ctx context.Context) (*volatile.EmergencyStop, error) {
	es := f.emergencyStop
	return &es, nil
}

func (f *fakeStore) SetEmergencyStop(ctx context.Context, es volatile.EmergencyStop) error {
	f.emergencyStop = es
	return nil
}

func (f *fakeStore) ClearEmergencyStop(ctx context.Context) error {
	f.emergencyStop = volatile.EmergencyStop{Active: false}
	return nil
}

func (f *fakeStore) IsFirstLiveAcknowledged(ctx context.Context) (bool, error) {
	return f.firstLiveAcked, nil
}

func (f *fakeStore) AcknowledgeFirstLive(ctx context.Context) error {
	f.firstLiveAcked = true
	return nil
}

func TestGuard_CheckLiveModeAllowed_RequiresCredentials(t *testing.T) {
	g := safety.NewGuard(&fakeStore{})
	err := g.CheckLiveModeAllowed(context.Background(), false, true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, safety.ErrLiveModeBlocked))
	assert.Contains(t, err.Error(), "API credentials")
}

func TestGuard_CheckLiveModeAllowed_RequiresConfirmation(t *testing.T) {
	g := safety.NewGuard(&fakeStore{})
	err := g.CheckLiveModeAllowed(context.Background(), true, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explicit confirmation")
}

func TestGuard_CheckLiveModeAllowed_BlockedByEmergencyStop(t *testing.T) {
	store := &fakeStore{emergencyStop: volatile.EmergencyStop{Active: true, Reason: "manual halt"}}
	g := safety.NewGuard(store)
	err := g.CheckLiveModeAllowed(context.Background(), true, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "manual halt")
}

func TestGuard_CheckLiveModeAllowed_PassesAllChecks(t *testing.T) {
	g := safety.NewGuard(&fakeStore{})
	err := g.CheckLiveModeAllowed(context.Background(), true, true)
	assert.NoError(t, err)
}

func TestGuard_EmergencyStopLifecycle(t *testing.T) {
	store := &fakeStore{}
	g := safety.NewGuard(store)

	stopped, err := g.IsStopped(context.Background())
	require.NoError(t, err)
	assert.False(t, stopped)

	require.NoError(t, g.ActivateEmergencyStop(context.Background(), "test stop"))
	stopped, err = g.IsStopped(context.Background())
	require.NoError(t, err)
	assert.True(t, stopped)

	require.NoError(t, g.ResetEmergencyStop(context.Background()))
	stopped, err = g.IsStopped(context.Background())
	require.NoError(t, err)
	assert.False(t, stopped)
}

func TestGuard_FirstLiveTradeAcknowledgement(t *testing.T) {
	store := &fakeStore{}
	g := safety.NewGuard(store)

	needsWarning, err := g.CheckFirstLiveTrade(context.Background())
	require.NoError(t, err)
	assert.True(t, needsWarning)

	require.NoError(t, g.AcknowledgeFirstLiveTrade(context.Background()))

	needsWarning, err = g.CheckFirstLiveTrade(context.Background())
	require.NoError(t, err)
	assert.False(t, needsWarning)
}
