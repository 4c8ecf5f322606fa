package risk_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/advisor"
	"copytrader/pkg/risk"
)

type fakeCache struct {
	dailyPnL     float64
	openExposure float64
}

func (f *fakeCache) GetDailyPnL(ctx context.Context, date string) (float64, error) {
	return f.dailyPnL, nil
}

func (f *fakeCache) GetOpenExposure(ctx context.Context) (float64, error) {
	return f.openExposure, nil
}

func baseConfig() risk.Config {
	return risk.Config{
		MaxDailyLoss:     500,
		MaxTotalExposure: 1000,
		MaxSingleTrade:   200,
		MaxSlippagePct:   5,
	}
}

func TestManager_Validate_PassesThroughRejection(t *testing.T) {
	m := risk.NewManager(&fakeCache{}, baseConfig())
	v, err := m.Validate(context.Background(), advisor.RejectVerdict("no edge"))
	require.NoError(t, err)
	assert.False(t, v.Execute)
}

func TestManager_Validate_BlocksOnDailyLoss(t *testing.T) {
	cache := &fakeCache{dailyPnL: -600}
	m := risk.NewManager(cache, baseConfig())
	v, err := m.Validate(context.Background(), advisor.ApproveVerdict(100, 0.8, "good signal", advisor.UrgencyNormal))
	require.NoError(t, err)
	assert.False(t, v.Execute)
	assert.Contains(t, v.Reasoning, "daily_loss_exceeded")
}

func TestManager_Validate_CapsTradeSize(t *testing.T) {
	cache := &fakeCache{dailyPnL: 0, openExposure: 0}
	m := risk.NewManager(cache, baseConfig())
	v, err := m.Validate(context.Background(), advisor.ApproveVerdict(500, 0.8, "good signal", advisor.UrgencyNormal))
	require.NoError(t, err)
	assert.True(t, v.Execute)
	assert.Equal(t, 200.0, v.Size)
	assert.Contains(t, v.Reasoning, "Size adjusted")
}

func TestManager_Validate_BlocksOnExposureExceeded(t *testing.T) {
	cache := &fakeCache{dailyPnL: 0, openExposure: 1000}
	m := risk.NewManager(cache, baseConfig())
	v, err := m.Validate(context.Background(), advisor.ApproveVerdict(50, 0.8, "good signal", advisor.UrgencyNormal))
	require.NoError(t, err)
	assert.False(t, v.Execute)
	assert.Contains(t, v.Reasoning, "exposure_exceeded")
}

func TestManager_Validate_ReducesToRemainingCapacity(t *testing.T) {
	cache := &fakeCache{dailyPnL: 0, openExposure: 950}
	m := risk.NewManager(cache, baseConfig())
	v, err := m.Validate(context.Background(), advisor.ApproveVerdict(100, 0.8, "good signal", advisor.UrgencyNormal))
	require.NoError(t, err)
	assert.True(t, v.Execute)
	assert.Equal(t, 50.0, v.Size)
}

func TestManager_ValidateSlippage_BlocksOverThreshold(t *testing.T) {
	m := risk.NewManager(&fakeCache{}, baseConfig())
	v := m.ValidateSlippage(advisor.ApproveVerdict(100, 0.8, "good signal", advisor.UrgencyNormal), 7.5)
	assert.False(t, v.Execute)
	assert.Contains(t, v.Reasoning, "slippage_exceeded")
}

func TestManager_ValidateSlippage_PassesUnderThreshold(t *testing.T) {
	m := risk.NewManager(&fakeCache{}, baseConfig())
	verdict := advisor.ApproveVerdict(100, 0.8, "good signal", advisor.UrgencyNormal)
	v := m.ValidateSlippage(verdict, 1.0)
	assert.True(t, v.Execute)
	assert.Equal(t, verdict, v)
}
