package resolution_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/internal/model"
	"copytrader/pkg/resolution"
)

type fakeTradeStore struct {
	trades  []model.TradeRecord
	settled map[string]float64
}

func (f *fakeTradeStore) Unsettled(ctx context.Context, limit int) ([]model.TradeRecord, error) {
	return f.trades, nil
}

func (f *fakeTradeStore) MarkSettled(ctx context.Context, id string, realizedPnL float64) error {
	if f.settled == nil {
		f.settled = make(map[string]float64)
	}
	f.settled[id] = realizedPnL
	return nil
}

type fakeWalletMetricsStore struct {
	records map[string]*model.WalletMetricsRecord
}

func (f *fakeWalletMetricsStore) FindByWallet(ctx context.Context, address string) (*model.WalletMetricsRecord, error) {
	if f.records == nil {
		return nil, nil
	}
	return f.records[address], nil
}

func (f *fakeWalletMetricsStore) Upsert(ctx context.Context, rec *model.WalletMetricsRecord) error {
	if f.records == nil {
		f.records = make(map[string]*model.WalletMetricsRecord)
	}
	f.records[rec.WalletAddress] = rec
	return nil
}

type fakeMarketSource struct {
	resolutions map[string]*resolution.MarketResolution
}

func (f *fakeMarketSource) GetResolution(ctx context.Context, marketID string) (*resolution.MarketResolution, error) {
	return f.resolutions[marketID], nil
}

func TestWorker_RunOnce_SettlesWinningTrade(t *testing.T) {
	trades := &fakeTradeStore{trades: []model.TradeRecord{
		{ID: "t1", WalletAddress: "0xabc", MarketID: "m1", Side: "YES", Size: 100, Price: 0.4},
	}}
	metrics := &fakeWalletMetricsStore{}
	market := &fakeMarketSource{resolutions: map[string]*resolution.MarketResolution{
		"m1": {Closed: true, WinningSide: "YES"},
	}}

	w := resolution.NewWorker(trades, metrics, market, 0)
	n, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.InDelta(t, 60, trades.settled["t1"], 0.0001)
	assert.InDelta(t, 60, metrics.records["0xabc"].TotalPnL, 0.0001)
	assert.Equal(t, 1, metrics.records["0xabc"].WinningTrades)
}

func TestWorker_RunOnce_SettlesLosingTrade(t *testing.T) {
	trades := &fakeTradeStore{trades: []model.TradeRecord{
		{ID: "t2", WalletAddress: "0xabc", MarketID: "m1", Side: "NO", Size: 100, Price: 0.4},
	}}
	metrics := &fakeWalletMetricsStore{}
	market := &fakeMarketSource{resolutions: map[string]*resolution.MarketResolution{
		"m1": {Closed: true, WinningSide: "YES"},
	}}

	w := resolution.NewWorker(trades, metrics, market, 0)
	n, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.InDelta(t, -40, trades.settled["t2"], 0.0001)
}

func TestWorker_RunOnce_SkipsUnresolvedMarket(t *testing.T) {
	trades := &fakeTradeStore{trades: []model.TradeRecord{
		{ID: "t3", WalletAddress: "0xabc", MarketID: "m2", Side: "YES", Size: 100, Price: 0.4},
	}}
	metrics := &fakeWalletMetricsStore{}
	market := &fakeMarketSource{resolutions: map[string]*resolution.MarketResolution{
		"m2": {Closed: false},
	}}

	w := resolution.NewWorker(trades, metrics, market, 0)
	n, err := w.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, trades.settled)
}

func TestWorker_RunOnce_NoUnsettledTradesNoop(t *testing.T) {
	w := resolution.NewWorker(&fakeTradeStore{}, &fakeWalletMetricsStore{}, &fakeMarketSource{}, 0)
	n, err := w.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
