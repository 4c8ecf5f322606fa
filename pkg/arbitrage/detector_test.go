package arbitrage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/arbitrage"
	"copytrader/pkg/signal"
	"copytrader/pkg/venue"
)

type fakeMappings struct {
	mappings []venue.MarketMapping
}

func (f *fakeMappings) ListActive(ctx context.Context) ([]venue.MarketMapping, error) {
	return f.mappings, nil
}

type fakePrimary struct {
	venue.PrimaryProvider
	quote *venue.MarketQuote
}

func (f *fakePrimary) GetQuote(ctx context.Context, marketID string) (*venue.MarketQuote, error) {
	return f.quote, nil
}

type fakeSecondary struct {
	quote *venue.MarketQuote
}

func (f *fakeSecondary) GetQuote(ctx context.Context, marketID string) (*venue.MarketQuote, error) {
	return f.quote, nil
}

func (f *fakeSecondary) GetOrderBook(ctx context.Context, marketID string) (*venue.OrderBook, error) {
	return nil, nil
}

func TestDetector_Scan_FindsOpportunityAboveThreshold(t *testing.T) {
	mappings := &fakeMappings{mappings: []venue.MarketMapping{
		{PrimaryMarketID: "poly-1", SecondaryMarketID: "kalshi-1", Label: "test"},
	}}
	primary := &fakePrimary{quote: &venue.MarketQuote{YesPrice: 0.40}}
	secondary := &fakeSecondary{quote: &venue.MarketQuote{YesPrice: 0.50}}
	queue := signal.NewQueue(8, time.Minute)

	d := arbitrage.NewDetector(primary, secondary, mappings, arbitrage.Config{MinSpread: 0.03, MaxSignalSize: 100}, queue)
	opps, err := d.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, arbitrage.DirectionBuyYes, opps[0].Direction)
	assert.InDelta(t, 0.10, opps[0].Spread, 0.0001)

	assert.Equal(t, 1, queue.Len())
}

func TestDetector_Scan_IgnoresSmallSpread(t *testing.T) {
	mappings := &fakeMappings{mappings: []venue.MarketMapping{
		{PrimaryMarketID: "poly-1", SecondaryMarketID: "kalshi-1"},
	}}
	primary := &fakePrimary{quote: &venue.MarketQuote{YesPrice: 0.50}}
	secondary := &fakeSecondary{quote: &venue.MarketQuote{YesPrice: 0.51}}
	queue := signal.NewQueue(8, time.Minute)

	d := arbitrage.NewDetector(primary, secondary, mappings, arbitrage.Config{MinSpread: 0.03, MaxSignalSize: 100}, queue)
	opps, err := d.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, opps)
	assert.Equal(t, 0, queue.Len())
}

func TestDetector_Scan_NoMappingsReturnsEmpty(t *testing.T) {
	queue := signal.NewQueue(8, time.Minute)
	d := arbitrage.NewDetector(&fakePrimary{}, &fakeSecondary{}, &fakeMappings{}, arbitrage.Config{}, queue)
	opps, err := d.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, opps)
}
