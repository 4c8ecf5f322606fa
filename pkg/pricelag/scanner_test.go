package pricelag_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/pricelag"
	"copytrader/pkg/signal"
	"copytrader/pkg/venue"
)

type fakeWatchlist struct {
	entries []pricelag.WatchEntry
}

func (f *fakeWatchlist) ListEnabled(ctx context.Context) ([]pricelag.WatchEntry, error) {
	return f.entries, nil
}

type fakeQuotes struct {
	quotes map[string]*venue.MarketQuote
}

func (f *fakeQuotes) GetQuote(ctx context.Context, marketID string) (*venue.MarketQuote, error) {
	return f.quotes[marketID], nil
}

func TestScanner_Scan_EmitsSignalForLaggingMarket(t *testing.T) {
	feed := pricelag.NewBinanceFeed()
	feed.SeedPrice("btcusdt", 50000)

	watchlist := &fakeWatchlist{entries: []pricelag.WatchEntry{
		{MarketID: "m1", MarketTitle: "BTC above 55k by Friday", CryptoSymbol: "btcusdt"},
	}}
	quotes := &fakeQuotes{quotes: map[string]*venue.MarketQuote{
		"m1": {YesPrice: 0.51},
	}}
	queue := signal.NewQueue(8, time.Minute)

	scanner := pricelag.NewScanner(feed, watchlist, quotes, pricelag.Config{MinPriceMove: 0.02, MaxMarketLag: 0.10}, queue)

	// First scan establishes the baseline price; no prior price means no
	// detectable change yet.
	_, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, queue.Len())

	// Binance price jumps 4%; market probability barely moved, so the
	// second scan should detect lag and enqueue a signal.
	feed.SeedPrice("btcusdt", 52000)
	opps, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "m1", opps[0].MarketID)
	assert.Equal(t, 1, queue.Len())
}

func TestScanner_Scan_SkipsMarketsWithoutCachedPrice(t *testing.T) {
	feed := pricelag.NewBinanceFeed()
	watchlist := &fakeWatchlist{entries: []pricelag.WatchEntry{
		{MarketID: "m1", CryptoSymbol: "ethusdt"},
	}}
	quotes := &fakeQuotes{quotes: map[string]*venue.MarketQuote{}}
	queue := signal.NewQueue(8, time.Minute)

	scanner := pricelag.NewScanner(feed, watchlist, quotes, pricelag.Config{}, queue)
	opps, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Empty(t, opps)
	assert.Equal(t, 0, queue.Len())
}
