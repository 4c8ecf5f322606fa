package risk_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/risk"
	"copytrader/pkg/venue"
)

func TestSlippageGuard_CalculateSlippage(t *testing.T) {
	g := risk.NewSlippageGuard(2.0)
	assert.InDelta(t, 2.0, g.CalculateSlippage(100, 102), 0.0001)
	assert.Equal(t, 0.0, g.CalculateSlippage(0, 50))
}

func TestSlippageGuard_CheckSlippage(t *testing.T) {
	g := risk.NewSlippageGuard(2.0)
	require.NoError(t, g.CheckSlippage(100, 101))
	err := g.CheckSlippage(100, 105)
	require.Error(t, err)
	assert.ErrorIs(t, err, risk.ErrSlippageExceeded)
}

func TestSlippageGuard_EstimateFillPrice_WalksBook(t *testing.T) {
	g := risk.NewSlippageGuard(5.0)
	book := venue.OrderBook{
		MarketID: "mkt-1",
		Asks: []venue.BookLevel{
			{Price: 0.50, Size: 100},
			{Price: 0.55, Size: 100},
		},
		AsOf: time.Now(),
	}
	price, err := g.EstimateFillPrice(book, venue.ActionBuy, 150)
	require.NoError(t, err)
	// 100 @ 0.50 + 50 @ 0.55 = 50 + 27.5 = 77.5 / 150
	assert.InDelta(t, 0.5167, price, 0.001)
}

func TestSlippageGuard_EstimateFillPrice_InsufficientLiquidity(t *testing.T) {
	g := risk.NewSlippageGuard(5.0)
	book := venue.OrderBook{
		MarketID: "mkt-1",
		Asks:     []venue.BookLevel{{Price: 0.5, Size: 10}},
	}
	_, err := g.EstimateFillPrice(book, venue.ActionBuy, 100)
	require.Error(t, err)
	assert.ErrorIs(t, err, risk.ErrInsufficientLiquidity)
}
