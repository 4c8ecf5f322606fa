// Package venue defines the exchange-agnostic trading surface copytrader
// drives: one primary venue capable of order placement (C3 primary adapter)
// and any number of secondary, read-only venues used only for cross-venue
// price comparison (C3 secondary adapter, C5 arbitrage).
package venue

import (
	"context"
	"time"
)

// OrderSide mirrors the outcome side of a prediction-market order.
type OrderSide string

const (
	SideYes OrderSide = "YES"
	SideNo  OrderSide = "NO"
)

// OrderAction is the trade direction independent of outcome side.
type OrderAction string

const (
	ActionBuy  OrderAction = "BUY"
	ActionSell OrderAction = "SELL"
)

// OrderRequest describes an order to place on the primary venue.
type OrderRequest struct {
	MarketID   string
	Side       OrderSide
	Action     OrderAction
	Size       float64
	LimitPrice float64
	ClientID   string // idempotency token, see pkg/orders
}

// OrderStatus is the venue-reported normalized lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusOpen      OrderStatus = "open"
	StatusFilled    OrderStatus = "filled"
	StatusPartial   OrderStatus = "partial"
	StatusCancelled OrderStatus = "cancelled"
	StatusFailed    OrderStatus = "failed"
)

// OrderResponse is the venue's normalized reply to an order submission or
// status query, grounded on original_source's live.py response parsing.
type OrderResponse struct {
	VenueOrderID  string
	Status        OrderStatus
	FilledSize    float64
	RemainingSize float64
	AvgFillPrice  float64
	RawStatus     string
	SubmittedAt   time.Time
}

// BookLevel is a single price/size level of an order book side.
type BookLevel struct {
	Price float64
	Size  float64
}

// OrderBook is a normalized snapshot of bid/ask levels for a market.
type OrderBook struct {
	MarketID string
	Bids     []BookLevel // best first (highest price)
	Asks     []BookLevel // best first (lowest price)
	AsOf     time.Time
}

// BestBidAsk returns the top of book, or zero values if a side is empty.
func (b OrderBook) BestBidAsk() (bid, ask float64) {
	if len(b.Bids) > 0 {
		bid = b.Bids[0].Price
	}
	if len(b.Asks) > 0 {
		ask = b.Asks[0].Price
	}
	return bid, ask
}

// MarketQuote is a lightweight price/liquidity snapshot used by C5/C7.
type MarketQuote struct {
	MarketID  string
	YesPrice  float64
	NoPrice   float64
	Liquidity float64
	Volume24h float64
	AsOf      time.Time
}

// WalletFill is a single trade executed by a followed wallet, as reported by
// a venue's activity feed (C4 signal ingestion raw input).
type WalletFill struct {
	TxHash    string
	Wallet    string
	MarketID  string
	Side      OrderSide
	Action    OrderAction
	Price     float64
	Size      float64
	Timestamp time.Time
}

// PrimaryProvider is the tradable venue: order placement, cancellation and
// account/position queries. Grounded on the teacher's pkg/exchange.Provider
// shape, generalized from perpetuals to prediction markets.
type PrimaryProvider interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (*OrderResponse, error)
	CancelOrder(ctx context.Context, venueOrderID string) error
	GetOrder(ctx context.Context, venueOrderID string) (*OrderResponse, error)
	GetOrderBook(ctx context.Context, marketID string) (*OrderBook, error)
	GetQuote(ctx context.Context, marketID string) (*MarketQuote, error)
	GetAccountValue(ctx context.Context) (float64, error)

	// WalletActivity returns fills for the given wallet strictly after
	// sinceUnixMs, ordered oldest first. Used by the signal ingester (C4).
	WalletActivity(ctx context.Context, wallet string, sinceUnixMs int64) ([]WalletFill, error)

	// GetResolution reports whether a market has settled and, if so, which
	// side won. Used by the resolution worker (C13).
	GetResolution(ctx context.Context, marketID string) (*MarketResolution, error)
}

// MarketResolution is the settlement outcome of a prediction market,
// grounded on original_source's resolution.py market-status lookup.
type MarketResolution struct {
	Closed      bool
	WinningSide OrderSide
}

// SecondaryProvider is a read-only venue used for cross-venue price
// comparison (C3 secondary adapter, C5 arbitrage detector).
type SecondaryProvider interface {
	GetQuote(ctx context.Context, marketID string) (*MarketQuote, error)
	GetOrderBook(ctx context.Context, marketID string) (*OrderBook, error)
}

// MarketMapping links an equivalent market across venues, grounded on
// original_source's MarketNormalizer.find_equivalent_markets.
type MarketMapping struct {
	ID              string
	PrimaryMarketID string
	SecondaryMarketID string
	Label           string
}
