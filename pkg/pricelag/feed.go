package pricelag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"
)

// binanceWSURL is Binance's combined-stream WebSocket endpoint, grounded on
// feed.py's BINANCE_WS_URL.
const binanceWSURL = "wss://stream.binance.com:9443"

// PriceUpdate is a real-time trade price from Binance, mirroring
// PriceUpdate.
type PriceUpdate struct {
	Symbol    string
	Price     float64
	Timestamp int64
}

// BinanceFeed is a combined-stream trade feed over gorilla/websocket,
// grounded on BinanceFeed. Reconnects are the caller's responsibility (see
// Run); the feed itself only maintains one connection at a time.
type BinanceFeed struct {
	baseURL string
	dialer  *websocket.Dialer

	mu     sync.RWMutex
	prices map[string]PriceUpdate
	conn   *websocket.Conn
}

// NewBinanceFeed constructs a feed against the production Binance endpoint.
func NewBinanceFeed() *BinanceFeed {
	return &BinanceFeed{baseURL: binanceWSURL, dialer: websocket.DefaultDialer, prices: make(map[string]PriceUpdate)}
}

// Connect dials the combined trade stream for the given symbols, grounded
// on BinanceFeed.connect.
func (f *BinanceFeed) Connect(ctx context.Context, symbols []string) error {
	streams := make([]string, len(symbols))
	for i, s := range symbols {
		streams[i] = strings.ToLower(s) + "@trade"
	}
	url := fmt.Sprintf("%s/stream?streams=%s", f.baseURL, strings.Join(streams, "/"))

	conn, _, err := f.dialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("pricelag: connect binance feed: %w", err)
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()
	logx.WithContext(ctx).Infof("pricelag: connected to binance, subscribed to %d symbols", len(symbols))
	return nil
}

// Disconnect closes the WebSocket connection, grounded on
// BinanceFeed.disconnect.
func (f *BinanceFeed) Disconnect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn == nil {
		return nil
	}
	err := f.conn.Close()
	f.conn = nil
	return err
}

// Run reads trade messages until ctx is cancelled or the connection errors,
// caching the latest price per symbol. Grounded on BinanceFeed._receive_loop
// and _process_message; the caller is expected to re-Connect and re-Run on
// error, matching the original's reconnect-on-failure posture.
func (f *BinanceFeed) Run(ctx context.Context) error {
	f.mu.RLock()
	conn := f.conn
	f.mu.RUnlock()
	if conn == nil {
		return fmt.Errorf("pricelag: binance feed not connected")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("pricelag: read binance message: %w", err)
		}
		f.processMessage(ctx, raw)
	}
}

// envelope unwraps Binance's combined-stream {"stream": ..., "data": ...}
// wrapper, grounded on the "if 'data' in data" branch in _receive_loop.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

type tradeMessage struct {
	EventType string `json:"e"`
	Symbol    string `json:"s"`
	Price     string `json:"p"`
	TradeTime int64  `json:"T"`
}

func (f *BinanceFeed) processMessage(ctx context.Context, raw []byte) {
	var env envelope
	body := raw
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 {
		body = env.Data
	}

	var msg tradeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		logx.WithContext(ctx).Errorf("pricelag: decode binance message: %v", err)
		return
	}
	if msg.EventType != "trade" {
		return
	}
	price, err := strconv.ParseFloat(msg.Price, 64)
	if err != nil {
		return
	}

	f.mu.Lock()
	f.prices[msg.Symbol] = PriceUpdate{Symbol: msg.Symbol, Price: price, Timestamp: msg.TradeTime}
	f.mu.Unlock()
}

// GetPrice returns the most recently cached trade price for a symbol,
// grounded on BinanceFeed.get_price.
func (f *BinanceFeed) GetPrice(symbol string) (PriceUpdate, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.prices[symbol]
	return v, ok
}

// SeedPrice sets the cached price for a symbol directly, bypassing the
// WebSocket connection. Exported for tests exercising Scanner against a
// feed that was never connected.
func (f *BinanceFeed) SeedPrice(symbol string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[symbol] = PriceUpdate{Symbol: symbol, Price: price}
}

// IsConnected reports whether a connection is currently established.
func (f *BinanceFeed) IsConnected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.conn != nil
}
