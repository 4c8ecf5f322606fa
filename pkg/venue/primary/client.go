// Package primary implements venue.PrimaryProvider against a CLOB-style
// REST API (order book, order placement, wallet activity feed), grounded on
// 0xtitan6-polymarket-mm's resty-based client and original_source's
// data/polymarket/{markets,watcher,data_api}.py request shapes.
package primary

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"copytrader/pkg/venue"
)

// Client is a resty-backed venue.PrimaryProvider implementation.
type Client struct {
	http       *resty.Client
	dataAPI    *resty.Client
	apiKey     string
	apiSecret  string
	passphrase string
}

// New constructs a Client from the venue primary config.
func New(cfg venue.PrimaryConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	dataAPI := resty.New().
		SetBaseURL(firstNonEmpty(cfg.DataAPIURL, cfg.BaseURL)).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:       http,
		dataAPI:    dataAPI,
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		passphrase: cfg.Passphrase,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// sign builds the HMAC-SHA256 auth headers the CLOB-style API expects:
// timestamp + method + path + body signed with the API secret.
func (c *Client) sign(method, path, body string) (map[string]string, error) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	message := ts + method + path + body
	secretBytes, err := base64.StdEncoding.DecodeString(c.apiSecret)
	if err != nil {
		// Fall back to treating the secret as raw bytes, matching clients
		// that ship a plain (non-base64) secret.
		secretBytes = []byte(c.apiSecret)
	}
	mac := hmac.New(sha256.New, secretBytes)
	mac.Write([]byte(message))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return map[string]string{
		"POLY-API-KEY":        c.apiKey,
		"POLY-PASSPHRASE":     c.passphrase,
		"POLY-TIMESTAMP":      ts,
		"POLY-SIGNATURE":      sig,
		"Content-Type":        "application/json",
	}, nil
}

type orderRequestBody struct {
	MarketID string  `json:"market_id"`
	Side     string  `json:"side"`
	Action   string  `json:"action"`
	Size     string  `json:"size"`
	Price    string  `json:"price"`
	ClientID string  `json:"client_order_id"`
}

type orderResponseBody struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	FilledSize    string `json:"filled_size"`
	RemainingSize string `json:"remaining_size"`
	AvgFillPrice  string `json:"avg_fill_price"`
}

// PlaceOrder submits a signed order and normalizes the venue's raw status
// the same way original_source's LiveExecutor._parse_order_response does:
// MATCHED -> filled; OPEN/PENDING with partial fill -> partial;
// CANCELLED/EXPIRED -> cancelled; REJECTED/FAILED -> failed; else pending.
func (c *Client) PlaceOrder(ctx context.Context, req venue.OrderRequest) (*venue.OrderResponse, error) {
	body := orderRequestBody{
		MarketID: req.MarketID,
		Side:     string(req.Side),
		Action:   string(req.Action),
		Size:     decimal.NewFromFloat(req.Size).String(),
		Price:    decimal.NewFromFloat(req.LimitPrice).String(),
		ClientID: req.ClientID,
	}
	raw, _ := json.Marshal(body)
	headers, err := c.sign("POST", "/orders", string(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: sign request: %v", venue.ErrAuth, err)
	}

	var out orderResponseBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(body).
		SetResult(&out).
		Post("/orders")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if classifyStatus(resp.StatusCode()) != "" {
		return nil, classifyHTTPError(resp.StatusCode())
	}
	return normalizeOrderResponse(out), nil
}

// CancelOrder cancels an open order by venue order ID.
func (c *Client) CancelOrder(ctx context.Context, venueOrderID string) error {
	path := "/orders/" + venueOrderID
	headers, err := c.sign("DELETE", path, "")
	if err != nil {
		return fmt.Errorf("%w: sign request: %v", venue.ErrAuth, err)
	}
	resp, err := c.http.R().SetContext(ctx).SetHeaders(headers).Delete(path)
	if err != nil {
		return fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return classifyHTTPError(resp.StatusCode())
	}
	return nil
}

// GetOrder fetches the current state of a previously placed order.
func (c *Client) GetOrder(ctx context.Context, venueOrderID string) (*venue.OrderResponse, error) {
	path := "/orders/" + venueOrderID
	headers, err := c.sign("GET", path, "")
	if err != nil {
		return nil, fmt.Errorf("%w: sign request: %v", venue.ErrAuth, err)
	}
	var out orderResponseBody
	resp, err := c.http.R().SetContext(ctx).SetHeaders(headers).SetResult(&out).Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyHTTPError(resp.StatusCode())
	}
	return normalizeOrderResponse(out), nil
}

type bookResponseBody struct {
	Bids [][2]string `json:"bids"`
	Asks [][2]string `json:"asks"`
}

// GetOrderBook fetches the current book for a market.
func (c *Client) GetOrderBook(ctx context.Context, marketID string) (*venue.OrderBook, error) {
	var out bookResponseBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("market_id", marketID).
		SetResult(&out).
		Get("/book")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyHTTPError(resp.StatusCode())
	}
	book := &venue.OrderBook{MarketID: marketID, AsOf: time.Now()}
	for _, lvl := range out.Bids {
		book.Bids = append(book.Bids, toLevel(lvl))
	}
	for _, lvl := range out.Asks {
		book.Asks = append(book.Asks, toLevel(lvl))
	}
	return book, nil
}

func toLevel(lvl [2]string) venue.BookLevel {
	price, _ := decimal.NewFromString(lvl[0]).Float64()
	size, _ := decimal.NewFromString(lvl[1]).Float64()
	return venue.BookLevel{Price: price, Size: size}
}

type quoteResponseBody struct {
	MarketID  string `json:"market_id"`
	YesPrice  string `json:"yes_price"`
	NoPrice   string `json:"no_price"`
	Liquidity string `json:"liquidity"`
	Volume24h string `json:"volume_24h"`
}

// GetQuote fetches the latest yes/no mid-prices and liquidity, grounded on
// original_source's MarketDataService.get_price_cached/get_liquidity.
func (c *Client) GetQuote(ctx context.Context, marketID string) (*venue.MarketQuote, error) {
	var out quoteResponseBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("market_id", marketID).
		SetResult(&out).
		Get("/markets/quote")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyHTTPError(resp.StatusCode())
	}
	yes, _ := decimal.NewFromString(firstNonEmpty(out.YesPrice, "0")).Float64()
	no, _ := decimal.NewFromString(firstNonEmpty(out.NoPrice, "0")).Float64()
	liq, _ := decimal.NewFromString(firstNonEmpty(out.Liquidity, "0")).Float64()
	vol, _ := decimal.NewFromString(firstNonEmpty(out.Volume24h, "0")).Float64()
	return &venue.MarketQuote{
		MarketID:  marketID,
		YesPrice:  yes,
		NoPrice:   no,
		Liquidity: liq,
		Volume24h: vol,
		AsOf:      time.Now(),
	}, nil
}

type accountBody struct {
	Value string `json:"account_value"`
}

// GetAccountValue reports the trading account's net liquidation value.
func (c *Client) GetAccountValue(ctx context.Context) (float64, error) {
	var out accountBody
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/account")
	if err != nil {
		return 0, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return 0, classifyHTTPError(resp.StatusCode())
	}
	v, _ := decimal.NewFromString(firstNonEmpty(out.Value, "0")).Float64()
	return v, nil
}

type activityEntry struct {
	TxHash    string `json:"transaction_hash"`
	Wallet    string `json:"proxy_wallet"`
	MarketID  string `json:"condition_id"`
	Side      string `json:"outcome"`
	Action    string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp int64  `json:"timestamp"`
}

// WalletActivity polls the public activity feed for a wallet's fills since
// sinceUnixMs, grounded on original_source's data/polymarket/watcher.py
// _poll_wallet and data_api.py response shape. Both `side` (outcome,
// YES/NO) and `action` (BUY/SELL) are preserved distinctly, per spec's
// requirement that action drives C10 open/close accounting while side
// drives C13 settlement P&L -- a distinction watcher.py itself collapses
// but the wire format here keeps separate.
func (c *Client) WalletActivity(ctx context.Context, wallet string, sinceUnixMs int64) ([]venue.WalletFill, error) {
	var out []activityEntry
	resp, err := c.dataAPI.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"user":  wallet,
			"since": strconv.FormatInt(sinceUnixMs, 10),
		}).
		SetResult(&out).
		Get("/activity")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyHTTPError(resp.StatusCode())
	}

	fills := make([]venue.WalletFill, 0, len(out))
	for _, e := range out {
		price, _ := decimal.NewFromString(firstNonEmpty(e.Price, "0")).Float64()
		size, _ := decimal.NewFromString(firstNonEmpty(e.Size, "0")).Float64()
		fills = append(fills, venue.WalletFill{
			TxHash:    e.TxHash,
			Wallet:    wallet,
			MarketID:  e.MarketID,
			Side:      parseSide(e.Side),
			Action:    parseAction(e.Action),
			Price:     price,
			Size:      size,
			Timestamp: time.UnixMilli(e.Timestamp),
		})
	}
	return fills, nil
}

type marketStatusBody struct {
	Closed bool   `json:"closed"`
	Winner string `json:"winner"`
}

// GetResolution reports a market's settlement status, grounded on
// original_source's interfaces/api/routes/resolution.py calculate_pnl,
// which fetches each unique market's CLOB status and reads the `closed`
// flag and winning token before computing P&L. Only the winner labels YES
// and NO are accepted; a closed market with any other label returns an
// ErrVenue error instead of a winning side.
func (c *Client) GetResolution(ctx context.Context, marketID string) (*venue.MarketResolution, error) {
	var out marketStatusBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/markets/" + marketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyHTTPError(resp.StatusCode())
	}
	if !out.Closed {
		return &venue.MarketResolution{Closed: false}, nil
	}
	switch side := venue.OrderSide(out.Winner); side {
	case venue.SideYes, venue.SideNo:
		return &venue.MarketResolution{Closed: true, WinningSide: side}, nil
	}
	return nil, fmt.Errorf("%w: market %s closed with unrecognized outcome label %q", venue.ErrVenue, marketID, out.Winner)
}

func parseSide(raw string) venue.OrderSide {
	if raw == string(venue.SideNo) {
		return venue.SideNo
	}
	return venue.SideYes
}

func parseAction(raw string) venue.OrderAction {
	if raw == string(venue.ActionSell) {
		return venue.ActionSell
	}
	return venue.ActionBuy
}

// normalizeOrderResponse maps a raw venue status string onto
// venue.OrderStatus, following original_source's LiveExecutor verbatim:
// MATCHED -> filled; OPEN/PENDING with matched_size>0 -> partial;
// CANCELLED/EXPIRED -> cancelled; REJECTED/FAILED -> failed; else pending.
func normalizeOrderResponse(raw orderResponseBody) *venue.OrderResponse {
	filled, _ := decimal.NewFromString(firstNonEmpty(raw.FilledSize, "0")).Float64()
	remaining, _ := decimal.NewFromString(firstNonEmpty(raw.RemainingSize, "0")).Float64()
	avgPrice, _ := decimal.NewFromString(firstNonEmpty(raw.AvgFillPrice, "0")).Float64()

	var status venue.OrderStatus
	switch raw.Status {
	case "MATCHED":
		status = venue.StatusFilled
	case "OPEN", "PENDING":
		if filled > 0 {
			status = venue.StatusPartial
		} else {
			status = venue.StatusPending
		}
	case "CANCELLED", "EXPIRED":
		status = venue.StatusCancelled
	case "REJECTED", "FAILED":
		status = venue.StatusFailed
	default:
		status = venue.StatusPending
	}

	return &venue.OrderResponse{
		VenueOrderID:  raw.OrderID,
		Status:        status,
		FilledSize:    filled,
		RemainingSize: remaining,
		AvgFillPrice:  avgPrice,
		RawStatus:     raw.Status,
		SubmittedAt:   time.Now(),
	}
}

func classifyStatus(code int) string {
	if code >= 300 {
		return "error"
	}
	return ""
}

func classifyHTTPError(code int) error {
	switch {
	case code == 401 || code == 403:
		return venue.ErrAuth
	case code == 404:
		return venue.ErrNotFound
	case code == 429:
		return venue.ErrRateLimit
	default:
		return fmt.Errorf("%w: http %d", venue.ErrVenue, code)
	}
}

var _ venue.PrimaryProvider = (*Client)(nil)
