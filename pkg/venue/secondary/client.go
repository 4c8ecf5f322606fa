// Package secondary implements venue.SecondaryProvider against a read-only
// ticker-market style REST API authenticated with RSA-PSS signed requests,
// per spec §6. No order placement: this venue exists solely so C5 can
// compare its quotes against the primary venue's.
package secondary

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"copytrader/pkg/venue"
)

// Client is a resty-backed venue.SecondaryProvider implementation.
type Client struct {
	http       *resty.Client
	keyID      string
	privateKey *rsa.PrivateKey
}

// New constructs a Client from the venue secondary config. An unparsable
// private key makes New return an error. A missing key yields a client
// whose requests cannot be signed, so its quote and order-book calls fail
// with ErrAuth; HasSigningKey reports which case applies.
func New(cfg venue.SecondaryConfig) (*Client, error) {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	c := &Client{http: http, keyID: cfg.KeyID}
	if cfg.PrivateKeyPEM != "" {
		key, err := parseRSAPrivateKey(cfg.PrivateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("venue secondary: parse private key: %w", err)
		}
		c.privateKey = key
	}
	return c, nil
}

// HasSigningKey reports whether the client can sign authenticated requests.
func (c *Client) HasSigningKey() bool { return c.privateKey != nil }

func parseRSAPrivateKey(pemStr string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemStr))
	if block == nil {
		return nil, fmt.Errorf("invalid PEM block")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	keyAny, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := keyAny.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("not an RSA private key")
	}
	return key, nil
}

// signRequest builds the RSA-PSS signature headers: timestamp + method +
// path signed with SHA-256/PSS, matching the secondary venue's documented
// auth scheme referenced in spec §6.
func (c *Client) signRequest(method, path string) (map[string]string, error) {
	if c.privateKey == nil {
		return nil, fmt.Errorf("%w: no signing key configured", venue.ErrAuth)
	}
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	message := ts + method + path
	digest := sha256.Sum256([]byte(message))
	sig, err := rsa.SignPSS(rand.Reader, c.privateKey, crypto.SHA256, digest[:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: sign: %v", venue.ErrAuth, err)
	}
	return map[string]string{
		"KALSHI-ACCESS-KEY":       c.keyID,
		"KALSHI-ACCESS-SIGNATURE": base64.StdEncoding.EncodeToString(sig),
		"KALSHI-ACCESS-TIMESTAMP": ts,
	}, nil
}

type tickerBody struct {
	Ticker    string `json:"ticker"`
	YesBidC   int64  `json:"yes_bid"`
	YesAskC   int64  `json:"yes_ask"`
	NoBidC    int64  `json:"no_bid"`
	NoAskC    int64  `json:"no_ask"`
	Volume    int64  `json:"volume"`
	Liquidity int64  `json:"liquidity"`
}

// GetQuote fetches the ticker quote for marketID and renormalizes the
// cents-denominated yes/no prices via venue.NormalizeSecondaryOdds.
func (c *Client) GetQuote(ctx context.Context, marketID string) (*venue.MarketQuote, error) {
	headers, err := c.signRequest("GET", "/markets/"+marketID)
	if err != nil {
		return nil, err
	}
	var out tickerBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetResult(&out).
		Get("/markets/" + marketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyHTTPError(resp.StatusCode())
	}

	yesMid := (out.YesBidC + out.YesAskC) / 2
	noMid := (out.NoBidC + out.NoAskC) / 2
	yes, no := venue.NormalizeSecondaryOdds(yesMid, noMid)

	return &venue.MarketQuote{
		MarketID:  marketID,
		YesPrice:  yes,
		NoPrice:   no,
		Liquidity: float64(out.Liquidity) / 100,
		Volume24h: float64(out.Volume) / 100,
		AsOf:      time.Now(),
	}, nil
}

type orderbookBody struct {
	Yes [][2]int64 `json:"yes"` // [price_cents, size]
	No  [][2]int64 `json:"no"`
}

// GetOrderBook fetches the yes-side order book, converting cent prices to
// decimal probabilities. The secondary venue quotes in cents on a single
// (yes) side, so the returned book mirrors the no-side into asks via
// (100 - price) the way a cross-venue comparison needs it framed.
func (c *Client) GetOrderBook(ctx context.Context, marketID string) (*venue.OrderBook, error) {
	headers, err := c.signRequest("GET", "/markets/"+marketID+"/orderbook")
	if err != nil {
		return nil, err
	}
	var out orderbookBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetResult(&out).
		Get("/markets/" + marketID + "/orderbook")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", venue.ErrVenue, err)
	}
	if resp.StatusCode() >= 300 {
		return nil, classifyHTTPError(resp.StatusCode())
	}

	book := &venue.OrderBook{MarketID: marketID, AsOf: time.Now()}
	for _, lvl := range out.Yes {
		price, _ := decimal.New(lvl[0], -2).Float64()
		book.Bids = append(book.Bids, venue.BookLevel{Price: price, Size: float64(lvl[1])})
	}
	for _, lvl := range out.No {
		price, _ := decimal.New(100-lvl[0], -2).Float64()
		book.Asks = append(book.Asks, venue.BookLevel{Price: price, Size: float64(lvl[1])})
	}
	return book, nil
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

var _ venue.SecondaryProvider = (*Client)(nil)
