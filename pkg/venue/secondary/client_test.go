package secondary_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/venue"
	"copytrader/pkg/venue/secondary"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der := x509.MarshalPKCS1PrivateKey(key)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}
	return string(pem.EncodeToMemory(block))
}

func TestNew_WithoutPrivateKey_HasNoSigningKey(t *testing.T) {
	c, err := secondary.New(venue.SecondaryConfig{BaseURL: "https://example.test", Timeout: time.Second})
	require.NoError(t, err)
	assert.False(t, c.HasSigningKey())
}

func TestNew_RejectsMalformedPEM(t *testing.T) {
	_, err := secondary.New(venue.SecondaryConfig{BaseURL: "https://example.test", PrivateKeyPEM: "not-a-pem"})
	assert.Error(t, err)
}

func TestClient_GetQuote_NormalizesCentPricesAndSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("KALSHI-ACCESS-SIGNATURE"))
		assert.NotEmpty(t, r.Header.Get("KALSHI-ACCESS-KEY"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ticker": "M1", "yes_bid": 40, "yes_ask": 60, "no_bid": 40, "no_ask": 60,
			"volume": 10000, "liquidity": 500000,
		})
	}))
	t.Cleanup(srv.Close)

	c, err := secondary.New(venue.SecondaryConfig{
		BaseURL: srv.URL, KeyID: "key-1", PrivateKeyPEM: testPrivateKeyPEM(t), Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	require.True(t, c.HasSigningKey())

	quote, err := c.GetQuote(context.Background(), "M1")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, quote.YesPrice, 0.001)
	assert.InDelta(t, 5000, quote.Liquidity, 0.001)
}

func TestClient_GetQuote_WithoutSigningKeyFailsFast(t *testing.T) {
	c, err := secondary.New(venue.SecondaryConfig{BaseURL: "https://example.test", Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.GetQuote(context.Background(), "M1")
	assert.ErrorIs(t, err, venue.ErrAuth)
}

func TestClient_GetOrderBook_MirrorsNoSideIntoAsks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"yes": [][2]int64{{40, 100}},
			"no":  [][2]int64{{30, 200}},
		})
	}))
	t.Cleanup(srv.Close)

	c, err := secondary.New(venue.SecondaryConfig{
		BaseURL: srv.URL, KeyID: "key-1", PrivateKeyPEM: testPrivateKeyPEM(t), Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	book, err := c.GetOrderBook(context.Background(), "M1")
	require.NoError(t, err)
	require.Len(t, book.Bids, 1)
	require.Len(t, book.Asks, 1)
	assert.InDelta(t, 0.40, book.Bids[0].Price, 0.001)
	assert.InDelta(t, 0.70, book.Asks[0].Price, 0.001) // 100 - 30 cents
}

func TestClient_GetOrderBook_ClassifiesRateLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	c, err := secondary.New(venue.SecondaryConfig{
		BaseURL: srv.URL, PrivateKeyPEM: testPrivateKeyPEM(t), Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	_, err = c.GetOrderBook(context.Background(), "M1")
	assert.ErrorIs(t, err, venue.ErrRateLimit)
}
