package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// CryptoWatchlistRecord pairs a crypto-related Polymarket market with the
// Binance symbol whose price lag should be monitored against it, grounded
// on original_source's PriceLagDetector.check_crypto_markets, which reads
// an equivalent symbol-to-market association from the Polymarket API's
// crypto-category listing. Persisted here as an operator-managed table
// instead, matching this repo's existing market_mappings pattern, since a
// full dynamic category query against the venue's discovery API is out of
// scope for this supplement.
type CryptoWatchlistRecord struct {
	ID           string
	MarketID     string
	MarketTitle  string
	CryptoSymbol string
	Enabled      bool
}

// CryptoWatchlistModel is the data access surface for crypto_watchlist.
type CryptoWatchlistModel interface {
	Insert(ctx context.Context, rec *CryptoWatchlistRecord) error
	ListEnabled(ctx context.Context) ([]CryptoWatchlistRecord, error)
}

type cryptoWatchlistModel struct {
	conn sqlx.SqlConn
}

// NewCryptoWatchlistModel constructs a CryptoWatchlistModel over conn.
func NewCryptoWatchlistModel(conn sqlx.SqlConn) CryptoWatchlistModel {
	return &cryptoWatchlistModel{conn: conn}
}

func (m *cryptoWatchlistModel) Insert(ctx context.Context, rec *CryptoWatchlistRecord) error {
	const query = `
INSERT INTO public.crypto_watchlist (id, market_id, market_title, crypto_symbol, enabled)
VALUES ($1, $2, $3, $4, $5)`
	_, err := m.conn.ExecCtx(ctx, query, rec.ID, rec.MarketID, rec.MarketTitle, rec.CryptoSymbol, rec.Enabled)
	if err != nil {
		return fmt.Errorf("model: insert crypto watchlist entry: %w", err)
	}
	return nil
}

func (m *cryptoWatchlistModel) ListEnabled(ctx context.Context) ([]CryptoWatchlistRecord, error) {
	const query = `
SELECT id, market_id, market_title, crypto_symbol, enabled
FROM public.crypto_watchlist WHERE enabled = true`
	var rows []CryptoWatchlistRecord
	if err := m.conn.QueryRowsCtx(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("model: list crypto watchlist: %w", err)
	}
	return rows, nil
}

var _ CryptoWatchlistModel = (*cryptoWatchlistModel)(nil)
