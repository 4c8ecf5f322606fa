package model

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// WalletMetricsRecord tracks the rolling performance stats a followed
// wallet accrues, grounded on original_source's storage/models.py
// WalletMetrics table and intelligence/wallet_tracker.py's inputs.
type WalletMetricsRecord struct {
	WalletAddress  string
	TotalTrades    int
	WinningTrades  int
	TotalPnL       float64
	AvgROI         float64
	AvgEntryDelay  float64 // seconds between wallet fill and our fill
	LastTradeAt    *time.Time
	UpdatedAt      time.Time
}

// WalletMetricsModel is the data access surface for wallet_metrics.
type WalletMetricsModel interface {
	Upsert(ctx context.Context, m *WalletMetricsRecord) error
	FindByWallet(ctx context.Context, address string) (*WalletMetricsRecord, error)
}

type walletMetricsModel struct {
	conn sqlx.SqlConn
}

// NewWalletMetricsModel constructs a WalletMetricsModel over conn.
func NewWalletMetricsModel(conn sqlx.SqlConn) WalletMetricsModel {
	return &walletMetricsModel{conn: conn}
}

func (m *walletMetricsModel) Upsert(ctx context.Context, rec *WalletMetricsRecord) error {
	const query = `
INSERT INTO public.wallet_metrics
    (wallet_address, total_trades, winning_trades, total_pnl, avg_roi, avg_entry_delay, last_trade_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (wallet_address) DO UPDATE SET
    total_trades = excluded.total_trades,
    winning_trades = excluded.winning_trades,
    total_pnl = excluded.total_pnl,
    avg_roi = excluded.avg_roi,
    avg_entry_delay = excluded.avg_entry_delay,
    last_trade_at = excluded.last_trade_at,
    updated_at = now()`
	_, err := m.conn.ExecCtx(ctx, query, rec.WalletAddress, rec.TotalTrades, rec.WinningTrades,
		rec.TotalPnL, rec.AvgROI, rec.AvgEntryDelay, rec.LastTradeAt)
	if err != nil {
		return fmt.Errorf("model: upsert wallet metrics: %w", err)
	}
	return nil
}

func (m *walletMetricsModel) FindByWallet(ctx context.Context, address string) (*WalletMetricsRecord, error) {
	const query = `
SELECT wallet_address, total_trades, winning_trades, total_pnl, avg_roi, avg_entry_delay, last_trade_at, updated_at
FROM public.wallet_metrics WHERE wallet_address = $1`
	var rec WalletMetricsRecord
	if err := m.conn.QueryRowCtx(ctx, &rec, query, address); err != nil {
		return nil, fmt.Errorf("model: find wallet metrics %s: %w", address, err)
	}
	return &rec, nil
}

var _ WalletMetricsModel = (*walletMetricsModel)(nil)
