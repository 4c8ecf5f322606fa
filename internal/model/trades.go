package model

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// TradeRecord is an executed (or rejected) trade, grounded on
// original_source's storage/models.py Trade table. Nullable numeric columns
// use pointer fields, matching the teacher's TradeRecord pattern in
// internal/model/tradesmodel.go.
type TradeRecord struct {
	ID           string
	SignalID     string
	WalletAddress string
	MarketID     string
	Side         string
	Action       string
	Size         float64
	Price        float64
	Mode         string // paper | live
	Status       string // executed | rejected
	RejectReason string
	RealizedPnL  *float64
	CreatedAt    time.Time
	SettledAt    *time.Time
}

// TradesModel is the data access surface for the trades table.
type TradesModel interface {
	Insert(ctx context.Context, t *TradeRecord) error
	RecentByWallet(ctx context.Context, wallet string, limit int) ([]TradeRecord, error)
	Unsettled(ctx context.Context, limit int) ([]TradeRecord, error)
	MarkSettled(ctx context.Context, id string, realizedPnL float64) error
}

type tradesModel struct {
	conn sqlx.SqlConn
}

// NewTradesModel constructs a TradesModel over conn.
func NewTradesModel(conn sqlx.SqlConn) TradesModel {
	return &tradesModel{conn: conn}
}

func (m *tradesModel) Insert(ctx context.Context, t *TradeRecord) error {
	const query = `
INSERT INTO public.trades
    (id, signal_id, wallet_address, market_id, side, action, size, price, mode, status, reject_reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())`
	_, err := m.conn.ExecCtx(ctx, query, t.ID, t.SignalID, t.WalletAddress, t.MarketID, t.Side,
		t.Action, t.Size, t.Price, t.Mode, t.Status, t.RejectReason)
	if err != nil {
		return fmt.Errorf("model: insert trade: %w", err)
	}
	return nil
}

func (m *tradesModel) RecentByWallet(ctx context.Context, wallet string, limit int) ([]TradeRecord, error) {
	const query = `
SELECT id, signal_id, wallet_address, market_id, side, action, size, price, mode, status,
       reject_reason, realized_pnl, created_at, settled_at
FROM public.trades WHERE wallet_address = $1 ORDER BY created_at DESC LIMIT $2`
	var trades []TradeRecord
	if err := m.conn.QueryRowsCtx(ctx, &trades, query, wallet, limit); err != nil {
		return nil, fmt.Errorf("model: recent trades by wallet: %w", err)
	}
	return trades, nil
}

func (m *tradesModel) Unsettled(ctx context.Context, limit int) ([]TradeRecord, error) {
	const query = `
SELECT id, signal_id, wallet_address, market_id, side, action, size, price, mode, status,
       reject_reason, realized_pnl, created_at, settled_at
FROM public.trades WHERE status = 'executed' AND settled_at IS NULL ORDER BY created_at LIMIT $1`
	var trades []TradeRecord
	if err := m.conn.QueryRowsCtx(ctx, &trades, query, limit); err != nil {
		return nil, fmt.Errorf("model: unsettled trades: %w", err)
	}
	return trades, nil
}

func (m *tradesModel) MarkSettled(ctx context.Context, id string, realizedPnL float64) error {
	const query = `UPDATE public.trades SET realized_pnl = $2, settled_at = now() WHERE id = $1`
	_, err := m.conn.ExecCtx(ctx, query, id, realizedPnL)
	if err != nil {
		return fmt.Errorf("model: mark trade settled: %w", err)
	}
	return nil
}

var _ TradesModel = (*tradesModel)(nil)
