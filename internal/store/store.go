// Package store is the C1 State Store: a thin, transactional façade over
// internal/model's per-entity data access objects, grounded on the
// teacher's internal/svc wiring (conditional construction behind a
// Postgres DSN) and internal/repo's transaction-scoped writes.
package store

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx driver
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"copytrader/internal/model"
)

// Store aggregates every durable-store entity behind one composition root.
type Store struct {
	Conn sqlx.SqlConn

	Wallets         model.WalletsModel
	WalletMetrics   model.WalletMetricsModel
	Trades          model.TradesModel
	Orders          model.OrdersModel
	MarketFilters   model.MarketFiltersModel
	MarketMappings  model.MarketMappingsModel
	RiskEvents      model.RiskEventsModel
	CryptoWatchlist model.CryptoWatchlistModel
}

// New constructs a Store from a Postgres DSN ("pgx" driver).
func New(dsn string) *Store {
	conn := sqlx.NewSqlConn("pgx", dsn)
	return &Store{
		Conn:            conn,
		Wallets:         model.NewWalletsModel(conn),
		WalletMetrics:   model.NewWalletMetricsModel(conn),
		Trades:          model.NewTradesModel(conn),
		Orders:          model.NewOrdersModel(conn),
		MarketFilters:   model.NewMarketFiltersModel(conn),
		MarketMappings:  model.NewMarketMappingsModel(conn),
		RiskEvents:      model.NewRiskEventsModel(conn),
		CryptoWatchlist: model.NewCryptoWatchlistModel(conn),
	}
}

// RecordTrade persists a trade and its originating risk event atomically,
// following the teacher's internal/repo pattern of scoping related writes
// inside conn.TransactCtx.
func (s *Store) RecordTrade(ctx context.Context, trade *model.TradeRecord, riskEvent *model.RiskEventRecord) error {
	return s.Conn.TransactCtx(ctx, func(ctx context.Context, tx sqlx.Session) error {
		if _, err := tx.ExecCtx(ctx, `
INSERT INTO public.trades
    (id, signal_id, wallet_address, market_id, side, action, size, price, mode, status, reject_reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())`,
			trade.ID, trade.SignalID, trade.WalletAddress, trade.MarketID, trade.Side, trade.Action,
			trade.Size, trade.Price, trade.Mode, trade.Status, trade.RejectReason); err != nil {
			return fmt.Errorf("store: insert trade: %w", err)
		}
		if riskEvent != nil {
			if _, err := tx.ExecCtx(ctx, `
INSERT INTO public.risk_events (id, signal_id, event_type, reason, created_at)
VALUES ($1, $2, $3, $4, now())`,
				riskEvent.ID, riskEvent.SignalID, riskEvent.EventType, riskEvent.Reason); err != nil {
				return fmt.Errorf("store: insert risk event: %w", err)
			}
		}
		return nil
	})
}
