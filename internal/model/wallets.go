// Package model holds the durable-store row types and per-entity data
// access objects for C1, following the teacher's internal/model pattern:
// a Record struct with pointer fields for nullable columns, a narrow
// interface named after the entity, and a concrete implementation driving
// raw SQL through go-zero's sqlx.SqlConn.
package model

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// WalletRecord is a followed wallet under copy-trade watch, grounded on
// original_source's storage/models.py Wallet table.
type WalletRecord struct {
	ID            string
	Address       string // canonical lowercase, see pkg/signal.CanonicalAddress
	Label         string
	Enabled       bool
	Disabled      bool
	ScaleFactor   float64  // multiplies signal size, grounded on context.py's wallet_scale_factor
	MaxTradeSize  *float64 // caps signal size regardless of scale, nil means unbounded
	MinConfidence float64  // advisor confidence floor, carried into the decision context; no signal is dropped on it
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// WalletsModel is the data access surface for the wallets table.
type WalletsModel interface {
	Insert(ctx context.Context, w *WalletRecord) error
	FindByAddress(ctx context.Context, address string) (*WalletRecord, error)
	ListEnabled(ctx context.Context) ([]WalletRecord, error)
	SetEnabled(ctx context.Context, address string, enabled bool) error
}

type walletsModel struct {
	conn sqlx.SqlConn
}

// NewWalletsModel constructs a WalletsModel over conn.
func NewWalletsModel(conn sqlx.SqlConn) WalletsModel {
	return &walletsModel{conn: conn}
}

func (m *walletsModel) Insert(ctx context.Context, w *WalletRecord) error {
	const query = `
INSERT INTO public.wallets
    (id, address, label, enabled, disabled, scale_factor, max_trade_size, min_confidence, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
ON CONFLICT (address) DO UPDATE SET label = excluded.label, updated_at = now()`
	_, err := m.conn.ExecCtx(ctx, query, w.ID, w.Address, w.Label, w.Enabled, w.Disabled,
		w.ScaleFactor, w.MaxTradeSize, w.MinConfidence)
	if err != nil {
		return fmt.Errorf("model: insert wallet: %w", err)
	}
	return nil
}

func (m *walletsModel) FindByAddress(ctx context.Context, address string) (*WalletRecord, error) {
	const query = `
SELECT id, address, label, enabled, disabled, scale_factor, max_trade_size, min_confidence, created_at, updated_at
FROM public.wallets WHERE address = $1`
	var w WalletRecord
	err := m.conn.QueryRowCtx(ctx, &w, query, address)
	if err != nil {
		return nil, fmt.Errorf("model: find wallet %s: %w", address, err)
	}
	return &w, nil
}

func (m *walletsModel) ListEnabled(ctx context.Context) ([]WalletRecord, error) {
	const query = `
SELECT id, address, label, enabled, disabled, scale_factor, max_trade_size, min_confidence, created_at, updated_at
FROM public.wallets WHERE enabled = true AND disabled = false ORDER BY created_at`
	var wallets []WalletRecord
	if err := m.conn.QueryRowsCtx(ctx, &wallets, query); err != nil {
		return nil, fmt.Errorf("model: list enabled wallets: %w", err)
	}
	return wallets, nil
}

func (m *walletsModel) SetEnabled(ctx context.Context, address string, enabled bool) error {
	const query = `UPDATE public.wallets SET enabled = $2, updated_at = now() WHERE address = $1`
	_, err := m.conn.ExecCtx(ctx, query, address, enabled)
	if err != nil {
		return fmt.Errorf("model: set wallet enabled: %w", err)
	}
	return nil
}

var _ WalletsModel = (*walletsModel)(nil)
