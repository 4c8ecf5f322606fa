package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// MarketMappingRecord links an equivalent market across the primary and
// secondary venues, grounded on original_source's
// core/intelligence/normalizer.py MarketMapping and its find_equivalent_markets
// lookup, persisted here so operators can configure it instead of the
// arbitrage detector guessing equivalence at runtime.
type MarketMappingRecord struct {
	ID                string
	PrimaryMarketID   string
	SecondaryMarketID string
	Label             string
}

// MarketMappingsModel is the data access surface for market_mappings.
type MarketMappingsModel interface {
	Insert(ctx context.Context, m *MarketMappingRecord) error
	ListAll(ctx context.Context) ([]MarketMappingRecord, error)
}

type marketMappingsModel struct {
	conn sqlx.SqlConn
}

// NewMarketMappingsModel constructs a MarketMappingsModel over conn.
func NewMarketMappingsModel(conn sqlx.SqlConn) MarketMappingsModel {
	return &marketMappingsModel{conn: conn}
}

func (m *marketMappingsModel) Insert(ctx context.Context, rec *MarketMappingRecord) error {
	const query = `
INSERT INTO public.market_mappings (id, primary_market_id, secondary_market_id, label)
VALUES ($1, $2, $3, $4)`
	_, err := m.conn.ExecCtx(ctx, query, rec.ID, rec.PrimaryMarketID, rec.SecondaryMarketID, rec.Label)
	if err != nil {
		return fmt.Errorf("model: insert market mapping: %w", err)
	}
	return nil
}

func (m *marketMappingsModel) ListAll(ctx context.Context) ([]MarketMappingRecord, error) {
	const query = `SELECT id, primary_market_id, secondary_market_id, label FROM public.market_mappings`
	var rows []MarketMappingRecord
	if err := m.conn.QueryRowsCtx(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("model: list market mappings: %w", err)
	}
	return rows, nil
}

var _ MarketMappingsModel = (*marketMappingsModel)(nil)
