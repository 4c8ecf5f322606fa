package model

import (
	"context"
	"fmt"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// FilterType and FilterAction mirror original_source's
// core/intelligence/filters.py FilterType/FilterAction enums.
type FilterType string

const (
	FilterTypeMarket   FilterType = "market"
	FilterTypeCategory FilterType = "category"
	FilterTypeKeyword  FilterType = "keyword"
)

type FilterAction string

const (
	FilterActionAllow FilterAction = "allow"
	FilterActionDeny  FilterAction = "deny"
)

// MarketFilterRecord is a single allow/deny rule, grounded on
// original_source's MarketFilterManager configuration rows.
type MarketFilterRecord struct {
	ID     string
	Type   FilterType
	Value  string
	Action FilterAction
}

// MarketFiltersModel is the data access surface for market_filters.
type MarketFiltersModel interface {
	Insert(ctx context.Context, f *MarketFilterRecord) error
	ListAll(ctx context.Context) ([]MarketFilterRecord, error)
}

type marketFiltersModel struct {
	conn sqlx.SqlConn
}

// NewMarketFiltersModel constructs a MarketFiltersModel over conn.
func NewMarketFiltersModel(conn sqlx.SqlConn) MarketFiltersModel {
	return &marketFiltersModel{conn: conn}
}

func (m *marketFiltersModel) Insert(ctx context.Context, f *MarketFilterRecord) error {
	const query = `INSERT INTO public.market_filters (id, type, value, action) VALUES ($1, $2, $3, $4)`
	_, err := m.conn.ExecCtx(ctx, query, f.ID, string(f.Type), f.Value, string(f.Action))
	if err != nil {
		return fmt.Errorf("model: insert market filter: %w", err)
	}
	return nil
}

func (m *marketFiltersModel) ListAll(ctx context.Context) ([]MarketFilterRecord, error) {
	const query = `SELECT id, type, value, action FROM public.market_filters ORDER BY type`
	var rows []MarketFilterRecord
	if err := m.conn.QueryRowsCtx(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("model: list market filters: %w", err)
	}
	return rows, nil
}

var _ MarketFiltersModel = (*marketFiltersModel)(nil)
