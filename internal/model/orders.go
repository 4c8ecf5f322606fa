package model

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// OrderRecord is the durable record of an order's lifecycle, grounded on
// original_source's core/execution/order.py Order dataclass. pkg/orders
// keeps order state only in the volatile store (internal/volatile); nothing
// in this repository writes orders to this table.
type OrderRecord struct {
	ID            string
	TradeID       string
	VenueOrderID  string
	MarketID      string
	Side          string
	Action        string
	Size          float64
	LimitPrice    float64
	Status        string
	Attempts      int
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrdersModel is the data access surface for the orders table.
type OrdersModel interface {
	Insert(ctx context.Context, o *OrderRecord) error
	UpdateStatus(ctx context.Context, id, status string, attempts int, failureReason string) error
	FindByID(ctx context.Context, id string) (*OrderRecord, error)
}

type ordersModel struct {
	conn sqlx.SqlConn
}

// NewOrdersModel constructs an OrdersModel over conn.
func NewOrdersModel(conn sqlx.SqlConn) OrdersModel {
	return &ordersModel{conn: conn}
}

func (m *ordersModel) Insert(ctx context.Context, o *OrderRecord) error {
	const query = `
INSERT INTO public.orders
    (id, trade_id, venue_order_id, market_id, side, action, size, limit_price, status, attempts, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now(), now())`
	_, err := m.conn.ExecCtx(ctx, query, o.ID, o.TradeID, o.VenueOrderID, o.MarketID, o.Side,
		o.Action, o.Size, o.LimitPrice, o.Status, o.Attempts)
	if err != nil {
		return fmt.Errorf("model: insert order: %w", err)
	}
	return nil
}

func (m *ordersModel) UpdateStatus(ctx context.Context, id, status string, attempts int, failureReason string) error {
	const query = `
UPDATE public.orders SET status = $2, attempts = $3, failure_reason = $4, updated_at = now() WHERE id = $1`
	_, err := m.conn.ExecCtx(ctx, query, id, status, attempts, failureReason)
	if err != nil {
		return fmt.Errorf("model: update order status: %w", err)
	}
	return nil
}

func (m *ordersModel) FindByID(ctx context.Context, id string) (*OrderRecord, error) {
	const query = `
SELECT id, trade_id, venue_order_id, market_id, side, action, size, limit_price, status, attempts,
       failure_reason, created_at, updated_at
FROM public.orders WHERE id = $1`
	var o OrderRecord
	if err := m.conn.QueryRowCtx(ctx, &o, query, id); err != nil {
		return nil, fmt.Errorf("model: find order %s: %w", id, err)
	}
	return &o, nil
}

var _ OrdersModel = (*ordersModel)(nil)
