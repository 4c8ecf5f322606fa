package model

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// RiskEventRecord is an audit row for a risk-manager decision (approval,
// rejection, or size adjustment), grounded on original_source's
// storage/models.py RiskEvent table. Rows are written only through
// store.Store.RecordTrade; pkg/risk does not record its decisions here.
type RiskEventRecord struct {
	ID        string
	SignalID  string
	EventType string // rejected | adjusted | approved
	Reason    string
	CreatedAt time.Time
}

// RiskEventsModel is the data access surface for risk_events.
type RiskEventsModel interface {
	Insert(ctx context.Context, e *RiskEventRecord) error
	RecentByType(ctx context.Context, eventType string, limit int) ([]RiskEventRecord, error)
}

type riskEventsModel struct {
	conn sqlx.SqlConn
}

// NewRiskEventsModel constructs a RiskEventsModel over conn.
func NewRiskEventsModel(conn sqlx.SqlConn) RiskEventsModel {
	return &riskEventsModel{conn: conn}
}

func (m *riskEventsModel) Insert(ctx context.Context, e *RiskEventRecord) error {
	const query = `
INSERT INTO public.risk_events (id, signal_id, event_type, reason, created_at)
VALUES ($1, $2, $3, $4, now())`
	_, err := m.conn.ExecCtx(ctx, query, e.ID, e.SignalID, e.EventType, e.Reason)
	if err != nil {
		return fmt.Errorf("model: insert risk event: %w", err)
	}
	return nil
}

func (m *riskEventsModel) RecentByType(ctx context.Context, eventType string, limit int) ([]RiskEventRecord, error) {
	const query = `
SELECT id, signal_id, event_type, reason, created_at
FROM public.risk_events WHERE event_type = $1 ORDER BY created_at DESC LIMIT $2`
	var rows []RiskEventRecord
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, eventType, limit); err != nil {
		return nil, fmt.Errorf("model: recent risk events: %w", err)
	}
	return rows, nil
}

var _ RiskEventsModel = (*riskEventsModel)(nil)
