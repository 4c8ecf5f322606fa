// Package resolution implements the C13 resolution worker: periodic P&L
// finalization for trades whose market has resolved. Grounded on
// original_source's interfaces/api/routes/resolution.py calculate_pnl.
package resolution

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/internal/model"
)

// MarketResolution is the outcome of a resolved market, as reported by the
// primary venue's market query.
type MarketResolution struct {
	Closed      bool
	WinningSide string // "YES" or "NO", empty if not yet determined
}

// MarketSource fetches resolution status for a market, narrowed from
// venue.PrimaryProvider's market-lookup surface.
type MarketSource interface {
	GetResolution(ctx context.Context, marketID string) (*MarketResolution, error)
}

// TradeStore is the data-access surface the worker depends on, narrowed
// from internal/model.TradesModel.
type TradeStore interface {
	Unsettled(ctx context.Context, limit int) ([]model.TradeRecord, error)
	MarkSettled(ctx context.Context, id string, realizedPnL float64) error
}

// WalletMetricsStore updates aggregate wallet metrics after settlement.
type WalletMetricsStore interface {
	FindByWallet(ctx context.Context, address string) (*model.WalletMetricsRecord, error)
	Upsert(ctx context.Context, rec *model.WalletMetricsRecord) error
}

const unsettledBatchSize = 200

// Worker periodically finalizes P&L for trades whose market has resolved,
// grounded verbatim on calculate_pnl's per-trade winner check and PnL
// formula.
type Worker struct {
	trades   TradeStore
	metrics  WalletMetricsStore
	market   MarketSource
	interval time.Duration
}

// NewWorker constructs a Worker. interval defaults to 5 minutes when zero.
func NewWorker(trades TradeStore, metrics WalletMetricsStore, market MarketSource, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Worker{trades: trades, metrics: metrics, market: market, interval: interval}
}

// Run ticks on w.interval until ctx is cancelled, logging and continuing
// past per-pass errors.
func (w *Worker) Run(ctx context.Context) error {
	logx.WithContext(ctx).Infof("resolution: worker starting interval=%s", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n, err := w.RunOnce(ctx); err != nil {
				logx.WithContext(ctx).Errorf("resolution: pass error: %v", err)
			} else if n > 0 {
				logx.WithContext(ctx).Infof("resolution: settled %d trades", n)
			}
		}
	}
}

// RunOnce processes one batch of unsettled trades, grounded on
// calculate_pnl: fetch unsettled trades, look up each market's resolution,
// skip unresolved markets, compute and persist P&L for the rest.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	trades, err := w.trades.Unsettled(ctx, unsettledBatchSize)
	if err != nil {
		return 0, fmt.Errorf("resolution: list unsettled trades: %w", err)
	}
	if len(trades) == 0 {
		return 0, nil
	}

	resolutions := make(map[string]*MarketResolution, len(trades))
	settled := 0

	for _, trade := range trades {
		resolution, ok := resolutions[trade.MarketID]
		if !ok {
			resolution, err = w.market.GetResolution(ctx, trade.MarketID)
			if err != nil {
				logx.WithContext(ctx).Errorf("resolution: get resolution for market %s: %v", trade.MarketID, err)
				resolutions[trade.MarketID] = nil
				continue
			}
			resolutions[trade.MarketID] = resolution
		}
		if resolution == nil || !resolution.Closed || resolution.WinningSide == "" {
			continue
		}

		pnl := calculatePnL(trade, resolution.WinningSide)
		if err := w.trades.MarkSettled(ctx, trade.ID, pnl); err != nil {
			logx.WithContext(ctx).Errorf("resolution: mark trade %s settled: %v", trade.ID, err)
			continue
		}
		if err := w.updateWalletMetrics(ctx, trade.WalletAddress, pnl); err != nil {
			logx.WithContext(ctx).Errorf("resolution: update wallet metrics %s: %v", trade.WalletAddress, err)
		}
		settled++
	}

	return settled, nil
}

// calculatePnL computes realized P&L for a settled trade, grounded
// verbatim on calculate_pnl: if the trade's side matches the winning
// outcome, pnl = size * (1 - entry_price); otherwise pnl = -size *
// entry_price.
func calculatePnL(trade model.TradeRecord, winningSide string) float64 {
	if trade.Side == winningSide {
		return trade.Size * (1.0 - trade.Price)
	}
	return -trade.Size * trade.Price
}

func (w *Worker) updateWalletMetrics(ctx context.Context, wallet string, pnl float64) error {
	metrics, err := w.metrics.FindByWallet(ctx, wallet)
	if err != nil || metrics == nil {
		metrics = &model.WalletMetricsRecord{WalletAddress: wallet}
	}

	metrics.TotalTrades++
	metrics.TotalPnL += pnl
	if pnl > 0 {
		metrics.WinningTrades++
	}
	if metrics.TotalTrades > 0 {
		metrics.AvgROI = metrics.TotalPnL / float64(metrics.TotalTrades)
	}

	return w.metrics.Upsert(ctx, metrics)
}
