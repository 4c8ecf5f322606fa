// Package decisioncontext assembles the C7 DecisionContext consumed by the
// advisor (C8): every wallet, market, and risk fact the brain needs to
// evaluate a trade signal, gathered from the store, the volatile cache, and
// the intelligence packages. Grounded on original_source's
// core/brain/context.py.
package decisioncontext

import (
	"context"
	"fmt"
	"time"

	"copytrader/internal/model"
	"copytrader/internal/volatile"
	"copytrader/pkg/marketintel"
	"copytrader/pkg/signal"
)

// SignalType mirrors original_source's signal_type discriminator.
type SignalType string

const (
	SignalTypeCopyTrade SignalType = "COPY_TRADE"
	SignalTypeArbitrage SignalType = "ARBITRAGE"
	SignalTypePriceLag  SignalType = "PRICE_LAG"
)

// Context is the full set of facts assembled for one decision, grounded on
// DecisionContext.
type Context struct {
	SignalWallet string
	SignalMarket string
	SignalSide   string
	SignalSize   float64
	SignalPrice  float64
	SignalType   SignalType

	WalletWinRate            float64
	WalletAvgROI             float64
	WalletTotalTrades        int
	WalletRecentPerformance  float64
	WalletConfidenceScore    float64
	WalletEnabled            bool
	WalletScaleFactor        float64
	WalletMaxTradeSize       *float64
	WalletMinConfidence      float64

	MarketLiquidity    float64
	MarketSpread       float64
	MarketQualityScore float64
	MarketAllowed      bool
	MarketFilterReason string

	RiskDailyPnL      float64
	RiskOpenExposure  float64
	RiskMaxDailyLoss  float64

	ArbitrageSpread    *float64
	ArbitrageDirection string

	PriceLagBinanceChange float64
	PriceLagSymbol        string
}

// RiskCache supplies the current risk-state snapshot.
type RiskCache interface {
	GetDailyPnL(ctx context.Context, date string) (float64, error)
	GetOpenExposure(ctx context.Context) (float64, error)
}

// MarketService supplies per-token liquidity/spread, grounded on
// MarketServiceProtocol.
type MarketService interface {
	GetLiquidity(ctx context.Context, marketID string) (float64, error)
	GetSpread(ctx context.Context, marketID string) (float64, error)
}

// WalletScorer supplies a wallet's confidence score, grounded on
// WalletTrackerProtocol. Optional: nil disables scoring (defaults to 0.5).
type WalletScorer interface {
	GetWalletScore(ctx context.Context, wallet string) (float64, error)
}

// Builder assembles a Context from a TradeSignal and its surrounding state,
// grounded on DecisionContextBuilder.
type Builder struct {
	risk          RiskCache
	market        MarketService
	wallets       model.WalletsModel
	walletMetrics model.WalletMetricsModel
	walletScorer  WalletScorer
	filters       *marketintel.FilterManager
	maxDailyLoss  float64
}

// NewBuilder constructs a Builder with required dependencies; wallet
// scoring and market filtering are optional collaborators.
func NewBuilder(risk RiskCache, market MarketService, wallets model.WalletsModel, walletMetrics model.WalletMetricsModel, maxDailyLoss float64) *Builder {
	return &Builder{risk: risk, market: market, wallets: wallets, walletMetrics: walletMetrics, maxDailyLoss: maxDailyLoss}
}

// WithWalletScorer attaches a confidence-score source.
func (b *Builder) WithWalletScorer(scorer WalletScorer) *Builder {
	b.walletScorer = scorer
	return b
}

// WithFilters attaches a market filter manager.
func (b *Builder) WithFilters(filters *marketintel.FilterManager) *Builder {
	b.filters = filters
	return b
}

// BuildOptions carries the optional per-signal inputs original_source's
// build() accepts as keyword arguments.
type BuildOptions struct {
	MarketCategory     string
	MarketTitle        string
	Quality            *marketintel.Quality
	ArbitrageSpread    *float64
	ArbitrageDirection string
}

// Build assembles a Context for the given signal, following the exact
// sequence of DecisionContextBuilder.build: wallet metrics, wallet
// controls, confidence score, market conditions, market quality, market
// filters, then risk state.
func (b *Builder) Build(ctx context.Context, sig signal.TradeSignal, signalType SignalType, opts BuildOptions) (Context, error) {
	dc := Context{
		SignalWallet: sig.Wallet,
		SignalMarket: sig.MarketID,
		SignalSide:   string(sig.Side),
		SignalSize:   sig.Size,
		SignalPrice:  sig.Price,
		SignalType:   signalType,

		WalletConfidenceScore: 0.5,
		WalletEnabled:         true,
		WalletScaleFactor:     1.0,

		MarketQualityScore: 0.5,
		MarketAllowed:      true,

		RiskMaxDailyLoss: b.maxDailyLoss,
	}

	if metrics, err := b.walletMetrics.FindByWallet(ctx, sig.Wallet); err == nil && metrics != nil {
		dc.WalletTotalTrades = metrics.TotalTrades
		dc.WalletAvgROI = metrics.AvgROI
		dc.WalletRecentPerformance = metrics.AvgROI
		if metrics.TotalTrades > 0 {
			dc.WalletWinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
		}
	}

	if wallet, err := b.wallets.FindByAddress(ctx, sig.Wallet); err == nil && wallet != nil {
		dc.WalletEnabled = wallet.Enabled && !wallet.Disabled
		if wallet.ScaleFactor > 0 {
			dc.WalletScaleFactor = wallet.ScaleFactor
		}
		dc.WalletMaxTradeSize = wallet.MaxTradeSize
		dc.WalletMinConfidence = wallet.MinConfidence
	}

	if b.walletScorer != nil {
		if score, err := b.walletScorer.GetWalletScore(ctx, sig.Wallet); err == nil {
			dc.WalletConfidenceScore = score
		}
	}

	liquidity, err := b.market.GetLiquidity(ctx, sig.MarketID)
	if err != nil {
		return Context{}, fmt.Errorf("decisioncontext: get liquidity: %w", err)
	}
	spread, err := b.market.GetSpread(ctx, sig.MarketID)
	if err != nil {
		return Context{}, fmt.Errorf("decisioncontext: get spread: %w", err)
	}
	dc.MarketLiquidity = liquidity
	dc.MarketSpread = spread

	if opts.Quality != nil {
		dc.MarketQualityScore = opts.Quality.OverallScore()
	}

	if b.filters != nil {
		filters, err := b.filters.GetFilters(ctx)
		if err != nil {
			return Context{}, fmt.Errorf("decisioncontext: get filters: %w", err)
		}
		dc.MarketAllowed = marketintel.IsMarketAllowed(sig.MarketID, opts.MarketCategory, opts.MarketTitle, filters)
		if !dc.MarketAllowed {
			dc.MarketFilterReason = "Market blocked by filter"
		}
	}

	dailyPnL, err := b.risk.GetDailyPnL(ctx, volatile.DateBucket(time.Now()))
	if err != nil {
		return Context{}, fmt.Errorf("decisioncontext: get daily pnl: %w", err)
	}
	openExposure, err := b.risk.GetOpenExposure(ctx)
	if err != nil {
		return Context{}, fmt.Errorf("decisioncontext: get open exposure: %w", err)
	}
	dc.RiskDailyPnL = dailyPnL
	dc.RiskOpenExposure = openExposure

	dc.ArbitrageSpread = opts.ArbitrageSpread
	dc.ArbitrageDirection = opts.ArbitrageDirection

	return dc, nil
}
