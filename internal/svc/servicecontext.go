// Package svc is the composition root: it wires every C1-C13 component
// into one ServiceContext, following the teacher's internal/svc pattern of
// constructing config-driven sub-clients once at startup and handing the
// assembled graph to cmd/ entrypoints.
package svc

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"copytrader/internal/config"
	"copytrader/internal/store"
	"copytrader/internal/volatile"
	"copytrader/pkg/advisor"
	"copytrader/pkg/arbitrage"
	"copytrader/pkg/decision"
	"copytrader/pkg/decisioncontext"
	"copytrader/pkg/execution"
	"copytrader/pkg/ingester"
	"copytrader/pkg/journal"
	"copytrader/pkg/marketintel"
	"copytrader/pkg/orders"
	"copytrader/pkg/pricelag"
	"copytrader/pkg/resolution"
	"copytrader/pkg/risk"
	"copytrader/pkg/safety"
	"copytrader/pkg/signal"
	"copytrader/pkg/venue"
	venueprimary "copytrader/pkg/venue/primary"
	venuesecondary "copytrader/pkg/venue/secondary"
)

// ServiceContext is the fully-wired dependency graph for the copytrader
// daemon: every package built for C1-C13, ready for cmd/copytrader and
// cmd/copytraderctl to drive.
type ServiceContext struct {
	Config config.Config

	// C1/C2 stores
	Store    *store.Store
	Volatile volatile.Store

	// C3 venue adapters
	Primary   venue.PrimaryProvider
	Secondary venue.SecondaryProvider

	// C4/C5 signal sources
	SignalQueue       *signal.Queue
	ArbitrageDetector *arbitrage.Detector

	// Supplemented price-lag detector (Binance vs. Polymarket). Nil when
	// no price_lag config section or watched symbols are configured.
	PriceLagFeed    *pricelag.BinanceFeed
	PriceLagScanner *pricelag.Scanner

	// C9 risk
	RiskManager *risk.Manager

	// C7 decision context
	ContextBuilder *decisioncontext.Builder
	FilterManager  *marketintel.FilterManager
	MarketAnalyzer *marketintel.Analyzer

	// C8 advisor + decision brain
	Advisor advisor.Advisor
	Brain   *decision.Brain

	// C10/C11/C12 execution
	SafetyGuard  *safety.Guard
	OrderManager *orders.Manager
	ModeExecutor *execution.ModeAwareExecutor

	// C13 resolution
	ResolutionWorker *resolution.Worker
}

// NewServiceContext constructs the full dependency graph from a loaded
// config. Network clients are constructed eagerly but make no calls until
// driven by cmd/copytrader's task loop.
func NewServiceContext(c *config.Config) (*ServiceContext, error) {
	svc := &ServiceContext{Config: *c}

	if c.Postgres.DataSource == "" {
		return nil, fmt.Errorf("svc: postgres.data_source is required")
	}
	svc.Store = store.New(c.Postgres.DataSource)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.Redis.Addr,
		Password: c.Redis.Password,
		DB:       c.Redis.DB,
	})
	svc.Volatile = volatile.NewRedisStore(redisClient, volatile.DefaultTTLSet)

	venueCfg := c.Venue.Value
	if venueCfg == nil {
		return nil, fmt.Errorf("svc: venue config section is required")
	}
	svc.Primary = venueprimary.New(venueCfg.Primary)
	secondary, err := venuesecondary.New(venueCfg.Secondary)
	if err != nil {
		return nil, fmt.Errorf("svc: build secondary venue client: %w", err)
	}
	svc.Secondary = secondary

	svc.SignalQueue = signal.NewQueue(1024, 5*time.Minute)

	mappings := &mappingSource{model: svc.Store.MarketMappings}
	arbCfg := arbitrage.Config{}
	if a := c.Arbitrage.Value; a != nil {
		arbCfg = arbitrage.Config{MinSpread: a.MinSpread, PollInterval: a.PollInterval}
	}
	svc.ArbitrageDetector = arbitrage.NewDetector(svc.Primary, svc.Secondary, mappings, arbCfg, svc.SignalQueue)

	if pl := c.PriceLag.Value; pl != nil && len(pl.Symbols) > 0 {
		svc.PriceLagFeed = pricelag.NewBinanceFeed()
		watchlist := &cryptoWatchlistSource{model: svc.Store.CryptoWatchlist}
		svc.PriceLagScanner = pricelag.NewScanner(svc.PriceLagFeed, watchlist, svc.Primary, pricelag.Config{
			PollInterval: pl.PollInterval,
			MinPriceMove: pl.MinPriceMove,
			MaxMarketLag: pl.MaxMarketLag,
		}, svc.SignalQueue)
	}

	riskCfg := c.Risk.Value
	if riskCfg == nil {
		return nil, fmt.Errorf("svc: risk config section is required")
	}
	svc.RiskManager = risk.NewManager(svc.Volatile, *riskCfg)

	svc.FilterManager = marketintel.NewFilterManager(svc.Store.MarketFilters)
	svc.MarketAnalyzer = marketintel.NewAnalyzer()

	market := &marketService{primary: svc.Primary}
	svc.ContextBuilder = decisioncontext.NewBuilder(svc.Volatile, market, svc.Store.Wallets, svc.Store.WalletMetrics, riskCfg.MaxDailyLoss).
		WithFilters(svc.FilterManager)

	advisorCfg := c.Advisor.Value
	if advisorCfg == nil {
		return nil, fmt.Errorf("svc: advisor config section is required")
	}
	advisorClient, err := advisor.NewClient(advisorCfg)
	if err != nil {
		return nil, fmt.Errorf("svc: build advisor client: %w", err)
	}
	svc.Advisor = advisorClient

	evaluator := decision.NewClaudeEvaluator(svc.Advisor)

	svc.SafetyGuard = safety.NewGuard(svc.Volatile)
	svc.OrderManager = orders.NewManager(svc.Volatile, svc.Primary, time.Second, 2.0)
	paperExecutor := execution.NewPaperExecutor(svc.Volatile)
	liveExecutor := execution.NewLiveExecutor(svc.OrderManager)
	hasCreds := venueCfg.Primary.APIKey != "" && venueCfg.Primary.APISecret != ""
	svc.ModeExecutor = execution.NewModeAwareExecutor(svc.Volatile, svc.SafetyGuard, paperExecutor, liveExecutor, hasCreds)

	journalDir := filepath.Join(c.BaseDir(), "journal")
	svc.Brain = decision.NewBrain(svc.ContextBuilder, evaluator, svc.RiskManager, svc.ModeExecutor).
		WithJournal(journal.NewWriter(journalDir))

	svc.ResolutionWorker = resolution.NewWorker(svc.Store.Trades, svc.Store.WalletMetrics, &resolutionSource{primary: svc.Primary}, 0)

	return svc, nil
}

// NewIngester builds a per-wallet signal ingester (C4), grounded on
// watcher.py's per-wallet polling actor.
func (s *ServiceContext) NewIngester(wallet string, pollInterval time.Duration) *ingester.Ingester {
	return ingester.New(wallet, s.Primary, s.Volatile, s.SignalQueue, pollInterval)
}

// Close releases advisor-held resources. The Postgres pool and Redis client
// are process-lifetime and closed by the OS on exit, matching the teacher's
// ServiceContext (which never explicitly closes its sqlx.SqlConn either).
func (s *ServiceContext) Close() error {
	if closer, ok := s.Advisor.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
