// Command copytrader is the long-running daemon: one ingester per followed
// wallet, the arbitrage detector, decision workers draining the shared
// signal queue, and the resolution worker, following the teacher's
// cmd/cron.main signal.NotifyContext + sync.WaitGroup shutdown shape.
package main

import (
	"context"
	"os"
	ossignal "os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/internal/cli"
	"copytrader/internal/config"
	"copytrader/internal/svc"
	"copytrader/pkg/decisioncontext"
	"copytrader/pkg/pricelag"
	"copytrader/pkg/signal"
)

const (
	shutdownTimeout       = 10 * time.Second
	decisionWorkers       = 4
	defaultWalletPoll     = 5 * time.Second
	binanceReconnectDelay = 5 * time.Second
)

func main() {
	cfg := config.MustLoad()
	cli.LogConfigSummary(cfg)

	ctx := svcMustBuild(cfg)

	runCtx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	for _, wallet := range cfg.Wallets {
		if !wallet.Enabled {
			continue
		}
		ing := ctx.NewIngester(wallet.Address, defaultWalletPoll)
		wg.Add(1)
		go func(address string) {
			defer wg.Done()
			if err := ing.Run(runCtx); err != nil && runCtx.Err() == nil {
				logx.Errorf("ingester for wallet %s stopped: %v", address, err)
			}
		}(wallet.Address)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctx.ArbitrageDetector.Run(runCtx); err != nil && runCtx.Err() == nil {
			logx.Errorf("arbitrage detector stopped: %v", err)
		}
	}()

	for i := 0; i < decisionWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			runDecisionWorker(runCtx, ctx, workerID)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := ctx.ResolutionWorker.Run(runCtx); err != nil && runCtx.Err() == nil {
			logx.Errorf("resolution worker stopped: %v", err)
		}
	}()

	if ctx.PriceLagScanner != nil {
		symbols := cfg.PriceLag.Value.Symbols
		wg.Add(1)
		go func() {
			defer wg.Done()
			runBinanceFeed(runCtx, ctx.PriceLagFeed, symbols)
		}()

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ctx.PriceLagScanner.Run(runCtx); err != nil && runCtx.Err() == nil {
				logx.Errorf("price lag scanner stopped: %v", err)
			}
		}()
	}

	logx.Info("copytrader: daemon started")
	<-runCtx.Done()
	logx.Info("copytrader: shutdown signal received, draining tasks")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logx.Info("copytrader: all tasks stopped cleanly")
	case <-time.After(shutdownTimeout):
		logx.Error("copytrader: shutdown timeout exceeded, forcing exit")
	}

	if err := ctx.Close(); err != nil {
		logx.Errorf("copytrader: close service context: %v", err)
	}
}

// runBinanceFeed keeps the price-lag feed connected, reconnecting after
// binanceReconnectDelay whenever Connect or Run fails, until ctx is
// cancelled. Mirrors the reconnect-on-failure posture pkg/pricelag/feed.go
// documents as the caller's responsibility.
func runBinanceFeed(ctx context.Context, feed *pricelag.BinanceFeed, symbols []string) {
	for {
		if ctx.Err() != nil {
			return
		}
		if err := feed.Connect(ctx, symbols); err != nil {
			logx.Errorf("price lag feed: connect: %v", err)
		} else if err := feed.Run(ctx); err != nil && ctx.Err() == nil {
			logx.Errorf("price lag feed: run: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(binanceReconnectDelay):
		}
	}
}

func svcMustBuild(cfg *config.Config) *svc.ServiceContext {
	sc, err := svc.NewServiceContext(cfg)
	if err != nil {
		logx.Errorf("copytrader: build service context: %v", err)
		os.Exit(1)
	}
	return sc
}

// runDecisionWorker drains the shared signal queue and runs each signal
// through the decision brain, one signal at a time per worker. Several
// workers drain the same queue, so signals from one wallet may be processed
// concurrently and finish out of enqueue order.
func runDecisionWorker(ctx context.Context, sc *svc.ServiceContext, workerID int) {
	for {
		sig, err := sc.SignalQueue.Get(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logx.Errorf("decision worker %d: get signal: %v", workerID, err)
			continue
		}

		signalType := decisioncontext.SignalTypeCopyTrade
		switch sig.Source {
		case signal.SourceArbitrage:
			signalType = decisioncontext.SignalTypeArbitrage
		case signal.SourcePriceLag:
			signalType = decisioncontext.SignalTypePriceLag
		}

		result, err := sc.Brain.Process(ctx, sig, signalType)
		if err != nil {
			logx.Errorf("decision worker %d: process signal for wallet %s: %v", workerID, sig.Wallet, err)
			continue
		}
		logx.Infof("decision worker %d: %s", workerID, result.Message)
	}
}
