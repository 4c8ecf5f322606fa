package pricelag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/pkg/signal"
	"copytrader/pkg/venue"
)

// WatchEntry pairs a crypto-related market with the Binance symbol to watch
// it against, narrowed from internal/model.CryptoWatchlistRecord.
type WatchEntry struct {
	MarketID     string
	MarketTitle  string
	CryptoSymbol string
}

// WatchlistSource supplies the operator-configured set of markets to
// monitor for price lag.
type WatchlistSource interface {
	ListEnabled(ctx context.Context) ([]WatchEntry, error)
}

// QuoteSource supplies a market's current YES probability, narrowed from
// venue.PrimaryProvider.
type QuoteSource interface {
	GetQuote(ctx context.Context, marketID string) (*venue.MarketQuote, error)
}

// baselineProbability mirrors check_crypto_markets's simplifying choice of
// a fixed 0.5 neutral baseline rather than tracking each market's
// pre-move probability.
const baselineProbability = 0.5

// Config controls scan cadence and detection thresholds.
type Config struct {
	PollInterval time.Duration
	MinPriceMove float64
	MaxMarketLag float64
}

// Scanner periodically compares cached Binance prices against watched
// markets' probabilities and emits signals for detected lag, grounded on
// PriceLagDetector.check_crypto_markets and create_lag_signal.
type Scanner struct {
	feed      *BinanceFeed
	detector  *Detector
	watchlist WatchlistSource
	quotes    QuoteSource
	cfg       Config
	queue     *signal.Queue

	lastPrice map[string]float64
}

// NewScanner wires a Scanner from the Binance feed, watchlist, quote
// source, and outbound signal queue.
func NewScanner(feed *BinanceFeed, watchlist WatchlistSource, quotes QuoteSource, cfg Config, queue *signal.Queue) *Scanner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	return &Scanner{
		feed:      feed,
		detector:  NewDetector(cfg.MinPriceMove, cfg.MaxMarketLag),
		watchlist: watchlist,
		quotes:    quotes,
		cfg:       cfg,
		queue:     queue,
		lastPrice: make(map[string]float64),
	}
}

// Run polls on cfg.PollInterval until ctx is cancelled, logging and
// continuing past scan errors rather than exiting the loop.
func (s *Scanner) Run(ctx context.Context) error {
	logx.WithContext(ctx).Infof("pricelag: scanner starting interval=%s min_move=%.1f%%", s.cfg.PollInterval, s.detector.MinPriceMove*100)
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				logx.WithContext(ctx).Errorf("pricelag: scan error: %v", err)
			}
		}
	}
}

// Scan checks every watched market against its Binance symbol's cached
// price and enqueues a signal for each detected lag, grounded on
// check_crypto_markets.
func (s *Scanner) Scan(ctx context.Context) ([]Opportunity, error) {
	entries, err := s.watchlist.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("pricelag: list watchlist: %w", err)
	}

	var opportunities []Opportunity
	for _, entry := range entries {
		opp, err := s.checkEntry(ctx, entry)
		if err != nil {
			logx.WithContext(ctx).Errorf("pricelag: check %s: %v", entry.MarketID, err)
			continue
		}
		if opp == nil {
			continue
		}
		opportunities = append(opportunities, *opp)
		logx.WithContext(ctx).Infof("pricelag: detected lag %s", opp)

		if s.queue != nil {
			sig := s.newSignal(*opp)
			if _, err := s.queue.Put(ctx, sig); err != nil {
				logx.WithContext(ctx).Errorf("pricelag: enqueue signal: %v", err)
			}
		}
	}
	return opportunities, nil
}

func (s *Scanner) checkEntry(ctx context.Context, entry WatchEntry) (*Opportunity, error) {
	price, ok := s.feed.GetPrice(entry.CryptoSymbol)
	if !ok {
		return nil, nil
	}

	cached, seen := s.lastPrice[entry.CryptoSymbol]
	if !seen {
		cached = price.Price
	}
	priceChange := s.detector.CalculatePriceChange(cached, price.Price)
	s.lastPrice[entry.CryptoSymbol] = price.Price

	quote, err := s.quotes.GetQuote(ctx, entry.MarketID)
	if err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}

	opp := s.detector.DetectLag(priceChange, quote.YesPrice, baselineProbability)
	if opp == nil {
		return nil, nil
	}
	opp.MarketID = entry.MarketID
	opp.MarketTitle = entry.MarketTitle
	opp.CryptoSymbol = entry.CryptoSymbol
	return opp, nil
}

// newSignal builds a TradeSignal from a detected opportunity, grounded on
// create_lag_signal: side follows the expected direction, size is held at
// a fixed unit size since the original leaves sizing to downstream risk
// management rather than scaling by confidence.
func (s *Scanner) newSignal(opp Opportunity) signal.TradeSignal {
	side := venue.SideYes
	if opp.Side() == "NO" {
		side = venue.SideNo
	}
	return signal.TradeSignal{
		ID:         uuid.NewString(),
		Source:     signal.SourcePriceLag,
		Wallet:     "price_lag_detector",
		MarketID:   opp.MarketID,
		Side:       side,
		Action:     venue.ActionBuy,
		Price:      opp.CurrentProbability,
		Size:       1.0,
		DetectedAt: time.Now(),
	}
}
