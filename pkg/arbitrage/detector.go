// Package arbitrage implements the C5 Arbitrage Detector: a periodic scan
// comparing the secondary venue (Kalshi-style) against the primary venue
// (Polymarket-style) for mapped markets, emitting TradeSignals when the
// spread exceeds a threshold. Grounded on original_source's
// services/arbitrage.py ArbitrageMonitorService.
package arbitrage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/sync/errgroup"

	"copytrader/pkg/signal"
	"copytrader/pkg/venue"
)

// maxConcurrentChecks bounds how many mappings are checked against both
// venues at once, so a large mapping table doesn't open unbounded
// concurrent connections to either venue.
const maxConcurrentChecks = 8

// Direction names which side of the primary venue's market is underpriced
// relative to the secondary venue, grounded on _calculate_direction.
type Direction string

const (
	DirectionBuyYes Direction = "BUY_YES"
	DirectionBuyNo  Direction = "BUY_NO"
)

// Opportunity is a detected cross-venue mispricing.
type Opportunity struct {
	PrimaryMarketID   string
	SecondaryMarketID string
	Label             string
	SecondaryPrice    float64
	PrimaryPrice      float64
	Spread            float64
	Direction         Direction
}

// spreadCap bounds the spread-to-size scaling factor, grounded on
// _create_signal's 10% cap.
const spreadCap = 0.10

// MappingSource supplies the set of markets to compare across venues.
type MappingSource interface {
	ListActive(ctx context.Context) ([]venue.MarketMapping, error)
}

// Config controls scan cadence and thresholds.
type Config struct {
	MinSpread     float64
	MaxSignalSize float64
	PollInterval  time.Duration
}

// Detector polls mapped markets across both venues and emits signals for
// spreads that clear the configured threshold.
type Detector struct {
	primary   venue.PrimaryProvider
	secondary venue.SecondaryProvider
	mappings  MappingSource
	cfg       Config
	queue     *signal.Queue
}

// NewDetector constructs a Detector wired to both venue clients, a mapping
// source, and the outbound signal queue.
func NewDetector(primary venue.PrimaryProvider, secondary venue.SecondaryProvider, mappings MappingSource, cfg Config, queue *signal.Queue) *Detector {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 30 * time.Second
	}
	if cfg.MinSpread <= 0 {
		cfg.MinSpread = 0.03
	}
	if cfg.MaxSignalSize <= 0 {
		cfg.MaxSignalSize = 100.0
	}
	return &Detector{primary: primary, secondary: secondary, mappings: mappings, cfg: cfg, queue: queue}
}

// Run polls on cfg.PollInterval until ctx is cancelled, logging and
// continuing past scan errors rather than exiting the loop.
func (d *Detector) Run(ctx context.Context) error {
	logx.WithContext(ctx).Infof("arbitrage: detector starting interval=%s min_spread=%.1f%%", d.cfg.PollInterval, d.cfg.MinSpread*100)
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := d.Scan(ctx); err != nil {
				logx.WithContext(ctx).Errorf("arbitrage: scan error: %v", err)
			}
		}
	}
}

// Scan checks every active mapping concurrently (bounded by
// maxConcurrentChecks) and enqueues a signal for each opportunity found.
func (d *Detector) Scan(ctx context.Context) ([]Opportunity, error) {
	mappings, err := d.mappings.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("arbitrage: list mappings: %w", err)
	}
	if len(mappings) == 0 {
		return nil, nil
	}

	found := make([]*Opportunity, len(mappings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, mapping := range mappings {
		i, mapping := i, mapping
		g.Go(func() error {
			opp, err := d.checkMapping(gctx, mapping)
			if err != nil {
				logx.WithContext(ctx).Errorf("arbitrage: check mapping %s: %v", mapping.PrimaryMarketID, err)
				return nil
			}
			found[i] = opp
			return nil
		})
	}
	_ = g.Wait()

	var opportunities []Opportunity
	for _, opp := range found {
		if opp == nil {
			continue
		}
		opportunities = append(opportunities, *opp)

		if d.queue != nil {
			sig := d.newSignal(*opp)
			if _, err := d.queue.Put(ctx, sig); err != nil {
				logx.WithContext(ctx).Errorf("arbitrage: enqueue signal: %v", err)
			}
		}
	}

	if len(opportunities) > 0 {
		logx.WithContext(ctx).Infof("arbitrage: found %d opportunities", len(opportunities))
	}
	return opportunities, nil
}

func (d *Detector) checkMapping(ctx context.Context, mapping venue.MarketMapping) (*Opportunity, error) {
	secondaryQuote, err := d.secondary.GetQuote(ctx, mapping.SecondaryMarketID)
	if err != nil {
		return nil, fmt.Errorf("secondary quote: %w", err)
	}

	primaryQuote, err := d.primary.GetQuote(ctx, mapping.PrimaryMarketID)
	if err != nil {
		return nil, fmt.Errorf("primary quote: %w", err)
	}
	if primaryQuote.YesPrice <= 0 {
		return nil, nil
	}

	spread := secondaryQuote.YesPrice - primaryQuote.YesPrice
	if abs(spread) < d.cfg.MinSpread {
		return nil, nil
	}

	direction := DirectionBuyYes
	if secondaryQuote.YesPrice <= primaryQuote.YesPrice {
		direction = DirectionBuyNo
	}

	return &Opportunity{
		PrimaryMarketID:   mapping.PrimaryMarketID,
		SecondaryMarketID: mapping.SecondaryMarketID,
		Label:             mapping.Label,
		SecondaryPrice:    secondaryQuote.YesPrice,
		PrimaryPrice:      primaryQuote.YesPrice,
		Spread:            spread,
		Direction:         direction,
	}, nil
}

// newSignal builds a TradeSignal for an opportunity, grounded on
// ArbitrageMonitorService._create_signal: size scales with spread
// magnitude, capped at a 10% spread.
func (d *Detector) newSignal(opp Opportunity) signal.TradeSignal {
	spreadFactor := abs(opp.Spread) / spreadCap
	if spreadFactor > 1.0 {
		spreadFactor = 1.0
	}
	size := d.cfg.MaxSignalSize * spreadFactor

	side := venue.SideYes
	price := opp.PrimaryPrice
	if opp.Direction == DirectionBuyNo {
		side = venue.SideNo
		price = 1 - opp.PrimaryPrice
	}

	return signal.TradeSignal{
		ID:         uuid.NewString(),
		Source:     signal.SourceArbitrage,
		Wallet:     "arbitrage_detector",
		MarketID:   opp.PrimaryMarketID,
		Side:       side,
		Action:     venue.ActionBuy,
		Price:      price,
		Size:       size,
		DetectedAt: time.Now(),
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
