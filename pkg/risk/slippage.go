package risk

import (
	"errors"
	"fmt"

	"copytrader/pkg/venue"
)

// ErrSlippageExceeded mirrors original_source's SlippageExceededError.
var ErrSlippageExceeded = errors.New("risk: slippage exceeded")

// ErrInsufficientLiquidity mirrors the ValueError raised by
// SlippageGuard.estimate_fill_price when the book cannot absorb the size.
var ErrInsufficientLiquidity = errors.New("risk: insufficient liquidity")

// SlippageGuard guards against excessive slippage during execution,
// grounded on original_source's core/execution/slippage.py SlippageGuard.
type SlippageGuard struct {
	MaxSlippagePercent float64
}

// NewSlippageGuard constructs a guard with the given percentage threshold
// (e.g. 2.0 for 2%).
func NewSlippageGuard(maxSlippagePercent float64) *SlippageGuard {
	if maxSlippagePercent <= 0 {
		maxSlippagePercent = 2.0
	}
	return &SlippageGuard{MaxSlippagePercent: maxSlippagePercent}
}

// CalculateSlippage returns the slippage between an expected and an actual
// price, expressed as a percentage.
func (g *SlippageGuard) CalculateSlippage(expectedPrice, actualPrice float64) float64 {
	if expectedPrice == 0 {
		return 0
	}
	diff := actualPrice - expectedPrice
	if diff < 0 {
		diff = -diff
	}
	return diff / expectedPrice * 100
}

// CheckSlippage returns ErrSlippageExceeded if the computed slippage exceeds
// the configured threshold.
func (g *SlippageGuard) CheckSlippage(expectedPrice, actualPrice float64) error {
	slippage := g.CalculateSlippage(expectedPrice, actualPrice)
	if slippage > g.MaxSlippagePercent {
		return fmt.Errorf("%w: %.1f%% exceeds maximum of %.1f%%", ErrSlippageExceeded, slippage, g.MaxSlippagePercent)
	}
	return nil
}

// EstimateFillPrice walks the relevant side of the order book and returns the
// size-weighted average fill price, grounded on
// SlippageGuard.estimate_fill_price.
func (g *SlippageGuard) EstimateFillPrice(book venue.OrderBook, action venue.OrderAction, size float64) (float64, error) {
	levels := book.Bids
	if action == venue.ActionBuy {
		levels = book.Asks
	}

	remaining := size
	totalCost := 0.0
	for _, level := range levels {
		fillAtLevel := remaining
		if level.Size < fillAtLevel {
			fillAtLevel = level.Size
		}
		totalCost += fillAtLevel * level.Price
		remaining -= fillAtLevel
		if remaining <= 0 {
			break
		}
	}

	if remaining > 0 {
		return 0, fmt.Errorf("%w: needed %.4f, available %.4f", ErrInsufficientLiquidity, size, size-remaining)
	}
	return totalCost / size, nil
}
