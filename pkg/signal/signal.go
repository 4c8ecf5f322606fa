// Package signal defines the TradeSignal type copy-traded wallet fills are
// turned into, and the deduplicating queue that buffers them for the
// decision pipeline (C6). Grounded on original_source's data/models.py and
// data/queue.py.
package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"copytrader/pkg/venue"
)

// Source identifies where a signal originated.
type Source string

const (
	SourceWalletCopy Source = "wallet_copy"
	SourceArbitrage  Source = "arbitrage"
	SourcePriceLag   Source = "price_lag"
)

// TradeSignal is a candidate trade surfaced to the decision pipeline, from a
// followed wallet's fill (C4), a detected cross-venue spread (C5), or a
// detected price lag (pkg/pricelag).
type TradeSignal struct {
	ID         string
	Source     Source
	Wallet     string // canonical lowercase address; detector name for arbitrage and price-lag signals
	MarketID   string
	Side       venue.OrderSide
	Action     venue.OrderAction
	Price      float64
	Size       float64
	DetectedAt time.Time
}

// NewWalletSignal builds a TradeSignal from a wallet fill, canonicalizing
// the wallet address via go-ethereum's address normalization.
func NewWalletSignal(fill venue.WalletFill) TradeSignal {
	return TradeSignal{
		ID:         uuid.NewString(),
		Source:     SourceWalletCopy,
		Wallet:     CanonicalAddress(fill.Wallet),
		MarketID:   fill.MarketID,
		Side:       fill.Side,
		Action:     fill.Action,
		Price:      fill.Price,
		Size:       fill.Size,
		DetectedAt: fill.Timestamp,
	}
}

// CanonicalAddress lowercases an Ethereum-style wallet address after parsing
// it into a 20-byte address (no validation: malformed input still yields an
// address, and short input is left-padded with zero bytes),
// grounded on spec §3's "canonical lowercase string" invariant. go-ethereum's
// common.HexToAddress is the idiomatic way every repo in the pack parses
// addresses; its Hex() applies EIP-55 checksum casing, which this function
// deliberately undoes with strings.ToLower to match the spec's invariant.
func CanonicalAddress(addr string) string {
	return strings.ToLower(common.HexToAddress(addr).Hex())
}

// DedupID computes a stable identifier for deduplicating equivalent signals
// across ingestion restarts, grounded verbatim on original_source's
// TradeSignal.dedup_id: SHA-256 of "wallet:market:side:action:size:minute",
// truncated to 16 hex characters. The source is excluded, so two signals
// that agree on every hashed field collide whatever their Source, and the
// timestamp is rounded down to the minute so near-duplicate
// fills reported a few seconds apart collapse to one signal.
func (s TradeSignal) DedupID() string {
	minute := s.DetectedAt.UTC().Truncate(time.Minute).Unix()
	key := fmt.Sprintf("%s:%s:%s:%s:%s:%d", s.Wallet, s.MarketID, s.Side, s.Action, formatSize(s.Size), minute)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])[:16]
}

// formatSize renders the size with a fixed precision so dedup_id is stable
// regardless of floating-point representation differences between equal
// values.
func formatSize(size float64) string {
	return strconv.FormatFloat(size, 'f', 6, 64)
}
