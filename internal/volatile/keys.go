// Package volatile is the C2 Volatile Store: a Redis-backed cache for
// mode/emergency-stop flags, atomic P&L/exposure counters, per-wallet
// cursors, and short-lived price snapshots. Key namespacing is grounded
// verbatim on the teacher's internal/cache/keys.go pattern (Namespace
// const, TTLSet, formatKey joiner, paired KeyFn/TTL helpers); the exact key
// families themselves are grounded on original_source's storage/cache.py
// PREFIX_WALLET/MARKET/RISK/SYSTEM constants.
package volatile

import (
	"strconv"
	"strings"
	"time"
)

// Namespace prefixes every key this package mints.
const Namespace = "copytrader"

// TTLClass buckets keys into short/medium/long lived categories, mirroring
// the teacher's CacheTTL config shape.
type TTLClass int

const (
	TTLShort TTLClass = iota
	TTLMedium
	TTLLong
	TTLNone // no expiry; explicit deletes only
)

// TTLSet resolves each TTLClass to a concrete duration. Values are sourced
// from config; these are the package defaults used when unconfigured.
type TTLSet struct {
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

// DefaultTTLSet mirrors original_source's 60s market-price cache TTL and a
// comfortably longer window for wallet/risk bookkeeping.
var DefaultTTLSet = TTLSet{
	Short:  60 * time.Second,
	Medium: 5 * time.Minute,
	Long:   1 * time.Hour,
}

func (t TTLSet) Resolve(class TTLClass) time.Duration {
	switch class {
	case TTLShort:
		return t.Short
	case TTLMedium:
		return t.Medium
	case TTLLong:
		return t.Long
	default:
		return 0
	}
}

func formatKey(parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	all = append(all, Namespace)
	all = append(all, parts...)
	return strings.Join(all, ":")
}

// --- wallet: per-wallet ingestion cursor and last-seen trade dedup set ---

func WalletCursorKey(wallet string) string { return formatKey("wallet", wallet, "cursor") }
func WalletCursorTTL() TTLClass            { return TTLNone }

func WalletSeenKey(wallet string) string { return formatKey("wallet", wallet, "seen") }
func WalletSeenTTL() TTLClass            { return TTLLong }

func WalletLastTradeKey(wallet string) string { return formatKey("wallet", wallet, "last_trade") }
func WalletLastTradeTTL() TTLClass            { return TTLNone }

func WalletConfidenceKey(wallet string) string { return formatKey("wallet", wallet, "confidence") }
func WalletConfidenceTTL() TTLClass            { return TTLMedium }

// --- market: short-lived quote/price cache ---

func MarketPriceKey(marketID string) string { return formatKey("market", marketID, "price") }
func MarketPriceTTL() TTLClass               { return TTLShort }

// --- risk: atomic daily P&L / open exposure counters ---

func RiskDailyPnLKey(date string) string { return formatKey("risk", "daily_pnl", date) }
func RiskDailyPnLTTL() TTLClass          { return TTLLong }

func RiskOpenExposureKey() string { return formatKey("risk", "open_exposure") }
func RiskOpenExposureTTL() TTLClass { return TTLNone }

// --- system: global mode and emergency-stop flags ---

func SystemModeKey() string          { return formatKey("system", "mode") }
func SystemModeTTL() TTLClass        { return TTLNone }

func SystemEmergencyStopKey() string { return formatKey("system", "emergency_stop") }
func SystemEmergencyStopTTL() TTLClass { return TTLNone }

func SystemFirstLiveAckKey() string  { return formatKey("system", "first_live_ack") }
func SystemFirstLiveAckTTL() TTLClass { return TTLNone }

// SystemLiveConfirmedKey tracks the operator's explicit one-time
// confirmation that live trading may proceed, grounded on spec §3's
// system:live_confirmed key and §4.10's mode=live fallback-to-paper rule.
func SystemLiveConfirmedKey() string  { return formatKey("system", "live_confirmed") }
func SystemLiveConfirmedTTL() TTLClass { return TTLNone }

// --- orders: JSON-serialized order state, keyed by internal order ID ---

func OrderKey(orderID string) string { return formatKey("order", orderID) }
func OrderTTL() TTLClass             { return TTLLong }

// DateBucket formats t as the daily bucket key suffix risk counters use,
// so daily P&L naturally resets across UTC day boundaries.
func DateBucket(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// FormatFloat renders a float for storage as a Redis string value, matching
// the precision INCRBYFLOAT itself accepts.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
