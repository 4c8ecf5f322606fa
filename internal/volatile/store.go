package volatile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the C2 Volatile Store interface: mode/emergency-stop flags,
// atomic counters, per-wallet cursors and dedup sets, and short-lived quote
// caching. Grounded on original_source's storage/cache.py Cache class.
type Store interface {
	// Mode and safety flags (C12).
	GetMode(ctx context.Context) (string, error)
	SetMode(ctx context.Context, mode string) error
	GetEmergencyStop(ctx context.Context) (*EmergencyStop, error)
	SetEmergencyStop(ctx context.Context, es EmergencyStop) error
	ClearEmergencyStop(ctx context.Context) error
	IsFirstLiveAcknowledged(ctx context.Context) (bool, error)
	AcknowledgeFirstLive(ctx context.Context) error
	GetLiveConfirmed(ctx context.Context) (bool, error)
	SetLiveConfirmed(ctx context.Context, confirmed bool) error

	// Risk counters (C9), atomic via Redis INCRBYFLOAT -- never
	// read-modify-write.
	IncrDailyPnL(ctx context.Context, date string, delta float64) (float64, error)
	GetDailyPnL(ctx context.Context, date string) (float64, error)
	IncrOpenExposure(ctx context.Context, delta float64) (float64, error)
	GetOpenExposure(ctx context.Context) (float64, error)

	// Wallet bookkeeping (C4).
	GetWalletCursor(ctx context.Context, wallet string) (int64, error)
	SetWalletCursor(ctx context.Context, wallet string, cursorUnixMs int64) error
	HasSeenTx(ctx context.Context, wallet, txHash string) (bool, error)
	MarkSeenTx(ctx context.Context, wallet, txHash string) error

	// Market quote cache (C7).
	GetCachedPrice(ctx context.Context, marketID string) (float64, bool, error)
	SetCachedPrice(ctx context.Context, marketID string, price float64) error

	// Orders (C11), JSON blob keyed by internal order ID.
	SaveOrder(ctx context.Context, orderID string, v any) error
	GetOrder(ctx context.Context, orderID string, out any) (bool, error)
}

// EmergencyStop mirrors original_source's SafetyGuard persisted payload:
// {"active": bool, "reason": str, "time": iso8601}.
type EmergencyStop struct {
	Active bool      `json:"active"`
	Reason string    `json:"reason"`
	Time   time.Time `json:"time"`
}

type redisStore struct {
	client *redis.Client
	ttl    TTLSet
}

// NewRedisStore constructs a Store backed by go-redis.
func NewRedisStore(client *redis.Client, ttl TTLSet) Store {
	return &redisStore{client: client, ttl: ttl}
}

func (s *redisStore) expireFor(class TTLClass) time.Duration {
	if class == TTLNone {
		return 0
	}
	return s.ttl.Resolve(class)
}

func (s *redisStore) GetMode(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, SystemModeKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "paper", nil
	}
	if err != nil {
		return "", fmt.Errorf("volatile: get mode: %w", err)
	}
	return v, nil
}

func (s *redisStore) SetMode(ctx context.Context, mode string) error {
	return s.client.Set(ctx, SystemModeKey(), mode, s.expireFor(SystemModeTTL())).Err()
}

func (s *redisStore) GetEmergencyStop(ctx context.Context) (*EmergencyStop, error) {
	raw, err := s.client.Get(ctx, SystemEmergencyStopKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return &EmergencyStop{Active: false}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("volatile: get emergency stop: %w", err)
	}
	var es EmergencyStop
	if err := json.Unmarshal(raw, &es); err != nil {
		return nil, fmt.Errorf("volatile: decode emergency stop: %w", err)
	}
	return &es, nil
}

func (s *redisStore) SetEmergencyStop(ctx context.Context, es EmergencyStop) error {
	data, err := json.Marshal(es)
	if err != nil {
		return fmt.Errorf("volatile: encode emergency stop: %w", err)
	}
	return s.client.Set(ctx, SystemEmergencyStopKey(), data, s.expireFor(SystemEmergencyStopTTL())).Err()
}

func (s *redisStore) ClearEmergencyStop(ctx context.Context) error {
	return s.SetEmergencyStop(ctx, EmergencyStop{Active: false})
}

func (s *redisStore) IsFirstLiveAcknowledged(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, SystemFirstLiveAckKey()).Result()
	if err != nil {
		return false, fmt.Errorf("volatile: check first-live ack: %w", err)
	}
	return n > 0, nil
}

func (s *redisStore) AcknowledgeFirstLive(ctx context.Context) error {
	return s.client.Set(ctx, SystemFirstLiveAckKey(), "1", s.expireFor(SystemFirstLiveAckTTL())).Err()
}

func (s *redisStore) GetLiveConfirmed(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, SystemLiveConfirmedKey()).Result()
	if err != nil {
		return false, fmt.Errorf("volatile: check live confirmed: %w", err)
	}
	return n > 0, nil
}

func (s *redisStore) SetLiveConfirmed(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return s.client.Del(ctx, SystemLiveConfirmedKey()).Err()
	}
	return s.client.Set(ctx, SystemLiveConfirmedKey(), "1", s.expireFor(SystemLiveConfirmedTTL())).Err()
}

func (s *redisStore) IncrDailyPnL(ctx context.Context, date string, delta float64) (float64, error) {
	v, err := s.client.IncrByFloat(ctx, RiskDailyPnLKey(date), delta).Result()
	if err != nil {
		return 0, fmt.Errorf("volatile: incr daily pnl: %w", err)
	}
	s.client.Expire(ctx, RiskDailyPnLKey(date), s.expireFor(RiskDailyPnLTTL()))
	return v, nil
}

func (s *redisStore) GetDailyPnL(ctx context.Context, date string) (float64, error) {
	v, err := s.client.Get(ctx, RiskDailyPnLKey(date)).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("volatile: get daily pnl: %w", err)
	}
	return v, nil
}

func (s *redisStore) IncrOpenExposure(ctx context.Context, delta float64) (float64, error) {
	v, err := s.client.IncrByFloat(ctx, RiskOpenExposureKey(), delta).Result()
	if err != nil {
		return 0, fmt.Errorf("volatile: incr open exposure: %w", err)
	}
	return v, nil
}

func (s *redisStore) GetOpenExposure(ctx context.Context) (float64, error) {
	v, err := s.client.Get(ctx, RiskOpenExposureKey()).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("volatile: get open exposure: %w", err)
	}
	return v, nil
}

func (s *redisStore) GetWalletCursor(ctx context.Context, wallet string) (int64, error) {
	v, err := s.client.Get(ctx, WalletCursorKey(wallet)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("volatile: get wallet cursor: %w", err)
	}
	return v, nil
}

func (s *redisStore) SetWalletCursor(ctx context.Context, wallet string, cursorUnixMs int64) error {
	return s.client.Set(ctx, WalletCursorKey(wallet), cursorUnixMs, s.expireFor(WalletCursorTTL())).Err()
}

func (s *redisStore) HasSeenTx(ctx context.Context, wallet, txHash string) (bool, error) {
	n, err := s.client.SIsMember(ctx, WalletSeenKey(wallet), txHash).Result()
	if err != nil {
		return false, fmt.Errorf("volatile: check seen tx: %w", err)
	}
	return n, nil
}

func (s *redisStore) MarkSeenTx(ctx context.Context, wallet, txHash string) error {
	key := WalletSeenKey(wallet)
	if err := s.client.SAdd(ctx, key, txHash).Err(); err != nil {
		return fmt.Errorf("volatile: mark seen tx: %w", err)
	}
	return s.client.Expire(ctx, key, s.expireFor(WalletSeenTTL())).Err()
}

func (s *redisStore) GetCachedPrice(ctx context.Context, marketID string) (float64, bool, error) {
	v, err := s.client.Get(ctx, MarketPriceKey(marketID)).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("volatile: get cached price: %w", err)
	}
	return v, true, nil
}

func (s *redisStore) SetCachedPrice(ctx context.Context, marketID string, price float64) error {
	return s.client.Set(ctx, MarketPriceKey(marketID), price, s.expireFor(MarketPriceTTL())).Err()
}

func (s *redisStore) SaveOrder(ctx context.Context, orderID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("volatile: encode order: %w", err)
	}
	return s.client.Set(ctx, OrderKey(orderID), data, s.expireFor(OrderTTL())).Err()
}

func (s *redisStore) GetOrder(ctx context.Context, orderID string, out any) (bool, error) {
	raw, err := s.client.Get(ctx, OrderKey(orderID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("volatile: get order: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("volatile: decode order: %w", err)
	}
	return true, nil
}

var _ Store = (*redisStore)(nil)
