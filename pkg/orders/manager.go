package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/pkg/venue"
)

// Store persists order state, narrowed from internal/volatile.Store's
// order methods.
type Store interface {
	SaveOrder(ctx context.Context, orderID string, v any) error
	GetOrder(ctx context.Context, orderID string, out any) (bool, error)
}

// Manager manages order lifecycle with retry logic, grounded on
// OrderManager.
type Manager struct {
	store              Store
	venue              venue.PrimaryProvider
	retryDelay         time.Duration
	backoffMultiplier  float64
}

// NewManager constructs a Manager. retryDelay defaults to 1s and
// backoffMultiplier to 2.0 when zero, matching OrderManager's dataclass
// defaults.
func NewManager(store Store, primary venue.PrimaryProvider, retryDelay time.Duration, backoffMultiplier float64) *Manager {
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	if backoffMultiplier <= 0 {
		backoffMultiplier = 2.0
	}
	return &Manager{store: store, venue: primary, retryDelay: retryDelay, backoffMultiplier: backoffMultiplier}
}

// CreateOrder builds and persists a new pending Order, grounded on
// OrderManager.create_order.
func (m *Manager) CreateOrder(ctx context.Context, signalID, marketID, side string, size, price float64, maxAttempts int) (*Order, error) {
	order := NewOrder(signalID, marketID, side, size, price, maxAttempts)
	if err := m.SaveOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SaveOrder persists order state, grounded on OrderManager.save_order.
func (m *Manager) SaveOrder(ctx context.Context, order *Order) error {
	if err := m.store.SaveOrder(ctx, order.ID, order); err != nil {
		return fmt.Errorf("orders: save order: %w", err)
	}
	return nil
}

// GetOrder loads an order by ID, grounded on OrderManager.get_order.
func (m *Manager) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	var order Order
	found, err := m.store.GetOrder(ctx, orderID, &order)
	if err != nil {
		return nil, fmt.Errorf("orders: get order: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &order, nil
}

// ExecuteWithRetry submits an order to the primary venue, retrying with
// exponential backoff on failure until max attempts are exhausted or a
// terminal (filled/partial) status is reached. Grounded verbatim on
// OrderManager.execute_with_retry.
func (m *Manager) ExecuteWithRetry(ctx context.Context, order *Order) (*Order, error) {
	delay := m.retryDelay

	for order.Attempts < order.MaxAttempts {
		size := order.RequestedSize
		if order.FilledSize > 0 {
			size = order.RemainingSize()
		}

		logx.WithContext(ctx).Infof("orders: submitting order %s (attempt %d/%d)", order.ID, order.Attempts+1, order.MaxAttempts)

		resp, err := m.venue.PlaceOrder(ctx, venue.OrderRequest{
			MarketID:   order.MarketID,
			Side:       venue.OrderSide(order.Side),
			Action:     venue.ActionBuy,
			Size:       size,
			LimitPrice: order.RequestedPrice,
			ClientID:   order.ID,
		})
		if err != nil {
			order.Attempts++
			logx.WithContext(ctx).Errorf("orders: order %s failed: %v", order.ID, err)
			order.markFailed(err.Error())

			if order.CanRetry() {
				logx.WithContext(ctx).Infof("orders: retrying order %s in %s", order.ID, delay)
				if !sleepOrDone(ctx, delay) {
					break
				}
				delay = time.Duration(float64(delay) * m.backoffMultiplier)
				order.Status = StatusPending
			}
			continue
		}

		order.markSubmitted(resp.VenueOrderID)

		switch resp.Status {
		case venue.StatusFilled:
			order.markFilled(resp.FilledSize, resp.AvgFillPrice)
			logx.WithContext(ctx).Infof("orders: order %s filled at %.4f", order.ID, resp.AvgFillPrice)
		case venue.StatusPartial:
			order.markPartial(resp.FilledSize, resp.AvgFillPrice)
			logx.WithContext(ctx).Infof("orders: order %s partially filled: %.4f/%.4f", order.ID, resp.FilledSize, order.RequestedSize)
		default:
			order.markFailed(fmt.Sprintf("unexpected status: %s", resp.Status))
			if order.CanRetry() {
				logx.WithContext(ctx).Infof("orders: retrying order %s in %s", order.ID, delay)
				if !sleepOrDone(ctx, delay) {
					break
				}
				delay = time.Duration(float64(delay) * m.backoffMultiplier)
				order.Status = StatusPending
				continue
			}
		}
		break
	}

	if err := m.SaveOrder(ctx, order); err != nil {
		return order, err
	}
	return order, nil
}

// sleepOrDone waits for d or returns false early if ctx is cancelled.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
