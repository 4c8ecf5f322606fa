// Package orders implements the C11 order manager: order lifecycle state
// and retry-with-backoff submission against the primary venue. Grounded on
// original_source's core/execution/{order,manager}.py.
package orders

import (
	"time"

	"github.com/google/uuid"
)

// Status is an order's lifecycle state, grounded on order.py's OrderStatus.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusFilled    Status = "filled"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Order tracks a trade order through submission and retry, grounded on
// Order.
type Order struct {
	ID             string
	SignalID       string
	MarketID       string
	Side           string
	RequestedSize  float64
	RequestedPrice float64
	MaxAttempts    int

	ExternalID     string
	Status         Status
	FilledSize     float64
	FilledPrice    *float64
	Attempts       int
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewOrder constructs a pending Order with a fresh ID.
func NewOrder(signalID, marketID, side string, size, price float64, maxAttempts int) *Order {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	now := time.Now().UTC()
	return &Order{
		ID:             uuid.NewString(),
		SignalID:       signalID,
		MarketID:       marketID,
		Side:           side,
		RequestedSize:  size,
		RequestedPrice: price,
		MaxAttempts:    maxAttempts,
		Status:         StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RemainingSize is the unfilled portion of the order.
func (o *Order) RemainingSize() float64 {
	return o.RequestedSize - o.FilledSize
}

// CanRetry reports whether a failed order still has attempts left, grounded
// on Order.can_retry.
func (o *Order) CanRetry() bool {
	return o.Status == StatusFailed && o.Attempts < o.MaxAttempts
}

func (o *Order) markSubmitted(externalID string) {
	o.ExternalID = externalID
	o.Status = StatusSubmitted
	o.Attempts++
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) markFilled(size, price float64) {
	o.FilledSize = size
	o.FilledPrice = &price
	o.Status = StatusFilled
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) markPartial(size, price float64) {
	o.FilledSize = size
	o.FilledPrice = &price
	o.Status = StatusPartial
	o.UpdatedAt = time.Now().UTC()
}

func (o *Order) markFailed(reason string) {
	o.FailureReason = reason
	o.Status = StatusFailed
	o.UpdatedAt = time.Now().UTC()
}
