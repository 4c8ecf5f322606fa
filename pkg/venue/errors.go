package venue

import "errors"

// Sentinel error kinds a venue adapter classifies its failures into, so
// upstream retry/risk logic (pkg/orders, pkg/execution) can react without
// parsing strings.
var (
	ErrAuth       = errors.New("venue: authentication failed")
	ErrLiquidity  = errors.New("venue: insufficient liquidity")
	ErrNotFound   = errors.New("venue: resource not found")
	ErrRateLimit  = errors.New("venue: rate limited")
	ErrVenue      = errors.New("venue: request failed")
)
