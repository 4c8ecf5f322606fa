// Package ingester implements the C4 signal ingester: one polling actor per
// followed wallet, converting venue activity into deduplicated TradeSignals.
// Grounded on original_source's data/polymarket/watcher.py WalletWatcher.
package ingester

import (
	"context"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"copytrader/pkg/signal"
	"copytrader/pkg/venue"
)

// CursorStore persists per-wallet polling state, narrowed from
// internal/volatile.Store.
type CursorStore interface {
	GetWalletCursor(ctx context.Context, wallet string) (int64, error)
	SetWalletCursor(ctx context.Context, wallet string, cursorUnixMs int64) error
	HasSeenTx(ctx context.Context, wallet, txHash string) (bool, error)
	MarkSeenTx(ctx context.Context, wallet, txHash string) error
}

// Ingester polls one wallet's activity on the primary venue, turning new
// fills into TradeSignals and pushing them onto the shared queue, grounded
// on WalletWatcher._poll_wallet/start.
type Ingester struct {
	wallet       string
	venue        venue.PrimaryProvider
	cursor       CursorStore
	queue        *signal.Queue
	pollInterval time.Duration
}

// New constructs an Ingester for a single wallet. pollInterval defaults to
// 5 seconds, matching WalletWatcher's poll_interval default.
func New(wallet string, primary venue.PrimaryProvider, cursor CursorStore, queue *signal.Queue, pollInterval time.Duration) *Ingester {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Ingester{
		wallet:       signal.CanonicalAddress(wallet),
		venue:        primary,
		cursor:       cursor,
		queue:        queue,
		pollInterval: pollInterval,
	}
}

// Run polls on i.pollInterval until ctx is cancelled, grounded on
// WalletWatcher.start's loop shape.
func (i *Ingester) Run(ctx context.Context) error {
	logx.WithContext(ctx).Infof("ingester: starting for wallet=%s interval=%s", i.wallet, i.pollInterval)
	ticker := time.NewTicker(i.pollInterval)
	defer ticker.Stop()

	for {
		if n, err := i.PollOnce(ctx); err != nil {
			logx.WithContext(ctx).Errorf("ingester: poll wallet %s: %v", i.wallet, err)
		} else if n > 0 {
			logx.WithContext(ctx).Infof("ingester: wallet %s emitted %d signals", i.wallet, n)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// PollOnce fetches new activity for the wallet since its last cursor,
// deduplicates against the seen-tx set, and enqueues new signals. Signals
// within one wallet's poll are emitted in timestamp order, matching venue's
// WalletActivity contract. Grounded on _poll_wallet.
func (i *Ingester) PollOnce(ctx context.Context) (int, error) {
	cursor, err := i.cursor.GetWalletCursor(ctx, i.wallet)
	if err != nil {
		return 0, fmt.Errorf("ingester: get cursor: %w", err)
	}

	fills, err := i.venue.WalletActivity(ctx, i.wallet, cursor)
	if err != nil {
		return 0, fmt.Errorf("ingester: fetch wallet activity: %w", err)
	}

	emitted := 0
	var maxCursor = cursor

	for _, fill := range fills {
		seen, err := i.cursor.HasSeenTx(ctx, i.wallet, fill.TxHash)
		if err != nil {
			return emitted, fmt.Errorf("ingester: check seen tx: %w", err)
		}
		if seen {
			continue
		}
		if err := i.cursor.MarkSeenTx(ctx, i.wallet, fill.TxHash); err != nil {
			return emitted, fmt.Errorf("ingester: mark seen tx: %w", err)
		}

		sig := signal.NewWalletSignal(fill)
		if ok, err := i.queue.Put(ctx, sig); err != nil {
			return emitted, fmt.Errorf("ingester: enqueue signal: %w", err)
		} else if ok {
			emitted++
		}

		ts := fill.Timestamp.UnixMilli()
		if ts > maxCursor {
			maxCursor = ts
		}
	}

	if maxCursor > cursor {
		if err := i.cursor.SetWalletCursor(ctx, i.wallet, maxCursor); err != nil {
			return emitted, fmt.Errorf("ingester: set cursor: %w", err)
		}
	}

	return emitted, nil
}
