package ingester_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"copytrader/pkg/ingester"
	"copytrader/pkg/signal"
	"copytrader/pkg/venue"
)

type fakeCursorStore struct {
	cursor map[string]int64
	seen   map[string]bool
}

func newFakeCursorStore() *fakeCursorStore {
	return &fakeCursorStore{cursor: map[string]int64{}, seen: map[string]bool{}}
}

func (f *fakeCursorStore) GetWalletCursor(ctx context.Context, wallet string) (int64, error) {
	return f.cursor[wallet], nil
}

func (f *fakeCursorStore) SetWalletCursor(ctx context.Context, wallet string, cursorUnixMs int64) error {
	f.cursor[wallet] = cursorUnixMs
	return nil
}

func (f *fakeCursorStore) HasSeenTx(ctx context.Context, wallet, txHash string) (bool, error) {
	return f.seen[wallet+":"+txHash], nil
}

func (f *fakeCursorStore) MarkSeenTx(ctx context.Context, wallet, txHash string) error {
	f.seen[wallet+":"+txHash] = true
	return nil
}

type fakePrimary struct {
	venue.PrimaryProvider
	fills []venue.WalletFill
	err   error
}

func (f *fakePrimary) WalletActivity(ctx context.Context, wallet string, sinceUnixMs int64) ([]venue.WalletFill, error) {
	return f.fills, f.err
}

const testWallet = "0x00000000000000000000000000000000000abc"

func TestIngester_PollOnce_EmitsNewSignals(t *testing.T) {
	now := time.Now()
	primary := &fakePrimary{fills: []venue.WalletFill{
		{TxHash: "tx1", Wallet: testWallet, MarketID: "m1", Side: venue.SideYes, Action: venue.ActionBuy, Price: 0.5, Size: 10, Timestamp: now},
	}}
	cursor := newFakeCursorStore()
	queue := signal.NewQueue(10, time.Minute)

	ing := ingester.New(testWallet, primary, cursor, queue, time.Second)
	n, err := ing.PollOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, queue.Len())
	assert.Equal(t, now.UnixMilli(), cursor.cursor[signal.CanonicalAddress(testWallet)])
}

func TestIngester_PollOnce_SkipsAlreadySeenTx(t *testing.T) {
	now := time.Now()
	primary := &fakePrimary{fills: []venue.WalletFill{
		{TxHash: "tx1", Wallet: testWallet, MarketID: "m1", Side: venue.SideYes, Action: venue.ActionBuy, Price: 0.5, Size: 10, Timestamp: now},
	}}
	cursor := newFakeCursorStore()
	queue := signal.NewQueue(10, time.Minute)

	ing := ingester.New(testWallet, primary, cursor, queue, time.Second)

	n1, err := ing.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n1)

	n2, err := ing.PollOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n2)
	assert.Equal(t, 1, queue.Len())
}

func TestIngester_PollOnce_PropagatesVenueError(t *testing.T) {
	primary := &fakePrimary{err: assertionError{"venue unavailable"}}
	cursor := newFakeCursorStore()
	queue := signal.NewQueue(10, time.Minute)

	ing := ingester.New(testWallet, primary, cursor, queue, time.Second)
	n, err := ing.PollOnce(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 0, n)
}

type assertionError struct{ msg string }

func (e assertionError) Error() string { return e.msg }
