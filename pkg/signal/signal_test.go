package signal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"copytrader/pkg/venue"
)

func TestCanonicalAddress(t *testing.T) {
	const want = "0x00abc0000000000000000000000000000000000a"
	cases := []string{
		"0xabc0000000000000000000000000000000000a",
		"0XABC0000000000000000000000000000000000A",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			got := CanonicalAddress(in)
			assert.Equal(t, want, got)
			// idempotent
			assert.Equal(t, got, CanonicalAddress(got))
		})
	}
}

func TestDedupID_StableAndMinuteRounded(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	s1 := TradeSignal{
		Wallet: CanonicalAddress("0xabc0000000000000000000000000000000000a"),
		MarketID: "mkt-1", Side: venue.SideYes, Action: venue.ActionBuy,
		DetectedAt: base,
	}
	s2 := s1
	s2.DetectedAt = base.Add(20 * time.Second) // still within the same minute

	assert.Equal(t, s1.DedupID(), s2.DedupID())
	assert.Len(t, s1.DedupID(), 16)
}

func TestDedupID_DifferentMinuteDiffers(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	s1 := TradeSignal{Wallet: "w", MarketID: "m", Side: venue.SideYes, Action: venue.ActionBuy, DetectedAt: base}
	s2 := s1
	s2.DetectedAt = base.Add(time.Minute)

	assert.NotEqual(t, s1.DedupID(), s2.DedupID())
}

func TestDedupID_DifferentSizeDiffers(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s1 := TradeSignal{Wallet: "w", MarketID: "m", Side: venue.SideYes, Action: venue.ActionBuy, Size: 10, DetectedAt: base}
	s2 := s1
	s2.Size = 25

	assert.NotEqual(t, s1.DedupID(), s2.DedupID())
}

func TestDedupID_ExcludesSource(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s1 := TradeSignal{Source: SourceWalletCopy, Wallet: "w", MarketID: "m", Side: venue.SideYes, Action: venue.ActionBuy, DetectedAt: base}
	s2 := s1
	s2.Source = SourceArbitrage

	assert.Equal(t, s1.DedupID(), s2.DedupID())
}
