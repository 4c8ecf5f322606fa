package marketintel_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"copytrader/pkg/marketintel"
)

func TestIsMarketAllowed_DefaultAllowWithNoFilters(t *testing.T) {
	assert.True(t, marketintel.IsMarketAllowed("m1", "politics", "Will X win?", nil))
}

func TestIsMarketAllowed_MarketIDTakesPriority(t *testing.T) {
	filters := []marketintel.Filter{
		{Type: marketintel.FilterTypeMarket, Value: "m1", Action: marketintel.FilterActionDeny},
		{Type: marketintel.FilterTypeCategory, Value: "politics", Action: marketintel.FilterActionAllow},
	}
	assert.False(t, marketintel.IsMarketAllowed("m1", "politics", "title", filters))
}

func TestIsMarketAllowed_CategoryOverridesKeyword(t *testing.T) {
	filters := []marketintel.Filter{
		{Type: marketintel.FilterTypeCategory, Value: "sports", Action: marketintel.FilterActionAllow},
		{Type: marketintel.FilterTypeKeyword, Value: "banned", Action: marketintel.FilterActionDeny},
	}
	assert.True(t, marketintel.IsMarketAllowed("m2", "sports", "a banned word market", filters))
}

func TestIsMarketAllowed_KeywordDenyWinsOverAllow(t *testing.T) {
	filters := []marketintel.Filter{
		{Type: marketintel.FilterTypeKeyword, Value: "election", Action: marketintel.FilterActionAllow},
		{Type: marketintel.FilterTypeKeyword, Value: "banned", Action: marketintel.FilterActionDeny},
	}
	assert.False(t, marketintel.IsMarketAllowed("m3", "other", "banned election market", filters))
}

func TestIsMarketAllowed_KeywordAllowWhenNoDeny(t *testing.T) {
	filters := []marketintel.Filter{
		{Type: marketintel.FilterTypeKeyword, Value: "election", Action: marketintel.FilterActionAllow},
	}
	assert.True(t, marketintel.IsMarketAllowed("m4", "other", "2026 election market", filters))
}
