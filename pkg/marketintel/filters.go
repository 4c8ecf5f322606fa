// Package marketintel implements the C7 market filter manager and market
// quality analyzer, grounded on original_source's
// core/intelligence/{filters,market}.py.
package marketintel

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"copytrader/internal/model"
)

// FilterType mirrors original_source's FilterType enum, aliased to the
// model package's storage-layer type.
type FilterType = model.FilterType

// FilterAction mirrors original_source's FilterAction enum.
type FilterAction = model.FilterAction

const (
	FilterTypeMarket   = model.FilterTypeMarket
	FilterTypeCategory = model.FilterTypeCategory
	FilterTypeKeyword  = model.FilterTypeKeyword

	FilterActionAllow = model.FilterActionAllow
	FilterActionDeny  = model.FilterActionDeny
)

// Filter is a single in-memory filter rule.
type Filter struct {
	ID     string
	Type   FilterType
	Value  string
	Action FilterAction
}

// FilterStore is the data-access surface the manager depends on, narrowed
// from internal/model.MarketFiltersModel.
type FilterStore interface {
	Insert(ctx context.Context, rec *model.MarketFilterRecord) error
	ListAll(ctx context.Context) ([]model.MarketFilterRecord, error)
}

// FilterManager manages market allow/deny filters, grounded on
// MarketFilterManager.
type FilterManager struct {
	store FilterStore
}

// NewFilterManager constructs a FilterManager over a FilterStore.
func NewFilterManager(store FilterStore) *FilterManager {
	return &FilterManager{store: store}
}

// AddFilter persists a new filter rule.
func (m *FilterManager) AddFilter(ctx context.Context, filterType FilterType, value string, action FilterAction) (Filter, error) {
	id := uuid.NewString()
	if err := m.store.Insert(ctx, &model.MarketFilterRecord{ID: id, Type: filterType, Value: value, Action: action}); err != nil {
		return Filter{}, fmt.Errorf("marketintel: add filter: %w", err)
	}
	return Filter{ID: id, Type: filterType, Value: value, Action: action}, nil
}

// GetFilters returns every configured filter.
func (m *FilterManager) GetFilters(ctx context.Context) ([]Filter, error) {
	rows, err := m.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("marketintel: list filters: %w", err)
	}
	filters := make([]Filter, 0, len(rows))
	for _, r := range rows {
		filters = append(filters, Filter{ID: r.ID, Type: r.Type, Value: r.Value, Action: r.Action})
	}
	return filters, nil
}

// IsMarketAllowed applies the market_id > category > keyword priority
// ladder, deny-wins at the keyword level, grounded verbatim on
// MarketFilterManager.is_market_allowed.
func IsMarketAllowed(marketID, category, title string, filters []Filter) bool {
	if len(filters) == 0 {
		return true
	}

	var marketAllow, marketDeny, categoryAllow, categoryDeny, keywordAllow, keywordDeny bool

	for _, f := range filters {
		switch f.Type {
		case FilterTypeMarket:
			if f.Value == marketID {
				if f.Action == FilterActionAllow {
					marketAllow = true
				} else {
					marketDeny = true
				}
			}
		case FilterTypeCategory:
			if strings.EqualFold(f.Value, category) {
				if f.Action == FilterActionAllow {
					categoryAllow = true
				} else {
					categoryDeny = true
				}
			}
		case FilterTypeKeyword:
			if strings.Contains(strings.ToLower(title), strings.ToLower(f.Value)) {
				if f.Action == FilterActionAllow {
					keywordAllow = true
				} else {
					keywordDeny = true
				}
			}
		}
	}

	if marketAllow {
		return true
	}
	if marketDeny {
		return false
	}
	if categoryAllow {
		return true
	}
	if categoryDeny {
		return false
	}
	if keywordDeny {
		return false
	}
	if keywordAllow {
		return true
	}
	return true
}
