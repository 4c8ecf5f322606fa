package svc

import (
	"context"
	"fmt"

	"copytrader/internal/model"
	"copytrader/pkg/pricelag"
	"copytrader/pkg/resolution"
	"copytrader/pkg/venue"
)

// mappingSource adapts internal/model.MarketMappingsModel to
// arbitrage.MappingSource. All configured mappings are treated as active;
// operators remove a row via cmd/copytraderctl to stop scanning it.
type mappingSource struct {
	model model.MarketMappingsModel
}

func (m *mappingSource) ListActive(ctx context.Context) ([]venue.MarketMapping, error) {
	rows, err := m.model.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("svc: list market mappings: %w", err)
	}
	out := make([]venue.MarketMapping, 0, len(rows))
	for _, r := range rows {
		out = append(out, venue.MarketMapping{
			ID:                r.ID,
			PrimaryMarketID:   r.PrimaryMarketID,
			SecondaryMarketID: r.SecondaryMarketID,
			Label:             r.Label,
		})
	}
	return out, nil
}

// marketService adapts venue.PrimaryProvider's quote/book endpoints to
// decisioncontext.MarketService, grounded on original_source's
// MarketDataService.get_liquidity/get_spread.
type marketService struct {
	primary venue.PrimaryProvider
}

func (m *marketService) GetLiquidity(ctx context.Context, marketID string) (float64, error) {
	quote, err := m.primary.GetQuote(ctx, marketID)
	if err != nil {
		return 0, fmt.Errorf("svc: get quote for liquidity: %w", err)
	}
	return quote.Liquidity, nil
}

func (m *marketService) GetSpread(ctx context.Context, marketID string) (float64, error) {
	book, err := m.primary.GetOrderBook(ctx, marketID)
	if err != nil {
		return 0, fmt.Errorf("svc: get order book for spread: %w", err)
	}
	bid, ask := book.BestBidAsk()
	if bid <= 0 || ask <= 0 {
		return 0, nil
	}
	return ask - bid, nil
}

// cryptoWatchlistSource adapts internal/model.CryptoWatchlistModel to
// pricelag.WatchlistSource.
type cryptoWatchlistSource struct {
	model model.CryptoWatchlistModel
}

func (c *cryptoWatchlistSource) ListEnabled(ctx context.Context) ([]pricelag.WatchEntry, error) {
	rows, err := c.model.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("svc: list crypto watchlist: %w", err)
	}
	out := make([]pricelag.WatchEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, pricelag.WatchEntry{
			MarketID:     r.MarketID,
			MarketTitle:  r.MarketTitle,
			CryptoSymbol: r.CryptoSymbol,
		})
	}
	return out, nil
}

// resolutionSource adapts venue.PrimaryProvider.GetResolution to
// resolution.MarketSource.
type resolutionSource struct {
	primary venue.PrimaryProvider
}

func (r *resolutionSource) GetResolution(ctx context.Context, marketID string) (*resolution.MarketResolution, error) {
	res, err := r.primary.GetResolution(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("svc: get market resolution: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	return &resolution.MarketResolution{Closed: res.Closed, WinningSide: string(res.WinningSide)}, nil
}
