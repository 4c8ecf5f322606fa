package venue

import "github.com/shopspring/decimal"

// NormalizeSecondaryOdds converts a secondary-venue cents-denominated yes/no
// quote into a spread-adjusted decimal probability, grounded verbatim on
// original_source's MarketNormalizer.normalize_kalshi_odds: cents are first
// divided by 100, then the yes probability is renormalized against the
// implied yes+no overround so it sums to 1 across both sides.
func NormalizeSecondaryOdds(yesCents, noCents int64) (yesPrice, noPrice float64) {
	yes := decimal.New(yesCents, -2)
	no := decimal.New(noCents, -2)
	sum := yes.Add(no)
	if sum.IsZero() {
		return 0, 0
	}
	yesPrice, _ = yes.Div(sum).Round(6).Float64()
	noPrice = 1 - yesPrice
	return yesPrice, noPrice
}

// FindEquivalentMarkets returns the mapping whose primary or secondary market
// ID matches marketID, grounded on MarketNormalizer.find_equivalent_markets.
func FindEquivalentMarkets(mappings []MarketMapping, marketID string) (MarketMapping, bool) {
	for _, m := range mappings {
		if m.PrimaryMarketID == marketID || m.SecondaryMarketID == marketID {
			return m, true
		}
	}
	return MarketMapping{}, false
}
