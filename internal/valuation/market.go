package valuation

import "github.com/goliatone/go-market-cache/internal/model"

// MarketPrice picks the reference price of a record: the 24h primary market
// average, then the secondary suggested price, then the lowest ask.
func MarketPrice(rec model.PriceRecord) (Money, bool) {
	if rec.Steam != nil && rec.Steam.Last24h != nil {
		return MoneyFromFloat(*rec.Steam.Last24h), true
	}
	if rec.Skinport != nil && rec.Skinport.SuggestedPrice != nil {
		return MoneyFromFloat(*rec.Skinport.SuggestedPrice), true
	}
	if rec.Buff163 != nil && rec.Buff163.StartingAt != nil && rec.Buff163.StartingAt.Price != nil {
		return MoneyFromFloat(*rec.Buff163.StartingAt.Price), true
	}
	return Money{}, false
}
