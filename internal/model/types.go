package model

// PriceRecord is the per-item entry of the global price table. Every market
// and every monetary field is optional.
type PriceRecord struct {
	Steam    *SteamPrices    `json:"steam,omitempty"`
	Skinport *SkinportPrices `json:"skinport,omitempty"`
	Buff163  *BuffPrices     `json:"buff163,omitempty"`
}

// SteamPrices holds trailing average prices on the primary market.
type SteamPrices struct {
	Last24h *float64 `json:"last_24h,omitempty"`
	Last7d  *float64 `json:"last_7d,omitempty"`
	Last30d *float64 `json:"last_30d,omitempty"`
	Last90d *float64 `json:"last_90d,omitempty"`
}

// SkinportPrices holds secondary market listing prices.
type SkinportPrices struct {
	SuggestedPrice *float64 `json:"suggested_price,omitempty"`
	StartingAt     *float64 `json:"starting_at,omitempty"`
}

// BuffPrices holds secondary market ask and bid prices.
type BuffPrices struct {
	StartingAt   *BuffPrice `json:"starting_at,omitempty"`
	HighestOrder *BuffPrice `json:"highest_order,omitempty"`
}

// BuffPrice wraps a single optional price.
type BuffPrice struct {
	Price *float64 `json:"price,omitempty"`
}

// PriceTable is a freshly fetched price table: the raw document plus its item
// names in document order.
type PriceTable struct {
	Raw  []byte
	Keys []string
}

// Currency is a recognized currency code.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	CNY Currency = "CNY"
)

// BaseCurrency is the currency every rate is relative to.
const BaseCurrency = USD

// Currencies lists the recognized currency codes.
var Currencies = []Currency{USD, EUR, CNY}

// CurrencyRates maps a recognized currency to its rate against BaseCurrency.
type CurrencyRates map[Currency]float64

// Category is an item catalog category.
type Category string

const (
	Skins    Category = "skins"
	Stickers Category = "stickers"
	Crates   Category = "crates"
	Agents   Category = "agents"
	Patches  Category = "patches"
)

// Categories is the order in which catalogs are searched for an icon.
var Categories = []Category{Skins, Stickers, Crates, Agents, Patches}

// CatalogEntry is one record of a category catalog. Only the fields the
// cache layer reads are decoded.
type CatalogEntry struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Image string `json:"image"`
}
