package cache

import "time"

// Fixed document keys.
const (
	PriceTableKey    = "price-table"
	CurrencyRatesKey = "currency-rates"

	catalogKeyPrefix = "catalog-"
)

// Expiry applied after every wholesale refresh.
const (
	PriceTableTTL    = 8 * time.Hour
	CurrencyRatesTTL = 3 * time.Hour
	CatalogTTL       = 24 * time.Hour
)

// CatalogKey returns the document key of a category catalog.
func CatalogKey(category string) string {
	return catalogKeyPrefix + category
}
