package valuation

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
)

// DefaultCacheFor is how long callers may cache a price-check response.
const DefaultCacheFor = 30 * time.Minute

// PriceSource resolves price records by item name. CachedPriceRecord must
// not refresh a table that is already cached.
type PriceSource interface {
	PriceRecord(ctx context.Context, name string) (model.PriceRecord, error)
	CachedPriceRecord(ctx context.Context, name string) (model.PriceRecord, error)
}

// Line is one price-check input line.
type Line struct {
	MarketHashName string `json:"market_hash_name"`
	Count          int    `json:"count"`
}

// Validate implements validation.Validatable.
func (l Line) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.MarketHashName, validation.Required),
		validation.Field(&l.Count, validation.Required, validation.Min(1)),
	)
}

// PricedLine is one priced output line. Price is nil when Found is false.
type PricedLine struct {
	MarketHashName string             `json:"market_hash_name"`
	Count          int                `json:"count"`
	Found          bool               `json:"found"`
	Price          *model.PriceRecord `json:"price,omitempty"`
}

// PriceCheckResult is the aggregate price-check response.
type PriceCheckResult struct {
	Items      []PricedLine `json:"items"`
	TotalCount int          `json:"total_count"`

	// CacheFor is the caller-facing cache lifetime of this response.
	CacheFor time.Duration `json:"-"`
}

// Facade composes price lookups into the shapes consumed by the API layer.
type Facade struct {
	prices   PriceSource
	cacheFor time.Duration
}

// Option configures a Facade.
type Option func(*Facade)

// WithCacheFor overrides DefaultCacheFor.
func WithCacheFor(d time.Duration) Option {
	return func(f *Facade) {
		if d > 0 {
			f.cacheFor = d
		}
	}
}

// NewFacade creates a valuation facade.
func NewFacade(prices PriceSource, opts ...Option) *Facade {
	f := &Facade{
		prices:   prices,
		cacheFor: DefaultCacheFor,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// PriceOf returns the price record of name.
func (f *Facade) PriceOf(ctx context.Context, name string) (model.PriceRecord, error) {
	return f.prices.PriceRecord(ctx, name)
}

// PriceCheck prices every line in order. Repeated names are priced once per
// line. Unknown items are reported with Found false; any other failure aborts
// the whole check.
//
// Only the first unknown name may refresh the price table. Later lines are
// read against the table that refresh produced, so a batch costs at most one
// source fetch.
func (f *Facade) PriceCheck(ctx context.Context, lines []Line) (PriceCheckResult, error) {
	if err := validation.Validate(lines); err != nil {
		return PriceCheckResult{}, err
	}

	result := PriceCheckResult{
		Items:    make([]PricedLine, 0, len(lines)),
		CacheFor: f.cacheFor,
	}

	refreshed := false
	for _, line := range lines {
		priced := PricedLine{MarketHashName: line.MarketHashName, Count: line.Count}

		lookup := f.prices.PriceRecord
		if refreshed {
			lookup = f.prices.CachedPriceRecord
		}

		rec, err := lookup(ctx, line.MarketHashName)
		switch {
		case err == nil:
			priced.Found = true
			priced.Price = &rec
		case errors.Is(err, cache.ErrItemNotFound):
			refreshed = true
		default:
			return PriceCheckResult{}, err
		}

		result.Items = append(result.Items, priced)
		result.TotalCount += line.Count
	}

	return result, nil
}
