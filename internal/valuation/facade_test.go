package valuation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
)

// fakePrices serves records from a map and tracks lookups. Every
// PriceRecord miss counts as a refresh.
type fakePrices struct {
	mu        sync.Mutex
	records   map[string]model.PriceRecord
	err       error
	lookups   []string
	refreshes int
}

func (f *fakePrices) PriceRecord(ctx context.Context, name string) (model.PriceRecord, error) {
	rec, err := f.CachedPriceRecord(ctx, name)
	if errors.Is(err, cache.ErrItemNotFound) {
		f.mu.Lock()
		f.refreshes++
		f.mu.Unlock()
	}
	return rec, err
}

func (f *fakePrices) CachedPriceRecord(ctx context.Context, name string) (model.PriceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lookups = append(f.lookups, name)
	if f.err != nil {
		return model.PriceRecord{}, f.err
	}
	rec, ok := f.records[name]
	if !ok {
		return model.PriceRecord{}, cache.ErrItemNotFound
	}
	return rec, nil
}

func ptr(v float64) *float64 { return &v }

func newFakePrices() *fakePrices {
	return &fakePrices{
		records: map[string]model.PriceRecord{
			"a": {Steam: &model.SteamPrices{Last24h: ptr(1.5)}},
			"b": {Skinport: &model.SkinportPrices{SuggestedPrice: ptr(2.25)}},
		},
	}
}

func TestPriceCheck_TotalsAndPreservesLines(t *testing.T) {
	prices := newFakePrices()
	f := NewFacade(prices)

	result, err := f.PriceCheck(context.Background(), []Line{
		{MarketHashName: "a", Count: 2},
		{MarketHashName: "b", Count: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalCount != 5 {
		t.Errorf("expected total 5, got %d", result.TotalCount)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(result.Items))
	}
	if result.CacheFor != DefaultCacheFor {
		t.Errorf("expected default cache hint, got %v", result.CacheFor)
	}
}

func TestPriceCheck_NoDeduplication(t *testing.T) {
	prices := newFakePrices()
	f := NewFacade(prices)

	result, err := f.PriceCheck(context.Background(), []Line{
		{MarketHashName: "a", Count: 2},
		{MarketHashName: "a", Count: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("expected one line per input, got %d", len(result.Items))
	}
	for i, item := range result.Items {
		if !item.Found || item.Price == nil {
			t.Errorf("line %d: expected a price record", i)
		}
	}
	if result.TotalCount != 5 {
		t.Errorf("expected total 5, got %d", result.TotalCount)
	}
	if len(prices.lookups) != 2 {
		t.Errorf("expected one lookup per line, got %d", len(prices.lookups))
	}
}

func TestPriceCheck_UnknownItem(t *testing.T) {
	f := NewFacade(newFakePrices())

	result, err := f.PriceCheck(context.Background(), []Line{
		{MarketHashName: "a", Count: 1},
		{MarketHashName: "missing", Count: 4},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Items[1].Found || result.Items[1].Price != nil {
		t.Errorf("expected unknown item to be reported as not found, got %+v", result.Items[1])
	}
	if result.TotalCount != 5 {
		t.Errorf("expected unknown items to count, got %d", result.TotalCount)
	}
}

func TestPriceCheck_RefreshesAtMostOnce(t *testing.T) {
	prices := newFakePrices()
	f := NewFacade(prices)

	result, err := f.PriceCheck(context.Background(), []Line{
		{MarketHashName: "missing-1", Count: 1},
		{MarketHashName: "a", Count: 1},
		{MarketHashName: "missing-2", Count: 1},
		{MarketHashName: "missing-3", Count: 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if prices.refreshes != 1 {
		t.Errorf("expected a single refresh for the batch, got %d", prices.refreshes)
	}
	if len(prices.lookups) != 4 {
		t.Errorf("expected one lookup per line, got %d", len(prices.lookups))
	}
	if !result.Items[1].Found {
		t.Error("expected the known item to be priced after a miss")
	}
	for _, i := range []int{0, 2, 3} {
		if result.Items[i].Found {
			t.Errorf("line %d: expected not found", i)
		}
	}
}

func TestPriceCheck_FailureAborts(t *testing.T) {
	prices := newFakePrices()
	prices.err = cache.NewError(cache.KindSourceFetch, "fetch price table", "", errors.New("timeout"))

	_, err := NewFacade(prices).PriceCheck(context.Background(), []Line{{MarketHashName: "a", Count: 1}})
	if !errors.Is(err, cache.ErrSourceFetch) {
		t.Fatalf("expected source fetch failure, got %v", err)
	}
}

func TestPriceCheck_Validation(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
	}{
		{name: "missing name", lines: []Line{{Count: 1}}},
		{name: "zero count", lines: []Line{{MarketHashName: "a"}}},
		{name: "negative count", lines: []Line{{MarketHashName: "a", Count: -2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prices := newFakePrices()

			_, err := NewFacade(prices).PriceCheck(context.Background(), tt.lines)
			var verrs validation.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			if len(prices.lookups) != 0 {
				t.Error("expected no lookups for invalid input")
			}
		})
	}
}

func TestPriceCheck_Empty(t *testing.T) {
	result, err := NewFacade(newFakePrices(), WithCacheFor(time.Minute)).PriceCheck(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalCount != 0 || len(result.Items) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.CacheFor != time.Minute {
		t.Errorf("expected custom cache hint, got %v", result.CacheFor)
	}
}

func TestPriceOf(t *testing.T) {
	f := NewFacade(newFakePrices())

	rec, err := f.PriceOf(context.Background(), "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *rec.Steam.Last24h != 1.5 {
		t.Errorf("unexpected record %+v", rec)
	}

	if _, err := f.PriceOf(context.Background(), "missing"); !errors.Is(err, cache.ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestMarketPrice(t *testing.T) {
	tests := []struct {
		name   string
		rec    model.PriceRecord
		want   string
		wantOK bool
	}{
		{name: "primary market", rec: model.PriceRecord{Steam: &model.SteamPrices{Last24h: ptr(31.42)}, Skinport: &model.SkinportPrices{SuggestedPrice: ptr(30)}}, want: "31.42", wantOK: true},
		{name: "secondary suggested", rec: model.PriceRecord{Steam: &model.SteamPrices{}, Skinport: &model.SkinportPrices{SuggestedPrice: ptr(30.155)}}, want: "30.16", wantOK: true},
		{name: "lowest ask", rec: model.PriceRecord{Buff163: &model.BuffPrices{StartingAt: &model.BuffPrice{Price: ptr(26.4)}}}, want: "26.40", wantOK: true},
		{name: "no prices", rec: model.PriceRecord{}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MarketPrice(tt.rec)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
