package prices

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
	"go.uber.org/zap"
)

// CurrencyRates returns the rates of the recognized currencies. The base
// currency is 1 when the source omits it; other missing codes are left out.
func (m *Manager) CurrencyRates(ctx context.Context) (model.CurrencyRates, error) {
	raw, found, err := m.store.Get(ctx, cache.CurrencyRatesKey)
	if err != nil {
		return nil, cache.NewError(cache.KindCacheRead, "get currency rates", cache.CurrencyRatesKey, err)
	}

	if !found {
		raw, err = m.populateRates(ctx)
		if err != nil {
			return nil, err
		}
	}

	var all map[string]float64
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, cache.NewError(cache.KindCacheRead, "decode currency rates", cache.CurrencyRatesKey, err)
	}

	rates := make(model.CurrencyRates, len(model.Currencies))
	for _, c := range model.Currencies {
		if rate, ok := all[string(c)]; ok {
			rates[c] = rate
		}
	}
	if _, ok := rates[model.BaseCurrency]; !ok {
		rates[model.BaseCurrency] = 1
	}

	return rates, nil
}

func (m *Manager) populateRates(ctx context.Context) ([]byte, error) {
	ch := m.group.DoChan(cache.CurrencyRatesKey, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		start := time.Now()

		body, err := m.source.FetchCurrencyRates(ctx)
		if err != nil {
			m.logger.Warn("currency rates refresh failed", zap.Error(err))
			return nil, err
		}
		if err := cache.Populate(ctx, m.store, cache.CurrencyRatesKey, cache.CurrencyRatesTTL, body); err != nil {
			m.logger.Warn("currency rates write failed", zap.Error(err))
			return nil, err
		}

		m.logger.Info("currency rates refreshed", zap.Duration("elapsed", time.Since(start)))
		return body, nil
	})

	select {
	case <-ctx.Done():
		return nil, cache.NewError(cache.KindSourceFetch, "refresh currency rates", cache.CurrencyRatesKey, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}
