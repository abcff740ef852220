package prices

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source fetches the authoritative price and rate documents.
type Source interface {
	FetchPriceTable(ctx context.Context) (model.PriceTable, error)
	FetchCurrencyRates(ctx context.Context) ([]byte, error)
}

// IndexSyncer mirrors a refreshed key set into the search index.
type IndexSyncer interface {
	Resync(ctx context.Context, keys []string) error
}

// Manager serves price records and currency rates from the document store.
type Manager struct {
	store  cache.DocumentStore
	source Source
	index  IndexSyncer
	logger *zap.Logger

	group singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithIndex sets the index refreshed alongside the price table.
func WithIndex(index IndexSyncer) Option {
	return func(m *Manager) {
		m.index = index
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a price manager.
func NewManager(store cache.DocumentStore, source Source, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		source: source,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// PriceRecord returns the record of name. A cold table or a missing name
// triggers one refresh and one more read; a name still missing afterwards is
// cache.ErrItemNotFound.
func (m *Manager) PriceRecord(ctx context.Context, name string) (model.PriceRecord, error) {
	raw, _, found, err := m.lookup(ctx, name)
	if err != nil {
		return model.PriceRecord{}, err
	}

	if !found {
		if err := m.Refresh(ctx); err != nil {
			return model.PriceRecord{}, err
		}

		raw, _, found, err = m.lookup(ctx, name)
		if err != nil {
			return model.PriceRecord{}, err
		}
		if !found {
			return model.PriceRecord{}, cache.ErrItemNotFound
		}
	}

	return decodeRecord(raw)
}

// CachedPriceRecord reads the record of name from a warm table without
// refreshing it; a name the table does not hold is cache.ErrItemNotFound.
// A cold table is handled as in PriceRecord.
func (m *Manager) CachedPriceRecord(ctx context.Context, name string) (model.PriceRecord, error) {
	raw, present, found, err := m.lookup(ctx, name)
	if err != nil {
		return model.PriceRecord{}, err
	}
	if !present {
		return m.PriceRecord(ctx, name)
	}
	if !found {
		return model.PriceRecord{}, cache.ErrItemNotFound
	}
	return decodeRecord(raw)
}

func decodeRecord(raw json.RawMessage) (model.PriceRecord, error) {
	var rec model.PriceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.PriceRecord{}, cache.NewError(cache.KindCacheRead, "decode price record", cache.PriceTableKey, err)
	}
	return rec, nil
}

// ItemExists reports whether name is a key of the price table.
func (m *Manager) ItemExists(ctx context.Context, name string) (bool, error) {
	_, err := m.PriceRecord(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, cache.ErrItemNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Refresh fetches the price table, replaces the cached document and resyncs
// the index. Concurrent refreshes share one fetch.
func (m *Manager) Refresh(ctx context.Context) error {
	ch := m.group.DoChan(cache.PriceTableKey, func() (any, error) {
		return nil, m.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return cache.NewError(cache.KindSourceFetch, "refresh price table", cache.PriceTableKey, ctx.Err())
	case res := <-ch:
		return res.Err
	}
}

func (m *Manager) refresh(ctx context.Context) error {
	refreshID := uuid.NewString()
	start := time.Now()

	table, err := m.source.FetchPriceTable(ctx)
	if err != nil {
		m.logger.Warn("price table refresh failed",
			zap.String("refresh_id", refreshID),
			zap.Error(err),
		)
		return err
	}

	if err := cache.Populate(ctx, m.store, cache.PriceTableKey, cache.PriceTableTTL, table.Raw); err != nil {
		m.logger.Warn("price table write failed",
			zap.String("refresh_id", refreshID),
			zap.Error(err),
		)
		return err
	}

	m.logger.Info("price table refreshed",
		zap.String("refresh_id", refreshID),
		zap.Int("items", len(table.Keys)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if m.index == nil {
		return nil
	}

	if err := m.index.Resync(ctx, table.Keys); err != nil {
		m.logger.Error("item index resync failed",
			zap.String("refresh_id", refreshID),
			zap.Error(err),
		)
	}

	return nil
}

// lookup reads the first match of name. present is false for a cold table;
// found is false both for a cold table and for a name the table does not hold.
func (m *Manager) lookup(ctx context.Context, name string) (raw json.RawMessage, present, found bool, err error) {
	reply, present, err := m.store.GetPath(ctx, cache.PriceTableKey, cache.Key(name))
	if err != nil {
		return nil, false, false, cache.NewError(cache.KindCacheRead, "get price record", cache.PriceTableKey, err)
	}
	if !present {
		return nil, false, false, nil
	}

	match, ok, err := cache.FirstMatch(reply)
	if err != nil {
		return nil, true, false, cache.NewError(cache.KindCacheRead, "get price record", cache.PriceTableKey, err)
	}
	return match, true, ok, nil
}
