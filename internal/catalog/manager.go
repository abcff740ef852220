package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Source fetches one category catalog.
type Source interface {
	FetchCatalog(ctx context.Context, category model.Category) ([]byte, error)
}

// Manager resolves icons through the cached catalogs.
type Manager struct {
	store  cache.DocumentStore
	source Source
	logger *zap.Logger

	group singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a catalog manager.
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

// Icon returns the image URL of name, searching model.Categories in order.
// It returns cache.ErrIconNotFound when no catalog lists the item with an
// image.
func (m *Manager) Icon(ctx context.Context, name string) (string, error) {
	for _, category := range model.Categories {
		image, err := m.lookup(ctx, category, name)
		if err != nil {
			return "", err
		}
		if image != "" {
			return image, nil
		}
	}

	return "", cache.ErrIconNotFound
}

// Entries returns the entries of category listed under the normalized name.
func (m *Manager) Entries(ctx context.Context, category model.Category, name string) ([]model.CatalogEntry, error) {
	key := cache.CatalogKey(string(category))
	path := cache.Where("name", NormalizeName(category, name))

	raw, present, err := m.store.GetPath(ctx, key, path)
	if err != nil {
		return nil, cache.NewError(cache.KindCacheRead, "get catalog entry", key, err)
	}

	if !present {
		if err := m.populate(ctx, category); err != nil {
			return nil, err
		}

		raw, present, err = m.store.GetPath(ctx, key, path)
		if err != nil {
			return nil, cache.NewError(cache.KindCacheRead, "get catalog entry", key, err)
		}
		if !present {
			return nil, nil
		}
	}

	var entries []model.CatalogEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, cache.NewError(cache.KindCacheRead, "decode catalog entry", key, err)
	}

	return entries, nil
}

func (m *Manager) lookup(ctx context.Context, category model.Category, name string) (string, error) {
	entries, err := m.Entries(ctx, category, name)
	if err != nil {
		return "", err
	}

	for _, entry := range entries {
		if entry.Image != "" {
			return entry.Image, nil
		}
	}
	return "", nil
}

// populate fetches category and writes it with the catalog expiry.
// Concurrent misses on one category share the fetch.
func (m *Manager) populate(ctx context.Context, category model.Category) error {
	key := cache.CatalogKey(string(category))

	ch := m.group.DoChan(key, func() (any, error) {
		ctx := context.WithoutCancel(ctx)
		start := time.Now()

		body, err := m.source.FetchCatalog(ctx, category)
		if err != nil {
			m.logger.Warn("catalog refresh failed", zap.String("category", string(category)), zap.Error(err))
			return nil, err
		}
		if err := cache.Populate(ctx, m.store, key, cache.CatalogTTL, body); err != nil {
			m.logger.Warn("catalog write failed", zap.String("category", string(category)), zap.Error(err))
			return nil, err
		}

		m.logger.Info("catalog refreshed",
			zap.String("category", string(category)),
			zap.Int("bytes", len(body)),
			zap.Duration("elapsed", time.Since(start)),
		)
		return nil, nil
	})

	select {
	case <-ctx.Done():
		return cache.NewError(cache.KindSourceFetch, "refresh catalog", key, ctx.Err())
	case res := <-ch:
		return res.Err
	}
}
