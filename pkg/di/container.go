package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/cacheinfra"
	"github.com/goliatone/go-market-cache/internal/catalog"
	"github.com/goliatone/go-market-cache/internal/config"
	"github.com/goliatone/go-market-cache/internal/httpapi"
	"github.com/goliatone/go-market-cache/internal/investment"
	"github.com/goliatone/go-market-cache/internal/prices"
	"github.com/goliatone/go-market-cache/internal/search"
	"github.com/goliatone/go-market-cache/internal/source"
	"github.com/goliatone/go-market-cache/internal/valuation"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"
)

// Container builds every component from one configuration and owns the
// shared connection handles. Components are created once and shared across
// requests; Close releases the handles.
type Container struct {
	config config.Config
	logger *zap.Logger

	store   cache.DocumentStore
	db      *bun.DB
	closers []func() error

	source          *source.Client
	index           *search.Index
	prices          *prices.Manager
	catalog         *catalog.Manager
	facade          *valuation.Facade
	investmentStore *investment.BunStore
	investments     *investment.Service
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger handed to every component.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithDocumentStore uses store instead of the configured backend.
func WithDocumentStore(store cache.DocumentStore) Option {
	return func(c *Container) {
		c.store = store
	}
}

// WithDB uses db instead of opening the configured database.
func WithDB(db *bun.DB) Option {
	return func(c *Container) {
		c.db = db
	}
}

// NewContainer validates cfg and wires the components.
func NewContainer(cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Container{
		config: cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.store == nil {
		store, closer, err := NewDocumentStore(cfg.Cache)
		if err != nil {
			return nil, err
		}
		c.store = store
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}

	if c.db == nil {
		db, err := OpenDB(cfg.Database)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.db = db
		c.closers = append(c.closers, db.Close)
	}

	c.source = source.NewClient(
		source.WithURLs(cfg.Sources.PricesURL, cfg.Sources.RatesURL, cfg.Sources.CatalogURL),
		source.WithTimeout(cfg.Sources.Timeout),
		source.WithUserAgent(cfg.Sources.UserAgent),
		source.WithLogger(c.logger.Named("source")),
	)

	c.index = search.New(c.db, search.WithLogger(c.logger.Named("search")))

	c.prices = prices.NewManager(c.store, c.source,
		prices.WithIndex(c.index),
		prices.WithLogger(c.logger.Named("prices")),
	)

	c.catalog = catalog.NewManager(c.store, c.source,
		catalog.WithLogger(c.logger.Named("catalog")),
	)

	c.facade = valuation.NewFacade(c.prices,
		valuation.WithCacheFor(cfg.Valuation.PriceCheckCacheFor),
	)

	c.investmentStore = investment.NewBunStore(c.db)
	c.investments = investment.NewService(c.investmentStore, c.prices, c.facade,
		investment.WithLogger(c.logger.Named("investment")),
	)

	return c, nil
}

// NewDocumentStore creates the configured backend. The returned closer is nil
// when the backend holds no connections.
func NewDocumentStore(cfg cache.Config) (cache.DocumentStore, func() error, error) {
	switch cfg.Backend {
	case cache.BackendRedis:
		store, err := cacheinfra.NewRedisStore(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case cache.BackendMemory:
		store, err := cacheinfra.NewMemoryStore(cfg.Memory)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// OpenDB opens the index database with the dialect matching its driver.
func OpenDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqldb, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	// Shared-cache SQLite takes table locks that fail readers immediately
	// while a resync transaction is open, so the pool is capped at one.
	if cfg.Driver == config.DriverSQLite && sharedCache(cfg.DSN) {
		sqldb.SetMaxOpenConns(1)
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		return bun.NewDB(sqldb, pgdialect.New()), nil
	case config.DriverSQLite:
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		_ = sqldb.Close()
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func sharedCache(dsn string) bool {
	return strings.Contains(dsn, "cache=shared") || strings.Contains(dsn, ":memory:")
}

// Migrate creates the search index and investments schemas.
func (c *Container) Migrate(ctx context.Context) error {
	if err := c.index.Migrate(ctx); err != nil {
		return err
	}
	return c.investmentStore.Migrate(ctx)
}

// Handler returns the HTTP handler over the container's components.
func (c *Container) Handler() *httpapi.Handler {
	return &httpapi.Handler{
		Valuer:      c.facade,
		Rates:       c.prices,
		Icons:       c.catalog,
		Suggester:   c.index,
		Investments: c.investments,
		Checks:      c.healthChecks(),
		OwnerHeader: c.config.HTTP.OwnerHeader,
		Logger:      c.logger.Named("http"),
	}
}

// pinger is implemented by document stores that hold a connection.
type pinger interface {
	Ping(ctx context.Context) error
}

func (c *Container) healthChecks() map[string]httpapi.HealthCheck {
	checks := map[string]httpapi.HealthCheck{
		"database": c.db.PingContext,
	}
	if p, ok := c.store.(pinger); ok {
		checks["cache"] = p.Ping
	}
	return checks
}

// Close releases the cache and database handles.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// Config returns the configuration the container was built from.
func (c *Container) Config() config.Config {
	return c.config
}

// Store returns the shared document store.
func (c *Container) Store() cache.DocumentStore {
	return c.store
}

// DB returns the database handle shared by the index and investments.
func (c *Container) DB() *bun.DB {
	return c.db
}

// Index returns the item search index.
func (c *Container) Index() *search.Index {
	return c.index
}

// Prices returns the price cache manager.
func (c *Container) Prices() *prices.Manager {
	return c.prices
}

// Catalog returns the catalog cache manager.
func (c *Container) Catalog() *catalog.Manager {
	return c.catalog
}

// Facade returns the valuation facade.
func (c *Container) Facade() *valuation.Facade {
	return c.facade
}

// Investments returns the investment service.
func (c *Container) Investments() *investment.Service {
	return c.investments
}
