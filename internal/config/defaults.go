package config

import (
	"strings"
	"time"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/source"
	"github.com/goliatone/go-market-cache/internal/valuation"
)

// Supported index database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Default values for optional configuration fields.
const (
	DefaultLogLevel        = "info"
	DefaultLogEncoding     = "json"
	DefaultHTTPAddr        = ":8080"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 90 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultOwnerHeader     = "X-User-ID"
	DefaultSQLiteDSN       = "file:marketcache.db?_journal_mode=WAL&_busy_timeout=5000"
	DefaultMaxOpenConns    = 10
)

func (c *Config) applyDefaults() {
	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Encoding == "" {
		c.Log.Encoding = DefaultLogEncoding
	}

	// HTTP defaults
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = DefaultHTTPAddr
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = DefaultReadTimeout
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = DefaultWriteTimeout
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.HTTP.OwnerHeader == "" {
		c.HTTP.OwnerHeader = DefaultOwnerHeader
	}

	applyCacheDefaults(&c.Cache)

	// Source defaults
	if c.Sources.PricesURL == "" {
		c.Sources.PricesURL = source.DefaultPricesURL
	}
	if c.Sources.RatesURL == "" {
		c.Sources.RatesURL = source.DefaultRatesURL
	}
	if c.Sources.CatalogURL == "" {
		c.Sources.CatalogURL = source.DefaultCatalogURL
	}
	if c.Sources.Timeout == 0 {
		c.Sources.Timeout = source.DefaultTimeout
	}
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = source.DefaultUserAgent
	}

	// Database defaults: a postgres DSN selects the postgres driver.
	if c.Database.Driver == "" {
		if strings.HasPrefix(c.Database.DSN, "postgres://") || strings.HasPrefix(c.Database.DSN, "postgresql://") {
			c.Database.Driver = DriverPostgres
		} else {
			c.Database.Driver = DriverSQLite
		}
	}
	if c.Database.DSN == "" && c.Database.Driver == DriverSQLite {
		c.Database.DSN = DefaultSQLiteDSN
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = DefaultMaxOpenConns
	}

	// Valuation defaults
	if c.Valuation.PriceCheckCacheFor == 0 {
		c.Valuation.PriceCheckCacheFor = valuation.DefaultCacheFor
	}
}

func applyCacheDefaults(c *cache.Config) {
	defaults := cache.DefaultConfig()

	if c.Backend == "" {
		c.Backend = defaults.Backend
		if c.Redis.Addr != "" {
			c.Backend = cache.BackendRedis
		}
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaults.Redis.Addr
	}
	if c.Redis.OpTimeout == 0 {
		c.Redis.OpTimeout = defaults.Redis.OpTimeout
	}
	if c.Memory.Capacity == 0 {
		c.Memory.Capacity = defaults.Memory.Capacity
	}
	if c.Memory.NumShards == 0 {
		c.Memory.NumShards = defaults.Memory.NumShards
	}
	if c.Memory.TTL == 0 {
		c.Memory.TTL = defaults.Memory.TTL
	}
	if c.Memory.EvictionPercentage == 0 {
		c.Memory.EvictionPercentage = defaults.Memory.EvictionPercentage
	}
}
