package config

import (
	"fmt"
	"time"

	"github.com/goliatone/go-market-cache/cache"
)

// Config is the process configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Cache     cache.Config    `yaml:"cache"`
	Sources   SourcesConfig   `yaml:"sources"`
	Database  DatabaseConfig  `yaml:"database"`
	Valuation ValuationConfig `yaml:"valuation"`
}

type LogConfig struct {
	Level             string `yaml:"level" env:"LOG_LEVEL"`
	Encoding          string `yaml:"encoding" env:"LOG_ENCODING"`
	Development       bool   `yaml:"development"`
	Sampling          bool   `yaml:"sampling"`
	DisableCaller     bool   `yaml:"disable_caller"`
	DisableStacktrace bool   `yaml:"disable_stacktrace"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" env:"HTTP_ADDR"`

	// Port overrides the port of Addr when set.
	Port int `yaml:"port" env:"PORT"`

	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// OwnerHeader carries the caller id set by the upstream auth layer.
	OwnerHeader string `yaml:"owner_header" env:"OWNER_HEADER"`
}

// ListenAddr returns the address the HTTP server binds.
func (c HTTPConfig) ListenAddr() string {
	if c.Port > 0 {
		return fmt.Sprintf(":%d", c.Port)
	}
	return c.Addr
}

type SourcesConfig struct {
	PricesURL  string        `yaml:"prices_url" env:"PRICES_URL"`
	RatesURL   string        `yaml:"rates_url" env:"RATES_URL"`
	CatalogURL string        `yaml:"catalog_url" env:"CATALOG_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"SOURCE_TIMEOUT"`
	UserAgent  string        `yaml:"user_agent" env:"SOURCE_USER_AGENT"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver" env:"DATABASE_DRIVER"`
	DSN          string `yaml:"dsn" env:"POSTGRES_URL"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS"`
	AutoMigrate  bool   `yaml:"auto_migrate" env:"DATABASE_AUTO_MIGRATE"`
}

type ValuationConfig struct {
	PriceCheckCacheFor time.Duration `yaml:"price_check_cache_for"`
}
