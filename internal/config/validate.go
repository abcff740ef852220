package config

import (
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the configuration after defaults are applied.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Log),
		validation.Field(&c.HTTP),
		validation.Field(&c.Cache),
		validation.Field(&c.Sources),
		validation.Field(&c.Database),
		validation.Field(&c.Valuation),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.Required,
			validation.In("debug", "info", "warn", "error", "dpanic", "panic", "fatal"),
		),
		validation.Field(&c.Encoding, validation.Required, validation.In("json", "console")),
	)
}

func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required),
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
		validation.Field(&c.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ShutdownTimeout, validation.Required),
		validation.Field(&c.OwnerHeader, validation.Required),
	)
}

func (c SourcesConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PricesURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.RatesURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.CatalogURL, validation.Required, validation.By(httpURL)),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
	)
}

func (c DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(DriverPostgres, DriverSQLite)),
		validation.Field(&c.DSN, validation.Required,
			validation.When(c.Driver == DriverPostgres, validation.By(postgresDSN)),
		),
		validation.Field(&c.MaxOpenConns, validation.Min(1)),
	)
}

func (c ValuationConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.PriceCheckCacheFor, validation.Required, validation.Min(time.Second)),
	)
}

func postgresDSN(value any) error {
	dsn, _ := value.(string)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "dbname=") {
		return nil
	}
	return validation.NewError("validation_postgres_dsn", "must be a postgres URL or key/value DSN")
}

func httpURL(value any) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return validation.NewError("validation_http_url", "must be an absolute http(s) URL")
	}
	return nil
}
