package source

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default remote endpoints.
const (
	DefaultPricesURL  = "https://prices.csgotrader.app/latest/prices_v6.json"
	DefaultRatesURL   = "https://prices.csgotrader.app/latest/exchange_rates.json"
	DefaultCatalogURL = "https://bymykel.github.io/CSGO-API/api/en"
	DefaultTimeout    = 30 * time.Second
	DefaultUserAgent  = "go-market-cache/1.0"
)

// Client fetches remote market documents.
type Client struct {
	pricesURL  string
	ratesURL   string
	catalogURL string

	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a client pointed at the default endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		pricesURL:  DefaultPricesURL,
		ratesURL:   DefaultRatesURL,
		catalogURL: DefaultCatalogURL,
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		userAgent:  DefaultUserAgent,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithURLs overrides the remote endpoints. Empty values keep the default.
func WithURLs(prices, rates, catalog string) ClientOption {
	return func(c *Client) {
		if prices != "" {
			c.pricesURL = prices
		}
		if rates != "" {
			c.ratesURL = rates
		}
		if catalog != "" {
			c.catalogURL = strings.TrimSuffix(catalog, "/")
		}
	}
}

// WithTimeout bounds every fetch, body read included.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}
