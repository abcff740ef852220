package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
	"github.com/goliatone/go-market-cache/pkg/testsupport"
	"go.uber.org/zap/zaptest"
)

func newTestClient(t *testing.T, srv *testsupport.SourceServer, opts ...ClientOption) *Client {
	t.Helper()

	base := []ClientOption{
		WithURLs(srv.PricesURL(), srv.RatesURL(), srv.CatalogURL()),
		WithTimeout(5 * time.Second),
		WithLogger(zaptest.NewLogger(t)),
	}
	return NewClient(append(base, opts...)...)
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()

	if c.pricesURL != DefaultPricesURL {
		t.Errorf("expected default prices url, got %s", c.pricesURL)
	}
	if c.catalogURL != DefaultCatalogURL {
		t.Errorf("expected default catalog url, got %s", c.catalogURL)
	}
	if c.timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", c.timeout)
	}
}

func TestWithURLs_KeepsDefaultsForEmptyValues(t *testing.T) {
	c := NewClient(WithURLs("", "http://rates.test/rates.json", "http://catalog.test/api/"))

	if c.pricesURL != DefaultPricesURL {
		t.Errorf("expected default prices url, got %s", c.pricesURL)
	}
	if c.ratesURL != "http://rates.test/rates.json" {
		t.Errorf("unexpected rates url %s", c.ratesURL)
	}
	if c.catalogURL != "http://catalog.test/api" {
		t.Errorf("expected trailing slash to be trimmed, got %s", c.catalogURL)
	}
}

func TestFetchPriceTable(t *testing.T) {
	srv := testsupport.NewSourceServer(t)
	c := newTestClient(t, srv)

	table, err := c.FetchPriceTable(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := testsupport.PriceTableKeys(t)
	if len(table.Keys) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(table.Keys))
	}
	if table.Keys[0] != "AK-47 | Redline (Field-Tested)" {
		t.Errorf("expected keys in document order, got first %q", table.Keys[0])
	}
	if string(table.Raw) != string(testsupport.Fixture(t, testsupport.PricesFixture)) {
		t.Error("expected raw document to be returned untouched")
	}
}

func TestFetchPriceTable_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind cache.Kind
	}{
		{name: "bad gateway", status: http.StatusBadGateway, wantKind: cache.KindSourceFetch},
		{name: "not found", status: http.StatusNotFound, wantKind: cache.KindSourceFetch},
		{name: "truncated json", body: `{"AK-47 | Redline (Field-Tested)": {"steam":`, wantKind: cache.KindSourceParse},
		{name: "array root", body: `[{"name":"AK-47 | Redline"}]`, wantKind: cache.KindSourceParse},
		{name: "empty table", body: `{}`, wantKind: cache.KindSourceParse},
		{name: "record is not an object", body: `{"AK-47 | Redline (Field-Tested)": 31.4}`, wantKind: cache.KindSourceParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testsupport.NewSourceServer(t)
			if tt.status != 0 {
				srv.Fail(testsupport.PricesPath, tt.status)
			} else {
				srv.Serve(testsupport.PricesPath, []byte(tt.body))
			}

			_, err := newTestClient(t, srv).FetchPriceTable(context.Background())
			if err == nil {
				t.Fatal("expected error but got none")
			}
			if cache.KindOf(err) != tt.wantKind {
				t.Errorf("expected %v, got %v (%v)", tt.wantKind, cache.KindOf(err), err)
			}
		})
	}
}

func TestFetchPriceTable_StatusErrorIsExposed(t *testing.T) {
	srv := testsupport.NewSourceServer(t)
	srv.Fail(testsupport.PricesPath, http.StatusServiceUnavailable)

	_, err := newTestClient(t, srv).FetchPriceTable(context.Background())

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError in chain, got %v", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", statusErr.StatusCode)
	}
}

func TestFetch_TimeoutIsAFetchFailure(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(slow.Close)

	c := NewClient(WithURLs(slow.URL, slow.URL, slow.URL), WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.FetchPriceTable(context.Background())
	if !errors.Is(err, cache.ErrSourceFetch) {
		t.Fatalf("expected source fetch failure, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("expected the timeout to bound the fetch")
	}
}

func TestFetch_SendsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"USD":1}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(WithURLs("", srv.URL, ""), WithUserAgent("collector-test/2.0"))
	if _, err := c.FetchCurrencyRates(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotUA != "collector-test/2.0" {
		t.Errorf("expected custom user agent, got %q", gotUA)
	}
	if gotAccept != "application/json" {
		t.Errorf("expected json accept header, got %q", gotAccept)
	}
}

func TestFetchCurrencyRates(t *testing.T) {
	srv := testsupport.NewSourceServer(t)
	c := newTestClient(t, srv)

	body, err := c.FetchCurrencyRates(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != string(testsupport.Fixture(t, testsupport.RatesFixture)) {
		t.Error("expected rates document to be returned untouched")
	}

	srv.Serve(testsupport.RatesPath, []byte(`{"USD":"1.0"}`))
	if _, err := c.FetchCurrencyRates(context.Background()); !errors.Is(err, cache.ErrSourceParse) {
		t.Errorf("expected parse failure for string rate, got %v", err)
	}
}

func TestFetchCatalog(t *testing.T) {
	srv := testsupport.NewSourceServer(t)
	c := newTestClient(t, srv)

	for _, category := range model.Categories {
		t.Run(string(category), func(t *testing.T) {
			body, err := c.FetchCatalog(context.Background(), category)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(body) == 0 {
				t.Error("expected catalog body")
			}
		})
	}

	if srv.Hits(testsupport.CatalogPath+"/skins.json") != 1 {
		t.Errorf("expected one skins request, got %d", srv.Hits(testsupport.CatalogPath+"/skins.json"))
	}
}

func TestFetchCatalog_Failures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind cache.Kind
	}{
		{name: "object root", body: `{"name":"AK-47 | Redline"}`, wantKind: cache.KindSourceParse},
		{name: "empty catalog", body: `[]`, wantKind: cache.KindSourceParse},
		{name: "scalar element", body: `[{"name":"a","image":"b"}, "c"]`, wantKind: cache.KindSourceParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testsupport.NewSourceServer(t)
			srv.Serve(testsupport.CatalogPath+"/stickers.json", []byte(tt.body))

			_, err := newTestClient(t, srv).FetchCatalog(context.Background(), model.Stickers)
			if cache.KindOf(err) != tt.wantKind {
				t.Errorf("expected %v, got %v (%v)", tt.wantKind, cache.KindOf(err), err)
			}
		})
	}

	srv := testsupport.NewSourceServer(t)
	_, err := newTestClient(t, srv).FetchCatalog(context.Background(), model.Category("keychains"))
	if !errors.Is(err, cache.ErrSourceFetch) {
		t.Errorf("expected fetch failure for unknown category, got %v", err)
	}
}
