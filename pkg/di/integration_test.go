package di

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/goliatone/go-market-cache/internal/httpapi"
	"github.com/goliatone/go-market-cache/internal/investment"
	"github.com/goliatone/go-market-cache/internal/search"
	"github.com/goliatone/go-market-cache/internal/valuation"
	"github.com/goliatone/go-market-cache/pkg/testsupport"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zaptest"
)

func newIntegrationContainer(t *testing.T) (*Container, *testsupport.SourceServer) {
	t.Helper()

	srv := testsupport.NewSourceServer(t)
	c, err := NewContainer(testConfig(t, srv), WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := c.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return c, srv
}

func TestIntegration_PriceRefreshFeedsIndex(t *testing.T) {
	c, srv := newIntegrationContainer(t)
	ctx := context.Background()

	if _, err := c.Facade().PriceOf(ctx, "AK-47 | Redline (Field-Tested)"); err != nil {
		t.Fatalf("PriceOf() failed: %v", err)
	}

	count, err := c.Index().Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if want := len(testsupport.PriceTableKeys(t)); count != want {
		t.Errorf("expected %d indexed names, got %d", want, count)
	}

	rows, err := c.Index().Suggest(ctx, "ak redl")
	if err != nil {
		t.Fatalf("Suggest() failed: %v", err)
	}
	if len(rows) == 0 || rows[0].MarketHashName != "AK-47 | Redline (Field-Tested)" {
		t.Errorf("expected Redline first, got %v", rows)
	}

	if err := c.Prices().Refresh(ctx); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if srv.Hits(testsupport.PricesPath) != 2 {
		t.Errorf("expected 2 price fetches, got %d", srv.Hits(testsupport.PricesPath))
	}

	count, _ = c.Index().Count(ctx)
	if want := len(testsupport.PriceTableKeys(t)); count != want {
		t.Errorf("expected resync to replace rows, got %d rows", count)
	}
}

func TestIntegration_ItemExistsUsesPriceTable(t *testing.T) {
	c, _ := newIntegrationContainer(t)
	ctx := context.Background()

	keys := testsupport.PriceTableKeys(t)
	sort.Strings(keys)

	for _, name := range keys {
		ok, err := c.Prices().ItemExists(ctx, name)
		if err != nil || !ok {
			t.Errorf("%q: expected item to exist, got %v, %v", name, ok, err)
		}
	}

	ok, err := c.Prices().ItemExists(ctx, "Sticker | Never Printed")
	if err != nil || ok {
		t.Errorf("expected unknown item to be absent, got %v, %v", ok, err)
	}
}

func TestIntegration_Icons(t *testing.T) {
	c, _ := newIntegrationContainer(t)

	for _, name := range []string{"AK-47 | Redline (Field-Tested)", "StatTrak™ AK-47 | Redline (Field-Tested)"} {
		icon, err := c.Catalog().Icon(context.Background(), name)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", name, err)
		}
		if icon != "https://cdn.example.test/skins/ak47_redline.png" {
			t.Errorf("%q: unexpected icon %s", name, icon)
		}
	}
}

func TestIntegration_PriceCheckFetchesOncePerBatch(t *testing.T) {
	c, srv := newIntegrationContainer(t)
	ctx := context.Background()

	if _, err := c.Facade().PriceOf(ctx, "AK-47 | Redline (Field-Tested)"); err != nil {
		t.Fatalf("PriceOf() failed: %v", err)
	}

	result, err := c.Facade().PriceCheck(ctx, []valuation.Line{
		{MarketHashName: "AWP | Dragon Lore (Factory New)", Count: 1},
		{MarketHashName: "M4A4 | Howl (Minimal Wear)", Count: 1},
		{MarketHashName: "AK-47 | Redline (Field-Tested)", Count: 2},
		{MarketHashName: "Glock-18 | Fade (Factory New)", Count: 1},
	})
	if err != nil {
		t.Fatalf("PriceCheck() failed: %v", err)
	}
	if result.TotalCount != 5 || !result.Items[2].Found {
		t.Errorf("unexpected result %+v", result)
	}

	if hits := srv.Hits(testsupport.PricesPath); hits != 2 {
		t.Errorf("expected one warm-up fetch and one batch refresh, got %d fetches", hits)
	}
}

func TestIntegration_InvestmentGate(t *testing.T) {
	c, _ := newIntegrationContainer(t)
	ctx := context.Background()

	h, err := c.Investments().Create(ctx, "owner-1", investment.CreateInput{
		MarketHashName: "AWP | Asiimov (Battle-Scarred)",
		Quantity:       1,
		Cost:           decimal.RequireFromString("12.3"),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if h.Cost.String() != "12.30" || h.CurrentPrice == nil {
		t.Errorf("unexpected holding %+v", h)
	}

	_, err = c.Investments().Create(ctx, "owner-1", investment.CreateInput{MarketHashName: "AWP | Dragon Lore (Factory New)", Quantity: 1})
	if !errors.Is(err, investment.ErrUnknownItem) {
		t.Errorf("expected ErrUnknownItem, got %v", err)
	}
}

func TestIntegration_InvestmentsSurviveRestart(t *testing.T) {
	srv := testsupport.NewSourceServer(t)
	cfg := testConfig(t, srv)
	cfg.Database.DSN = "file:" + filepath.Join(t.TempDir(), "market.db") + "?_journal_mode=WAL&_busy_timeout=5000"
	cfg.Database.MaxOpenConns = 4
	ctx := context.Background()

	start := func() *Container {
		c, err := NewContainer(cfg, WithLogger(zaptest.NewLogger(t)))
		if err != nil {
			t.Fatalf("NewContainer() failed: %v", err)
		}
		if err := c.Migrate(ctx); err != nil {
			t.Fatalf("Migrate() failed: %v", err)
		}
		return c
	}

	first := start()
	h, err := first.Investments().Create(ctx, "owner-1", investment.CreateInput{
		MarketHashName: "AWP | Asiimov (Battle-Scarred)",
		Quantity:       2,
		Cost:           decimal.RequireFromString("12.345"),
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	second := start()
	t.Cleanup(func() { _ = second.Close() })

	holdings, err := second.Investments().List(ctx, "owner-1")
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(holdings) != 1 || holdings[0].ID != h.ID {
		t.Fatalf("expected the investment to survive a restart, got %+v", holdings)
	}
	if holdings[0].Quantity != 2 || holdings[0].Cost.String() != "12.35" {
		t.Errorf("unexpected holding %+v", holdings[0])
	}
}

func TestIntegration_HTTP(t *testing.T) {
	c, _ := newIntegrationContainer(t)
	engine := httpapi.NewEngine(c.Handler(), zaptest.NewLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/items/suggest?q=karambit", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	// the index is empty until the first price refresh
	var rows []search.ItemIndexRow
	if err := json.Unmarshal(w.Body.Bytes(), &rows); err != nil {
		t.Fatalf("failed to decode %s: %v", w.Body.String(), err)
	}
	if len(rows) != 0 {
		t.Errorf("expected no suggestions before a refresh, got %v", rows)
	}

	body := `[{"market_hash_name":"★ Karambit | Doppler (Factory New)","count":1}]`
	req = httptest.NewRequest(http.MethodPost, "/api/inventory/price-check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/items/suggest?q=karambit", nil)
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if !strings.Contains(w.Body.String(), "Karambit | Doppler") {
		t.Errorf("expected suggestion after refresh, got %s", w.Body.String())
	}
}

func TestIntegration_ConcurrentColdReads(t *testing.T) {
	c, srv := newIntegrationContainer(t)

	const workers = 10
	var wg sync.WaitGroup
	errs := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Facade().PriceOf(context.Background(), "Sticker | Crown (Foil)")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("expected the sticker to be priced, got %v", err)
		}
	}
	if hits := srv.Hits(testsupport.PricesPath); hits >= workers {
		t.Errorf("expected cold reads to share fetches, got %d", hits)
	}
}
