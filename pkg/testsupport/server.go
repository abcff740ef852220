package testsupport

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Paths served by SourceServer.
const (
	PricesPath  = "/latest/prices_v6.json"
	RatesPath   = "/latest/exchange_rates.json"
	CatalogPath = "/api/en"
)

// SourceServer stands in for the remote price, rate and catalog endpoints.
// It serves the embedded fixtures and counts hits per path.
type SourceServer struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string][]byte
	failures map[string]int
	hits     map[string]int
}

// NewSourceServer starts a server preloaded with every fixture. It is closed
// when the test finishes.
func NewSourceServer(t testing.TB) *SourceServer {
	t.Helper()

	s := &SourceServer{
		bodies: map[string][]byte{
			PricesPath:                          Fixture(t, PricesFixture),
			RatesPath:                           Fixture(t, RatesFixture),
			CatalogPath + "/" + SkinsFixture:    Fixture(t, SkinsFixture),
			CatalogPath + "/" + StickersFixture: Fixture(t, StickersFixture),
			CatalogPath + "/" + CratesFixture:   Fixture(t, CratesFixture),
			CatalogPath + "/" + AgentsFixture:   Fixture(t, AgentsFixture),
			CatalogPath + "/" + PatchesFixture:  Fixture(t, PatchesFixture),
		},
		failures: make(map[string]int),
		hits:     make(map[string]int),
	}

	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

func (s *SourceServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	status, failing := s.failures[r.URL.Path]
	body, found := s.bodies[r.URL.Path]
	s.mu.Unlock()

	switch {
	case failing:
		http.Error(w, http.StatusText(status), status)
	case !found:
		http.NotFound(w, r)
	default:
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}
}

// Serve replaces the body served at path.
func (s *SourceServer) Serve(path string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies[path] = body
	delete(s.failures, path)
}

// Fail makes path answer with status until Serve is called for it again.
func (s *SourceServer) Fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

// Hits returns how many requests reached path.
func (s *SourceServer) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// PricesURL returns the price table endpoint.
func (s *SourceServer) PricesURL() string {
	return s.URL + PricesPath
}

// RatesURL returns the exchange rate endpoint.
func (s *SourceServer) RatesURL() string {
	return s.URL + RatesPath
}

// CatalogURL returns the catalog base endpoint.
func (s *SourceServer) CatalogURL() string {
	return s.URL + CatalogPath
}
