package testsupport

import (
	"embed"
	"encoding/json"
	"path"
	"testing"
)

//go:embed testdata/*.json
var fixtures embed.FS

// Fixture names shipped with the package.
const (
	PricesFixture   = "prices.json"
	RatesFixture    = "rates.json"
	SkinsFixture    = "skins.json"
	StickersFixture = "stickers.json"
	CratesFixture   = "crates.json"
	AgentsFixture   = "agents.json"
	PatchesFixture  = "patches.json"
)

// Fixture returns the raw bytes of an embedded fixture.
func Fixture(t testing.TB, name string) []byte {
	t.Helper()

	data, err := fixtures.ReadFile(path.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}

	return data
}

// FixtureJSON loads an embedded fixture and unmarshals it into dest.
func FixtureJSON(t testing.TB, name string, dest any) {
	t.Helper()

	if err := json.Unmarshal(Fixture(t, name), dest); err != nil {
		t.Fatalf("failed to unmarshal fixture %s: %v", name, err)
	}
}

// PriceTableKeys returns the item names of the price fixture.
func PriceTableKeys(t testing.TB) []string {
	t.Helper()

	var table map[string]json.RawMessage
	FixtureJSON(t, PricesFixture, &table)

	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	return keys
}
