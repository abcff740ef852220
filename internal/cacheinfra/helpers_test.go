package cacheinfra

import (
	"encoding/json"
	"testing"
)

func decodeJSON(t *testing.T, raw []byte, dest any) {
	t.Helper()
	if err := json.Unmarshal(raw, dest); err != nil {
		t.Fatalf("failed to decode %s: %v", raw, err)
	}
}
