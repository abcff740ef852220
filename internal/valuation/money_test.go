package valuation

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_String(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "12.3", want: "12.30"},
		{input: "12.345", want: "12.35"},
		{input: "12.344", want: "12.34"},
		{input: "-12.345", want: "-12.35"},
		{input: "0", want: "0.00"},
		{input: "1999", want: "1999.00"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := NewMoney(decimal.RequireFromString(tt.input))
			if m.String() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, m.String())
			}
		})
	}
}

func TestMoneyFromFloat(t *testing.T) {
	if got := MoneyFromFloat(12.345).String(); got != "12.35" {
		t.Errorf("expected 12.35, got %s", got)
	}
	if got := MoneyFromFloat(12.3).String(); got != "12.30" {
		t.Errorf("expected 12.30, got %s", got)
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Cost Money `json:"cost"`
	}{Cost: MoneyFromFloat(12.3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"cost":"12.30"}` {
		t.Errorf("unexpected json %s", data)
	}

	var in struct {
		Cost Money `json:"cost"`
	}
	if err := json.Unmarshal([]byte(`{"cost":12.345}`), &in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.Cost.String() != "12.35" {
		t.Errorf("expected 12.35, got %s", in.Cost)
	}
}

func TestMoney_Mul(t *testing.T) {
	if got := MoneyFromFloat(0.35).Mul(3).String(); got != "1.05" {
		t.Errorf("expected 1.05, got %s", got)
	}
}
