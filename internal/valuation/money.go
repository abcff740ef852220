package valuation

import (
	"github.com/shopspring/decimal"
)

// Money is a monetary amount normalized to two fractional digits, rounded
// half away from zero.
type Money struct {
	amount decimal.Decimal
}

// NewMoney rounds d to cents.
func NewMoney(d decimal.Decimal) Money {
	return Money{amount: d.Round(2)}
}

// MoneyFromFloat converts a source price to Money.
func MoneyFromFloat(f float64) Money {
	return NewMoney(decimal.NewFromFloat(f))
}

// Mul returns m times n, rounded to cents.
func (m Money) Mul(n int64) Money {
	return NewMoney(m.amount.Mul(decimal.NewFromInt(n)))
}

// String renders exactly two fractional digits.
func (m Money) String() string {
	return m.amount.StringFixed(2)
}

// MarshalJSON renders the amount as a quoted decimal string.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a quoted or bare decimal and rounds it to cents.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	*m = NewMoney(d)
	return nil
}
