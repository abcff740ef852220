package investment

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-market-cache/internal/valuation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownItem rejects an investment in an item the price table does not list.
	ErrUnknownItem = errors.New("unknown item")

	// ErrNotFound is returned by a Store for a missing or foreign investment.
	ErrNotFound = errors.New("investment not found")
)

// Investment is a stored row. Cost keeps full precision.
type Investment struct {
	ID             uuid.UUID
	OwnerID        string
	MarketHashName string
	Quantity       int
	Cost           decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Store persists investments. Every method is scoped to one owner.
type Store interface {
	Insert(ctx context.Context, inv Investment) error
	Get(ctx context.Context, ownerID string, id uuid.UUID) (Investment, error)
	List(ctx context.Context, ownerID string) ([]Investment, error)
	Update(ctx context.Context, inv Investment) error
	Delete(ctx context.Context, ownerID string, id uuid.UUID) error
}

// CreateInput is a new investment.
type CreateInput struct {
	MarketHashName string          `json:"market_hash_name"`
	Quantity       int             `json:"quantity"`
	Cost           decimal.Decimal `json:"cost"`
}

// Validate implements validation.Validatable.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.MarketHashName, validation.Required, validation.Length(1, 256)),
		validation.Field(&in.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&in.Cost, validation.By(nonNegative)),
	)
}

// UpdateInput changes the quantity and cost of an investment.
type UpdateInput struct {
	Quantity int             `json:"quantity"`
	Cost     decimal.Decimal `json:"cost"`
}

// Validate implements validation.Validatable.
func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&in.Cost, validation.By(nonNegative)),
	)
}

func nonNegative(value any) error {
	d, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal")
	}
	if d.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

// Holding is an investment as returned to callers. CurrentPrice and
// MarketValue are nil when the price table holds no reference price for the
// item. MarketValue is CurrentPrice times Quantity.
type Holding struct {
	ID             uuid.UUID        `json:"id"`
	MarketHashName string           `json:"market_hash_name"`
	Quantity       int              `json:"quantity"`
	Cost           valuation.Money  `json:"cost"`
	CurrentPrice   *valuation.Money `json:"current_price,omitempty"`
	MarketValue    *valuation.Money `json:"market_value,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
