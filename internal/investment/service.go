package investment

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-market-cache/cache"
	"github.com/goliatone/go-market-cache/internal/model"
	"github.com/goliatone/go-market-cache/internal/valuation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemChecker reports whether the price table lists an item.
type ItemChecker interface {
	ItemExists(ctx context.Context, name string) (bool, error)
}

// Pricer resolves the current price record of an item.
type Pricer interface {
	PriceOf(ctx context.Context, name string) (model.PriceRecord, error)
}

// Service creates and lists investments.
type Service struct {
	store  Store
	items  ItemChecker
	prices Pricer
	now    func() time.Time
	logger *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an investment service.
func NewService(store Store, items ItemChecker, prices Pricer, opts ...Option) *Service {
	s := &Service{
		store:  store,
		items:  items,
		prices: prices,
		now:    time.Now,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create validates in, checks the item against the price table and stores a
// new investment for ownerID.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Holding, error) {
	if err := validation.Validate(ownerID, validation.Required); err != nil {
		return Holding{}, validation.Errors{"owner_id": err}
	}
	if err := in.Validate(); err != nil {
		return Holding{}, err
	}

	exists, err := s.items.ItemExists(ctx, in.MarketHashName)
	if err != nil {
		return Holding{}, err
	}
	if !exists {
		return Holding{}, fmt.Errorf("%q: %w", in.MarketHashName, ErrUnknownItem)
	}

	now := s.now().UTC()
	inv := Investment{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		MarketHashName: in.MarketHashName,
		Quantity:       in.Quantity,
		Cost:           in.Cost,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.Insert(ctx, inv); err != nil {
		return Holding{}, fmt.Errorf("insert investment: %w", err)
	}

	s.logger.Info("investment created",
		zap.String("id", inv.ID.String()),
		zap.String("market_hash_name", inv.MarketHashName),
	)

	return s.holding(ctx, inv)
}

// List returns the holdings of ownerID priced at the current market.
func (s *Service) List(ctx context.Context, ownerID string) ([]Holding, error) {
	invs, err := s.store.List(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	holdings := make([]Holding, 0, len(invs))
	for _, inv := range invs {
		h, err := s.holding(ctx, inv)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	return holdings, nil
}

// Update changes the quantity and cost of an investment of ownerID.
func (s *Service) Update(ctx context.Context, ownerID string, id uuid.UUID, in UpdateInput) (Holding, error) {
	if err := in.Validate(); err != nil {
		return Holding{}, err
	}

	inv, err := s.store.Get(ctx, ownerID, id)
	if err != nil {
		return Holding{}, err
	}

	inv.Quantity = in.Quantity
	inv.Cost = in.Cost
	inv.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, inv); err != nil {
		return Holding{}, fmt.Errorf("update investment: %w", err)
	}

	return s.holding(ctx, inv)
}

// Delete removes an investment of ownerID.
func (s *Service) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	return s.store.Delete(ctx, ownerID, id)
}

func (s *Service) holding(ctx context.Context, inv Investment) (Holding, error) {
	h := Holding{
		ID:             inv.ID,
		MarketHashName: inv.MarketHashName,
		Quantity:       inv.Quantity,
		Cost:           valuation.NewMoney(inv.Cost),
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}

	rec, err := s.prices.PriceOf(ctx, inv.MarketHashName)
	switch {
	case errors.Is(err, cache.ErrItemNotFound):
		return h, nil
	case err != nil:
		return Holding{}, err
	}

	if price, ok := valuation.MarketPrice(rec); ok {
		value := price.Mul(int64(inv.Quantity))
		h.CurrentPrice = &price
		h.MarketValue = &value
	}
	return h, nil
}
