package investment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// investmentRow is the investments table. Cost is kept as text so SQLite's
// numeric affinity never rounds it through a float.
type investmentRow struct {
	bun.BaseModel `bun:"table:investments,alias:inv"`

	ID             uuid.UUID       `bun:"id,pk,type:varchar(36)"`
	OwnerID        string          `bun:"owner_id,notnull"`
	MarketHashName string          `bun:"market_hash_name,notnull"`
	Quantity       int             `bun:"quantity,notnull"`
	Cost           decimal.Decimal `bun:"cost,type:text,notnull"`
	CreatedAt      time.Time       `bun:"created_at,notnull"`
	UpdatedAt      time.Time       `bun:"updated_at,notnull"`
}

func toRow(inv Investment) *investmentRow {
	return &investmentRow{
		ID:             inv.ID,
		OwnerID:        inv.OwnerID,
		MarketHashName: inv.MarketHashName,
		Quantity:       inv.Quantity,
		Cost:           inv.Cost,
		CreatedAt:      inv.CreatedAt,
		UpdatedAt:      inv.UpdatedAt,
	}
}

func (r investmentRow) investment() Investment {
	return Investment{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		MarketHashName: r.MarketHashName,
		Quantity:       r.Quantity,
		Cost:           r.Cost,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// BunStore is a Store on the relational database shared with the search index.
type BunStore struct {
	db *bun.DB
}

var _ Store = (*BunStore)(nil)

// NewBunStore creates a store on db. Call Migrate before first use.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// Migrate creates the investments table and its owner index.
func (s *BunStore) Migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*investmentRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create investments table: %w", err)
	}

	_, err = s.db.NewCreateIndex().
		Model((*investmentRow)(nil)).
		Index("investments_owner_id_idx").
		IfNotExists().
		Column("owner_id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create investments owner index: %w", err)
	}

	return nil
}

// Insert implements Store.
func (s *BunStore) Insert(ctx context.Context, inv Investment) error {
	if _, err := s.db.NewInsert().Model(toRow(inv)).Exec(ctx); err != nil {
		return fmt.Errorf("insert investment: %w", err)
	}
	return nil
}

// Get implements Store.
func (s *BunStore) Get(ctx context.Context, ownerID string, id uuid.UUID) (Investment, error) {
	var row investmentRow
	err := s.db.NewSelect().
		Model(&row).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Investment{}, ErrNotFound
	}
	if err != nil {
		return Investment{}, fmt.Errorf("get investment: %w", err)
	}
	return row.investment(), nil
}

// List returns the rows of ownerID, oldest first.
func (s *BunStore) List(ctx context.Context, ownerID string) ([]Investment, error) {
	var rows []investmentRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("owner_id = ?", ownerID).
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list investments: %w", err)
	}

	out := make([]Investment, len(rows))
	for n, row := range rows {
		out[n] = row.investment()
	}
	return out, nil
}

// Update implements Store. Only quantity, cost and updated_at change.
func (s *BunStore) Update(ctx context.Context, inv Investment) error {
	res, err := s.db.NewUpdate().
		Model(toRow(inv)).
		Column("quantity", "cost", "updated_at").
		Where("id = ?", inv.ID).
		Where("owner_id = ?", inv.OwnerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update investment: %w", err)
	}
	return affected(res)
}

// Delete implements Store.
func (s *BunStore) Delete(ctx context.Context, ownerID string, id uuid.UUID) error {
	res, err := s.db.NewDelete().
		Model((*investmentRow)(nil)).
		Where("id = ?", id).
		Where("owner_id = ?", ownerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete investment: %w", err)
	}
	return affected(res)
}

func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
