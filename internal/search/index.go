package search

import (
	"context"
	"fmt"

	"github.com/goliatone/go-market-cache/cache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"go.uber.org/zap"
)

const (
	// DefaultBatchSize is the number of rows per bulk insert statement.
	DefaultBatchSize = 500

	// SuggestLimit caps the rows returned by Suggest.
	SuggestLimit = 5
)

// ItemIndexRow is one known item name.
type ItemIndexRow struct {
	bun.BaseModel `bun:"table:items,alias:items"`

	MarketHashName string `bun:"market_hash_name,pk" json:"market_hash_name"`
}

// Index is the item-name search index.
type Index struct {
	db        *bun.DB
	batchSize int
	logger    *zap.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithBatchSize sets the number of rows per insert statement.
func WithBatchSize(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Index) {
		i.logger = logger
	}
}

// New creates an index over db. Postgres and SQLite dialects are supported.
func New(db *bun.DB, opts ...Option) *Index {
	i := &Index{
		db:        db,
		batchSize: DefaultBatchSize,
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(i)
	}

	return i
}

// Migrate creates the items table, and on Postgres its full-text index.
func (i *Index) Migrate(ctx context.Context) error {
	_, err := i.db.NewCreateTable().
		Model((*ItemIndexRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create items table: %w", err)
	}

	if i.dialect() != dialect.PG {
		return nil
	}

	_, err = i.db.NewCreateIndex().
		Model((*ItemIndexRow)(nil)).
		Index("items_market_hash_name_fts_idx").
		IfNotExists().
		Using("GIN").
		ColumnExpr("to_tsvector('simple', market_hash_name)").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create items full-text index: %w", err)
	}

	return nil
}

// Resync replaces every row with one row per distinct key. The delete and the
// inserts share a transaction, so readers see the old set or the new one.
func (i *Index) Resync(ctx context.Context, keys []string) error {
	const op = "resync items"

	rows := dedupe(keys)

	err := i.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*ItemIndexRow)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return fmt.Errorf("delete rows: %w", err)
		}

		for start := 0; start < len(rows); start += i.batchSize {
			end := min(start+i.batchSize, len(rows))
			batch := rows[start:end]
			if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
				return fmt.Errorf("insert rows %d-%d: %w", start, end, err)
			}
		}

		return nil
	})
	if err != nil {
		return cache.NewError(cache.KindIndexSync, op, "", err)
	}

	i.logger.Info("item index resynced", zap.Int("rows", len(rows)))
	return nil
}

// Count returns the number of indexed item names.
func (i *Index) Count(ctx context.Context) (int, error) {
	return i.db.NewSelect().Model((*ItemIndexRow)(nil)).Count(ctx)
}

func (i *Index) dialect() dialect.Name {
	return i.db.Dialect().Name()
}

func dedupe(keys []string) []ItemIndexRow {
	seen := make(map[string]struct{}, len(keys))
	rows := make([]ItemIndexRow, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, ItemIndexRow{MarketHashName: k})
	}
	return rows
}
