// Package postgres implements the product store for PostgreSQL with pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// batchSize bounds how many upserts are queued per round trip.
const batchSize = 1000

// Store is a prodmig.Store over a pgx pool it owns.
type Store struct {
	pool    *pgxpool.Pool
	table   string
	onClose func() error
}

// New wraps pool. tableParts must already be validated. onClose, if not nil,
// runs after the pool is closed (for example to release a cloud dialer).
func New(pool *pgxpool.Pool, tableParts []string, onClose func() error) *Store {
	return &Store{
		pool:    pool,
		table:   pgx.Identifier(tableParts).Sanitize(),
		onClose: onClose,
	}
}

// Pool exposes the underlying pool for inspection.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Table returns the quoted target table name.
func (s *Store) Table() string {
	return s.table
}

func CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id BIGSERIAL PRIMARY KEY,
    item_id VARCHAR(255) UNIQUE NOT NULL,
    item_name VARCHAR(255) NOT NULL,
    original_price NUMERIC(10,2) NOT NULL,
    selling_price NUMERIC(10,2) NOT NULL
)`, table)
}

func UpsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (item_id, item_name, original_price, selling_price)
VALUES ($1, $2, $3, $4)
ON CONFLICT (item_id) DO UPDATE SET
    item_name = EXCLUDED.item_name,
    original_price = EXCLUDED.original_price,
    selling_price = EXCLUDED.selling_price`, table)
}

func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, CreateTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// UpsertBatch queues one upsert per record and sends them in batches inside
// one transaction. Statements run in record order, so a later duplicate
// item_id overwrites an earlier one.
func (s *Store) UpsertBatch(ctx context.Context, records []prodmig.Record) (affected int64, err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	upsert := UpsertSQL(s.table)
	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))

		n, err := s.sendBatch(ctx, tx, upsert, records[start:end], start)
		affected += n
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return affected, nil
}

func (s *Store) sendBatch(ctx context.Context, tx pgx.Tx, upsert string, records []prodmig.Record, offset int) (int64, error) {
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(upsert, r.ItemID, r.ItemName, numeric(r.OriginalPrice), numeric(r.SellingPrice))
	}

	results := tx.SendBatch(ctx, batch)

	var affected int64
	for i, r := range records {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return affected, fmt.Errorf("upsert record %d (item_id %q): %w", offset+i+1, r.ItemID, err)
		}
		affected += tag.RowsAffected()
	}

	if err := results.Close(); err != nil {
		return affected, fmt.Errorf("finish batch: %w", err)
	}
	return affected, nil
}

func numeric(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

func (s *Store) Close() error {
	s.pool.Close()
	if s.onClose != nil {
		return s.onClose()
	}
	return nil
}

var _ prodmig.Store = (*Store)(nil)
