// Package sqlstore implements prodmig.Store on top of database/sql for
// engines whose drivers plug into it. The engine-specific SQL comes from a
// Dialect; the transaction handling is shared.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// Dialect supplies the SQL text for one engine.
type Dialect interface {
	// Name identifies the engine in messages.
	Name() string

	// QuoteTable quotes validated [schema.]table parts.
	QuoteTable(parts []string) string

	// CreateTableSQL returns an idempotent CREATE TABLE statement.
	CreateTableSQL(table string) string

	// UpsertSQL returns a single-row insert-or-update statement taking
	// item_id, item_name, original_price, selling_price as parameters.
	UpsertSQL(table string) string
}

// Store is a prodmig.Store backed by a *sql.DB it owns.
type Store struct {
	db      *sql.DB
	dialect Dialect
	table   string
}

// New wraps db. Close closes db.
func New(db *sql.DB, dialect Dialect, tableParts []string) *Store {
	return &Store{
		db:      db,
		dialect: dialect,
		table:   dialect.QuoteTable(tableParts),
	}
}

// DB exposes the underlying handle for inspection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Table returns the quoted target table name.
func (s *Store) Table() string {
	return s.table
}

func (s *Store) EnsureTable(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.CreateTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// UpsertBatch applies every record through one prepared statement inside a
// single transaction. Records are applied in order, so a later duplicate
// item_id overwrites an earlier one.
func (s *Store) UpsertBatch(ctx context.Context, records []prodmig.Record) (affected int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, s.dialect.UpsertSQL(s.table))
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		res, err := stmt.ExecContext(ctx, r.ItemID, r.ItemName, r.OriginalPrice, r.SellingPrice)
		if err != nil {
			return 0, fmt.Errorf("upsert record %d (item_id %q): %w", i+1, r.ItemID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected for record %d: %w", i+1, err)
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return affected, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var _ prodmig.Store = (*Store)(nil)
