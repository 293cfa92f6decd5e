package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// LoadService implements prodmig.Loader.
// Thread-Safety: safe for concurrent Load calls; each call opens its own store.
type LoadService struct {
	connectorFactory prodmig.ConnectorFactory
	logger           prodmig.Logger
}

// NewLoader creates a LoadService. It panics on nil dependencies: those are
// wiring mistakes, not runtime conditions.
func NewLoader(connectorFactory prodmig.ConnectorFactory, logger prodmig.Logger) *LoadService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LoadService{
		connectorFactory: connectorFactory,
		logger:           logger,
	}
}

// Load ensures the target table exists and upserts records in a single
// transaction. With no records the store is never contacted.
//
// Connection failures wrap prodmig.ErrStoreConnection; ensure-table and
// upsert failures wrap prodmig.ErrStoreOperation. The store is closed on
// every path once it has been opened.
func (l *LoadService) Load(ctx context.Context, config prodmig.MigrationConfig, records []prodmig.Record) (result prodmig.LoadResult, err error) {
	if len(records) == 0 {
		l.logger.Info("No data found or parse failed.")
		return prodmig.LoadResult{NothingToDo: true}, nil
	}

	connector, err := l.connectorFactory(config.Connection, config.Table, l.logger)
	if err != nil {
		return prodmig.LoadResult{}, fmt.Errorf("failed to create connector: %w", err)
	}

	store, err := connector.Connect(ctx)
	if err != nil {
		return prodmig.LoadResult{}, fmt.Errorf("%w: %w", prodmig.ErrStoreConnection, err)
	}
	l.logger.Info("Connected to database.")

	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			l.logger.Error("Failed to close connection: %v", closeErr)
		}
		l.logger.Info("Connection closed.")
	}()

	if err := store.EnsureTable(ctx); err != nil {
		return prodmig.LoadResult{}, fmt.Errorf("%w: %w", prodmig.ErrStoreOperation, err)
	}
	l.logger.Info("Table '%s' ensured.", config.Table)

	affected, err := store.UpsertBatch(ctx, records)
	if err != nil {
		return prodmig.LoadResult{}, fmt.Errorf("%w: %w", prodmig.ErrStoreOperation, err)
	}
	l.logger.Info("Successfully migrated %d rows (includes updates).", affected)

	return prodmig.LoadResult{RowsAffected: affected}, nil
}

var _ prodmig.Loader = (*LoadService)(nil)
