package prodmig

import "context"

// Extractor recovers product records from a SQL dump.
type Extractor interface {
	// Extract reads the file at path under the configured candidate encodings.
	// It fails with ErrFileAccess only when the file cannot be opened or decoded
	// at all; malformed tuple lines are skipped and reported in the stats.
	Extract(ctx context.Context, path string) (ExtractResult, error)
}

// Loader applies extracted records to the target store.
type Loader interface {
	// Load ensures the target table exists and upserts every record in one
	// transaction. With no records it returns immediately without connecting.
	Load(ctx context.Context, config MigrationConfig, records []Record) (LoadResult, error)
}

// Store is an open connection to the target table.
// The caller owns it and must call Close on every exit path.
type Store interface {
	// EnsureTable creates the target table if it does not exist.
	EnsureTable(ctx context.Context) error

	// UpsertBatch inserts every record, updating name and prices when the
	// item_id already exists. All records are applied in a single transaction:
	// on error nothing is committed.
	UpsertBatch(ctx context.Context, records []Record) (int64, error)

	// Close releases the connection and any driver resources.
	Close() error
}

// Connector establishes a Store for one target table.
// Different implementations handle the engines and authentication methods.
type Connector interface {
	Connect(ctx context.Context) (Store, error)
}

// ConnectorFactory builds the Connector for a resolved connection configuration.
// Retry attempts and server notices are reported through logger.
type ConnectorFactory func(config *ConnectionConfig, table string, logger Logger) (Connector, error)
