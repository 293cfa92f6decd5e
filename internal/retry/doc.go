// Package retry retries store connection attempts that fail for transient
// reasons, with exponential backoff between attempts.
//
// Only connecting is retried. Once a store is open, ensure-table and upsert
// failures are reported as they are.
//
// # Example Usage
//
//	executor := retry.NewExecutor(
//	    retry.NewStoreErrorClassifier(),
//	    retry.NewExponentialBackoff(3, retry.WithInitialDelay(200*time.Millisecond)),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return db.PingContext(ctx)
//	})
//
// # Error Classification
//
// StoreErrorClassifier recognizes transient PostgreSQL SQLSTATE classes,
// transient MySQL server error numbers, dropped driver connections and
// network failures such as a refused connection while a server starts up.
package retry
