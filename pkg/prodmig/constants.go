package prodmig

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess              = 0  // Migration completed (including "nothing to do")
	ExitGeneralError         = 1  // Unknown or unclassified error
	ExitUsageError           = 2  // CLI usage error (invalid flags or arguments)
	ExitPanic                = 3  // Internal panic (unexpected crash)
	ExitConfigError          = 10 // Invalid configuration
	ExitConnectionError      = 11 // Failed to connect to the store
	ExitStoreOperationFailed = 13 // Ensure-table or upsert failed, nothing committed
	ExitFileAccessError      = 14 // Input file missing or undecodable
)

const (
	// DefaultInputPath is the dump read when no input is configured.
	DefaultInputPath = "products.sql"

	// DefaultTable is the target table name.
	DefaultTable = "products"

	// DefaultDriver is the store engine used when none is configured.
	DefaultDriver = DriverPostgres

	// DefaultTimeout bounds a whole migration run.
	DefaultTimeout = 10 * time.Minute

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of connection retry attempts.
	DefaultRetryMaxAttempts = 3

	// TupleMarker opens every value-tuple line the extractor considers.
	TupleMarker = "('"
)

// DefaultEncodings is the candidate order: strict UTF-8 first, then the
// single-byte encodings that legacy dumps are usually written in.
var DefaultEncodings = []string{"utf-8", "latin-1", "cp1252"}
