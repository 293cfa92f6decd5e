package prodmig

import (
	"errors"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := migrator.Run(ctx, config)
//	if errors.Is(err, prodmig.ErrFileAccess) {
//	    // nothing was sent to the store
//	}
var (
	// ErrFileAccess indicates the input file is missing, unreadable, or
	// undecodable under every candidate encoding.
	ErrFileAccess = errors.New("cannot read input file")

	// ErrStoreConnection indicates the store is unreachable or rejected the credentials.
	ErrStoreConnection = errors.New("store connection failed")

	// ErrStoreOperation indicates the ensure-table or upsert step failed.
	// Nothing is committed when this is returned.
	ErrStoreOperation = errors.New("store operation failed")

	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedDriver indicates the requested store driver is not supported.
	ErrUnsupportedDriver = errors.New("unsupported driver")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// cobra reports usage problems as plain errors; these prefixes identify them.
var usageErrorPrefixes = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"accepts at most",
	"required flag",
	"invalid argument",
	"flag needs an argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrFileAccess):
		return ExitFileAccessError
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedDriver),
		errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrStoreConnection):
		return ExitConnectionError
	case errors.Is(err, ErrStoreOperation):
		return ExitStoreOperationFailed
	}

	errStr := err.Error()
	for _, prefix := range usageErrorPrefixes {
		if strings.HasPrefix(errStr, prefix) {
			return ExitUsageError
		}
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
