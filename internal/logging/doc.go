// Package logging provides concrete implementations of the prodmig.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: progress on stdout, diagnostics and errors on stderr
//   - NullLogger: Discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
