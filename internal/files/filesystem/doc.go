// Package filesystem provides the file access abstraction used by the extractor.
//
// The extractor reopens its input once per candidate encoding, so providers
// hand out a fresh reader on every Open call.
//
// Implementations:
//   - OSFileSystem: Production implementation using the OS filesystem
//   - MemoryFileSystem: In-memory implementation for testing
package filesystem
