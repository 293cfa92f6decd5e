package filesystem

import (
	"io"
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo from the standard library.
type FileInfo = fs.FileInfo

// FileSystemProvider opens input files for reading.
type FileSystemProvider interface {
	// Open returns a new reader positioned at the start of the file.
	// The caller must close it.
	Open(path string) (io.ReadCloser, error)

	// Stat returns file information for the given path
	Stat(path string) (FileInfo, error)
}
