package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sync"
	"time"
)

// memoryFileInfo implements fs.FileInfo for in-memory files
type memoryFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (f *memoryFileInfo) Name() string       { return f.name }
func (f *memoryFileInfo) Size() int64        { return f.size }
func (f *memoryFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memoryFileInfo) ModTime() time.Time { return f.modTime }
func (f *memoryFileInfo) IsDir() bool        { return false }
func (f *memoryFileInfo) Sys() interface{}   { return nil }

// MemoryFileSystem implements FileSystemProvider for in-memory testing.
// It counts Open calls so tests can assert how often an input was reread.
type MemoryFileSystem struct {
	mu     sync.Mutex
	files  map[string][]byte
	opens  map[string]int
	failOn map[string]error
}

// NewMemoryFileSystem creates a new, empty in-memory filesystem.
func NewMemoryFileSystem() *MemoryFileSystem {
	return &MemoryFileSystem{
		files:  make(map[string][]byte),
		opens:  make(map[string]int),
		failOn: make(map[string]error),
	}
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}

// AddFile adds a text file to the in-memory filesystem.
func (m *MemoryFileSystem) AddFile(p, content string) {
	m.AddBytes(p, []byte(content))
}

// AddBytes adds a file with raw content, for inputs that are not valid UTF-8.
func (m *MemoryFileSystem) AddBytes(p string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[normalize(p)] = append([]byte(nil), content...)
}

// FailReads makes every reader opened for p return err after its content.
func (m *MemoryFileSystem) FailReads(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn[normalize(p)] = err
}

// Opens returns how many times p was opened.
func (m *MemoryFileSystem) Opens(p string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens[normalize(p)]
}

func (m *MemoryFileSystem) Open(p string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := normalize(p)
	content, ok := m.files[key]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: p, Err: fs.ErrNotExist}
	}
	m.opens[key]++

	var r io.Reader = bytes.NewReader(content)
	if err, fail := m.failOn[key]; fail {
		r = io.MultiReader(r, &errReader{err: err})
	}
	return io.NopCloser(r), nil
}

func (m *MemoryFileSystem) Stat(p string) (FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	content, ok := m.files[normalize(p)]
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: p, Err: fs.ErrNotExist}
	}
	return &memoryFileInfo{
		name:    path.Base(normalize(p)),
		size:    int64(len(content)),
		modTime: time.Now(),
	}, nil
}

type errReader struct {
	err error
}

func (r *errReader) Read([]byte) (int, error) {
	return 0, r.err
}

var _ FileSystemProvider = (*MemoryFileSystem)(nil)
