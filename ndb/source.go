// Package ndb implements the Node Database layer of MS-PST: paged
// random-access reads, descent of the Node-BTree and Block-BTree, block
// deobfuscation, and reconstruction of logical data streams (including
// sub-node trees) from the block indices. It knows nothing about the LTP
// layer built on top of it or the message-store domain model.
package ndb

import (
	"fmt"
	"io"
	"sync"

	"github.com/outlookvault/pstkit/internal/pkgerr"
)

// Source is the paged I/O abstraction NDB reads through. It is satisfied
// by both a memory-mapped file and a plain io.ReaderAt, so callers can
// supply an arbitrary read-only seekable byte source for testing (per the
// external-interfaces requirement that the reader tolerate a byte source
// other than a file path).
type Source interface {
	// ReadAt copies len(p) bytes starting at off into p. It never returns
	// aliased storage from an underlying mapping.
	ReadAt(p []byte, off int64) (int, error)
	// Size returns the total addressable length of the source.
	Size() int64
	// Close releases any resources (mapping, file handle) held by the source.
	Close() error
}

// memSource wraps an in-memory byte slice, used for the mmap-backed path
// and for tests that build a whole file in memory.
type memSource struct {
	data    []byte
	cleanup func() error
}

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func (m *memSource) Size() int64 { return int64(len(m.data)) }

func (m *memSource) Close() error {
	if m.cleanup == nil {
		return nil
	}
	return m.cleanup()
}

// NewMemSource wraps a byte slice (e.g. a memory-mapped file, or a buffer
// built by a test) as a Source.
func NewMemSource(data []byte, cleanup func() error) Source {
	return &memSource{data: data, cleanup: cleanup}
}

// readerAtSource wraps an arbitrary io.ReaderAt. A mutex serializes
// concurrent reads so a single File handle never issues overlapping reads
// against a backend that might not itself be safe for concurrent access
// (satisfies invariant C1 for this backend).
type readerAtSource struct {
	mu   sync.Mutex
	r    io.ReaderAt
	size int64
}

// NewReaderAtSource wraps r, whose total addressable length is size, as a
// Source.
func NewReaderAtSource(r io.ReaderAt, size int64) Source {
	return &readerAtSource{r: r, size: size}
}

func (s *readerAtSource) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.ReadAt(p, off)
}

func (s *readerAtSource) Size() int64 { return s.size }

func (s *readerAtSource) Close() error {
	if c, ok := s.r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// readRange reads exactly n bytes at off, copying them out of src, and
// translates I/O failures into the pkgerr taxonomy.
func readRange(src Source, off int64, n int) ([]byte, error) {
	if off < 0 || off+int64(n) > src.Size() {
		return nil, pkgerr.New(pkgerr.Truncated,
			fmt.Sprintf("range [%d, %d) exceeds source size %d", off, off+int64(n), src.Size()))
	}
	buf := make([]byte, n)
	if _, err := src.ReadAt(buf, off); err != nil {
		return nil, pkgerr.Wrap(pkgerr.Io, "read range", err)
	}
	return buf, nil
}
