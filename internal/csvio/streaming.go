package csvio

// streaming.go provides reader wrappers used while a file is consumed.
//
// CountingReader tracks bytes read so long-running checks can report
// progress; it is safe to poll from another goroutine.

import (
	"io"
	"sync/atomic"
)

// CountingReader wraps an io.Reader to track bytes read.
type CountingReader struct {
	reader io.Reader
	read   atomic.Int64
	Total  int64 // If known (0 if unknown)
}

// NewCountingReader creates a counting reader with optional total size.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{reader: r, Total: total}
}

// Read implements io.Reader.
func (r *CountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.read.Add(int64(n))
	return n, err
}

// BytesRead returns the number of bytes consumed so far.
func (r *CountingReader) BytesRead() int64 { return r.read.Load() }

// Progress returns the read progress as a percentage (0-100).
// Returns 0 if total is unknown.
func (r *CountingReader) Progress() int {
	if r.Total <= 0 {
		return 0
	}
	p := int(r.read.Load() * 100 / r.Total)
	if p > 100 {
		p = 100
	}
	return p
}
