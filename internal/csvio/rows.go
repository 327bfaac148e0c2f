package csvio

import (
	"errors"
	"io"
)

// Rows is a finite, forward-only sequence of records. It cannot be
// restarted; once Next returns false the sequence is exhausted.
//
//	rows := csvio.NewRows(f, ',')
//	defer rows.Close()
//	for rows.Next() {
//	    use(rows.Line(), rows.Row())
//	}
//	if err := rows.Err(); err != nil { ... }
type Rows struct {
	reader *Reader
	closer io.Closer

	row  []string
	line int
	err  error
	done bool
}

// NewRows wraps src in a row iterator using delim as the field separator.
// If src implements io.Closer, Close closes it.
func NewRows(src io.Reader, delim byte) *Rows {
	rd := NewReader(src)
	rd.Comma = delim
	rows := &Rows{reader: rd}
	if c, ok := src.(io.Closer); ok {
		rows.closer = c
	}
	return rows
}

// Next advances to the next record. It returns false at end of input or on
// error; Err distinguishes the two.
func (r *Rows) Next() bool {
	if r.done {
		return false
	}
	row, err := r.reader.Read()
	if err != nil {
		r.done = true
		r.row = nil
		if !errors.Is(err, io.EOF) {
			r.err = &StreamError{Line: r.line + 1, Err: err}
		}
		return false
	}
	r.row = row
	r.line = r.reader.Records()
	return true
}

// Row returns the current record.
func (r *Rows) Row() []string { return r.row }

// Line returns the 1-based record number of the current record. The header
// is line 1.
func (r *Rows) Line() int { return r.line }

// Err returns the error that stopped iteration, if any. It is a *StreamError.
func (r *Rows) Err() error { return r.err }

// Close releases the underlying source.
func (r *Rows) Close() error {
	r.done = true
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}
