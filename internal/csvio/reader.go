// Package csvio tokenizes and emits delimiter-separated text.
//
// Reader differs from encoding/csv in one way that matters for validation:
// blank lines are not skipped. A blank line is returned as the single-field
// record [""], so callers can tell it apart from a short row. A newline at
// the very end of the input does not produce an extra record.
package csvio

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

const quote = '"'

// Reader reads records from delimiter-separated input.
//
// Quoted fields follow RFC 4180: a field starting with '"' may contain the
// delimiter, newlines and doubled quotes. Records end at LF, CR or CRLF.
// A leading UTF-8 BOM is dropped and invalid UTF-8 is replaced with '?'.
type Reader struct {
	// Comma is the field delimiter. Default is ','.
	Comma byte

	br       *bufio.Reader
	bomDone  bool
	finished bool

	line     int // physical line the current record started on
	nextLine int
	records  int

	field []byte
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		Comma:    ',',
		br:       bufio.NewReaderSize(r, 64*1024),
		nextLine: 1,
		field:    make([]byte, 0, 64),
	}
}

// Line returns the physical line on which the last returned record started.
func (r *Reader) Line() int { return r.line }

// Records returns the number of records returned so far.
func (r *Reader) Records() int { return r.records }

// Read returns the next record. It returns io.EOF once the input is exhausted.
// Errors other than io.EOF from the underlying reader are returned unchanged;
// malformed quoting yields a *ParseError.
func (r *Reader) Read() ([]string, error) {
	if r.finished {
		return nil, io.EOF
	}
	if !r.bomDone {
		r.bomDone = true
		if err := r.skipBOM(); err != nil {
			return nil, err
		}
	}

	comma := r.Comma
	if comma == 0 {
		comma = ','
	}

	r.line = r.nextLine
	r.field = r.field[:0]
	var record []string
	inQuotes := false
	quoted := false

	for {
		b, err := r.br.ReadByte()
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			r.finished = true
			if inQuotes {
				return nil, &ParseError{Line: r.line, Field: len(record) + 1, Err: ErrUnterminatedQuote}
			}
			if len(record) == 0 && len(r.field) == 0 && !quoted {
				return nil, io.EOF
			}
			return r.finish(append(record, r.takeField())), nil
		}

		if inQuotes {
			if b == quote {
				next, err := r.br.Peek(1)
				if err == nil && next[0] == quote {
					r.br.ReadByte()
					r.field = append(r.field, quote)
					continue
				}
				if err != nil && err != io.EOF {
					return nil, err
				}
				inQuotes = false
				continue
			}
			if b == '\n' {
				r.nextLine++
			}
			r.field = append(r.field, b)
			continue
		}

		switch b {
		case comma:
			record = append(record, r.takeField())
			quoted = false
		case '\n':
			r.nextLine++
			return r.finish(append(record, r.takeField())), nil
		case '\r':
			next, err := r.br.Peek(1)
			if err == nil && next[0] == '\n' {
				r.br.ReadByte()
			} else if err != nil && err != io.EOF {
				return nil, err
			}
			r.nextLine++
			return r.finish(append(record, r.takeField())), nil
		case quote:
			if len(r.field) == 0 && !quoted {
				inQuotes = true
				quoted = true
				continue
			}
			r.finished = true
			return nil, &ParseError{Line: r.line, Field: len(record) + 1, Err: ErrBareQuote}
		default:
			r.field = append(r.field, b)
		}
	}
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

func (r *Reader) finish(record []string) []string {
	r.records++
	return record
}

func (r *Reader) takeField() string {
	var s string
	if utf8.Valid(r.field) {
		s = string(r.field)
	} else {
		s = strings.ToValidUTF8(string(r.field), "?")
	}
	r.field = r.field[:0]
	return s
}

// skipBOM drops the UTF-8 byte order mark Windows tools like to prepend.
func (r *Reader) skipBOM() error {
	b, err := r.br.Peek(3)
	if err != nil && err != io.EOF {
		return err
	}
	if len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, err = r.br.Discard(3)
		return err
	}
	return nil
}
