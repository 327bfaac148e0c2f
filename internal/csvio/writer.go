package csvio

import (
	"bufio"
	"io"
	"strings"
)

// Writer emits records separated by a single-byte delimiter and terminated
// by '\n'. Fields are quoted only when they contain the delimiter, a quote,
// CR or LF, so plain data round-trips byte for byte.
type Writer struct {
	// Comma is the field delimiter. Default is ','.
	Comma byte

	w   *bufio.Writer
	err error
}

// NewWriter returns a buffered Writer on w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{Comma: ',', w: bufio.NewWriter(w)}
}

// Write emits a single record.
func (w *Writer) Write(record []string) error {
	if w.err != nil {
		return w.err
	}
	comma := w.Comma
	if comma == 0 {
		comma = ','
	}
	// A lone empty field would read back as a blank line.
	if IsEmptyRow(record) {
		return w.WriteLine(`""`)
	}
	for i, field := range record {
		if i > 0 {
			w.err = w.w.WriteByte(comma)
		}
		if w.err == nil {
			w.err = w.writeField(field, comma)
		}
		if w.err != nil {
			return w.err
		}
	}
	w.err = w.w.WriteByte('\n')
	return w.err
}

// WriteLine emits an already-joined line verbatim, followed by '\n'.
func (w *Writer) WriteLine(line string) error {
	if w.err != nil {
		return w.err
	}
	if _, w.err = w.w.WriteString(line); w.err == nil {
		w.err = w.w.WriteByte('\n')
	}
	return w.err
}

// Flush writes any buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}

func (w *Writer) writeField(field string, comma byte) error {
	if !needsQuotes(field, comma) {
		_, err := w.w.WriteString(field)
		return err
	}
	if err := w.w.WriteByte(quote); err != nil {
		return err
	}
	if _, err := w.w.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
		return err
	}
	return w.w.WriteByte(quote)
}

func needsQuotes(field string, comma byte) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case comma, quote, '\r', '\n':
			return true
		}
	}
	return false
}
