package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/logging"
)

var (
	// ErrHeaderRequired is returned when keyed records are written without a header.
	ErrHeaderRequired = errors.New("when data comes from records, the header must be provided")

	// ErrNoData is returned for a zero-value Data.
	ErrNoData = errors.New("no data to write")
)

// RecordShapeError reports a record whose keys differ from the header.
type RecordShapeError struct {
	Index  int
	Header []string
	Keys   []string
}

func (e *RecordShapeError) Error() string {
	return fmt.Sprintf("record %d does not conform to header: header %v, record keys %v", e.Index, e.Header, e.Keys)
}

// EmptyValueError reports an empty field rejected by WriteOptions.RejectEmpty.
// Line is the 1-based data row, Column the header name when known.
type EmptyValueError struct {
	Line   int
	Column string
}

func (e *EmptyValueError) Error() string {
	return fmt.Sprintf("required field is empty: %q at line %d", e.Column, e.Line)
}

// Shape identifies the form of data passed to Write.
type Shape int

const (
	ShapeNone Shape = iota
	ShapeString
	ShapeRows
	ShapeRecords
	ShapeKeyed
)

// Data is one of the accepted input shapes. Build it with FromString, FromRows,
// FromRecords or FromKeyed.
type Data struct {
	shape   Shape
	text    string
	rows    [][]string
	records []Record
	keyed   map[string]Record
}

// FromString wraps delimiter-separated text, one row per line.
func FromString(s string) Data { return Data{shape: ShapeString, text: s} }

// FromRows wraps rows of fields.
func FromRows(rows [][]string) Data { return Data{shape: ShapeRows, rows: rows} }

// FromRecords wraps a list of records keyed by column name.
func FromRecords(recs []Record) Data { return Data{shape: ShapeRecords, records: recs} }

// FromKeyed wraps a mapping of records. Records are written in key order.
func FromKeyed(m map[string]Record) Data { return Data{shape: ShapeKeyed, keyed: m} }

// Shape returns the variant held by d.
func (d Data) Shape() Shape { return d.shape }

// resolve turns d into rows of fields. header may be nil for unkeyed shapes.
func (d Data) resolve(header []string, delim byte) ([][]string, error) {
	switch d.shape {
	case ShapeString:
		rd := csvio.NewReader(strings.NewReader(d.text))
		rd.Comma = delim
		return rd.ReadAll()
	case ShapeRows:
		return d.rows, nil
	case ShapeRecords:
		if header == nil {
			return nil, ErrHeaderRequired
		}
		return recordsToRows(header, d.records)
	case ShapeKeyed:
		if header == nil {
			return nil, ErrHeaderRequired
		}
		keys := make([]string, 0, len(d.keyed))
		for k := range d.keyed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		recs := make([]Record, len(keys))
		for i, k := range keys {
			recs[i] = d.keyed[k]
		}
		return recordsToRows(header, recs)
	default:
		return nil, ErrNoData
	}
}

func recordsToRows(header []string, recs []Record) ([][]string, error) {
	rows := make([][]string, len(recs))
	for i, rec := range recs {
		if len(rec) != len(header) {
			return nil, shapeError(i, header, rec)
		}
		row := make([]string, len(header))
		for j, col := range header {
			v, ok := rec[col]
			if !ok {
				return nil, shapeError(i, header, rec)
			}
			if isEmpty(v) {
				row[j] = ""
				continue
			}
			row[j] = FormatValue(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func shapeError(i int, header []string, rec Record) error {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &RecordShapeError{Index: i, Header: header, Keys: keys}
}

// WriteOptions configures Write.
type WriteOptions struct {
	// Delimiter is the field separator, exactly one ASCII character. Empty means ",".
	Delimiter string

	// Header is the header line, columns separated by Delimiter. It is
	// required for record shapes.
	Header string

	// Append adds to an existing file instead of truncating it. The header is
	// not written again.
	Append bool

	// RejectEmpty fails on any empty field.
	RejectEmpty bool
}

// Write validates data and writes it to path. Nothing is written when
// validation fails.
func Write(ctx context.Context, path string, data Data, opts WriteOptions) error {
	header, rows, err := prepare(data, opts)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if opts.Append {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if !opts.Append && header != nil {
		rows = append([][]string{header}, rows...)
	}
	werr := emit(f, rows, opts.Delimiter)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("write %s: %w", path, werr)
	}
	if cerr != nil {
		return fmt.Errorf("write %s: %w", path, cerr)
	}

	logging.FromContext(ctx).Info("data written", "path", path, "rows", len(rows), "append", opts.Append)
	return nil
}

// WriteTo validates data and writes it, header included, to w.
func WriteTo(w io.Writer, data Data, opts WriteOptions) error {
	header, rows, err := prepare(data, opts)
	if err != nil {
		return err
	}
	if header != nil {
		rows = append([][]string{header}, rows...)
	}
	return emit(w, rows, opts.Delimiter)
}

func emit(w io.Writer, rows [][]string, delimiter string) error {
	delim, _ := csvio.ParseDelimiter(delimiter)
	cw := csvio.NewWriter(w)
	cw.Comma = delim
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// prepare resolves data to rows and applies every validation rule.
func prepare(data Data, opts WriteOptions) ([]string, [][]string, error) {
	delim, err := csvio.ParseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, nil, err
	}

	var header []string
	if opts.Header != "" {
		header = strings.Split(opts.Header, string(delim))
		if err := csvio.ValidateHeader(header); err != nil {
			return nil, nil, err
		}
	}

	rows, err := data.resolve(header, delim)
	if err != nil {
		return nil, nil, err
	}

	hlen := len(header)
	if header == nil && len(rows) > 0 {
		hlen = len(rows[0])
	}

	out := make([][]string, 0, len(rows))
	for i, row := range rows {
		if len(row) != hlen {
			if csvio.IsEmptyRow(row) {
				continue
			}
			return nil, nil, &RowError{Line: i + 1, Want: hlen, Got: len(row), Fields: row}
		}
		if opts.RejectEmpty {
			for j, field := range row {
				if field == "" {
					col := ""
					if j < len(header) {
						col = header[j]
					}
					return nil, nil, &EmptyValueError{Line: i + 1, Column: col}
				}
			}
		}
		out = append(out, row)
	}
	return header, out, nil
}
