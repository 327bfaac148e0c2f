// Package records loads CSV files into memory and writes records back out.
package records

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/logging"
	"github.com/JonMunkholm/csvdata/internal/source"
)

// LoadOptions configures Load and Stream.
type LoadOptions struct {
	// Delimiter is the field separator, exactly one ASCII character. Empty means ",".
	Delimiter string

	// Parse converts numeric and boolean fields to typed values.
	Parse bool

	// KeyBy names the column whose value keys Table.Keyed.
	KeyBy string

	// Source opens paths. Nil uses source.Default.
	Source source.Opener
}

// DefaultLoadOptions returns the default load configuration.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{Delimiter: ",", Parse: true}
}

func (o LoadOptions) opener() source.Opener {
	if o.Source != nil {
		return o.Source
	}
	return source.Default()
}

// Table is a fully materialized file.
type Table struct {
	Header  []string
	Records []Record

	keyBy string
}

// RowError reports a row whose field count disagrees with the header.
type RowError struct {
	Line   int
	Want   int
	Got    int
	Fields []string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("invalid csv: line %d has %d values, header has %d", e.Line, e.Got, e.Want)
}

// Stream opens path and returns its records as a lazy, non-restartable
// sequence, header first and blank lines included. The caller must Close it.
func Stream(ctx context.Context, path string, opts LoadOptions) (*csvio.Rows, error) {
	delim, err := csvio.ParseDelimiter(opts.Delimiter)
	if err != nil {
		return nil, err
	}
	f, err := opts.opener().Open(ctx, path)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("streaming records", "path", path, "size", f.Size)
	return csvio.NewRows(f, delim), nil
}

// Load reads path completely. The first row is the header; blank lines are
// skipped. An empty file yields an empty table.
func Load(ctx context.Context, path string, opts LoadOptions) (*Table, error) {
	rows, err := Stream(ctx, path, opts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	table, err := collect(ctx, rows, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if table.Header == nil {
		logging.FromContext(ctx).Warn("file appears to be empty", "path", path)
	}
	return table, nil
}

func collect(ctx context.Context, rows *csvio.Rows, opts LoadOptions) (*Table, error) {
	table := &Table{keyBy: opts.KeyBy}

	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row := rows.Row()
		if csvio.IsEmptyRow(row) {
			continue
		}
		if table.Header == nil {
			if err := csvio.ValidateHeader(row); err != nil {
				return nil, err
			}
			table.Header = row
			if opts.KeyBy != "" && table.columnIndex(opts.KeyBy) < 0 {
				return nil, &csvio.UnknownColumnError{Column: opts.KeyBy}
			}
			continue
		}
		if len(row) != len(table.Header) {
			return nil, &RowError{Line: rows.Line(), Want: len(table.Header), Got: len(row), Fields: row}
		}

		rec := make(Record, len(row))
		for i, field := range row {
			if opts.Parse {
				rec[table.Header[i]] = ParseValue(field)
			} else {
				rec[table.Header[i]] = field
			}
		}
		table.Records = append(table.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func (t *Table) columnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Keyed returns records keyed by the KeyBy column's value. Later records
// replace earlier ones with the same key. It returns nil when the table was
// loaded without KeyBy.
func (t *Table) Keyed() map[string]Record {
	if t.keyBy == "" {
		return nil
	}
	out := make(map[string]Record, len(t.Records))
	for _, rec := range t.Records {
		out[FormatValue(rec[t.keyBy])] = rec
	}
	return out
}

// Rows returns the records as field lists in header order.
func (t *Table) Rows() [][]string {
	out := make([][]string, len(t.Records))
	for i, rec := range t.Records {
		row := make([]string, len(t.Header))
		for j, col := range t.Header {
			row[j] = FormatValue(rec[col])
		}
		out[i] = row
	}
	return out
}
