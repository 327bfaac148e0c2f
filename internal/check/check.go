// Package check validates delimiter-separated files in a single streaming
// pass.
//
// The header is validated first; structural problems (empty column names,
// unknown limit columns) fail before any data row is read. Per-row problems
// (wrong field count, blank lines, empty values, duplicates) never fail the
// run: they are collected into a Report whose OK field is the verdict.
package check

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/logging"
)

// RowSource is a pull-based sequence of records, header first.
// *csvio.Rows satisfies it.
type RowSource interface {
	Next() bool
	Row() []string
	Err() error
}

// Check opens path and validates it.
//
// An empty file is not an error: the returned report has Empty set and OK
// false. A missing file yields *csvio.FileNotFoundError.
func Check(ctx context.Context, path string, opts Options) (*Report, error) {
	delim, err := opts.delimiter()
	if err != nil {
		return nil, err
	}

	f, err := opts.opener().Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows := csvio.NewRows(f, delim)
	report, err := scan(ctx, rows, opts, path)
	if err != nil {
		return nil, err
	}
	report.Path = path
	return report, nil
}

// Run validates CSV data read from r.
func Run(ctx context.Context, r io.Reader, opts Options) (*Report, error) {
	delim, err := opts.delimiter()
	if err != nil {
		return nil, err
	}
	return scan(ctx, csvio.NewRows(r, delim), opts, "")
}

// Scan validates records pulled from rows. The first record is the header.
func Scan(ctx context.Context, rows RowSource, opts Options) (*Report, error) {
	return scan(ctx, rows, opts, "")
}

func scan(ctx context.Context, rows RowSource, opts Options, name string) (*Report, error) {
	logger := logging.WithFields(ctx, "path", name)
	start := time.Now()

	var header []string
	if rows.Next() {
		header = rows.Row()
	} else if err := rows.Err(); err != nil {
		return nil, err
	}

	columns, err := ResolveColumns(header, opts.Limit)
	if errors.Is(err, csvio.ErrEmptyFile) {
		if opts.Log {
			logger.Warn("file appears to be empty")
		}
		return &Report{Empty: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if opts.Log {
		logger.Debug("check started",
			"columns", len(header),
			"tracked", len(columns),
			"duplicates", opts.Duplicates,
			"empty_lines", opts.EmptyLines,
			"empty_values", opts.EmptyValues,
		)
	}

	engine := NewEngine(header, columns, opts)
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, &csvio.StreamError{Line: engine.Line(), Err: err}
		}
		engine.Add(rows.Row())
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	report := engine.Report()
	if opts.Log {
		logger.Log(ctx, levelFor(report), "check finished",
			"rows", report.Rows,
			"ok", report.OK,
			"problems", report.ProblemCount(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return report, nil
}

func levelFor(r *Report) slog.Level {
	if r.OK {
		return slog.LevelInfo
	}
	return slog.LevelWarn
}
