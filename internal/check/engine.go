package check

import "github.com/JonMunkholm/csvdata/internal/csvio"

// Engine accumulates diagnostics for one file, one row at a time.
//
// Feed rows in file order with Add, starting with the first data row, then
// call Report. An Engine is owned by a single run and is not safe for
// concurrent use.
type Engine struct {
	opts    Options
	header  []string
	columns []int
	hlen    int

	count int // line number of the next row; header is line 1
	ok    bool

	report *Report
	dups   map[int]*tracker
}

// tracker holds duplicate state for one column. A value lives in memo until
// its second occurrence, at which point it gets an entry in the report's
// duplicate list and lists records where.
type tracker struct {
	memo  map[string]int
	lists map[string]int
}

// NewEngine creates an engine for a validated header and tracked column set.
func NewEngine(header []string, columns []int, opts Options) *Engine {
	e := &Engine{
		opts:    opts,
		header:  header,
		columns: columns,
		hlen:    len(header),
		count:   2,
		ok:      true,
		report: &Report{
			Header:  header,
			Columns: columns,
		},
	}
	if opts.Duplicates {
		e.dups = make(map[int]*tracker, len(columns))
		e.report.Duplicates = make(map[int][]Duplicate)
		for _, col := range columns {
			e.dups[col] = &tracker{
				memo:  make(map[string]int),
				lists: make(map[string]int),
			}
		}
	}
	return e
}

// Line returns the line number the next row will be assigned.
func (e *Engine) Line() int { return e.count }

// OK returns the verdict so far.
func (e *Engine) OK() bool { return e.ok }

// Add checks one data row.
func (e *Engine) Add(row []string) {
	line := e.count
	record := e.opts.Log

	if len(row) != e.hlen {
		if csvio.IsEmptyRow(row) {
			if e.opts.EmptyLines {
				e.ok = false
				if record {
					e.report.EmptyLines = append(e.report.EmptyLines, line)
				}
			}
		} else {
			e.ok = false
			if record {
				e.report.Missing = append(e.report.Missing, line)
			}
		}
	}

	if e.opts.EmptyValues || e.opts.Duplicates {
		for _, col := range e.columns {
			// Fields past the end of a short row count as empty.
			var item string
			if col < len(row) {
				item = row[col]
			}
			if e.opts.EmptyValues {
				e.checkEmpty(row, line, col, item)
			}
			if e.opts.Duplicates {
				e.checkDuplicate(line, col, item)
			}
		}
	}

	e.count++
}

func (e *Engine) checkEmpty(row []string, line, col int, item string) {
	// A blank line was already classified above.
	if len(row) == 1 || item != "" {
		return
	}
	e.ok = false
	if e.opts.Log {
		e.report.EmptyValues = append(e.report.EmptyValues, Position{Line: line, Column: col})
	}
}

func (e *Engine) checkDuplicate(line, col int, item string) {
	if item == "" {
		return
	}
	t := e.dups[col]
	first, seen := t.memo[item]
	if !seen {
		t.memo[item] = line
		return
	}

	e.ok = false
	if !e.opts.Log {
		return
	}
	dups := e.report.Duplicates[col]
	if i, listed := t.lists[item]; listed {
		dups[i].Lines = append(dups[i].Lines, line)
		return
	}
	t.lists[item] = len(dups)
	e.report.Duplicates[col] = append(dups, Duplicate{Value: item, Lines: []int{first, line}})
}

// Report finalizes and returns the report. The engine must not be used
// afterwards.
func (e *Engine) Report() *Report {
	e.report.OK = e.ok
	e.report.Rows = e.count - 2
	if len(e.report.Duplicates) == 0 {
		e.report.Duplicates = nil
	}
	return e.report
}
