package check

// Position is a single (line, column) cell reference. Column is 0-based,
// line is 1-based with the header on line 1.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Duplicate lists every line sharing one value within a column.
type Duplicate struct {
	Value string `json:"value"`
	Lines []int  `json:"lines"`
}

// Report is the result of one check run.
type Report struct {
	Path    string   `json:"path,omitempty"`
	Header  []string `json:"header,omitempty"`
	Columns []int    `json:"columns,omitempty"`
	Rows    int      `json:"rows"`

	// OK is the verdict. It is false for an empty file.
	OK    bool `json:"ok"`
	Empty bool `json:"empty,omitempty"`

	Missing     []int               `json:"missing,omitempty"`
	EmptyLines  []int               `json:"emptyLines,omitempty"`
	EmptyValues []Position          `json:"emptyValues,omitempty"`
	Duplicates  map[int][]Duplicate `json:"duplicates,omitempty"`
}

// ColumnName returns the header name of column i, or "" when out of range.
func (r *Report) ColumnName(i int) string {
	if i < 0 || i >= len(r.Header) {
		return ""
	}
	return r.Header[i]
}

// DuplicateLines returns the lines holding value in column col, or nil when
// the value was not duplicated there.
func (r *Report) DuplicateLines(col int, value string) []int {
	for _, d := range r.Duplicates[col] {
		if d.Value == value {
			return d.Lines
		}
	}
	return nil
}

// DuplicateColumns returns the columns that have duplicates, in header order.
func (r *Report) DuplicateColumns() []int {
	var cols []int
	for i := range r.Header {
		if len(r.Duplicates[i]) > 0 {
			cols = append(cols, i)
		}
	}
	return cols
}

// ProblemCount returns the number of recorded diagnostics.
func (r *Report) ProblemCount() int {
	n := len(r.Missing) + len(r.EmptyLines) + len(r.EmptyValues)
	for _, dups := range r.Duplicates {
		n += len(dups)
	}
	return n
}
