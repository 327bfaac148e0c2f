package check

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// FormatText writes the report in its line-oriented form:
//
//	Missing value on line 3, 5
//	Empty value on line:
//	3 (hair)
//	Duplicate values for "hair":
//	"blonde" on line: 2, 4
//	File has problems!
func FormatText(w io.Writer, r *Report) error {
	var b strings.Builder
	switch {
	case r.Empty:
		b.WriteString("File appears to be empty!\n")
	case r.OK:
		b.WriteString("File looks ok.\n")
	default:
		if len(r.Missing) > 0 {
			fmt.Fprintf(&b, "Missing value on line %s\n", joinInts(r.Missing))
		}
		if len(r.EmptyLines) > 0 {
			fmt.Fprintf(&b, "Empty line on line %s\n", joinInts(r.EmptyLines))
		}
		if len(r.EmptyValues) > 0 {
			b.WriteString("Empty value on line:\n")
			for _, p := range r.EmptyValues {
				fmt.Fprintf(&b, "%d (%s)\n", p.Line, r.ColumnName(p.Column))
			}
		}
		for _, col := range r.DuplicateColumns() {
			fmt.Fprintf(&b, "Duplicate values for \"%s\":\n", r.ColumnName(col))
			for _, d := range r.Duplicates[col] {
				fmt.Fprintf(&b, "\"%s\" on line: %s\n", d.Value, joinInts(d.Lines))
			}
		}
		b.WriteString("File has problems!\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// FormatTable writes the report's diagnostics as a single aligned table.
func FormatTable(w io.Writer, r *Report) error {
	if r.Empty || r.OK {
		return FormatText(w, r)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Problem", "Line", "Column", "Value")
	for _, line := range r.Missing {
		table.Append([]string{"missing value", strconv.Itoa(line), "", ""})
	}
	for _, line := range r.EmptyLines {
		table.Append([]string{"empty line", strconv.Itoa(line), "", ""})
	}
	for _, p := range r.EmptyValues {
		table.Append([]string{"empty value", strconv.Itoa(p.Line), r.ColumnName(p.Column), ""})
	}
	for _, col := range r.DuplicateColumns() {
		for _, d := range r.Duplicates[col] {
			table.Append([]string{"duplicate", joinInts(d.Lines), r.ColumnName(col), d.Value})
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "File has problems!\n")
	return err
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
