package csvio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyFile is returned when a file has no header row at all.
	// Check treats it as a benign outcome rather than a failure.
	ErrEmptyFile = errors.New("file appears to be empty")

	// ErrBadDelimiter is returned when the delimiter is not exactly one
	// single-byte (ASCII) character, or is a byte that cannot separate fields
	// (quote, CR, LF).
	ErrBadDelimiter = errors.New("the delimiter can only be one character")

	// ErrBareQuote is returned when a quote appears inside an unquoted field.
	ErrBareQuote = errors.New("bare quote in non-quoted field")

	// ErrUnterminatedQuote is returned when a quoted field is still open at EOF.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")
)

// FileNotFoundError reports a source that does not exist or cannot be opened.
type FileNotFoundError struct {
	Path string
	Err  error
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("file not found: %s: %v", e.Path, e.Err)
}

func (e *FileNotFoundError) Unwrap() error { return e.Err }

// MalformedHeaderError reports empty column names in a header row.
// Columns holds the 0-based positions of the empty names.
type MalformedHeaderError struct {
	Columns []int
}

func (e *MalformedHeaderError) Error() string {
	pos := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		pos[i] = strconv.Itoa(c + 1)
	}
	return "malformed header: the CSV header contains empty values (column " + strings.Join(pos, ", ") + ")"
}

// UnknownColumnError reports a requested column name that is not in the header.
type UnknownColumnError struct {
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("column not found: %q does not correspond to CSV headers", e.Column)
}

// StreamError wraps a read or parse failure that happened after the header.
// Line is the record number being read when the failure occurred.
type StreamError struct {
	Line int
	Err  error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("stream error at line %d: %v", e.Line, e.Err)
}

func (e *StreamError) Unwrap() error { return e.Err }

// ParseError carries the physical position of a tokenizer failure.
type ParseError struct {
	Line  int // physical line, 1-based
	Field int // field index within the record, 1-based
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid csv: parse error on line %d, field %d: %v", e.Line, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ValidateHeader returns a *MalformedHeaderError when any column name is empty.
func ValidateHeader(header []string) error {
	var empty []int
	for i, name := range header {
		if name == "" {
			empty = append(empty, i)
		}
	}
	if len(empty) > 0 {
		return &MalformedHeaderError{Columns: empty}
	}
	return nil
}

// IsEmptyRow reports whether a row is the single empty field a blank line
// tokenizes to.
func IsEmptyRow(row []string) bool {
	return len(row) == 1 && row[0] == ""
}

// ParseDelimiter validates a user-supplied delimiter. An empty string selects
// the default comma. Fields are split on a single byte, so a one-rune
// delimiter outside ASCII such as "§" is rejected too.
func ParseDelimiter(s string) (byte, error) {
	if s == "" {
		return ',', nil
	}
	if len(s) != 1 {
		if utf8.RuneCountInString(s) == 1 {
			return 0, fmt.Errorf("%w: %q is not a single-byte character, only ASCII delimiters are supported", ErrBadDelimiter, s)
		}
		return 0, fmt.Errorf("%w: got %q", ErrBadDelimiter, s)
	}
	switch b := s[0]; b {
	case '"', '\r', '\n':
		return 0, fmt.Errorf("%w: %q cannot separate fields", ErrBadDelimiter, s)
	default:
		return b, nil
	}
}
