package check

import (
	"strings"

	"github.com/JonMunkholm/csvdata/internal/csvio"
)

// ResolveColumns validates a header row and returns the tracked column set.
//
// An absent or blank header yields csvio.ErrEmptyFile. Empty column names
// yield *csvio.MalformedHeaderError. When limit is non-empty, each
// comma-separated name must match a header name. A name is matched exactly
// first; only when no header name matches is it retried with surrounding
// whitespace trimmed, so "a, b" still works. The returned indices follow the
// order of the request. Without a limit every column is tracked.
func ResolveColumns(header []string, limit string) ([]int, error) {
	if len(header) == 0 || csvio.IsEmptyRow(header) {
		return nil, csvio.ErrEmptyFile
	}
	if err := csvio.ValidateHeader(header); err != nil {
		return nil, err
	}

	if strings.TrimSpace(limit) == "" {
		cols := make([]int, len(header))
		for i := range header {
			cols[i] = i
		}
		return cols, nil
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	names := strings.Split(limit, ",")
	cols := make([]int, 0, len(names))
	seen := make(map[int]bool, len(names))
	for _, name := range names {
		i, ok := index[name]
		if !ok {
			i, ok = index[strings.TrimSpace(name)]
		}
		if !ok {
			return nil, &csvio.UnknownColumnError{Column: name}
		}
		// Naming a column twice must not make a row collide with itself.
		if !seen[i] {
			seen[i] = true
			cols = append(cols, i)
		}
	}
	return cols, nil
}
