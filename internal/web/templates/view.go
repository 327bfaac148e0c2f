// Package templates renders the HTML pages of the web UI.
//
// Pages are written as .templ files; run `templ generate` after editing
// them to refresh the *_templ.go files.
package templates

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/csvdata/internal/check"
)

func rowCount(r *check.Report) int {
	if r == nil {
		return 0
	}
	return r.Rows
}

func problemCount(r *check.Report) int {
	if r == nil {
		return 0
	}
	return r.ProblemCount()
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
