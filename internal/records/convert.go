package records

// convert.go turns raw CSV fields into typed values when loading with Parse.
//
// Only unambiguous forms are converted: plain integers, decimals with an
// optional exponent, and the literals true/false. Anything else, including
// currency, thousands separators, dates and zero-padded codes, stays a string.

import (
	"fmt"
	"regexp"
	"strconv"
)

// Value is a single field: string, int64, float64, bool or nil.
type Value = any

// Record maps column names to values.
type Record map[string]Value

var (
	intRegex   = regexp.MustCompile(`^[+-]?(0|[1-9]\d*)$`)
	floatRegex = regexp.MustCompile(`^[+-]?((0|[1-9]\d*)(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)
)

// ParseValue converts a raw field to the most specific type it represents.
func ParseValue(s string) Value {
	if s == "" {
		return s
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if intRegex.MatchString(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	if floatRegex.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// FormatValue renders a value as a CSV field. Nil renders as "".
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}

// isEmpty reports whether a value counts as missing for RejectEmpty.
func isEmpty(v Value) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	}
	return false
}
