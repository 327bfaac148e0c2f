package check

import (
	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/source"
)

// Options controls which problems a check looks for.
//
// The zero value is not the default configuration: EmptyValues and Log are
// on by default. Start from DefaultOptions and override what you need.
type Options struct {
	// Duplicates reports values repeated within a tracked column.
	Duplicates bool `json:"duplicates"`

	// EmptyLines reports blank data lines. When off, blank lines are ignored.
	EmptyLines bool `json:"emptyLines"`

	// EmptyValues reports empty fields in tracked columns.
	EmptyValues bool `json:"emptyValues"`

	// Limit restricts tracked columns to a comma-separated list of header
	// names. Empty means every column.
	Limit string `json:"limit,omitempty"`

	// Delimiter is the field separator, exactly one ASCII character. Empty means ",".
	Delimiter string `json:"delimiter,omitempty"`

	// Log keeps line positions in the report and logs progress. When off only
	// the verdict is computed.
	Log bool `json:"log"`

	// Source opens paths for Check. Nil uses source.Default.
	Source source.Opener `json:"-"`
}

// DefaultOptions returns the default check configuration.
func DefaultOptions() Options {
	return Options{
		EmptyValues: true,
		Delimiter:   ",",
		Log:         true,
	}
}

// delimiter resolves the configured delimiter byte.
func (o Options) delimiter() (byte, error) {
	return csvio.ParseDelimiter(o.Delimiter)
}

func (o Options) opener() source.Opener {
	if o.Source != nil {
		return o.Source
	}
	return source.Default()
}
