package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/records"
	"github.com/JonMunkholm/csvdata/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"file not found", &csvio.FileNotFoundError{Path: "x.csv", Err: fs.ErrNotExist}, "FILE006"},
		{"wrapped file not found", fmt.Errorf("load x.csv: %w", &csvio.FileNotFoundError{Path: "x.csv"}), "FILE006"},
		{"malformed header", &csvio.MalformedHeaderError{Columns: []int{1}}, "HDR001"},
		{"unknown column", &csvio.UnknownColumnError{Column: "hair"}, "HDR002"},
		{"bad delimiter", fmt.Errorf("%w: got %q", csvio.ErrBadDelimiter, ";;"), "CHK001"},
		{"parse error", &csvio.ParseError{Line: 3, Err: csvio.ErrBareQuote}, "FILE002"},
		{"row error", &records.RowError{Line: 2, Want: 3, Got: 2}, "FILE002"},
		{"empty value", &records.EmptyValueError{Line: 1, Column: "a"}, "WRT001"},
		{"header required", records.ErrHeaderRequired, "WRT002"},
		{"record shape", &records.RecordShapeError{}, "WRT003"},
		{"stream error", &csvio.StreamError{Line: 9, Err: errors.New("unexpected EOF")}, "CHK006"},
		{"cancelled inside stream error", &csvio.StreamError{Line: 9, Err: context.Canceled}, "CHK002"},
		{"deadline", fmt.Errorf("check: %w", context.DeadlineExceeded), "CHK003"},
		{"busy", ErrTooManyChecks, "CHK004"},
		{"too large", ErrFileTooLarge, "FILE001"},
		{"no file", ErrNoFile, "FILE004"},
		{"empty file", csvio.ErrEmptyFile, "FILE005"},
		{"run not found", store.ErrRunNotFound, "CHK005"},
		{"http body limit", errors.New("http: request body too large"), "FILE001"},
		{"database down", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), "HIST001"},
		{"rate limit text", errors.New("rate limit exceeded"), "RATE001"},
		{"case insensitive", errors.New("INVALID CSV input"), "FILE002"},
		{"unknown error returns default", errors.New("some random internal error"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(&csvio.UnknownColumnError{Column: "hair"})

	expected := "Column not found in the CSV header (Code: HDR002). Use column names exactly as they appear in the header"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrTooManyChecks, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := &csvio.MalformedHeaderError{Columns: []int{0}}
		userErr := NewUserError(techErr)

		if userErr.Error() != "The CSV header contains empty column names" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		var mh *csvio.MalformedHeaderError
		if !errors.As(userErr, &mh) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}
