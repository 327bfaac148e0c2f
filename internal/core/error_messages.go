package core

// error_messages.go maps technical errors to user-facing messages with codes
// that can be quoted to support.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: file exceeds the configured size limit
//	FILE002 - Invalid CSV: quoting is broken or a row has the wrong field count
//	FILE003 - Encoding error: file contains invalid characters
//	FILE004 - No file: no file was sent with the request
//	FILE005 - Empty file: the file has no header row
//	FILE006 - File not found: the path or S3 object does not exist
//	FILE007 - Path not allowed: path checks are off or the path is outside CHECK_ROOT
//
// # Header Errors (HDR001-HDR099)
//
//	HDR001 - Malformed header: one or more column names are empty
//	HDR002 - Column not found: a limit or key column is not in the header
//
// # Check Errors (CHK001-CHK099)
//
//	CHK001 - Bad delimiter: delimiter is not exactly one single-byte character
//	CHK002 - Cancelled: the request was cancelled
//	CHK003 - Timed out: the check took longer than allowed
//	CHK004 - System busy: all check slots are in use
//	CHK005 - Run not found: no stored run has that ID
//	CHK006 - Read failed: the file could not be read to the end
//
// # Write Errors (WRT001-WRT099)
//
//	WRT001 - Required field: a field is empty and empty values are rejected
//	WRT002 - Header required: records were given without a header
//	WRT003 - Record shape: a record's keys do not match the header
//
// # Other
//
//	HIST001 - History unavailable: the run history database is unreachable
//	RATE001 - Rate limited: too many requests
//	ERR000  - Unknown error: fallback, check the logs for the technical error
//
// Typed errors are matched first with errors.Is / errors.As. Anything else
// falls through to case-insensitive substring patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/records"
	"github.com/JonMunkholm/csvdata/internal/store"
)

var (
	// ErrFileTooLarge is returned for uploads over the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoFile is returned when a check request carries no file or path.
	ErrNoFile = errors.New("no file provided")

	// ErrPathChecksDisabled is returned by CheckPath when no check root is
	// configured.
	ErrPathChecksDisabled = errors.New("path checks are disabled")

	// ErrPathNotAllowed is returned for a path outside the check root.
	ErrPathNotAllowed = errors.New("path is outside the check root")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum size limit",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}
	msgInvalidCSV = UserMessage{
		Message: "File is not a valid CSV",
		Action:  "Check quoting and make sure every row has as many values as the header",
		Code:    "FILE002",
	}
	msgEncoding = UserMessage{
		Message: "File contains invalid characters",
		Action:  "Save file as UTF-8 encoding",
		Code:    "FILE003",
	}
	msgNoFile = UserMessage{
		Message: "No file was provided",
		Action:  "Select a CSV file or give a path to check",
		Code:    "FILE004",
	}
	msgEmptyFile = UserMessage{
		Message: "The file is empty",
		Action:  "Provide a CSV file with a header row",
		Code:    "FILE005",
	}
	msgNotFound = UserMessage{
		Message: "File not found",
		Action:  "Verify the path or S3 location is correct",
		Code:    "FILE006",
	}
	msgPathNotAllowed = UserMessage{
		Message: "Path is not allowed",
		Action:  "Upload the file, or ask an administrator to set CHECK_ROOT and use a path under it",
		Code:    "FILE007",
	}
	msgMalformedHeader = UserMessage{
		Message: "The CSV header contains empty column names",
		Action:  "Give every column in the first line a name",
		Code:    "HDR001",
	}
	msgUnknownColumn = UserMessage{
		Message: "Column not found in the CSV header",
		Action:  "Use column names exactly as they appear in the header",
		Code:    "HDR002",
	}
	msgBadDelimiter = UserMessage{
		Message: "The delimiter can only be one character",
		Action:  "Use a single ASCII character such as , ; or |",
		Code:    "CHK001",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "CHK002",
	}
	msgTimeout = UserMessage{
		Message: "Check timed out",
		Action:  "Try a smaller file or try again later",
		Code:    "CHK003",
	}
	msgBusy = UserMessage{
		Message: "System is busy running other checks",
		Action:  "Please wait a moment and try again",
		Code:    "CHK004",
	}
	msgRunNotFound = UserMessage{
		Message: "Check run not found",
		Action:  "The run may have been pruned from history",
		Code:    "CHK005",
	}
	msgReadFailed = UserMessage{
		Message: "The file could not be read to the end",
		Action:  "Check the file is complete and try again",
		Code:    "CHK006",
	}
	msgRequiredField = UserMessage{
		Message: "Required field is empty",
		Action:  "Fill in every value or allow empty values",
		Code:    "WRT001",
	}
	msgHeaderRequired = UserMessage{
		Message: "A header is required to write records",
		Action:  "Pass the header line listing the record fields",
		Code:    "WRT002",
	}
	msgRecordShape = UserMessage{
		Message: "A record does not match the header",
		Action:  "Make every record use exactly the header's column names",
		Code:    "WRT003",
	}
	msgHistory = UserMessage{
		Message: "Run history is unavailable",
		Action:  "Please try again in a few moments",
		Code:    "HIST001",
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
	}
)

type errorMatcher struct {
	match func(error) bool
	msg   UserMessage
}

func is(target error) func(error) bool {
	return func(err error) bool { return errors.Is(err, target) }
}

func as[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}

// typedErrors is checked in order. Cancellation comes before StreamError
// because a cancelled check reports its context error wrapped in one.
var typedErrors = []errorMatcher{
	{is(context.Canceled), msgCancelled},
	{is(context.DeadlineExceeded), msgTimeout},
	{is(ErrTooManyChecks), msgBusy},
	{is(ErrFileTooLarge), msgFileTooLarge},
	{is(ErrNoFile), msgNoFile},
	{is(ErrPathChecksDisabled), msgPathNotAllowed},
	{is(ErrPathNotAllowed), msgPathNotAllowed},
	{is(csvio.ErrEmptyFile), msgEmptyFile},
	{is(csvio.ErrBadDelimiter), msgBadDelimiter},
	{is(store.ErrRunNotFound), msgRunNotFound},
	{is(records.ErrHeaderRequired), msgHeaderRequired},
	{as[*csvio.FileNotFoundError], msgNotFound},
	{as[*csvio.MalformedHeaderError], msgMalformedHeader},
	{as[*csvio.UnknownColumnError], msgUnknownColumn},
	{as[*csvio.ParseError], msgInvalidCSV},
	{as[*records.RowError], msgInvalidCSV},
	{as[*records.EmptyValueError], msgRequiredField},
	{as[*records.RecordShapeError], msgRecordShape},
	{as[*csvio.StreamError], msgReadFailed},
}

// errorPatterns catches errors that arrive as plain text, for example from
// the database driver or a proxy.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"rate limit", msgRateLimited},
	{"file too large", msgFileTooLarge},
	{"request body too large", msgFileTooLarge},
	{"invalid csv", msgInvalidCSV},
	{"encoding error", msgEncoding},
	{"no file provided", msgNoFile},
	{"no such file", msgNotFound},
	{"empty file", msgEmptyFile},
	{"connection refused", msgHistory},
	{"connection reset", msgHistory},
	{"timeout", msgTimeout},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	msg := MapError(&csvio.UnknownColumnError{Column: "hair"})
//	// msg.Code == "HDR002"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, m := range typedErrors {
		if m.match(err) {
			return m.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error, kept for logging, with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. It returns nil for a nil err.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
