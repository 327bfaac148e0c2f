package web

// errors.go renders every error response.
//
// The technical error is logged with the request ID; the client gets the
// mapped core.UserMessage as JSON for API routes and as an HTML page
// otherwise.

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csvdata/internal/core"
	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/records"
	"github.com/JonMunkholm/csvdata/internal/store"
	"github.com/JonMunkholm/csvdata/internal/web/templates"
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var (
		notFound *csvio.FileNotFoundError
		tooLarge *http.MaxBytesError
	)
	switch {
	case errors.Is(err, store.ErrRunNotFound), errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrPathChecksDisabled), errors.Is(err, core.ErrPathNotAllowed):
		return http.StatusForbidden
	case errors.Is(err, core.ErrFileTooLarge), errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyChecks):
		return http.StatusServiceUnavailable
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case isBadInput(err):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// isBadInput reports whether err was caused by the request content.
func isBadInput(err error) bool {
	var (
		header   *csvio.MalformedHeaderError
		unknown  *csvio.UnknownColumnError
		parseErr *csvio.ParseError
		rowErr   *records.RowError
	)
	return errors.Is(err, core.ErrNoFile) ||
		errors.Is(err, csvio.ErrBadDelimiter) ||
		errors.Is(err, csvio.ErrEmptyFile) ||
		errors.As(err, &header) ||
		errors.As(err, &unknown) ||
		errors.As(err, &parseErr) ||
		errors.As(err, &rowErr)
}

// respondError logs err and writes its user message with statusCode.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if statusCode >= 500 {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", chimw.GetReqID(r.Context()),
	)

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := templates.ErrorPage(userMsg.Message, userMsg.Action, userMsg.Code).Render(r.Context(), w); err != nil {
		slog.Error("render error page", "error", err)
	}
}

// wantsJSON reports whether the client should get a JSON error.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
