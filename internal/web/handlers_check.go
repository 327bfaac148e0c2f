package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/csvdata/internal/check"
	"github.com/JonMunkholm/csvdata/internal/core"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and fields.
const multipartOverhead = 1 << 20

// checkPathRequest is the body of POST /api/check/path.
type checkPathRequest struct {
	Path string `json:"path"`
	check.Options
}

// handleCheckUpload checks a file sent as multipart field "file". Options
// come from form fields named after the check.Options JSON keys.
func (s *Server) handleCheckUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.service.MaxFileSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, core.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("parse form: %w", core.ErrNoFile), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	opts, err := parseOptions(r, s.service.DefaultOptions())
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	run, err := s.service.CheckUpload(ctx, header.Filename, file, header.Size, opts)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleCheckPath checks a server-side path or s3:// object under CHECK_ROOT.
// Without a root it answers 403.
func (s *Server) handleCheckPath(w http.ResponseWriter, r *http.Request) {
	req := checkPathRequest{Options: s.service.DefaultOptions()}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("decode request: %w", err), http.StatusBadRequest)
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	run, err := s.service.CheckPath(ctx, req.Path, req.Options)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// parseOptions overrides opts with any option fields present in the form.
func parseOptions(r *http.Request, opts check.Options) (check.Options, error) {
	flags := []struct {
		name string
		dst  *bool
	}{
		{"duplicates", &opts.Duplicates},
		{"emptyLines", &opts.EmptyLines},
		{"emptyValues", &opts.EmptyValues},
		{"log", &opts.Log},
	}
	for _, f := range flags {
		v := r.FormValue(f.name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid value %q for %s", v, f.name)
		}
		*f.dst = b
	}

	if v := r.FormValue("limit"); v != "" {
		opts.Limit = v
	}
	if v := r.FormValue("delimiter"); v != "" {
		opts.Delimiter = v
	}
	return opts, nil
}
