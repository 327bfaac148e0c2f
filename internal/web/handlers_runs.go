package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/JonMunkholm/csvdata/internal/store"
	"github.com/JonMunkholm/csvdata/internal/web/templates"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.LimiterStatus())
}

// runID parses the {runID} URL parameter. A malformed ID is reported as a
// missing run.
func runID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		return uuid.Nil, store.ErrRunNotFound
	}
	return id, nil
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := runID(r)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	run, err := s.service.Run(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	// A missing or malformed limit falls back to the store default.
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	runs, err := s.service.Runs(r.Context(), limit)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRunsPage(w http.ResponseWriter, r *http.Request) {
	runs, err := s.service.Runs(r.Context(), 0)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	render(w, r, templates.RunList(runs))
}

func (s *Server) handleRunPage(w http.ResponseWriter, r *http.Request) {
	id, err := runID(r)
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}
	run, err := s.service.Run(r.Context(), id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	render(w, r, templates.RunPage(run))
}

func render(w http.ResponseWriter, r *http.Request, c templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := c.Render(r.Context(), w); err != nil {
		slog.Error("render page", "path", r.URL.Path, "error", err)
	}
}
