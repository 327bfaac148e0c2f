// Package store persists finished check runs.
//
// Two implementations exist: Postgres, used when a database URL is
// configured, and Memory, used otherwise and in tests. Both assign an ID and
// a creation time to runs saved without one.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvdata/internal/check"
)

// ErrRunNotFound is returned by Get for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Run is one persisted check invocation.
type Run struct {
	ID        uuid.UUID     `json:"id"`
	Path      string        `json:"path"`
	Options   check.Options `json:"options"`
	OK        bool          `json:"ok"`
	Report    *check.Report `json:"report"`
	CreatedAt time.Time     `json:"createdAt"`
	Duration  time.Duration `json:"durationNs"`
}

// NewRun builds a run from a finished report.
func NewRun(path string, opts check.Options, report *check.Report, d time.Duration) *Run {
	return &Run{
		ID:        uuid.New(),
		Path:      path,
		Options:   opts,
		OK:        report != nil && report.OK,
		Report:    report,
		CreatedAt: time.Now().UTC(),
		Duration:  d,
	}
}

// Store saves and retrieves runs.
type Store interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id uuid.UUID) (*Run, error)
	// List returns the most recent runs first.
	List(ctx context.Context, limit int) ([]Run, error)
	// Prune deletes runs created more than olderThan ago and returns how many.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

func fillDefaults(run *Run) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
