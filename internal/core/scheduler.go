package core

// scheduler.go prunes old runs from the history in the background.
//
// The job runs once on start and then every PruneInterval until its context
// is cancelled. A failed pass is logged and retried on the next tick; it never
// stops the server.

import (
	"context"
	"log/slog"
	"time"
)

// StartPruner deletes runs older than the configured retention, blocking
// until ctx is cancelled. Run it in its own goroutine.
func (s *Service) StartPruner(ctx context.Context) {
	slog.Info("history pruner started",
		"retention", s.history.Retention.String(),
		"interval", s.history.PruneInterval.String(),
	)

	s.runPruneJob(ctx)

	interval := s.history.PruneInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("history pruner stopped")
			return
		case <-ticker.C:
			s.runPruneJob(ctx)
		}
	}
}

// runPruneJob performs one prune pass.
func (s *Service) runPruneJob(ctx context.Context) {
	start := time.Now()
	n, err := s.store.Prune(ctx, s.history.Retention)
	if err != nil {
		slog.Error("prune failed", "error", err)
		return
	}
	slog.Info("pruned check runs",
		"runs_deleted", n,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
