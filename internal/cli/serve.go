package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvdata/internal/core"
	"github.com/JonMunkholm/csvdata/internal/store"
	"github.com/JonMunkholm/csvdata/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP check server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

// historyStore opens the configured database, falling back to memory when
// none is set.
func (a *app) historyStore(ctx context.Context) (store.Store, func(), error) {
	st, release, err := a.openStore(ctx)
	if errors.Is(err, errNoDatabase) {
		slog.Warn("DATABASE_URL not set, run history is kept in memory")
		return store.NewMemory(), func() {}, nil
	}
	return st, release, err
}

// serve runs the server until ctx is cancelled, then drains running checks
// and shuts down within the configured timeout.
func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"history_database", cfg.Database.Enabled(),
		"check_max_concurrent", cfg.Check.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	st, release, err := a.historyStore(ctx)
	if err != nil {
		return err
	}
	defer release()

	service := core.NewService(st, cfg)
	server := web.NewServer(service, cfg)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()
	go service.StartPruner(jobCtx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Server.Addr())
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down...")
	cancelJobs()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if status := service.LimiterStatus(); status.Active > 0 {
		slog.Info("waiting for checks to complete", "active", status.Active)
		if err := service.WaitForChecks(shutdownCtx); err != nil {
			slog.Warn("checks did not complete in time", "error", err)
		} else {
			slog.Info("all checks completed")
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}
