package core

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvdata/internal/check"
	"github.com/JonMunkholm/csvdata/internal/config"
	"github.com/JonMunkholm/csvdata/internal/csvio"
	"github.com/JonMunkholm/csvdata/internal/logging"
	"github.com/JonMunkholm/csvdata/internal/source"
	"github.com/JonMunkholm/csvdata/internal/store"
)

// Service runs checks and records them in the run history.
type Service struct {
	store   store.Store
	source  source.Opener
	limiter *CheckLimiter
	paths   pathGuard

	delimiter   string
	maxFileSize int64
	timeout     time.Duration
	history     config.HistoryConfig
}

// NewService creates a Service saving runs to st. Paths are opened with a
// source.Resolver configured for cfg.Storage.
func NewService(st store.Store, cfg *config.Config) *Service {
	return NewServiceWithSource(st, source.NewResolver(cfg.Storage.S3Region), cfg)
}

// NewServiceWithSource is NewService with an explicit path opener.
func NewServiceWithSource(st store.Store, src source.Opener, cfg *config.Config) *Service {
	return &Service{
		store:       st,
		source:      src,
		limiter:     NewCheckLimiter(cfg.Check.MaxConcurrent, cfg.Check.MaxWaitTime),
		paths:       newPathGuard(cfg.Check.Root),
		delimiter:   cfg.Check.Delimiter,
		maxFileSize: cfg.Check.MaxFileSize,
		timeout:     cfg.Check.Timeout,
		history:     cfg.History,
	}
}

// DefaultOptions returns check.DefaultOptions with the configured delimiter.
func (s *Service) DefaultOptions() check.Options {
	opts := check.DefaultOptions()
	if s.delimiter != "" {
		opts.Delimiter = s.delimiter
	}
	return opts
}

// MaxFileSize returns the upload size limit in bytes.
func (s *Service) MaxFileSize() int64 { return s.maxFileSize }

// CheckPath checks a local path or s3:// object under the configured check
// root and saves the run. Relative paths are resolved against a local root.
func (s *Service) CheckPath(ctx context.Context, path string, opts check.Options) (*store.Run, error) {
	if path == "" {
		return nil, ErrNoFile
	}
	resolved, err := s.paths.resolve(path)
	if err != nil {
		logging.FromContext(ctx).Warn("path check refused", "path", path, "error", err)
		return nil, err
	}
	path = resolved
	opts.Source = s.source

	return s.run(ctx, path, opts, func(ctx context.Context) (*check.Report, error) {
		return check.Check(ctx, path, opts)
	})
}

// CheckUpload checks an uploaded file of the given size and saves the run
// under name. A size of -1 means unknown; the limit is then enforced while
// reading.
func (s *Service) CheckUpload(ctx context.Context, name string, r io.Reader, size int64, opts check.Options) (*store.Run, error) {
	if r == nil {
		return nil, ErrNoFile
	}
	if s.maxFileSize > 0 && size > s.maxFileSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, size, s.maxFileSize)
	}

	return s.run(ctx, name, opts, func(ctx context.Context) (*check.Report, error) {
		body := r
		if s.maxFileSize > 0 {
			body = &limitedReader{r: r, remaining: s.maxFileSize}
		}
		counter := csvio.NewCountingReader(body, size)
		report, err := check.Run(ctx, counter, opts)
		logging.FromContext(ctx).Debug("upload read", "name", name, "bytes", counter.BytesRead())
		if report != nil {
			report.Path = name
		}
		return report, err
	})
}

func (s *Service) run(ctx context.Context, path string, opts check.Options, fn func(context.Context) (*check.Report, error)) (*store.Run, error) {
	logger := logging.WithFields(ctx, "path", path)
	if ip := ClientIPFromContext(ctx); ip != "" {
		logger = logger.With("client_ip", ip)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		logger.Warn("check rejected", "error", err, "active", s.limiter.ActiveCount())
		return nil, err
	}
	defer s.limiter.Release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	report, err := fn(ctx)
	if err != nil {
		logger.Warn("check failed", "error", err)
		return nil, err
	}

	run := store.NewRun(path, opts, report, time.Since(start))
	if err := s.store.Save(ctx, run); err != nil {
		// The verdict is still valid; only history is missing it.
		logger.Error("failed to save run", "run_id", run.ID, "error", err)
	}
	logger.Info("check run recorded",
		"run_id", run.ID,
		"ok", run.OK,
		"duration_ms", run.Duration.Milliseconds(),
	)
	return run, nil
}

// Run returns a stored run.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (*store.Run, error) {
	return s.store.Get(ctx, id)
}

// Runs returns the most recent runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]store.Run, error) {
	return s.store.List(ctx, limit)
}

// LimiterStatus returns the current check limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForChecks blocks until running checks finish or ctx ends.
func (s *Service) WaitForChecks(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// limitedReader fails with ErrFileTooLarge once more than remaining bytes
// have been read.
type limitedReader struct {
	r         io.Reader
	remaining int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
