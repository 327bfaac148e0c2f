// Package worker checks several files concurrently.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/csvdata/internal/check"
)

// CheckFunc runs a single check. check.Check satisfies it.
type CheckFunc func(ctx context.Context, path string, opts check.Options) (*check.Report, error)

// Job is one file to check.
type Job struct {
	Path    string
	Options check.Options
}

// Result is the outcome of one Job. Exactly one of Report and Err is set.
type Result struct {
	Path     string
	Report   *check.Report
	Err      error
	Duration time.Duration
}

// OK reports whether the job finished without error and passed.
func (r Result) OK() bool {
	return r.Err == nil && r.Report != nil && r.Report.OK
}

// Pool runs checks over many paths with bounded concurrency.
type Pool struct {
	check     CheckFunc
	numWorker int
}

// NewPool returns a pool running at most numWorker checks at once.
// A nil fn uses check.Check.
func NewPool(fn CheckFunc, numWorker int) *Pool {
	if fn == nil {
		fn = check.Check
	}
	if numWorker < 1 {
		numWorker = 1
	}
	return &Pool{check: fn, numWorker: numWorker}
}

// Run checks every job and returns the results in job order. A failing job
// does not stop the others. Jobs not yet started when ctx is cancelled get
// ctx.Err() as their error.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	idx := make(chan int, len(jobs))
	for i := range jobs {
		idx <- i
	}
	close(idx)

	n := p.numWorker
	if n > len(jobs) {
		n = len(jobs)
	}

	var wg sync.WaitGroup
	for w := 0; w < n; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				job := jobs[i]
				if err := ctx.Err(); err != nil {
					results[i] = Result{Path: job.Path, Err: err}
					continue
				}
				start := time.Now()
				report, err := p.check(ctx, job.Path, job.Options)
				results[i] = Result{Path: job.Path, Report: report, Err: err, Duration: time.Since(start)}
				if err != nil {
					slog.Debug("check failed", "path", job.Path, "error", err)
				}
			}
		}()
	}
	wg.Wait()

	return results
}
