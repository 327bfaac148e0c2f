package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvdata/internal/check"
	"github.com/JonMunkholm/csvdata/internal/core"
	"github.com/JonMunkholm/csvdata/internal/logging"
	"github.com/JonMunkholm/csvdata/internal/source"
	"github.com/JonMunkholm/csvdata/internal/store"
	"github.com/JonMunkholm/csvdata/internal/worker"
)

type checkFlags struct {
	duplicates  bool
	acceptEmpty bool
	emptyLines  bool
	limit       string
	delimiter   string
	silent      bool
	table       bool
	parallel    int
	save        bool
}

func newCheckCmd(a *app) *cobra.Command {
	var f checkFlags

	cmd := &cobra.Command{
		Use:   "check <file> [file...]",
		Short: "Check CSV files for missing values, empty lines, empty values and duplicates.",
		Long: `Check reads each file once and reports:
  rows with fewer values than the header,
  blank lines (with -x),
  empty values (unless -e),
  values repeated within a column (with -d).

Files may be local paths or s3://bucket/key URLs. The exit status is non-zero
when any file has problems or cannot be read.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd.Context(), args, f)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&f.duplicates, "duplicates", "d", false, "Report duplicate values")
	flags.BoolVarP(&f.acceptEmpty, "empty-values", "e", false, "Accept empty values")
	flags.BoolVarP(&f.emptyLines, "empty-lines", "x", false, "Report empty lines")
	flags.StringVarP(&f.limit, "limit", "l", "", "Comma-separated columns to check (default all)")
	flags.StringVar(&f.delimiter, "delimiter", a.cfg.Check.Delimiter, "Field delimiter")
	flags.BoolVarP(&f.silent, "silent", "s", false, "Print nothing; only set the exit status")
	flags.BoolVar(&f.table, "table", false, "Print problems as a table")
	flags.IntVarP(&f.parallel, "parallel", "p", a.cfg.Check.Workers, "Number of files checked at once")
	flags.BoolVar(&f.save, "save", false, "Record each run in the history database")
	return cmd
}

func (f checkFlags) options(src source.Opener) check.Options {
	opts := check.DefaultOptions()
	opts.Duplicates = f.duplicates
	opts.EmptyValues = !f.acceptEmpty
	opts.EmptyLines = f.emptyLines
	opts.Limit = f.limit
	opts.Delimiter = f.delimiter
	opts.Log = !f.silent
	opts.Source = src
	return opts
}

func (a *app) runCheck(ctx context.Context, paths []string, f checkFlags) error {
	opts := f.options(source.NewResolver(a.cfg.Storage.S3Region))

	fn := worker.CheckFunc(check.Check)
	if f.save {
		st, release, err := a.openStore(ctx)
		if err != nil {
			return err
		}
		defer release()
		fn = saving(st, fn)
	}

	jobs := make([]worker.Job, len(paths))
	for i, p := range paths {
		jobs[i] = worker.Job{Path: p, Options: opts}
	}
	results := worker.NewPool(fn, f.parallel).Run(ctx, jobs)

	failed := 0
	for _, res := range results {
		if !res.OK() {
			failed++
		}
		if f.silent {
			continue
		}
		if len(results) > 1 {
			fmt.Fprintf(a.out, "==> %s <==\n", res.Path)
		}
		if res.Err != nil {
			fmt.Fprintf(a.errOut, "%s: %s\n", res.Path, core.FormatUserError(res.Err))
			continue
		}
		if err := a.printReport(res.Report, f.table); err != nil {
			return err
		}
	}

	if failed > 0 {
		return errChecksFailed
	}
	return nil
}

func (a *app) printReport(r *check.Report, table bool) error {
	if table {
		return check.FormatTable(a.out, r)
	}
	return check.FormatText(a.out, r)
}

// saving wraps fn so every completed check is recorded in st. A failed save
// is logged and does not fail the check.
func saving(st store.Store, fn worker.CheckFunc) worker.CheckFunc {
	return func(ctx context.Context, path string, opts check.Options) (*check.Report, error) {
		start := time.Now()
		report, err := fn(ctx, path, opts)
		if err != nil {
			return nil, err
		}

		run := store.NewRun(path, opts, report, time.Since(start))
		if err := st.Save(ctx, run); err != nil {
			logging.FromContext(ctx).Error("failed to save check run", "path", path, "error", err)
		} else {
			logging.FromContext(ctx).Info("check run saved", "path", path, "run_id", run.ID)
		}
		return report, nil
	}
}
