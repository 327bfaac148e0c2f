package cli

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvdata/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		table bool
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded check runs, or show one.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, release, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer release()

			if len(args) == 1 {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return store.ErrRunNotFound
				}
				run, err := st.Get(ctx, id)
				if err != nil {
					return err
				}
				return a.printRun(run, table)
			}

			runs, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			return a.printRuns(runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "Maximum runs to list")
	cmd.Flags().BoolVar(&table, "table", false, "Print a run's problems as a table")
	return cmd
}

func (a *app) printRuns(runs []store.Run) error {
	t := tablewriter.NewWriter(a.out)
	t.Header("ID", "File", "Result", "Rows", "Problems", "When")
	for _, r := range runs {
		rows, problems := "", ""
		if r.Report != nil {
			rows = strconv.Itoa(r.Report.Rows)
			problems = strconv.Itoa(r.Report.ProblemCount())
		}
		if err := t.Append([]string{
			r.ID.String(),
			r.Path,
			result(r),
			rows,
			problems,
			r.CreatedAt.Local().Format(time.DateTime),
		}); err != nil {
			return err
		}
	}
	return t.Render()
}

func (a *app) printRun(run *store.Run, table bool) error {
	t := tablewriter.NewWriter(a.out)
	t.Header("Field", "Value")
	for _, row := range [][]string{
		{"ID", run.ID.String()},
		{"File", run.Path},
		{"When", run.CreatedAt.Local().Format(time.DateTime)},
		{"Took", run.Duration.Round(time.Millisecond).String()},
		{"Duplicates", strconv.FormatBool(run.Options.Duplicates)},
		{"Empty lines", strconv.FormatBool(run.Options.EmptyLines)},
		{"Empty values", strconv.FormatBool(run.Options.EmptyValues)},
		{"Columns", run.Options.Limit},
	} {
		if err := t.Append(row); err != nil {
			return err
		}
	}
	if err := t.Render(); err != nil {
		return err
	}
	if run.Report == nil {
		return nil
	}
	return a.printReport(run.Report, table)
}

func result(r store.Run) string {
	switch {
	case r.Report != nil && r.Report.Empty:
		return "empty"
	case r.OK:
		return "ok"
	default:
		return "problems"
	}
}
