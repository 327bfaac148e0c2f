// Package cli implements the csvdata command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvdata/internal/config"
	"github.com/JonMunkholm/csvdata/internal/core"
	"github.com/JonMunkholm/csvdata/internal/logging"
	"github.com/JonMunkholm/csvdata/internal/store"
)

// errChecksFailed makes the process exit non-zero after the report has
// already been printed.
var errChecksFailed = errors.New("one or more checks failed")

// errNoDatabase is returned by commands that need persistent history.
var errNoDatabase = errors.New("run history requires DATABASE_URL")

// storeOpener returns a history store and a function releasing it.
type storeOpener func(ctx context.Context) (store.Store, func(), error)

// app carries what every command shares.
type app struct {
	cfg       *config.Config
	in        io.Reader
	out       io.Writer
	errOut    io.Writer
	openStore storeOpener
}

func newApp(cfg *config.Config) *app {
	a := &app{cfg: cfg, in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	a.openStore = a.openDatabase
	return a
}

// NewRootCmd builds the command tree for cfg.
func NewRootCmd(cfg *config.Config) *cobra.Command {
	return newRootCmd(newApp(cfg))
}

func newRootCmd(a *app) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "csvdata",
		Short:         "Load, write and check CSV files.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logging.SetupWriter(a.errOut, "debug", a.cfg.Logging.Format)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddCommand(
		newCheckCmd(a),
		newLoadCmd(a),
		newWriteCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, cfg *config.Config, args []string) int {
	a := newApp(cfg)
	return a.execute(ctx, args)
}

func (a *app) execute(ctx context.Context, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errChecksFailed):
		return 1
	case core.IsUserFacing(err):
		fmt.Fprintf(a.errOut, "Error: %s\n", core.FormatUserError(err))
	default:
		fmt.Fprintf(a.errOut, "Error: %v\n", err)
	}
	return 1
}
