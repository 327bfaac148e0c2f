package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvdata/internal/records"
)

func newWriteCmd(a *app) *cobra.Command {
	var opts records.WriteOptions

	cmd := &cobra.Command{
		Use:   "write <file>",
		Short: "Write CSV rows read from stdin to a file.",
		Long: `Write reads delimiter-separated rows from stdin, validates them against
the header and writes them to the file. Nothing is written when any row is
invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return records.Write(cmd.Context(), args[0], records.FromString(string(text)), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Header, "header", "", "Header line, columns separated by the delimiter")
	flags.StringVar(&opts.Delimiter, "delimiter", a.cfg.Check.Delimiter, "Field delimiter")
	flags.BoolVar(&opts.Append, "append", false, "Append to the file instead of replacing it")
	flags.BoolVar(&opts.RejectEmpty, "reject-empty", false, "Fail on any empty value")
	return cmd
}
