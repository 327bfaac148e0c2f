package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/csvdata/internal/records"
	"github.com/JonMunkholm/csvdata/internal/source"
)

func newLoadCmd(a *app) *cobra.Command {
	var (
		key       string
		raw       bool
		delimiter string
	)

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Print a CSV file's records as JSON.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := records.LoadOptions{
				Delimiter: delimiter,
				Parse:     !raw,
				KeyBy:     key,
				Source:    source.NewResolver(a.cfg.Storage.S3Region),
			}
			table, err := records.Load(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			if key != "" {
				return enc.Encode(table.Keyed())
			}
			if table.Records == nil {
				return enc.Encode([]records.Record{})
			}
			return enc.Encode(table.Records)
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Key records by this column's value")
	cmd.Flags().BoolVar(&raw, "raw", false, "Keep every value as a string")
	cmd.Flags().StringVar(&delimiter, "delimiter", a.cfg.Check.Delimiter, "Field delimiter")
	return cmd
}
