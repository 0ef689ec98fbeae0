package cli

import (
	"github.com/spf13/cobra"

	"github.com/star/tlehist/internal/app"
)

func newParseCommand(root *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse FILE",
		Short: "Decode a single snapshot file and report dropped records",
		Args:  cobra.ExactArgs(1),
		RunE: root.runWith(func(cmd *cobra.Command, a *app.App, args []string) error {
			return a.Parse(cmd.Context(), app.ParseOptions{Path: args[0], Format: format})
		}),
	}

	cmd.Flags().StringVar(&format, "format", app.FormatTable, "Output format: table or json")
	return cmd
}
