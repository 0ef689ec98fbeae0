package cli

import (
	"github.com/spf13/cobra"

	"github.com/star/tlehist/internal/app"
)

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	var opts app.AnalyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print per-satellite update histories for a date range",
		Args:  cobra.NoArgs,
		RunE: root.runWith(func(cmd *cobra.Command, a *app.App, _ []string) error {
			if err := requireRange(opts.From, opts.To); err != nil {
				return err
			}
			return a.Analyze(cmd.Context(), opts)
		}),
	}

	addRangeFlags(cmd, &opts.From, &opts.To)
	cmd.Flags().StringVar(&opts.Type, "type", "", "Only satellites of this type (e.g. \"Space Station\")")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum satellites to print (0 = all)")
	cmd.Flags().StringVar(&opts.Format, "format", app.FormatTable, "Output format: table or json")
	return cmd
}

func newSummaryCommand(root *rootOptions) *cobra.Command {
	var opts app.AnalyzeOptions

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print update totals by type, date and hour for a date range",
		Args:  cobra.NoArgs,
		RunE: root.runWith(func(cmd *cobra.Command, a *app.App, _ []string) error {
			if err := requireRange(opts.From, opts.To); err != nil {
				return err
			}
			return a.Summary(cmd.Context(), opts)
		}),
	}

	addRangeFlags(cmd, &opts.From, &opts.To)
	cmd.Flags().StringVar(&opts.Type, "type", "", "Only count satellites of this type")
	cmd.Flags().StringVar(&opts.Format, "format", app.FormatTable, "Output format: table or json")
	return cmd
}

func addRangeFlags(cmd *cobra.Command, from, to *string) {
	cmd.Flags().StringVar(from, "from", "", "First date (YYYY-MM-DD, inclusive)")
	cmd.Flags().StringVar(to, "to", "", "Last date (YYYY-MM-DD, inclusive)")
}
