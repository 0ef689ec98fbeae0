package cli

import (
	"github.com/spf13/cobra"

	"github.com/star/tlehist/internal/app"
)

func newIndexCommand(root *rootOptions) *cobra.Command {
	var opts app.IndexOptions

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Write index.json manifests into local snapshot date folders",
		Args:  cobra.NoArgs,
		RunE: root.runWith(func(cmd *cobra.Command, a *app.App, _ []string) error {
			if err := requireRange(opts.From, opts.To); err != nil {
				return err
			}
			return a.Index(cmd.Context(), opts)
		}),
	}

	addRangeFlags(cmd, &opts.From, &opts.To)
	return cmd
}
