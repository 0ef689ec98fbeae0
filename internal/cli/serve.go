package cli

import (
	"github.com/spf13/cobra"

	"github.com/star/tlehist/internal/app"
)

func newServeCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the history API over HTTP",
		Args:  cobra.NoArgs,
		RunE: root.runWith(func(cmd *cobra.Command, a *app.App, _ []string) error {
			return a.Serve(cmd.Context())
		}),
	}
}
