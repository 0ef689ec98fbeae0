// Package cli defines the tlehist command tree.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/star/tlehist/internal/app"
	"github.com/star/tlehist/internal/config"
	"github.com/star/tlehist/internal/logging"
)

// rootOptions carries the persistent flags and the application built from
// them before any subcommand runs.
type rootOptions struct {
	configPath string
	logLevel   string
	app        *app.App
}

// load reads configuration once per process and builds the App. Command
// output goes to the command's writer so tests can capture it.
func (o *rootOptions) load(cmd *cobra.Command) error {
	if o.app != nil {
		return nil
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}

	o.app = app.NewApp(cfg, logging.New(cfg.Logging, cmd.ErrOrStderr()))
	o.app.Out = cmd.OutOrStdout()
	return nil
}

// runWith adapts an App method to a cobra RunE.
func (o *rootOptions) runWith(fn func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if o.app == nil {
			return errors.New("configuration not loaded")
		}
		return fn(cmd, o.app, args)
	}
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "tlehist",
		Short:         "Reconstruct per-satellite TLE update histories from daily snapshots",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "Override log level defined in config")

	root.AddCommand(
		newAnalyzeCommand(opts),
		newSummaryCommand(opts),
		newServeCommand(opts),
		newParseCommand(opts),
		newIndexCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func requireRange(from, to string) error {
	if from == "" || to == "" {
		return fmt.Errorf("--from and --to must be provided")
	}
	return nil
}
