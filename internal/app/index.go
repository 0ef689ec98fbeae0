package app

import (
	"context"
	"fmt"

	"github.com/star/tlehist/internal/config"
	"github.com/star/tlehist/internal/history"
	"github.com/star/tlehist/internal/snapshot"
)

// IndexOptions configure the index command.
type IndexOptions struct {
	From string
	To   string
}

// Index writes an index.json manifest into every non-empty date folder of
// the dir source between From and To.
func (a *App) Index(ctx context.Context, opts IndexOptions) error {
	if a.Config.Source.Kind != config.SourceDir {
		return fmt.Errorf("index requires the dir source (configured: %s)", a.Config.Source.Kind)
	}
	dates, err := history.DateRange(opts.From, opts.To, 0)
	if err != nil {
		return err
	}

	src := snapshot.NewDirSource(a.Config.Source.Root, a.Config.Fetch.MaxBytes)
	var total int
	for _, date := range dates {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := src.WriteManifest(date)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", date.Format(history.DateLayout), err)
		}
		if n > 0 {
			fmt.Fprintf(a.Out, "%s\t%d files\n", date.Format(history.DateLayout), n)
		}
		total += n
	}

	a.Logger.Info("manifests written",
		"component", "app",
		"root", a.Config.Source.Root,
		"dates", len(dates),
		"files", total,
	)
	return nil
}
