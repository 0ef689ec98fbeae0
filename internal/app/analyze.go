package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/star/tlehist/internal/history"
)

// Output formats.
const (
	FormatJSON  = "json"
	FormatTable = "table"
)

// AnalyzeOptions configure the analyze and summary commands.
type AnalyzeOptions struct {
	From   string
	To     string
	Type   string
	Limit  int
	Format string
}

func (o AnalyzeOptions) validate() error {
	switch o.Format {
	case FormatJSON, FormatTable:
	default:
		return fmt.Errorf("--format must be %s or %s", FormatJSON, FormatTable)
	}
	if o.Limit < 0 {
		return fmt.Errorf("--limit cannot be negative")
	}
	return nil
}

// Analyze runs a history analysis and writes the filtered report.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	report, err := a.runAnalysis(ctx, opts.From, opts.To)
	if err != nil {
		return err
	}
	report.Satellites = history.Filter(report.Satellites, opts.Type, opts.Limit)

	if opts.Format == FormatJSON {
		return writeJSON(a.Out, report)
	}
	return writeHistoryTable(a.Out, report)
}

// Summary runs a history analysis and writes its totals.
func (a *App) Summary(ctx context.Context, opts AnalyzeOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}
	report, err := a.runAnalysis(ctx, opts.From, opts.To)
	if err != nil {
		return err
	}
	summary := history.Summarize(history.Filter(report.Satellites, opts.Type, 0))

	if opts.Format == FormatJSON {
		return writeJSON(a.Out, struct {
			RunID   string          `json:"runId"`
			From    string          `json:"from"`
			To      string          `json:"to"`
			Partial bool            `json:"partial"`
			Summary history.Summary `json:"summary"`
		}{report.RunID, report.From, report.To, report.Partial, summary})
	}
	return writeSummaryTable(a.Out, summary)
}

func (a *App) runAnalysis(ctx context.Context, from, to string) (*history.Report, error) {
	engine, err := a.newEngine(ctx)
	if err != nil {
		return nil, err
	}
	report, err := engine.Analyze(ctx, from, to)
	if err != nil {
		return nil, err
	}
	for _, d := range report.Diagnostics {
		a.Logger.Debug("diagnostic",
			"component", "app",
			"kind", string(d.Kind),
			"date", d.Date,
			"filename", d.Filename,
			"line", d.Line,
			"message", d.Message,
		)
	}
	return report, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeHistoryTable(w io.Writer, report *history.Report) error {
	if len(report.Satellites) == 0 {
		fmt.Fprintln(w, "no satellite updates found")
	} else {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NORAD\tName\tType\tUpdates\tLast Updated (UTC)\tIncl\tEcc\tMean Motion")
		for _, s := range report.Satellites {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.4f\t%.7f\t%.8f\n",
				s.NoradID,
				sanitizeInline(s.Name),
				s.Type,
				s.UpdateCount,
				s.LastUpdated.UTC().Format(time.RFC3339),
				s.Inclination,
				s.Eccentricity,
				s.MeanMotion,
			)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if n := len(report.Diagnostics); n > 0 {
		fmt.Fprintf(w, "\n%d diagnostics:\n", n)
		for _, d := range report.Diagnostics {
			fmt.Fprintf(w, "  %s %s %s: %s\n", d.Kind, d.Date, d.Filename, sanitizeInline(d.Message))
		}
	}
	if report.Partial {
		fmt.Fprintln(w, "\nresult is partial: analysis was cancelled")
	}
	return nil
}

func writeSummaryTable(w io.Writer, s history.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Satellites\t%d\n", s.Satellites)
	fmt.Fprintf(tw, "Total updates\t%d\n", s.TotalUpdates)
	fmt.Fprintf(tw, "Average updates\t%.2f\n", s.AverageUpdates)
	fmt.Fprintf(tw, "Max / min updates\t%d / %d\n", s.MaxUpdateCount, s.MinUpdateCount)

	fmt.Fprintln(tw, "\nType\tSatellites\tUpdates")
	for _, t := range s.ByType {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", t.Type, t.Satellites, t.Updates)
	}

	fmt.Fprintln(tw, "\nDate\tUpdates")
	for _, d := range s.ByDate {
		fmt.Fprintf(tw, "%s\t%d\n", d.Date, d.Updates)
	}

	fmt.Fprintln(tw, "\nHour (UTC)\tUpdates")
	for h, n := range s.ByHour {
		if n > 0 {
			fmt.Fprintf(tw, "%02d\t%d\n", h, n)
		}
	}
	return tw.Flush()
}

func sanitizeInline(v string) string {
	cleaned := strings.ReplaceAll(v, "\n", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r", " ")
	return cleaned
}
