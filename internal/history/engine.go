// Package history turns dated TLE snapshots into per-satellite change
// timelines. Repeated publications of an unchanged element set are absorbed;
// only transitions are reported.
package history

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/star/tlehist/internal/metrics"
	"github.com/star/tlehist/internal/snapshot"
	"github.com/star/tlehist/internal/tle"
)

// Discoverer resolves the snapshots of one date.
type Discoverer interface {
	Discover(ctx context.Context, date time.Time) ([]snapshot.RawSnapshot, []snapshot.Failure)
	SourceName() string
}

// Config holds engine settings.
type Config struct {
	Workers         int // change detection goroutines
	DateConcurrency int // dates ingested at once
	MaxRangeDays    int // 0 means unlimited
}

// Engine runs analyses. It keeps no state between calls and is safe for
// concurrent use.
type Engine struct {
	discovery Discoverer
	pool      *WorkerPool
	cfg       Config
	logger    *slog.Logger
}

// NewEngine creates an Engine over discovery.
func NewEngine(discovery Discoverer, cfg Config, logger *slog.Logger) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.DateConcurrency <= 0 {
		cfg.DateConcurrency = 4
	}
	return &Engine{
		discovery: discovery,
		pool:      NewWorkerPool(cfg.Workers, logger),
		cfg:       cfg,
		logger:    logger,
	}
}

// MaxRangeDays returns the configured range limit, 0 when unlimited.
func (e *Engine) MaxRangeDays() int {
	return e.cfg.MaxRangeDays
}

// Analyze builds the change history of every satellite seen between from and
// to (inclusive, YYYY-MM-DD). The only error is ErrInvalidRange; per-file and
// per-record problems land in Report.Diagnostics. On cancellation the report
// is marked Partial and holds only fully built histories.
func (e *Engine) Analyze(ctx context.Context, from, to string) (*Report, error) {
	dates, err := DateRange(from, to, e.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	report := &Report{
		RunID: uuid.NewString(),
		From:  from,
		To:    to,
	}
	logger := e.logger.With("component", "history", "run_id", report.RunID)

	coll := newCollector()

	var g errgroup.Group
	g.SetLimit(e.cfg.DateConcurrency)
	for _, date := range dates {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			e.ingestDate(ctx, date, coll, logger)
			return nil
		})
	}
	_ = g.Wait()

	groups := coll.groups()
	report.Diagnostics = coll.takeDiagnostics()

	if err := ctx.Err(); err != nil {
		e.markCancelled(report, "cancelled before change detection: "+err.Error())
		e.finish(report, start, logger, len(dates), 0)
		return report, nil
	}

	histories, failed := e.pool.detectBatch(ctx, groups)
	for _, f := range failed {
		report.Diagnostics = append(report.Diagnostics, Diagnostic{
			Kind:    KindMalformedRecord,
			Message: f.err.Error(),
		})
	}
	sortHistories(histories)
	report.Satellites = histories

	if err := ctx.Err(); err != nil {
		e.markCancelled(report, "cancelled during change detection: "+err.Error())
	}
	e.finish(report, start, logger, len(dates), len(groups))
	return report, nil
}

// ingestDate discovers and parses every snapshot of one date.
func (e *Engine) ingestDate(ctx context.Context, date time.Time, coll *collector, logger *slog.Logger) {
	day := date.Format(DateLayout)
	snaps, failures := e.discovery.Discover(ctx, date)

	for _, f := range failures {
		logger.Warn("snapshot skipped",
			"kind", string(f.Kind),
			"date", f.Date,
			"filename", f.Filename,
			"error", f.Err,
		)
		coll.addDiagnostic(Diagnostic{
			Kind:     DiagnosticKind(f.Kind),
			Date:     f.Date,
			Filename: f.Filename,
			Message:  f.Err.Error(),
		})
	}

	for _, snap := range snaps {
		if ctx.Err() != nil {
			return
		}
		origin := tle.Origin{Filename: snap.Filename, CapturedAt: snap.CapturedAt}
		records, malformed, err := tle.Parse(bytes.NewReader(snap.Data), origin, logger)
		if err != nil {
			coll.addDiagnostic(Diagnostic{
				Kind:     KindFetchFailure,
				Date:     day,
				Filename: snap.Filename,
				Message:  err.Error(),
			})
		}
		for _, m := range malformed {
			coll.addDiagnostic(Diagnostic{
				Kind:     KindMalformedRecord,
				Date:     day,
				Filename: snap.Filename,
				Line:     m.Line,
				Message:  m.Err.Error(),
			})
		}
		metrics.AddRecords(len(records), len(malformed))
		coll.addRecords(records)

		logger.Debug("snapshot parsed",
			"date", day,
			"filename", snap.Filename,
			"records", len(records),
			"malformed", len(malformed),
		)
	}
}

func (e *Engine) markCancelled(report *Report, msg string) {
	report.Partial = true
	report.Diagnostics = append(report.Diagnostics, Diagnostic{
		Kind:    KindCancelled,
		Message: msg,
	})
}

func (e *Engine) finish(report *Report, start time.Time, logger *slog.Logger, dates, groups int) {
	if report.Satellites == nil {
		report.Satellites = []*SatelliteHistory{}
	}
	if report.Diagnostics == nil {
		report.Diagnostics = []Diagnostic{}
	}

	elapsed := time.Since(start)
	metrics.ObserveAnalysis(elapsed, len(report.Satellites), report.Partial)

	logger.Info("analysis complete",
		"source", e.discovery.SourceName(),
		"from", report.From,
		"to", report.To,
		"dates", dates,
		"satellites_seen", groups,
		"satellites", len(report.Satellites),
		"diagnostics", len(report.Diagnostics),
		"partial", report.Partial,
		"duration_ms", elapsed.Milliseconds(),
	)
}
