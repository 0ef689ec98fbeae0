package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/star/tlehist/internal/metrics"
)

// DefaultProbeTimes are the capture times tried when a date has no manifest:
// every six hours plus the usual publish times.
var DefaultProbeTimes = []string{
	"000000", "060000", "120000", "180000",
	"013008", "073008", "133008", "193008",
}

// FailureKind classifies a soft failure met while discovering snapshots.
type FailureKind string

const (
	FailureFetch    FailureKind = "snapshot_fetch_failure"
	FailureFilename FailureKind = "bad_filename"
	FailureManifest FailureKind = "manifest_invalid"
)

// Failure is a per-file problem that was skipped.
type Failure struct {
	Kind     FailureKind
	Date     string
	Filename string
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s/%s: %v", f.Kind, f.Date, f.Filename, f.Err)
}

// Config holds discovery settings.
type Config struct {
	ManifestNames []string
	ProbeTimes    []string      // HHMMSS values
	Timeout       time.Duration // per fetch
	Concurrency   int           // concurrent fetches across all dates
}

// Discovery resolves and fetches the snapshots of a date. A single Discovery
// bounds the number of in-flight fetches against its source, across all
// callers.
type Discovery struct {
	source Source
	cfg    Config
	sem    *semaphore.Weighted
	logger *slog.Logger
}

// NewDiscovery creates a Discovery over source.
func NewDiscovery(source Source, cfg Config, logger *slog.Logger) *Discovery {
	if len(cfg.ManifestNames) == 0 {
		cfg.ManifestNames = DefaultManifestNames
	}
	if len(cfg.ProbeTimes) == 0 {
		cfg.ProbeTimes = DefaultProbeTimes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}

	return &Discovery{
		source: source,
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.Concurrency)),
		logger: logger,
	}
}

// SourceName returns the label of the underlying source.
func (d *Discovery) SourceName() string {
	return d.source.Name()
}

// Discover returns the snapshots available for date, sorted by capture time,
// and the failures that were skipped along the way. Cancellation of ctx is
// not reported as a failure; callers check ctx themselves.
func (d *Discovery) Discover(ctx context.Context, date time.Time) ([]RawSnapshot, []Failure) {
	day := date.Format(DateLayout)
	var (
		mu        sync.Mutex
		snapshots []RawSnapshot
		failures  []Failure
	)
	addFailure := func(f Failure) {
		if ctx.Err() != nil {
			return
		}
		mu.Lock()
		failures = append(failures, f)
		mu.Unlock()
	}

	filenames, found := d.readManifest(ctx, day, addFailure)
	if !found {
		snapshots = d.probe(ctx, date, addFailure)
	} else {
		var g errgroup.Group
		for _, name := range filenames {
			ts, err := CaptureTime(date, name)
			if err != nil || !isPlainName(name) {
				if err == nil {
					err = errors.New("manifest entry is not a plain filename")
				}
				addFailure(Failure{Kind: FailureFilename, Date: day, Filename: name, Err: err})
				continue
			}
			g.Go(func() error {
				data, err := d.fetch(ctx, day, name)
				if err != nil {
					addFailure(Failure{Kind: FailureFetch, Date: day, Filename: name, Err: err})
					return nil
				}
				mu.Lock()
				snapshots = append(snapshots, RawSnapshot{Date: day, Filename: name, Data: data, CapturedAt: ts})
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}

	sortSnapshots(snapshots)

	d.logger.Debug("snapshots discovered",
		"component", "snapshot",
		"source", d.source.Name(),
		"date", day,
		"manifest", found,
		"snapshots", len(snapshots),
		"failures", len(failures),
	)

	return snapshots, failures
}

// readManifest tries each manifest name in turn. found is false when no
// manifest could be read, which selects the probe path.
func (d *Discovery) readManifest(ctx context.Context, day string, addFailure func(Failure)) ([]string, bool) {
	for _, name := range d.cfg.ManifestNames {
		data, err := d.fetch(ctx, day, name)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				addFailure(Failure{Kind: FailureFetch, Date: day, Filename: name, Err: err})
			}
			continue
		}

		m, err := DecodeManifest(name, data)
		if err != nil {
			addFailure(Failure{Kind: FailureManifest, Date: day, Filename: name, Err: err})
			continue
		}
		return dedupe(m.Files), true
	}
	return nil, false
}

// probe fetches every canonical capture time and keeps the ones that exist.
func (d *Discovery) probe(ctx context.Context, date time.Time, addFailure func(Failure)) []RawSnapshot {
	day := date.Format(DateLayout)
	var (
		mu        sync.Mutex
		snapshots []RawSnapshot
		g         errgroup.Group
	)

	for _, hhmmss := range d.cfg.ProbeTimes {
		name := CaptureFilename(hhmmss)
		ts, err := CaptureTime(date, name)
		if err != nil {
			addFailure(Failure{Kind: FailureFilename, Date: day, Filename: name, Err: err})
			continue
		}
		g.Go(func() error {
			data, err := d.fetch(ctx, day, name)
			if err != nil {
				if !errors.Is(err, ErrNotFound) {
					addFailure(Failure{Kind: FailureFetch, Date: day, Filename: name, Err: err})
				}
				return nil
			}
			mu.Lock()
			snapshots = append(snapshots, RawSnapshot{Date: day, Filename: name, Data: data, CapturedAt: ts})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return snapshots
}

// fetch performs one bounded, time-limited fetch and records its outcome.
func (d *Discovery) fetch(ctx context.Context, day, name string) ([]byte, error) {
	if err := d.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.sem.Release(1)

	fctx, cancel := context.WithTimeoutCause(ctx, d.cfg.Timeout, ErrFetchTimeout)
	defer cancel()

	start := time.Now()
	data, err := d.source.Fetch(fctx, day, name)
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	case ctx.Err() == nil && errors.Is(context.Cause(fctx), ErrFetchTimeout):
		result = "timeout"
		err = fmt.Errorf("fetch timed out after %s: %w", d.cfg.Timeout, err)
	default:
		result = "error"
	}
	metrics.ObserveSnapshotFetch(d.source.Name(), result, time.Since(start))

	return data, err
}

func sortSnapshots(s []RawSnapshot) {
	sort.Slice(s, func(i, j int) bool {
		if !s[i].CapturedAt.Equal(s[j].CapturedAt) {
			return s[i].CapturedAt.Before(s[j].CapturedAt)
		}
		return s[i].Filename < s[j].Filename
	})
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
