// Package app wires configuration into sources, the analysis engine and the
// HTTP server for the CLI commands.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/star/tlehist/internal/config"
	"github.com/star/tlehist/internal/history"
	"github.com/star/tlehist/internal/snapshot"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	Out    io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	return &App{Config: cfg, Logger: logger, Out: os.Stdout}
}

// newSource builds the configured snapshot source.
func (a *App) newSource(ctx context.Context) (snapshot.Source, error) {
	src := a.Config.Source
	maxBytes := a.Config.Fetch.MaxBytes

	switch src.Kind {
	case config.SourceDir:
		return snapshot.NewDirSource(src.Root, maxBytes), nil
	case config.SourceHTTP:
		b := a.Config.Fetch.Breaker
		return snapshot.NewHTTPSource(src.BaseURL, maxBytes, snapshot.BreakerConfig{
			MaxRequests:      b.MaxRequests,
			Interval:         b.Interval,
			Timeout:          b.Timeout,
			FailureThreshold: b.FailureThreshold,
			MinRequests:      b.MinRequests,
		}, a.Logger), nil
	case config.SourceS3:
		return snapshot.NewS3Source(ctx, snapshot.S3Options{
			Bucket:       src.S3.Bucket,
			Prefix:       src.S3.Prefix,
			Region:       src.S3.Region,
			Endpoint:     src.S3.Endpoint,
			UsePathStyle: src.S3.UsePathStyle,
			MaxBytes:     maxBytes,
		})
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// newEngine builds an analysis engine over the configured source.
func (a *App) newEngine(ctx context.Context) (*history.Engine, error) {
	src, err := a.newSource(ctx)
	if err != nil {
		return nil, err
	}

	disc := snapshot.NewDiscovery(src, snapshot.Config{
		ManifestNames: a.Config.Source.ManifestNames,
		ProbeTimes:    a.Config.Source.ProbeTimes,
		Timeout:       a.Config.Fetch.Timeout,
		Concurrency:   a.Config.Fetch.Concurrency,
	}, a.Logger)

	a.Logger.Info("snapshot source ready",
		"component", "app",
		"source", src.Name(),
		"fetch_concurrency", a.Config.Fetch.Concurrency,
		"fetch_timeout_ms", a.Config.Fetch.Timeout.Milliseconds(),
		"workers", a.Config.Engine.Workers,
	)

	return history.NewEngine(disc, history.Config{
		Workers:         a.Config.Engine.Workers,
		DateConcurrency: a.Config.Engine.DateConcurrency,
		MaxRangeDays:    a.Config.Engine.MaxRangeDays,
	}, a.Logger), nil
}
