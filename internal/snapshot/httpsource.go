package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker in front of a remote source.
type BreakerConfig struct {
	MaxRequests      uint32        // probes allowed while half-open
	Interval         time.Duration // closed-state counter reset period
	Timeout          time.Duration // open-state duration before half-open
	FailureThreshold float64       // failure ratio that trips the breaker
	MinRequests      uint32        // requests required before tripping
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      10,
	}
}

// HTTPSource fetches snapshots over HTTP from {baseURL}/{date}/{file}.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	maxBytes   int64
	logger     *slog.Logger
}

// NewHTTPSource creates an HTTPSource. Per-request deadlines come from the
// caller's context; the client timeout is a backstop.
func NewHTTPSource(baseURL string, maxBytes int64, breakerCfg BreakerConfig, logger *slog.Logger) *HTTPSource {
	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		maxBytes: maxBytes,
		logger:   logger,
	}

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "snapshot-http",
		MaxRequests: breakerCfg.MaxRequests,
		Interval:    breakerCfg.Interval,
		Timeout:     breakerCfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < breakerCfg.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= breakerCfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("snapshot source breaker state changed",
				"component", "snapshot",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		// A missing file is an answer and an abandoned request says nothing
		// about the source; neither counts as a failure.
		IsSuccessful: func(err error) bool {
			var aborted *abortedError
			return err == nil || errors.Is(err, ErrNotFound) || errors.As(err, &aborted)
		},
	})

	return s
}

// Name implements Source.
func (s *HTTPSource) Name() string {
	return "http"
}

// BaseURL returns the configured base URL.
func (s *HTTPSource) BaseURL() string {
	return s.baseURL
}

// Fetch implements Source.
func (s *HTTPSource) Fetch(ctx context.Context, date, filename string) ([]byte, error) {
	target := s.baseURL + "/" + url.PathEscape(date) + "/" + url.PathEscape(filename)

	if callerGone(ctx) {
		return nil, fmt.Errorf("fetching %s: %w", target, ctx.Err())
	}

	body, err := s.breaker.Execute(func() (interface{}, error) {
		data, err := s.get(ctx, target)
		if err != nil && callerGone(ctx) {
			return nil, &abortedError{err: err}
		}
		return data, err
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("fetching %s: %w", target, err)
		}
		var aborted *abortedError
		if errors.As(err, &aborted) {
			return nil, aborted.err
		}
		return nil, err
	}
	return body.([]byte), nil
}

// abortedError marks a request cut short by the caller's context.
type abortedError struct {
	err error
}

func (e *abortedError) Error() string { return e.err.Error() }
func (e *abortedError) Unwrap() error { return e.err }

// callerGone reports whether ctx ended for a reason other than the per-fetch
// deadline. A fetch that times out on its own still counts against the source.
func callerGone(ctx context.Context) bool {
	return ctx.Err() != nil && !errors.Is(context.Cause(ctx), ErrFetchTimeout)
}

func (s *HTTPSource) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", target, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, target)
	}

	return readLimited(resp.Body, s.maxBytes)
}
