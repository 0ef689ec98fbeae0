package history

import (
	"context"
	"log/slog"
	"sync"
)

// detectResult is the output of change detection for one group.
type detectResult struct {
	history *SatelliteHistory
	err     error
	noradID string
}

// WorkerPool runs change detection over satellite groups on a fixed number
// of goroutines.
type WorkerPool struct {
	workers int
	logger  *slog.Logger
}

// NewWorkerPool creates a worker pool with the given number of workers.
func NewWorkerPool(workers int, logger *slog.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		workers: workers,
		logger:  logger,
	}
}

// detectBatch builds the history of every group. Groups without updates are
// omitted. When ctx is cancelled no new group is started and only the
// histories already built are returned. errs lists groups that failed.
func (wp *WorkerPool) detectBatch(ctx context.Context, groups []group) (histories []*SatelliteHistory, errs []detectResult) {
	if len(groups) == 0 {
		return nil, nil
	}

	jobs := make(chan group, wp.workers*2)
	results := make(chan detectResult, wp.workers*2)

	// Start workers.
	var wg sync.WaitGroup
	for i := 0; i < wp.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if ctx.Err() != nil {
					return
				}
				h, err := buildHistory(job.noradID, job.records)
				results <- detectResult{history: h, err: err, noradID: job.noradID}
			}
		}()
	}

	// Feed jobs in a goroutine.
	go func() {
		defer close(jobs)
		for _, g := range groups {
			select {
			case jobs <- g:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Close results when all workers are done.
	go func() {
		wg.Wait()
		close(results)
	}()

	histories = make([]*SatelliteHistory, 0, len(groups))
	for result := range results {
		if result.err != nil {
			wp.logger.Warn("change detection failed",
				"component", "history",
				"norad_id", result.noradID,
				"error", result.err,
			)
			errs = append(errs, result)
			continue
		}
		if result.history == nil || result.history.UpdateCount == 0 {
			continue
		}
		histories = append(histories, result.history)
	}

	return histories, errs
}
