package retriever

import (
	"context"

	"github.com/bagtools/bagfetch/internal/fetchorder"
	"github.com/bagtools/bagfetch/internal/logctx"
	"github.com/bagtools/bagfetch/internal/storage"
	"github.com/bagtools/bagfetch/internal/telemetry"
	"github.com/bagtools/bagfetch/internal/transfer"
	"golang.org/x/sync/errgroup"
)

// Scheduler fans one worker out per bucket and joins them all before
// reporting. It performs no retry and no rebalancing; once launched,
// workers run their buckets to exhaustion.
type Scheduler struct {
	packageID  string
	packageDir string
	selector   *transfer.Selector
	history    storage.AttemptWriteRepository
	tracker    *Tracker
	telemetry  *telemetry.Telemetry
}

func NewScheduler(
	packageID string,
	packageDir string,
	selector *transfer.Selector,
	history storage.AttemptWriteRepository,
	tracker *Tracker,
	tel *telemetry.Telemetry,
) *Scheduler {
	return &Scheduler{
		packageID:  packageID,
		packageDir: packageDir,
		selector:   selector,
		history:    history,
		tracker:    tracker,
		telemetry:  tel,
	}
}

// Run launches one worker per bucket and blocks until every worker
// has terminated. Outcomes are reported and returned in termination
// order: first to finish, first in the slice.
func (s *Scheduler) Run(ctx context.Context, buckets [][]fetchorder.Item) []Outcome {
	logger := logctx.LoggerFromContext(ctx)

	outcomesCh := make(chan Outcome, len(buckets))

	wg, ctx := errgroup.WithContext(ctx)

	for i := range buckets {
		worker := &Worker{
			ID:         i,
			PackageID:  s.packageID,
			PackageDir: s.packageDir,
			Selector:   s.selector,
			History:    s.history,
			Tracker:    s.tracker,
			Telemetry:  s.telemetry,
		}
		bucket := buckets[i]

		wg.Go(func() error {
			outcomesCh <- worker.Run(ctx, bucket)

			return nil
		})
	}

	outcomes := make([]Outcome, 0, len(buckets))
	for range buckets {
		outcome := <-outcomesCh

		logger.Info("worker finished",
			"worker_id", outcome.WorkerID,
			"exit_status", outcome.ExitStatus,
			"attempted", outcome.Attempted,
			"failed", outcome.Failed)

		outcomes = append(outcomes, outcome)
	}

	// Every outcome has been received, so this never blocks; it only
	// releases the group's resources.
	_ = wg.Wait()

	return outcomes
}
