package retriever

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/bagtools/bagfetch/internal/fetchorder"
	"github.com/bagtools/bagfetch/internal/logctx"
	"github.com/bagtools/bagfetch/internal/pkgdir"
	"github.com/bagtools/bagfetch/internal/storage"
	"github.com/bagtools/bagfetch/internal/telemetry"
	"github.com/bagtools/bagfetch/internal/transfer"
)

const dirPerm = 0755

// Worker exit statuses.
const (
	StatusOK      = 0
	StatusCrashed = 1
)

// logTimeLayout is the asctime-style timestamp the retrieval log has
// always used.
const logTimeLayout = time.ANSIC

// Outcome is what a worker terminates with. ExitStatus stays 0 on
// normal completion even when items failed; item-level failures are
// carried in Failed and in the retrieval log.
type Outcome struct {
	WorkerID   int
	ExitStatus int
	Attempted  int
	Failed     int
}

// Worker drains one bucket sequentially. It owns its bucket and its
// own retrieval log handle exclusively; nothing it writes is shared
// with sibling workers.
type Worker struct {
	ID         int
	PackageID  string
	PackageDir string
	Selector   *transfer.Selector
	History    storage.AttemptWriteRepository // optional
	Tracker    *Tracker                       // optional
	Telemetry  *telemetry.Telemetry
}

// Run processes every item in the bucket, in order, regardless of
// earlier failures, and terminates with the worker's outcome. A panic
// is recovered and surfaces as a crashed outcome rather than taking
// the whole run down.
func (w *Worker) Run(ctx context.Context, bucket []fetchorder.Item) (outcome Outcome) {
	logger := logctx.LoggerFromContext(ctx).With("worker_id", w.ID)

	outcome.WorkerID = w.ID

	defer func() {
		if r := recover(); r != nil {
			logger.Error("worker crashed",
				"panic", r,
				"stack", string(debug.Stack()))

			outcome.ExitStatus = StatusCrashed
		}
	}()

	w.Telemetry.IncrementActiveWorkers()
	defer w.Telemetry.DecrementActiveWorkers()

	logFile, err := pkgdir.OpenLog(w.PackageDir)
	if err != nil {
		logger.Error("failed to open retrieval log", "err", err)

		outcome.ExitStatus = StatusCrashed

		return outcome
	}

	defer logFile.Close()

	logger.Info("working on items", "item_count", len(bucket))

	for _, item := range bucket {
		res := w.retrieve(ctx, item)

		fmt.Fprintf(logFile, "%s %s %d\n",
			res.Timestamp.Format(logTimeLayout), res.ResolvedPath, res.ExitCode)

		outcome.Attempted++

		failed := res.ExitCode != 0
		if failed {
			outcome.Failed++
		}

		if w.Tracker != nil {
			w.Tracker.RecordAttempt(failed)
		}

		if w.History != nil {
			if err := w.History.RecordAttempt(storage.AttemptRecord{
				PackageID:   w.PackageID,
				WorkerID:    w.ID,
				FilePath:    res.ResolvedPath,
				ExitCode:    res.ExitCode,
				AttemptedAt: res.Timestamp,
			}); err != nil {
				logger.Error("failed to record attempt", "file_path", res.ResolvedPath, "err", err)
			}
		}
	}

	return outcome
}

func (w *Worker) retrieve(ctx context.Context, item fetchorder.Item) transfer.Result {
	logger := logctx.LoggerFromContext(ctx).With("worker_id", w.ID, "url", item.SourceURL)

	resolved := filepath.Join(w.PackageDir, item.DestinationName)
	res := transfer.Result{Item: item, ResolvedPath: resolved}

	// Sibling workers race to create overlapping parent directories;
	// MkdirAll treats already-exists as success, so only real failures
	// (permissions, read-only filesystem) reach this branch. The
	// transfer would be doomed anyway, so record the attempt as failed
	// and move on to the next item.
	if err := os.MkdirAll(filepath.Dir(resolved), dirPerm); err != nil {
		logger.Error("failed to create target directory", "path", resolved, "err", err)

		w.Telemetry.RecordSystemError("worker", "mkdir")

		res.ExitCode = -1
		res.Timestamp = time.Now()

		return res
	}

	tool := w.Selector.ToolFor(item.SourceURL)

	start := time.Now()
	code, err := tool.Fetch(ctx, item.SourceURL, resolved)
	duration := time.Since(start)

	res.ExitCode = code
	res.Timestamp = time.Now()

	switch {
	case err != nil:
		logger.Error("transfer failed", "tool", tool.Name(), "err", err)
	case code != 0:
		logger.Warn("transfer exited non-zero", "tool", tool.Name(), "exit_code", code)
	default:
		logger.Debug("transfer complete", "tool", tool.Name(), "target", resolved)
	}

	status := "success"
	if code != 0 {
		status = "error"
	}

	w.Telemetry.RecordTransfer(tool.Name(), status, duration)

	return res
}
