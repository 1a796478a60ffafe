package retriever

import "sync/atomic"

// Tracker keeps run-wide progress counters. It is the only state the
// workers share, and it is only ever touched through atomics.
type Tracker struct {
	total     int64
	attempted int64
	failed    int64
}

// Snapshot is a point-in-time view of the run for status reporting.
type Snapshot struct {
	Total     int64 `json:"total"`
	Attempted int64 `json:"attempted"`
	Failed    int64 `json:"failed"`
}

func NewTracker(total int) *Tracker {
	return &Tracker{total: int64(total)}
}

func (t *Tracker) RecordAttempt(failed bool) {
	atomic.AddInt64(&t.attempted, 1)

	if failed {
		atomic.AddInt64(&t.failed, 1)
	}
}

func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Total:     atomic.LoadInt64(&t.total),
		Attempted: atomic.LoadInt64(&t.attempted),
		Failed:    atomic.LoadInt64(&t.failed),
	}
}
