package storage

import "time"

// AttemptRecord is one transfer attempt as kept in the history store.
type AttemptRecord struct {
	PackageID   string
	WorkerID    int
	FilePath    string
	ExitCode    int
	AttemptedAt time.Time
}

type AttemptReadRepository interface {
	GetAttempts(packageID string) ([]AttemptRecord, error)
	CountFailed(packageID string) (int, error)
}

type AttemptWriteRepository interface {
	RecordAttempt(rec AttemptRecord) error
}
