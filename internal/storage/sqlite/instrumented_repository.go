package sqlite

import (
	"context"
	"database/sql"

	"github.com/bagtools/bagfetch/internal/storage"
	"github.com/bagtools/bagfetch/internal/telemetry"
)

// InstrumentedAttemptRepository wraps AttemptRepository with telemetry.
type InstrumentedAttemptRepository struct {
	repo      *AttemptRepository
	telemetry *telemetry.Telemetry
}

// NewInstrumentedAttemptRepository creates a new instrumented attempt repository.
func NewInstrumentedAttemptRepository(dbConn *sql.DB, tel *telemetry.Telemetry) *InstrumentedAttemptRepository {
	return &InstrumentedAttemptRepository{
		repo:      NewAttemptRepository(dbConn),
		telemetry: tel,
	}
}

// RecordAttempt appends an attempt with telemetry.
func (r *InstrumentedAttemptRepository) RecordAttempt(rec storage.AttemptRecord) error {
	return r.telemetry.InstrumentDBOperation(context.Background(), "record_attempt", func(ctx context.Context) error {
		return r.repo.RecordAttempt(rec)
	})
}

// GetAttempts retrieves a package's attempts with telemetry.
func (r *InstrumentedAttemptRepository) GetAttempts(packageID string) ([]storage.AttemptRecord, error) {
	var result []storage.AttemptRecord

	var err error

	instrumentedErr := r.telemetry.InstrumentDBOperation(context.Background(), "get_attempts", func(ctx context.Context) error {
		result, err = r.repo.GetAttempts(packageID)

		return err
	})

	if instrumentedErr != nil {
		return nil, instrumentedErr
	}

	return result, nil
}

// CountFailed counts a package's failed attempts with telemetry.
func (r *InstrumentedAttemptRepository) CountFailed(packageID string) (int, error) {
	var result int

	var err error

	instrumentedErr := r.telemetry.InstrumentDBOperation(context.Background(), "count_failed", func(ctx context.Context) error {
		result, err = r.repo.CountFailed(packageID)

		return err
	})

	if instrumentedErr != nil {
		return 0, instrumentedErr
	}

	return result, nil
}
