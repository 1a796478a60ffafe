package sqlite

import (
	"database/sql"
	"sync"
	"time"

	"github.com/bagtools/bagfetch/internal/storage"
)

// AttemptRepository persists transfer attempts in SQLite. Writes are
// serialized through a mutex because every worker funnels into the
// same connection.
type AttemptRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewAttemptRepository(dbConn *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: dbConn}
}

// RecordAttempt appends one transfer attempt to the history.
func (r *AttemptRepository) RecordAttempt(rec storage.AttemptRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`
		INSERT INTO attempts (package_id, worker_id, file_path, exit_code, attempted_at)
		VALUES (?, ?, ?, ?, ?)
	`, rec.PackageID, rec.WorkerID, rec.FilePath, rec.ExitCode, rec.AttemptedAt.Format(time.RFC3339))

	return err
}

// GetAttempts returns every recorded attempt for a package, in the
// order they were written.
func (r *AttemptRepository) GetAttempts(packageID string) ([]storage.AttemptRecord, error) {
	rows, err := r.db.Query(`
		SELECT package_id, worker_id, file_path, exit_code, attempted_at
		FROM attempts WHERE package_id = ? ORDER BY id
	`, packageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []storage.AttemptRecord

	for rows.Next() {
		var record storage.AttemptRecord

		var attemptedAt string

		err := rows.Scan(&record.PackageID, &record.WorkerID, &record.FilePath, &record.ExitCode, &attemptedAt)
		if err != nil {
			return nil, err
		}

		record.AttemptedAt, _ = time.Parse(time.RFC3339, attemptedAt)

		attempts = append(attempts, record)
	}

	return attempts, rows.Err()
}

// CountFailed returns how many attempts for a package exited non-zero.
func (r *AttemptRepository) CountFailed(packageID string) (int, error) {
	var count int

	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM attempts WHERE package_id = ? AND exit_code != 0
	`, packageID).Scan(&count)

	return count, err
}
