package sqlite

import (
	"database/sql"

	// Import the SQLite driver.
	_ "github.com/mattn/go-sqlite3"
)

// InitDB opens the SQLite attempt history database at path and creates
// the attempts table if it doesn't exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY,
		package_id TEXT,
		worker_id INTEGER,
		file_path TEXT,
		exit_code INTEGER,
		attempted_at DATETIME
	)`)

	if err != nil {
		return nil, err
	}

	return db, nil
}
