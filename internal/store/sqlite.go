package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/toolspec-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	created_at  DATETIME NOT NULL,
	finished_at DATETIME NOT NULL,
	total       INTEGER NOT NULL,
	success     INTEGER NOT NULL,
	fail        INTEGER NOT NULL,
	records     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_jobs_created_at ON jobs(created_at);
`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveJob persists a completed job. Re-saving a job id replaces it.
func (s *SQLiteStore) SaveJob(ctx context.Context, j *model.Job) error {
	recordsJSON, err := json.Marshal(j.SnapshotRecords())
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal records")
	}
	snap := j.Progress.Snapshot()

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO jobs (id, created_at, finished_at, total, success, fail, records)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.CreatedAt, time.Now().UTC(), snap.Total, snap.Success, snap.Fail, string(recordsJSON),
	)
	return eris.Wrap(err, "sqlite: insert job")
}

// ListJobs returns the most recent jobs, newest first.
func (s *SQLiteStore) ListJobs(ctx context.Context, limit int) ([]JobSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, finished_at, total, success, fail
		 FROM jobs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list jobs")
	}
	defer rows.Close()

	var out []JobSummary
	for rows.Next() {
		var js JobSummary
		if err := rows.Scan(&js.ID, &js.CreatedAt, &js.FinishedAt, &js.Total, &js.Success, &js.Fail); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan job")
		}
		out = append(out, js)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate jobs")
}

// GetRecords returns the stored record set of a job.
func (s *SQLiteStore) GetRecords(ctx context.Context, id string) ([]model.Record, error) {
	var recordsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT records FROM jobs WHERE id = ?`, id).Scan(&recordsJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: job %s not found", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get job")
	}

	var records []model.Record
	if err := json.Unmarshal([]byte(recordsJSON), &records); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal records")
	}
	return records, nil
}
