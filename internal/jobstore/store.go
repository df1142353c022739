// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jobstore persists conversion job history in a local SQLite
// database, keyed by result identifier. The history lets an operator list
// past jobs and resume polling after a crash without resubmitting.
package jobstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/xls2pdf/pkg/types"
)

const dbFile = "jobs.db"

// ErrNotFound means no job with the given result identifier is recorded.
var ErrNotFound = errors.New("job not found")

// Store manages the job-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the job database at dir/jobs.db, creating the
// schema if it does not exist.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating jobs directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS jobs (
		result_id TEXT PRIMARY KEY,
		filename TEXT,
		source_path TEXT,
		output_path TEXT,
		status TEXT NOT NULL,
		error TEXT,
		submitted_at TEXT,
		completed_at TEXT
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// JobSubmitted records a freshly submitted job. Resubmitting the same
// workbook yields the same identifier, so the record is upserted.
func (s *Store) JobSubmitted(job types.Job) error {
	_, err := s.db.Exec(
		`INSERT INTO jobs (result_id, filename, source_path, output_path, status, error, submitted_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, '', ?, '')
		 ON CONFLICT(result_id) DO UPDATE SET
			filename=excluded.filename, source_path=excluded.source_path,
			output_path=excluded.output_path, status=excluded.status,
			error='', submitted_at=excluded.submitted_at, completed_at=''`,
		job.ResultID, job.Filename, job.SourcePath, job.OutputPath,
		string(job.Status), formatTime(job.SubmittedAt),
	)
	if err != nil {
		return fmt.Errorf("recording job %s: %w", job.ResultID, err)
	}
	return nil
}

// JobFinished marks a job as completed or failed. Fields left empty in the
// update (a resumed poll does not know the original source path) keep their
// recorded values.
func (s *Store) JobFinished(job types.Job) error {
	_, err := s.db.Exec(
		`INSERT INTO jobs (result_id, filename, source_path, output_path, status, error, submitted_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, '', ?)
		 ON CONFLICT(result_id) DO UPDATE SET
			status=excluded.status, error=excluded.error,
			completed_at=excluded.completed_at,
			output_path=CASE WHEN excluded.output_path != '' THEN excluded.output_path ELSE jobs.output_path END`,
		job.ResultID, job.Filename, job.SourcePath, job.OutputPath,
		string(job.Status), job.Error, formatTime(job.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("updating job %s: %w", job.ResultID, err)
	}
	return nil
}

// Get returns the job recorded under resultID, or ErrNotFound.
func (s *Store) Get(resultID string) (*types.Job, error) {
	row := s.db.QueryRow(
		`SELECT result_id, filename, source_path, output_path, status, error, submitted_at, completed_at
		 FROM jobs WHERE result_id = ?`, resultID)
	job, err := scanJob(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, resultID)
	}
	if err != nil {
		return nil, fmt.Errorf("reading job %s: %w", resultID, err)
	}
	return job, nil
}

// List returns recorded jobs, newest first. An empty status lists all jobs.
func (s *Store) List(status types.JobStatus) ([]types.Job, error) {
	query := `SELECT result_id, filename, source_path, output_path, status, error, submitted_at, completed_at
		 FROM jobs`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY submitted_at DESC, result_id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

func scanJob(scan func(...any) error) (*types.Job, error) {
	var job types.Job
	var status, submittedAt, completedAt string
	if err := scan(&job.ResultID, &job.Filename, &job.SourcePath, &job.OutputPath,
		&status, &job.Error, &submittedAt, &completedAt); err != nil {
		return nil, err
	}
	job.Status = types.JobStatus(status)
	job.SubmittedAt = parseTime(submittedAt)
	job.CompletedAt = parseTime(completedAt)
	return &job, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
