package queue

import (
	"database/sql"
	"time"

	"github.com/ontoforge/ontoforge/errors"
)

// Store handles persistence of queued jobs
type Store struct {
	db *sql.DB
}

// NewStore creates a new job store
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const jobColumns = `id, handler_name, source, status, payload, error, retry_count,
	created_at, started_at, completed_at, updated_at`

// CreateJob inserts a new job into the database
func (s *Store) CreateJob(job *Job) error {
	query := `
		INSERT INTO ingest_jobs (` + jobColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	payload := sql.NullString{String: string(job.Payload), Valid: len(job.Payload) > 0}
	jobErr := sql.NullString{String: job.Error, Valid: job.Error != ""}

	_, err := s.db.Exec(query,
		job.ID,
		job.HandlerName,
		job.Source,
		job.Status,
		payload,
		jobErr,
		job.RetryCount,
		job.CreatedAt,
		nullTime(job.StartedAt),
		nullTime(job.CompletedAt),
		job.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "failed to create job")
	}
	return nil
}

// GetJob retrieves a job by ID
func (s *Store) GetJob(id string) (*Job, error) {
	row := s.db.QueryRow(`SELECT `+jobColumns+` FROM ingest_jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Mark(errors.Newf("job not found: %s", id), errors.ErrNotFound)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get job")
	}
	return job, nil
}

// UpdateJob persists a job's current state
func (s *Store) UpdateJob(job *Job) error {
	job.UpdatedAt = time.Now()
	query := `
		UPDATE ingest_jobs
		SET status = ?, error = ?, retry_count = ?,
			started_at = ?, completed_at = ?, updated_at = ?
		WHERE id = ?
	`
	jobErr := sql.NullString{String: job.Error, Valid: job.Error != ""}
	res, err := s.db.Exec(query,
		job.Status,
		jobErr,
		job.RetryCount,
		nullTime(job.StartedAt),
		nullTime(job.CompletedAt),
		job.UpdatedAt,
		job.ID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update job")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Mark(errors.Newf("job not found: %s", job.ID), errors.ErrNotFound)
	}
	return nil
}

// ListJobs returns jobs ordered oldest first, optionally filtered by status
func (s *Store) ListJobs(status *JobStatus, limit int) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ingest_jobs`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list jobs")
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ListActiveJobs returns all jobs that are currently queued or running
func (s *Store) ListActiveJobs(limit int) ([]*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM ingest_jobs
		WHERE status IN (?, ?) ORDER BY created_at ASC`
	args := []interface{}{JobStatusQueued, JobStatusRunning}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list active jobs")
	}
	defer rows.Close()
	return scanJobs(rows)
}

// DeleteJob removes a job from the database
func (s *Store) DeleteJob(id string) error {
	res, err := s.db.Exec(`DELETE FROM ingest_jobs WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete job")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.Mark(errors.Newf("job not found: %s", id), errors.ErrNotFound)
	}
	return nil
}

// CleanupOldJobs removes terminal jobs older than the given duration and
// returns how many were deleted.
func (s *Store) CleanupOldJobs(olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := s.db.Exec(`
		DELETE FROM ingest_jobs
		WHERE status IN (?, ?, ?) AND completed_at < ?`,
		JobStatusCompleted, JobStatusFailed, JobStatusCancelled, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "failed to cleanup old jobs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count cleaned up jobs")
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanJob(row scanner) (*Job, error) {
	var job Job
	var payload, jobErr sql.NullString
	var startedAt, completedAt sql.NullTime
	err := row.Scan(
		&job.ID,
		&job.HandlerName,
		&job.Source,
		&job.Status,
		&payload,
		&jobErr,
		&job.RetryCount,
		&job.CreatedAt,
		&startedAt,
		&completedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if payload.Valid {
		job.Payload = []byte(payload.String)
	}
	job.Error = jobErr.String
	if startedAt.Valid {
		t := startedAt.Time
		job.StartedAt = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return &job, nil
}

func scanJobs(rows *sql.Rows) ([]*Job, error) {
	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan job")
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate jobs")
	}
	return jobs, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
