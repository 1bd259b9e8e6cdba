package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/google/uuid"
)

// JobRepository owns the jobs table, the store-backed work queue fed by the
// webhook endpoint and drained by the workflow loop. Pending jobs are
// deduplicated on unique_key so a burst of webhooks for one title collapses
// into a single queued upsert.
type JobRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `id, job_type, unique_key, payload, status, error, created_at, updated_at`

func scanJob(row interface{ Scan(dest ...interface{}) error }) (*models.Job, error) {
	j := &models.Job{}
	err := row.Scan(&j.ID, &j.Type, &j.UniqueKey, &j.Payload, &j.Status, &j.Error, &j.CreatedAt, &j.UpdatedAt)
	return j, err
}

// Enqueue adds a pending job unless one with the same unique key is already
// waiting. Returns true when a new job was inserted.
func (r *JobRepository) Enqueue(jobType, uniqueKey string, payload []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existingID uuid.UUID
	err := r.db.QueryRow(`SELECT id FROM jobs WHERE unique_key = $1 AND status = $2`,
		uniqueKey, models.JobPending).Scan(&existingID)
	switch {
	case err == nil:
		return false, nil
	case err != sql.ErrNoRows:
		return false, fmt.Errorf("lookup pending job: %w", err)
	}

	now := time.Now().UTC()
	// Payload is stored as text so both backends treat it uniformly.
	_, err = r.db.Exec(`INSERT INTO jobs (id, job_type, unique_key, payload, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), jobType, uniqueKey, string(payload), models.JobPending, now, now)
	if err != nil {
		return false, fmt.Errorf("enqueue job: %w", err)
	}
	return true, nil
}

// NextPending claims the oldest pending job, flipping it to running. Returns
// nil when the queue is empty.
func (r *JobRepository) NextPending() (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := r.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE status = $1
		ORDER BY created_at LIMIT 1`, models.JobPending)
	job, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}

	job.Status = models.JobRunning
	job.UpdatedAt = time.Now().UTC()
	_, err = r.db.Exec(`UPDATE jobs SET status = $1, updated_at = $2 WHERE id = $3`,
		job.Status, job.UpdatedAt, job.ID)
	if err != nil {
		return nil, fmt.Errorf("mark job running: %w", err)
	}
	return job, nil
}

// MarkDone finishes a job successfully.
func (r *JobRepository) MarkDone(id uuid.UUID) error {
	return r.finish(id, models.JobDone, nil)
}

// MarkFailed finishes a job with an error message.
func (r *JobRepository) MarkFailed(id uuid.UUID, msg string) error {
	return r.finish(id, models.JobFailed, &msg)
}

func (r *JobRepository) finish(id uuid.UUID, status models.JobStatus, msg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`UPDATE jobs SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		status, msg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return nil
}

// ResetRunning flips jobs stuck in running back to pending. Called once at
// startup: a crash mid-drain leaves claimed jobs that would otherwise never
// retry.
func (r *JobRepository) ResetRunning() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`UPDATE jobs SET status = $1, updated_at = $2 WHERE status = $3`,
		models.JobPending, time.Now().UTC(), models.JobRunning)
	if err != nil {
		return 0, fmt.Errorf("reset running jobs: %w", err)
	}
	return res.RowsAffected()
}

// PruneFinished deletes done and failed jobs older than the cutoff.
func (r *JobRepository) PruneFinished(cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM jobs WHERE updated_at < $1 AND (status = $2 OR status = $3)`,
		cutoff, models.JobDone, models.JobFailed)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListRecent returns the newest jobs up to the given limit, for the status
// endpoint.
func (r *JobRepository) ListRecent(limit int) ([]*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}
