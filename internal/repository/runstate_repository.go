package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// RunStateRepository owns run_state, one timestamp per sync scope. A missing
// row reads as the zero time, which callers treat as "never ran".
type RunStateRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRunStateRepository(db *sql.DB) *RunStateRepository {
	return &RunStateRepository{db: db}
}

// LastRun returns the recorded run time for a scope, or the zero time when
// the scope has never run.
func (r *RunStateRepository) LastRun(scope string) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var t time.Time
	err := r.db.QueryRow(`SELECT last_run FROM run_state WHERE scope = $1`, scope).Scan(&t)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read run state %q: %w", scope, err)
	}
	return t, nil
}

// MarkRun records that a scope ran at the given time.
func (r *RunStateRepository) MarkRun(scope string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing time.Time
	err := r.db.QueryRow(`SELECT last_run FROM run_state WHERE scope = $1`, scope).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		if _, err := r.db.Exec(`INSERT INTO run_state (scope, last_run) VALUES ($1, $2)`, scope, at.UTC()); err != nil {
			return fmt.Errorf("insert run state %q: %w", scope, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read run state %q: %w", scope, err)
	}

	if _, err := r.db.Exec(`UPDATE run_state SET last_run = $1 WHERE scope = $2`, at.UTC(), scope); err != nil {
		return fmt.Errorf("update run state %q: %w", scope, err)
	}
	return nil
}
