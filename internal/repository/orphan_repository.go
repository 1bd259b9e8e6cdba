package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/google/uuid"
)

// OrphanRepository owns orphaned_posters: the log of output files whose
// upstream record vanished. file_path is unique so repeat syncs do not pile
// up duplicate entries for the same file.
type OrphanRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewOrphanRepository(db *sql.DB) *OrphanRepository {
	return &OrphanRepository{db: db}
}

const orphanColumns = `id, file_path, title, instance_name, date_orphaned`

func scanOrphanRow(row interface{ Scan(dest ...interface{}) error }) (*models.OrphanRow, error) {
	r := &models.OrphanRow{}
	err := row.Scan(&r.ID, &r.FilePath, &r.Title, &r.Instance, &r.DateOrphaned)
	return r, err
}

// Record logs one orphaned file. A second record for the same path refreshes
// the title and timestamp instead of inserting a duplicate.
func (r *OrphanRepository) Record(row *models.OrphanRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if row.DateOrphaned.IsZero() {
		row.DateOrphaned = time.Now().UTC()
	}

	var existingID uuid.UUID
	err := r.db.QueryRow(`SELECT id FROM orphaned_posters WHERE file_path = $1`, row.FilePath).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		_, err := r.db.Exec(`INSERT INTO orphaned_posters (id, file_path, title, instance_name, date_orphaned)
			VALUES ($1, $2, $3, $4, $5)`,
			row.ID, row.FilePath, row.Title, row.Instance, row.DateOrphaned)
		if err != nil {
			return fmt.Errorf("insert orphan: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("lookup orphan: %w", err)
	}

	row.ID = existingID
	_, err = r.db.Exec(`UPDATE orphaned_posters SET title = $1, instance_name = $2, date_orphaned = $3 WHERE id = $4`,
		row.Title, row.Instance, row.DateOrphaned, existingID)
	if err != nil {
		return fmt.Errorf("update orphan: %w", err)
	}
	return nil
}

// List returns all orphan entries, newest first.
func (r *OrphanRepository) List() ([]*models.OrphanRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT ` + orphanColumns + ` FROM orphaned_posters ORDER BY date_orphaned DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.OrphanRow
	for rows.Next() {
		row, err := scanOrphanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Delete removes one orphan entry, typically after the operator has cleaned
// up the file on disk.
func (r *OrphanRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM orphaned_posters WHERE id = $1`, id)
	return err
}
