package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/google/uuid"
)

// PlexRepository owns plex_items, the snapshot of what each Plex library
// currently contains. Snapshots are replaced wholesale per library: the
// upstream listing is authoritative, so there is nothing to merge.
type PlexRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewPlexRepository(db *sql.DB) *PlexRepository {
	return &PlexRepository{db: db}
}

const plexItemColumns = `id, instance_name, library_name, rating_key, title, year, asset_type, last_indexed`

func scanPlexItemRow(row interface{ Scan(dest ...interface{}) error }) (*models.PlexItemRow, error) {
	r := &models.PlexItemRow{}
	err := row.Scan(&r.ID, &r.Instance, &r.LibraryName, &r.RatingKey, &r.Title, &r.Year, &r.Type, &r.LastIndexed)
	return r, err
}

// ReplaceLibrary swaps the stored snapshot of one (instance, library) pair
// for the given items inside a single transaction.
func (r *PlexRepository) ReplaceLibrary(instance, library string, items []*models.PlexItemRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin plex snapshot: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM plex_items WHERE instance_name = $1 AND library_name = $2`, instance, library); err != nil {
		return fmt.Errorf("clear plex snapshot: %w", err)
	}

	now := time.Now().UTC()
	for _, item := range items {
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.Instance = instance
		item.LibraryName = library
		item.LastIndexed = now
		_, err := tx.Exec(`INSERT INTO plex_items (id, instance_name, library_name, rating_key, title, year, asset_type, last_indexed)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, item.Instance, item.LibraryName, item.RatingKey, item.Title, item.Year, item.Type, item.LastIndexed)
		if err != nil {
			return fmt.Errorf("insert plex item %q: %w", item.RatingKey, err)
		}
	}
	return tx.Commit()
}

// ListLibrary returns the stored snapshot of one library.
func (r *PlexRepository) ListLibrary(instance, library string) ([]*models.PlexItemRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT `+plexItemColumns+` FROM plex_items
		WHERE instance_name = $1 AND library_name = $2 ORDER BY title`, instance, library)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PlexItemRow
	for rows.Next() {
		row, err := scanPlexItemRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
