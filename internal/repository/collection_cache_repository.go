package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/google/uuid"
)

// CollectionCacheRepository owns the collection_cache table.
type CollectionCacheRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewCollectionCacheRepository(db *sql.DB) *CollectionCacheRepository {
	return &CollectionCacheRepository{db: db}
}

const collectionCacheColumns = `id, title, year, tmdb_id, tvdb_id, imdb_id,
	library_name, instance_name, folder, matched, original_file, renamed_file,
	content_hash, last_indexed`

// Parameter order: title, library_name, instance_name, year, tmdb_id,
// tvdb_id, imdb_id.
const collectionKeyPredicate = `title = $1 AND library_name = $2 AND instance_name = $3
	AND (year = $4 OR (year IS NULL AND $4 IS NULL))
	AND (tmdb_id = $5 OR (tmdb_id IS NULL AND $5 IS NULL))
	AND (tvdb_id = $6 OR (tvdb_id IS NULL AND $6 IS NULL))
	AND (imdb_id = $7 OR (imdb_id IS NULL AND $7 IS NULL))`

func collectionKeyArgs(k models.CollectionKey) []interface{} {
	return []interface{}{k.Title, k.Library, k.Instance, k.Year, k.TMDBID, k.TVDBID, k.IMDBID}
}

func scanCollectionCacheRow(row interface{ Scan(dest ...interface{}) error }) (*models.CollectionCacheRow, error) {
	r := &models.CollectionCacheRow{}
	err := row.Scan(
		&r.ID, &r.Key.Title, &r.Key.Year, &r.Key.TMDBID, &r.Key.TVDBID,
		&r.Key.IMDBID, &r.Key.Library, &r.Key.Instance, &r.Folder, &r.Matched,
		&r.OriginalFile, &r.RenamedFile, &r.ContentHash, &r.LastIndexed,
	)
	return r, err
}

// ListScope returns every cached collection for one instance and library.
func (r *CollectionCacheRepository) ListScope(instance, library string) ([]*models.CollectionCacheRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `SELECT ` + collectionCacheColumns + `
		FROM collection_cache WHERE instance_name = $1 AND library_name = $2
		ORDER BY title`
	rows, err := r.db.Query(query, instance, library)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.CollectionCacheRow
	for rows.Next() {
		row, err := scanCollectionCacheRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Upsert inserts or refreshes one collection row by its canonical tuple.
func (r *CollectionCacheRepository) Upsert(row *models.CollectionCacheRow) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existingID uuid.UUID
	query := `SELECT id FROM collection_cache WHERE ` + collectionKeyPredicate
	err := r.db.QueryRow(query, collectionKeyArgs(row.Key)...).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.LastIndexed.IsZero() {
			row.LastIndexed = time.Now().UTC()
		}
		insert := `INSERT INTO collection_cache (
				id, title, year, tmdb_id, tvdb_id, imdb_id, library_name,
				instance_name, folder, matched, original_file, renamed_file,
				content_hash, last_indexed
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
		_, err := r.db.Exec(insert,
			row.ID, row.Key.Title, row.Key.Year, row.Key.TMDBID, row.Key.TVDBID,
			row.Key.IMDBID, row.Key.Library, row.Key.Instance, row.Folder,
			row.Matched, row.OriginalFile, row.RenamedFile, row.ContentHash, row.LastIndexed,
		)
		if err != nil {
			return false, fmt.Errorf("insert collection cache row: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("lookup collection cache row: %w", err)
	}

	row.ID = existingID
	if row.LastIndexed.IsZero() {
		row.LastIndexed = time.Now().UTC()
	}
	update := `UPDATE collection_cache SET
			folder = $1, matched = $2, original_file = $3, renamed_file = $4,
			content_hash = $5, last_indexed = $6
		WHERE id = $7`
	_, err = r.db.Exec(update,
		row.Folder, row.Matched, row.OriginalFile, row.RenamedFile,
		row.ContentHash, row.LastIndexed, existingID,
	)
	if err != nil {
		return false, fmt.Errorf("update collection cache row: %w", err)
	}
	return false, nil
}

// Delete removes one row by ID.
func (r *CollectionCacheRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM collection_cache WHERE id = $1`, id)
	return err
}

// SetMatched flags the row for a canonical tuple as matched and records the
// resolved source file.
func (r *CollectionCacheRepository) SetMatched(key models.CollectionKey, originalFile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id uuid.UUID
	query := `SELECT id FROM collection_cache WHERE ` + collectionKeyPredicate
	err := r.db.QueryRow(query, collectionKeyArgs(key)...).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE collection_cache SET matched = TRUE, original_file = $1 WHERE id = $2`,
		originalFile, id)
	return err
}
