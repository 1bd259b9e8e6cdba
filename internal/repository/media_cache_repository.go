package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/google/uuid"
)

// MediaCacheRepository owns the media_cache table. The cache store is shared
// across concurrently running workflow passes, so every read-modify-write
// sequence holds the table mutex.
type MediaCacheRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewMediaCacheRepository(db *sql.DB) *MediaCacheRepository {
	return &MediaCacheRepository{db: db}
}

// mediaCacheColumns is the standard SELECT list for media_cache.
const mediaCacheColumns = `id, asset_type, title, year, tmdb_id, tvdb_id, imdb_id,
	season_number, instance_name, folder, root_folder, monitored, tags,
	matched, original_file, renamed_file, content_hash, last_indexed`

// mediaKeyPredicate matches one canonical tuple with SQL NULL semantics
// preserved for every nullable component. Parameter order: asset_type,
// title, instance_name, year, tmdb_id, tvdb_id, imdb_id, season_number.
const mediaKeyPredicate = `asset_type = $1 AND title = $2 AND instance_name = $3
	AND (year = $4 OR (year IS NULL AND $4 IS NULL))
	AND (tmdb_id = $5 OR (tmdb_id IS NULL AND $5 IS NULL))
	AND (tvdb_id = $6 OR (tvdb_id IS NULL AND $6 IS NULL))
	AND (imdb_id = $7 OR (imdb_id IS NULL AND $7 IS NULL))
	AND (season_number = $8 OR (season_number IS NULL AND $8 IS NULL))`

func mediaKeyArgs(k models.MediaKey) []interface{} {
	return []interface{}{k.Type, k.Title, k.Instance, k.Year, k.TMDBID, k.TVDBID, k.IMDBID, k.Season}
}

func scanMediaCacheRow(row interface{ Scan(dest ...interface{}) error }) (*models.MediaCacheRow, error) {
	r := &models.MediaCacheRow{}
	err := row.Scan(
		&r.ID, &r.Key.Type, &r.Key.Title, &r.Key.Year, &r.Key.TMDBID, &r.Key.TVDBID,
		&r.Key.IMDBID, &r.Key.Season, &r.Key.Instance, &r.Folder, &r.RootFolder,
		&r.Monitored, &r.Tags, &r.Matched, &r.OriginalFile, &r.RenamedFile,
		&r.ContentHash, &r.LastIndexed,
	)
	return r, err
}

// ListScope returns every cached row for one instance and asset type.
func (r *MediaCacheRepository) ListScope(instance string, t models.AssetType) ([]*models.MediaCacheRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `SELECT ` + mediaCacheColumns + `
		FROM media_cache WHERE instance_name = $1 AND asset_type = $2
		ORDER BY title`
	rows, err := r.db.Query(query, instance, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MediaCacheRow
	for rows.Next() {
		row, err := scanMediaCacheRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Upsert inserts the row or, when its canonical tuple already exists,
// refreshes every non-key column. Reports whether a new row was created.
func (r *MediaCacheRepository) Upsert(row *models.MediaCacheRow) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existingID uuid.UUID
	query := `SELECT id FROM media_cache WHERE ` + mediaKeyPredicate
	err := r.db.QueryRow(query, mediaKeyArgs(row.Key)...).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		if row.LastIndexed.IsZero() {
			row.LastIndexed = time.Now().UTC()
		}
		insert := `INSERT INTO media_cache (
				id, asset_type, title, year, tmdb_id, tvdb_id, imdb_id,
				season_number, instance_name, folder, root_folder, monitored,
				tags, matched, original_file, renamed_file, content_hash, last_indexed
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
		_, err := r.db.Exec(insert,
			row.ID, row.Key.Type, row.Key.Title, row.Key.Year, row.Key.TMDBID,
			row.Key.TVDBID, row.Key.IMDBID, row.Key.Season, row.Key.Instance,
			row.Folder, row.RootFolder, row.Monitored, row.Tags, row.Matched,
			row.OriginalFile, row.RenamedFile, row.ContentHash, row.LastIndexed,
		)
		if err != nil {
			return false, fmt.Errorf("insert media cache row: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("lookup media cache row: %w", err)
	}

	row.ID = existingID
	if row.LastIndexed.IsZero() {
		row.LastIndexed = time.Now().UTC()
	}
	update := `UPDATE media_cache SET
			folder = $1, root_folder = $2, monitored = $3, tags = $4,
			matched = $5, original_file = $6, renamed_file = $7,
			content_hash = $8, last_indexed = $9
		WHERE id = $10`
	_, err = r.db.Exec(update,
		row.Folder, row.RootFolder, row.Monitored, row.Tags, row.Matched,
		row.OriginalFile, row.RenamedFile, row.ContentHash, row.LastIndexed, existingID,
	)
	if err != nil {
		return false, fmt.Errorf("update media cache row: %w", err)
	}
	return false, nil
}

// Delete removes one row by ID.
func (r *MediaCacheRepository) Delete(id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM media_cache WHERE id = $1`, id)
	return err
}

// SetMatched flags the row for a canonical tuple as matched and records the
// resolved source file.
func (r *MediaCacheRepository) SetMatched(key models.MediaKey, originalFile string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var id uuid.UUID
	query := `SELECT id FROM media_cache WHERE ` + mediaKeyPredicate
	err := r.db.QueryRow(query, mediaKeyArgs(key)...).Scan(&id)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`UPDATE media_cache SET matched = TRUE, original_file = $1 WHERE id = $2`,
		originalFile, id)
	return err
}

// CountMatched returns matched/total counts for one scope.
func (r *MediaCacheRepository) CountMatched(instance string, t models.AssetType) (matched, total int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `SELECT COUNT(*) FILTER (WHERE matched), COUNT(*)
		FROM media_cache WHERE instance_name = $1 AND asset_type = $2`
	err = r.db.QueryRow(query, instance, t).Scan(&matched, &total)
	return matched, total, err
}
