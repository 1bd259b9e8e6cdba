package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/google/uuid"
)

// PosterRepository owns the poster_cache table: the flattened projection of
// every matched asset file, rebuilt incrementally each run.
type PosterRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewPosterRepository(db *sql.DB) *PosterRepository {
	return &PosterRepository{db: db}
}

const posterColumns = `id, asset_type, title, year, tmdb_id, tvdb_id, imdb_id,
	season_number, file, reason, last_indexed`

func scanPosterRow(row interface{ Scan(dest ...interface{}) error }) (*models.PosterRow, error) {
	r := &models.PosterRow{}
	err := row.Scan(
		&r.ID, &r.AssetType, &r.Title, &r.Year, &r.TMDBID, &r.TVDBID,
		&r.IMDBID, &r.Season, &r.File, &r.Reason, &r.LastIndexed,
	)
	return r, err
}

// Upsert inserts or refreshes one poster row, keyed by the full
// title/identifier/season/file tuple.
func (r *PosterRepository) Upsert(row *models.PosterRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	predicate := `asset_type = $1 AND title = $2 AND file = $3
		AND (year = $4 OR (year IS NULL AND $4 IS NULL))
		AND (tmdb_id = $5 OR (tmdb_id IS NULL AND $5 IS NULL))
		AND (tvdb_id = $6 OR (tvdb_id IS NULL AND $6 IS NULL))
		AND (imdb_id = $7 OR (imdb_id IS NULL AND $7 IS NULL))
		AND (season_number = $8 OR (season_number IS NULL AND $8 IS NULL))`
	args := []interface{}{row.AssetType, row.Title, row.File, row.Year, row.TMDBID, row.TVDBID, row.IMDBID, row.Season}

	if row.LastIndexed.IsZero() {
		row.LastIndexed = time.Now().UTC()
	}

	var existingID uuid.UUID
	err := r.db.QueryRow(`SELECT id FROM poster_cache WHERE `+predicate, args...).Scan(&existingID)
	switch {
	case err == sql.ErrNoRows:
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		insert := `INSERT INTO poster_cache (
				id, asset_type, title, year, tmdb_id, tvdb_id, imdb_id,
				season_number, file, reason, last_indexed
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
		_, err := r.db.Exec(insert,
			row.ID, row.AssetType, row.Title, row.Year, row.TMDBID, row.TVDBID,
			row.IMDBID, row.Season, row.File, row.Reason, row.LastIndexed,
		)
		if err != nil {
			return fmt.Errorf("insert poster row: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("lookup poster row: %w", err)
	}

	row.ID = existingID
	_, err = r.db.Exec(`UPDATE poster_cache SET reason = $1, last_indexed = $2 WHERE id = $3`,
		row.Reason, row.LastIndexed, existingID)
	if err != nil {
		return fmt.Errorf("update poster row: %w", err)
	}
	return nil
}

// DeleteStaleByType removes rows of one asset type not refreshed since the
// given cutoff, which are files that stopped matching (or disappeared)
// during the last pass. The type scope lets the caller leave another type's
// rows alone when its upstream fetch failed.
func (r *PosterRepository) DeleteStaleByType(t models.AssetType, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM poster_cache WHERE asset_type = $1 AND last_indexed < $2`, t, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListByType returns all poster rows for one asset type.
func (r *PosterRepository) ListByType(t models.AssetType) ([]*models.PosterRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT `+posterColumns+` FROM poster_cache
		WHERE asset_type = $1 ORDER BY title, season_number`, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PosterRow
	for rows.Next() {
		row, err := scanPosterRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
