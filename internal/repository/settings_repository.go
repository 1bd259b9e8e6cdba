package repository

import (
	"database/sql"
	"fmt"
	"sync"
)

// SettingsRepository owns the settings key/value table. Values stored here
// override the TOML file at load time, so operators can tweak behavior
// without editing config on disk.
type SettingsRepository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// All returns every stored setting.
func (r *SettingsRepository) All() (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Get returns one setting value; ok is false when the key is absent.
func (r *SettingsRepository) Get(key string) (value string, ok bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	err = r.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read setting %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores one setting, replacing any previous value.
func (r *SettingsRepository) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var existing string
	err := r.db.QueryRow(`SELECT value FROM settings WHERE key = $1`, key).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		if _, err := r.db.Exec(`INSERT INTO settings (key, value) VALUES ($1, $2)`, key, value); err != nil {
			return fmt.Errorf("insert setting %q: %w", key, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read setting %q: %w", key, err)
	}

	if _, err := r.db.Exec(`UPDATE settings SET value = $1 WHERE key = $2`, value, key); err != nil {
		return fmt.Errorf("update setting %q: %w", key, err)
	}
	return nil
}

// Delete removes one setting.
func (r *SettingsRepository) Delete(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM settings WHERE key = $1`, key)
	return err
}
