package db

// schemaStatements uses the SQL subset shared by SQLite and Postgres:
// TEXT primary keys (UUID strings), BOOLEAN, TIMESTAMP, and
// IF NOT EXISTS on tables and indexes.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS media_cache (
		id TEXT PRIMARY KEY,
		asset_type TEXT NOT NULL,
		title TEXT NOT NULL,
		year INTEGER,
		tmdb_id INTEGER,
		tvdb_id INTEGER,
		imdb_id TEXT,
		season_number INTEGER,
		instance_name TEXT NOT NULL,
		folder TEXT,
		root_folder TEXT,
		monitored BOOLEAN NOT NULL DEFAULT FALSE,
		tags TEXT,
		matched BOOLEAN NOT NULL DEFAULT FALSE,
		original_file TEXT,
		renamed_file TEXT,
		content_hash TEXT,
		last_indexed TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_media_cache_key
		ON media_cache (asset_type, title, year, tmdb_id, tvdb_id, imdb_id, season_number, instance_name)`,
	`CREATE INDEX IF NOT EXISTS idx_media_cache_scope
		ON media_cache (instance_name, asset_type)`,

	`CREATE TABLE IF NOT EXISTS collection_cache (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		year INTEGER,
		tmdb_id INTEGER,
		tvdb_id INTEGER,
		imdb_id TEXT,
		library_name TEXT NOT NULL,
		instance_name TEXT NOT NULL,
		folder TEXT,
		matched BOOLEAN NOT NULL DEFAULT FALSE,
		original_file TEXT,
		renamed_file TEXT,
		content_hash TEXT,
		last_indexed TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_collection_cache_key
		ON collection_cache (title, year, tmdb_id, tvdb_id, imdb_id, library_name, instance_name)`,
	`CREATE INDEX IF NOT EXISTS idx_collection_cache_scope
		ON collection_cache (instance_name, library_name)`,

	`CREATE TABLE IF NOT EXISTS poster_cache (
		id TEXT PRIMARY KEY,
		asset_type TEXT NOT NULL,
		title TEXT NOT NULL,
		year INTEGER,
		tmdb_id INTEGER,
		tvdb_id INTEGER,
		imdb_id TEXT,
		season_number INTEGER,
		file TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		last_indexed TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_poster_cache_key
		ON poster_cache (asset_type, title, year, tmdb_id, tvdb_id, imdb_id, season_number, file)`,

	`CREATE TABLE IF NOT EXISTS orphaned_posters (
		id TEXT PRIMARY KEY,
		file_path TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		instance_name TEXT NOT NULL DEFAULT '',
		date_orphaned TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS plex_items (
		id TEXT PRIMARY KEY,
		instance_name TEXT NOT NULL,
		library_name TEXT NOT NULL,
		rating_key TEXT NOT NULL,
		title TEXT NOT NULL,
		year INTEGER,
		asset_type TEXT NOT NULL,
		last_indexed TIMESTAMP NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_plex_items_key
		ON plex_items (instance_name, library_name, rating_key)`,

	`CREATE TABLE IF NOT EXISTS run_state (
		scope TEXT PRIMARY KEY,
		last_run TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		job_type TEXT NOT NULL,
		unique_key TEXT NOT NULL,
		payload TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'pending',
		error TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status, created_at)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
}
