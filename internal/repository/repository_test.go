package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinTDCT/PosterVault/internal/db"
	"github.com/JustinTDCT/PosterVault/internal/models"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(database))
	return database.DB
}

func TestJobEnqueueDedupesPending(t *testing.T) {
	jobs := NewJobRepository(newTestDB(t))

	inserted, err := jobs.Enqueue("radarr_refresh", "radarr/movie/1", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = jobs.Enqueue("radarr_refresh", "radarr/movie/1", []byte(`{}`))
	require.NoError(t, err)
	assert.False(t, inserted)

	// Once claimed, the same key can queue again.
	job, err := jobs.NextPending()
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, models.JobRunning, job.Status)

	inserted, err = jobs.Enqueue("radarr_refresh", "radarr/movie/1", []byte(`{}`))
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestJobLifecycle(t *testing.T) {
	jobs := NewJobRepository(newTestDB(t))

	_, err := jobs.Enqueue("sonarr_refresh", "sonarr/series/5", nil)
	require.NoError(t, err)

	job, err := jobs.NextPending()
	require.NoError(t, err)
	require.NotNil(t, job)

	require.NoError(t, jobs.MarkFailed(job.ID, "upstream unreachable"))

	recent, err := jobs.ListRecent(10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.JobFailed, recent[0].Status)
	require.NotNil(t, recent[0].Error)
	assert.Equal(t, "upstream unreachable", *recent[0].Error)

	// Queue is empty now.
	job, err = jobs.NextPending()
	require.NoError(t, err)
	assert.Nil(t, job)

	pruned, err := jobs.PruneFinished(time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)
}

func TestJobResetRunningRequeues(t *testing.T) {
	jobs := NewJobRepository(newTestDB(t))

	_, err := jobs.Enqueue("radarr_refresh", "radarr/movie/9", nil)
	require.NoError(t, err)
	claimed, err := jobs.NextPending()
	require.NoError(t, err)
	require.NotNil(t, claimed)

	// The claimed job is invisible to the queue until reset.
	next, err := jobs.NextPending()
	require.NoError(t, err)
	assert.Nil(t, next)

	reset, err := jobs.ResetRunning()
	require.NoError(t, err)
	assert.EqualValues(t, 1, reset)

	next, err = jobs.NextPending()
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, claimed.ID, next.ID)
}

func TestPosterUpsertAndStalePrune(t *testing.T) {
	posters := NewPosterRepository(newTestDB(t))

	year := 2010
	row := &models.PosterRow{
		AssetType: models.AssetTypeMovie,
		Title:     "Inception",
		Year:      &year,
		File:      "/posters/Inception (2010).jpg",
		Reason:    "title equality",
	}
	require.NoError(t, posters.Upsert(row))

	// Same tuple refreshes in place.
	again := *row
	again.ID = row.ID
	again.LastIndexed = time.Time{}
	require.NoError(t, posters.Upsert(&again))

	rows, err := posters.ListByType(models.AssetTypeMovie)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	pruned, err := posters.DeleteStaleByType(models.AssetTypeMovie, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)
}

func TestPosterDeleteStaleScopedByType(t *testing.T) {
	posters := NewPosterRepository(newTestDB(t))

	old := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, posters.Upsert(&models.PosterRow{
		AssetType: models.AssetTypeMovie, Title: "Inception",
		File: "/posters/Inception.jpg", LastIndexed: old,
	}))
	require.NoError(t, posters.Upsert(&models.PosterRow{
		AssetType: models.AssetTypeSeries, Title: "Stranger Things",
		File: "/posters/Stranger Things.jpg", LastIndexed: old,
	}))

	pruned, err := posters.DeleteStaleByType(models.AssetTypeMovie, time.Now().UTC())
	require.NoError(t, err)
	assert.EqualValues(t, 1, pruned)

	// The series row stays: its scope was not pruned.
	rows, err := posters.ListByType(models.AssetTypeSeries)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestOrphanRecordIsIdempotentPerPath(t *testing.T) {
	orphans := NewOrphanRepository(newTestDB(t))

	require.NoError(t, orphans.Record(&models.OrphanRow{FilePath: "/p/a.jpg", Title: "A", Instance: "radarr"}))
	require.NoError(t, orphans.Record(&models.OrphanRow{FilePath: "/p/a.jpg", Title: "A", Instance: "radarr"}))

	rows, err := orphans.List()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, orphans.Delete(rows[0].ID))
	rows, err = orphans.List()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRunStateRoundTrip(t *testing.T) {
	runState := NewRunStateRepository(newTestDB(t))

	last, err := runState.LastRun("full")
	require.NoError(t, err)
	assert.True(t, last.IsZero())

	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	require.NoError(t, runState.MarkRun("full", at))

	last, err = runState.LastRun("full")
	require.NoError(t, err)
	assert.Equal(t, at, last.UTC())

	// Second mark overwrites.
	require.NoError(t, runState.MarkRun("full", at.Add(time.Hour)))
	last, err = runState.LastRun("full")
	require.NoError(t, err)
	assert.Equal(t, at.Add(time.Hour), last.UTC())
}

func TestSettingsRoundTrip(t *testing.T) {
	settings := NewSettingsRepository(newTestDB(t))

	_, ok, err := settings.Get("schedule")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, settings.Set("schedule", "@hourly"))
	require.NoError(t, settings.Set("schedule", "@daily"))

	v, ok, err := settings.Get("schedule")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "@daily", v)

	all, err := settings.All()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"schedule": "@daily"}, all)

	require.NoError(t, settings.Delete("schedule"))
	_, ok, err = settings.Get("schedule")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMediaCacheCountMatched(t *testing.T) {
	media := NewMediaCacheRepository(newTestDB(t))

	key := models.MediaKey{Type: models.AssetTypeMovie, Title: "Inception", Instance: "radarr"}
	_, err := media.Upsert(&models.MediaCacheRow{Key: key})
	require.NoError(t, err)
	key2 := key
	key2.Title = "Interstellar"
	_, err = media.Upsert(&models.MediaCacheRow{Key: key2})
	require.NoError(t, err)

	require.NoError(t, media.SetMatched(key, "/posters/Inception.jpg"))

	matched, total, err := media.CountMatched("radarr", models.AssetTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, 1, matched)
	assert.Equal(t, 2, total)
}

func TestPlexSnapshotReplace(t *testing.T) {
	plex := NewPlexRepository(newTestDB(t))

	first := []*models.PlexItemRow{
		{RatingKey: "1", Title: "Inception", Type: models.AssetTypeMovie},
		{RatingKey: "2", Title: "Interstellar", Type: models.AssetTypeMovie},
	}
	require.NoError(t, plex.ReplaceLibrary("plex", "Movies", first))

	second := []*models.PlexItemRow{
		{RatingKey: "2", Title: "Interstellar", Type: models.AssetTypeMovie},
	}
	require.NoError(t, plex.ReplaceLibrary("plex", "Movies", second))

	rows, err := plex.ListLibrary("plex", "Movies")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "2", rows[0].RatingKey)
}
