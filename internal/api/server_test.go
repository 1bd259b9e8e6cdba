package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinTDCT/PosterVault/internal/config"
	"github.com/JustinTDCT/PosterVault/internal/db"
	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/repository"
	"github.com/JustinTDCT/PosterVault/internal/webhook"
)

type testServer struct {
	srv       *Server
	plexItems *repository.PlexRepository
	settings  *repository.SettingsRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(database))

	jobs := repository.NewJobRepository(database.DB)
	plexItems := repository.NewPlexRepository(database.DB)
	settings := repository.NewSettingsRepository(database.DB)
	srv := NewServer(&config.Config{},
		repository.NewMediaCacheRepository(database.DB),
		repository.NewCollectionCacheRepository(database.DB),
		repository.NewPosterRepository(database.DB),
		repository.NewOrphanRepository(database.DB),
		plexItems, jobs,
		repository.NewRunStateRepository(database.DB),
		settings,
		webhook.NewHandler("", jobs, nil),
	)
	return &testServer{srv: srv, plexItems: plexItems, settings: settings}
}

func (ts *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	ts.srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestSettingRoundTripOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/v1/settings", `{"staleness_hours":"24"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/settings/staleness_hours", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"value":"24"`)

	rec = ts.do(t, http.MethodDelete, "/api/v1/settings/staleness_hours", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/settings/staleness_hours", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlexSnapshotEndpoint(t *testing.T) {
	ts := newTestServer(t)

	year := 2010
	require.NoError(t, ts.plexItems.ReplaceLibrary("plex1", "Movies", []*models.PlexItemRow{
		{RatingKey: "101", Title: "Inception", Year: &year, Type: models.AssetTypeMovie},
	}))

	rec := ts.do(t, http.MethodGet, "/api/v1/plex/plex1/Movies", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Inception"`)

	rec = ts.do(t, http.MethodGet, "/api/v1/plex/plex1/Shows", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPostersRejectsUnknownType(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/posters?type=album", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TYPE")
}

func TestUpdateSettingsRejectsBadBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/v1/settings", `{"a":"1"} trailing`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
