package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `port = 9090
database_url = "/data/pv.db"
staleness_hours = 6
schedule = "0 3 * * *"
webhook_token = "hunter2"
watch_sources = true

[[sources]]
path = "/posters/base"
priority = 0

[[sources]]
path = "/posters/overrides"
priority = 1

[[radarr]]
name = "radarr"
url = "http://radarr:7878"
api_key = "abc"

[[plex]]
name = "plex"
url = "http://plex:32400"
token = "xyz"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromTOML(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/data/pv.db", cfg.DatabaseURL)
	assert.Equal(t, 6*time.Hour, cfg.StalenessWindow())
	assert.Equal(t, "0 3 * * *", cfg.Schedule)
	assert.True(t, cfg.WatchSources)

	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "/posters/base", cfg.Sources[0].Path)
	require.Len(t, cfg.Radarr, 1)
	assert.Equal(t, "radarr", cfg.Radarr[0].Name)
	require.Len(t, cfg.Plex, 1)
	assert.Equal(t, "xyz", cfg.Plex[0].Token)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("STALENESS_HOURS", "24")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.StalenessWindow())
}

func TestSourceDirsFromEnv(t *testing.T) {
	t.Setenv("SOURCE_DIRS", "/a, /b")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Len(t, cfg.Sources, 2)
	assert.Equal(t, "/a", cfg.Sources[0].Path)
	assert.Equal(t, 0, cfg.Sources[0].Priority)
	assert.Equal(t, "/b", cfg.Sources[1].Path)
	assert.Equal(t, 1, cfg.Sources[1].Priority)
}

func TestLoadRejectsEmptySources(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source directories")
}

func TestLoadRejectsDuplicateSources(t *testing.T) {
	content := `[[sources]]
path = "/a"

[[sources]]
path = "/a"
`
	_, err := Load(writeConfig(t, content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate source directory")
}
