package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cast"
)

// SourceDir is one asset directory. Scans run in ascending Priority order so
// files from higher-priority directories replace earlier ones during merge.
type SourceDir struct {
	Path     string `toml:"path"`
	Priority int    `toml:"priority"`
}

// Instance is one upstream Radarr, Sonarr or Plex endpoint.
type Instance struct {
	Name   string `toml:"name"`
	URL    string `toml:"url"`
	APIKey string `toml:"api_key"`
	Token  string `toml:"token"` // Plex only
}

type Config struct {
	Port        int    `toml:"port"`
	DatabaseURL string `toml:"database_url"`
	DataDir     string `toml:"data_dir"`

	Sources []SourceDir `toml:"sources"`

	Radarr []Instance `toml:"radarr"`
	Sonarr []Instance `toml:"sonarr"`
	Plex   []Instance `toml:"plex"`

	StalenessHours int    `toml:"staleness_hours"`
	Schedule       string `toml:"schedule"` // cron expression, empty disables
	WebhookToken   string `toml:"webhook_token"`
	WatchSources   bool   `toml:"watch_sources"`
}

// Load reads the TOML config file when path is non-empty, then applies
// environment overrides on top.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Port:           8585,
		DatabaseURL:    "postervault.db",
		DataDir:        "/data",
		StalenessHours: 12,
	}

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.Port = envInt("PORT", cfg.Port)
	cfg.DatabaseURL = env("DATABASE_URL", cfg.DatabaseURL)
	cfg.DataDir = env("DATA_DIR", cfg.DataDir)
	cfg.StalenessHours = envInt("STALENESS_HOURS", cfg.StalenessHours)
	cfg.Schedule = env("SCHEDULE", cfg.Schedule)
	cfg.WebhookToken = env("WEBHOOK_TOKEN", cfg.WebhookToken)
	if v := os.Getenv("WATCH_SOURCES"); v != "" {
		cfg.WatchSources = cast.ToBool(v)
	}
	if v := os.Getenv("SOURCE_DIRS"); v != "" {
		cfg.Sources = nil
		for i, p := range strings.Split(v, ",") {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.Sources = append(cfg.Sources, SourceDir{Path: p, Priority: i})
			}
		}
	}

	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("no source directories configured")
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if s.Path == "" {
			return fmt.Errorf("source directory with empty path")
		}
		if seen[s.Path] {
			return fmt.Errorf("duplicate source directory %q", s.Path)
		}
		seen[s.Path] = true
	}
	return nil
}

// StalenessWindow converts the configured hours into a duration.
func (c *Config) StalenessWindow() time.Duration {
	return time.Duration(c.StalenessHours) * time.Hour
}

// MergeFromDB overlays values from the settings table. Absent keys leave the
// file/env values untouched.
func (c *Config) MergeFromDB(db *sql.DB) {
	rows, err := db.Query("SELECT key, value FROM settings")
	if err != nil {
		log.Printf("config: skipping DB merge: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			continue
		}
		switch key {
		case "staleness_hours":
			if v := cast.ToInt(value); v > 0 {
				c.StalenessHours = v
			}
		case "schedule":
			c.Schedule = value
		case "webhook_token":
			c.WebhookToken = value
		case "watch_sources":
			c.WatchSources = cast.ToBool(value)
		}
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
