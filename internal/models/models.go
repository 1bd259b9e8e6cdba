package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// ──────────────────── Enums ────────────────────

type AssetType string

const (
	AssetTypeMovie      AssetType = "movie"
	AssetTypeSeries     AssetType = "series"
	AssetTypeCollection AssetType = "collection"
)

// ──────────────────── Provider Identifiers ────────────────────

// ProviderIDs carries the three external identifier namespaces a poster or
// library record may expose. Any of them may be absent.
type ProviderIDs struct {
	TMDBID *int    `json:"tmdb_id,omitempty"`
	TVDBID *int    `json:"tvdb_id,omitempty"`
	IMDBID *string `json:"imdb_id,omitempty"` // "tt"-prefixed
}

// HasAny reports whether at least one namespace carries a usable value:
// a positive numeric ID, or a "tt"-prefixed IMDB ID.
func (p ProviderIDs) HasAny() bool {
	if p.TMDBID != nil && *p.TMDBID > 0 {
		return true
	}
	if p.TVDBID != nil && *p.TVDBID > 0 {
		return true
	}
	if p.IMDBID != nil && len(*p.IMDBID) > 2 && (*p.IMDBID)[:2] == "tt" {
		return true
	}
	return false
}

// ──────────────────── Asset ────────────────────

// AssetFile is one image file belonging to an asset. Season is set only for
// series posters that carry a season marker (0 = specials); the main series
// poster has a nil Season and always sorts last.
type AssetFile struct {
	Path   string `json:"path"`
	Season *int   `json:"season,omitempty"`
}

// Asset is a poster artifact (or per-season set of them) discovered on disk,
// grouped under one logical title. Assets are rebuilt on every scan pass and
// mutated in place only while a merge is running.
type Asset struct {
	Type                      AssetType   `json:"type"`
	Title                     string      `json:"title"`
	Year                      *int        `json:"year,omitempty"`
	NormalizedTitle           string      `json:"normalized_title"`
	AlternateTitles           []string    `json:"alternate_titles,omitempty"`            // collections only
	NormalizedAlternateTitles []string    `json:"normalized_alternate_titles,omitempty"` // collections only
	Files                     []AssetFile `json:"files"`
	SeasonNumbers             []int       `json:"season_numbers,omitempty"` // series only, sorted ascending
	Folder                    string      `json:"folder"`                   // source directory the asset was scanned from
	MediaFolder               string      `json:"media_folder,omitempty"`   // subfolder name in nested layouts
	IDs                       ProviderIDs `json:"ids"`
}

// ResortSeasons reorders Files by season number ascending with the main
// (season-less) poster last, and rebuilds SeasonNumbers from the surviving
// files so the two can never disagree.
func (a *Asset) ResortSeasons() {
	sort.SliceStable(a.Files, func(i, j int) bool {
		fi, fj := a.Files[i], a.Files[j]
		switch {
		case fi.Season == nil:
			return false
		case fj.Season == nil:
			return true
		default:
			return *fi.Season < *fj.Season
		}
	})

	seen := make(map[int]bool)
	a.SeasonNumbers = a.SeasonNumbers[:0]
	for _, f := range a.Files {
		if f.Season != nil && !seen[*f.Season] {
			seen[*f.Season] = true
			a.SeasonNumbers = append(a.SeasonNumbers, *f.Season)
		}
	}
	sort.Ints(a.SeasonNumbers)
	if len(a.SeasonNumbers) == 0 {
		a.SeasonNumbers = nil
	}
}

// FilePaths returns the asset's file paths in stored order.
func (a *Asset) FilePaths() []string {
	paths := make([]string, 0, len(a.Files))
	for _, f := range a.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// ──────────────────── Media Record ────────────────────

// MediaSeason is one season of a series as the media manager reports it.
type MediaSeason struct {
	Number    int  `json:"number"`
	Monitored bool `json:"monitored"`
}

// MediaRecord is a library entry obtained from Radarr, Sonarr, or Plex.
// It is read-only input to the matching engine; every field except Type,
// Title, and InstanceName may be absent.
type MediaRecord struct {
	Type            AssetType     `json:"type"`
	Title           string        `json:"title"`
	OriginalTitle   string        `json:"original_title,omitempty"`
	AlternateTitles []string      `json:"alternate_titles,omitempty"`
	NormalizedTitle string        `json:"normalized_title"`
	Year            *int          `json:"year,omitempty"`
	SecondaryYear   *int          `json:"secondary_year,omitempty"`
	Folder          string        `json:"folder,omitempty"` // on-disk path the manager reports
	RootFolder      string        `json:"root_folder,omitempty"`
	LibraryName     string        `json:"library_name,omitempty"` // collections only
	InstanceName    string        `json:"instance_name"`
	IDs             ProviderIDs   `json:"ids"`
	Monitored       bool          `json:"monitored"`
	Seasons         []MediaSeason `json:"seasons,omitempty"` // series only
	Tags            []string      `json:"tags,omitempty"`
}

// MonitoredSeasonSet returns the season numbers the manager currently monitors.
func (m *MediaRecord) MonitoredSeasonSet() map[int]bool {
	set := make(map[int]bool, len(m.Seasons))
	for _, s := range m.Seasons {
		if s.Monitored {
			set[s.Number] = true
		}
	}
	return set
}

// ──────────────────── Canonical Cache Keys ────────────────────

// MediaKey is the canonical tuple identifying one media cache row. Nil fields
// compare like SQL NULL under IS-style equality: nil equals nil, nil never
// equals a value.
type MediaKey struct {
	Type     AssetType
	Title    string
	Year     *int
	TMDBID   *int
	TVDBID   *int
	IMDBID   *string
	Season   *int
	Instance string
}

// CollectionKey is the canonical tuple identifying one collection cache row.
type CollectionKey struct {
	Title    string
	Year     *int
	TMDBID   *int
	TVDBID   *int
	IMDBID   *string
	Library  string
	Instance string
}

// FlatMediaKey is MediaKey with nil fields flattened into explicit presence
// flags, usable as a map key during reconciliation.
type FlatMediaKey struct {
	Type                         AssetType
	Title                        string
	Year, TMDBID, TVDBID, Season int
	HasYear, HasTMDB, HasTVDB    bool
	HasSeason, HasIMDB           bool
	IMDBID                       string
	Instance                     string
}

// FlatCollectionKey is the comparable form of CollectionKey.
type FlatCollectionKey struct {
	Title                     string
	Year, TMDBID, TVDBID      int
	HasYear, HasTMDB, HasTVDB bool
	IMDBID                    string
	HasIMDB                   bool
	Library, Instance         string
}

// Flatten converts the key into a comparable value, preserving the
// NULL-vs-value distinction of every component.
func (k MediaKey) Flatten() FlatMediaKey {
	f := FlatMediaKey{Type: k.Type, Title: k.Title, Instance: k.Instance}
	f.Year, f.HasYear = deref(k.Year)
	f.TMDBID, f.HasTMDB = deref(k.TMDBID)
	f.TVDBID, f.HasTVDB = deref(k.TVDBID)
	f.Season, f.HasSeason = deref(k.Season)
	if k.IMDBID != nil {
		f.IMDBID, f.HasIMDB = *k.IMDBID, true
	}
	return f
}

// Flatten converts the key into a comparable value with explicit presence flags.
func (k CollectionKey) Flatten() FlatCollectionKey {
	f := FlatCollectionKey{Title: k.Title, Library: k.Library, Instance: k.Instance}
	f.Year, f.HasYear = deref(k.Year)
	f.TMDBID, f.HasTMDB = deref(k.TMDBID)
	f.TVDBID, f.HasTVDB = deref(k.TVDBID)
	if k.IMDBID != nil {
		f.IMDBID, f.HasIMDB = *k.IMDBID, true
	}
	return f
}

func deref(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// ──────────────────── Cache Rows ────────────────────

// MediaCacheRow is the persisted last-known state of one media item.
type MediaCacheRow struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Key          MediaKey  `json:"key"`
	Folder       *string   `json:"folder,omitempty" db:"folder"`
	RootFolder   *string   `json:"root_folder,omitempty" db:"root_folder"`
	Monitored    bool      `json:"monitored" db:"monitored"`
	Tags         *string   `json:"tags,omitempty" db:"tags"`
	Matched      bool      `json:"matched" db:"matched"`
	OriginalFile *string   `json:"original_file,omitempty" db:"original_file"`
	RenamedFile  *string   `json:"renamed_file,omitempty" db:"renamed_file"`
	ContentHash  *string   `json:"content_hash,omitempty" db:"content_hash"`
	LastIndexed  time.Time `json:"last_indexed" db:"last_indexed"`
}

// CollectionCacheRow is the persisted last-known state of one collection.
type CollectionCacheRow struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	Key          CollectionKey `json:"key"`
	Folder       *string       `json:"folder,omitempty" db:"folder"`
	Matched      bool          `json:"matched" db:"matched"`
	OriginalFile *string       `json:"original_file,omitempty" db:"original_file"`
	RenamedFile  *string       `json:"renamed_file,omitempty" db:"renamed_file"`
	ContentHash  *string       `json:"content_hash,omitempty" db:"content_hash"`
	LastIndexed  time.Time     `json:"last_indexed" db:"last_indexed"`
}

// PosterRow is one flattened entry of the poster index: a matched asset file
// projected onto the title/identifier/season tuple it resolved to.
type PosterRow struct {
	ID          uuid.UUID `json:"id" db:"id"`
	AssetType   AssetType `json:"asset_type" db:"asset_type"`
	Title       string    `json:"title" db:"title"`
	Year        *int      `json:"year,omitempty" db:"year"`
	TMDBID      *int      `json:"tmdb_id,omitempty" db:"tmdb_id"`
	TVDBID      *int      `json:"tvdb_id,omitempty" db:"tvdb_id"`
	IMDBID      *string   `json:"imdb_id,omitempty" db:"imdb_id"`
	Season      *int      `json:"season,omitempty" db:"season_number"`
	File        string    `json:"file" db:"file"`
	Reason      string    `json:"reason" db:"reason"`
	LastIndexed time.Time `json:"last_indexed" db:"last_indexed"`
}

// OrphanRow records an output file whose source record disappeared upstream.
type OrphanRow struct {
	ID           uuid.UUID `json:"id" db:"id"`
	FilePath     string    `json:"file_path" db:"file_path"`
	Title        string    `json:"title" db:"title"`
	Instance     string    `json:"instance" db:"instance_name"`
	DateOrphaned time.Time `json:"date_orphaned" db:"date_orphaned"`
}

// PlexItemRow is one entry of the Plex library snapshot cache.
type PlexItemRow struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Instance    string    `json:"instance" db:"instance_name"`
	LibraryName string    `json:"library_name" db:"library_name"`
	RatingKey   string    `json:"rating_key" db:"rating_key"`
	Title       string    `json:"title" db:"title"`
	Year        *int      `json:"year,omitempty" db:"year"`
	Type        AssetType `json:"type" db:"asset_type"`
	LastIndexed time.Time `json:"last_indexed" db:"last_indexed"`
}

// ──────────────────── Jobs ────────────────────

type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// Job is one queued unit of work (typically an upsert pushed by the webhook
// endpoint). UniqueKey deduplicates pending jobs for the same target.
type Job struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Type      string    `json:"type" db:"job_type"`
	UniqueKey string    `json:"unique_key" db:"unique_key"`
	Payload   []byte    `json:"payload" db:"payload"`
	Status    JobStatus `json:"status" db:"status"`
	Error     *string   `json:"error,omitempty" db:"error"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ──────────────────── Run Results ────────────────────

// RunResult aggregates the outcome of one workflow pass.
type RunResult struct {
	AssetsScanned int       `json:"assets_scanned"`
	Matched       int       `json:"matched"`
	Unmatched     int       `json:"unmatched"`
	Orphaned      int       `json:"orphaned"`
	Errors        []string  `json:"errors,omitempty"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
}

// SyncResult aggregates one reconciliation pass over a single scope.
type SyncResult struct {
	Scope    string `json:"scope"`
	Skipped  bool   `json:"skipped"` // scope inside the staleness window
	Inserted int    `json:"inserted"`
	Updated  int    `json:"updated"`
	Deleted  int    `json:"deleted"`
	Orphaned int    `json:"orphaned"`
}
