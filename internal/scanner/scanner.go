package scanner

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

// Recognized poster image extensions.
var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".webp": true, ".bmp": true, ".tiff": true, ".tif": true,
}

// Inline provider ID markers are stripped from display titles after
// extraction: "Alien (1979) {tmdb-348}" → "Alien (1979)".
var idMarkerRx = regexp.MustCompile(`(?i)[\[{]?(?:tmdb|tvdb|imdb)[-_ ](?:tt)?\d+[\]}]?`)

var trailingYearMarkerRx = regexp.MustCompile(`\s*\([12]\d{3}\)\s*$`)

// Scan walks one source directory and groups its image files into candidate
// asset records. Layout is decided first: nested (subfolders present, one
// group per subfolder) or flat (files grouped by season-stripped base name).
// A group that fails to parse is logged and skipped; the scan always
// continues with the remaining groups.
func Scan(sourceDir string) ([]*models.Asset, error) {
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}

	var dirs []os.DirEntry
	var files []os.DirEntry
	for _, e := range entries {
		if skipEntry(e.Name()) {
			continue
		}
		if e.IsDir() {
			dirs = append(dirs, e)
		} else if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e)
		}
	}

	var assets []*models.Asset
	if len(dirs) > 0 {
		for _, d := range dirs {
			asset, err := scanFolderGroup(sourceDir, d.Name())
			if err != nil {
				log.Printf("Scan: skipping folder %q: %v", d.Name(), err)
				continue
			}
			if asset != nil {
				assets = append(assets, asset)
			}
		}
		return assets, nil
	}

	return scanFlat(sourceDir, files), nil
}

// skipEntry filters hidden entries and the literal tmp directory.
func skipEntry(name string) bool {
	return strings.HasPrefix(name, ".") || name == "tmp"
}

// ──────────────────── Nested Layout ────────────────────

// scanFolderGroup builds one asset from a per-title subfolder, walking it
// recursively so "Show (2016)/Season 01/poster.jpg" contributes a
// season-tagged file.
func scanFolderGroup(sourceDir, folderName string) (*models.Asset, error) {
	root := filepath.Join(sourceDir, folderName)

	var files []models.AssetFile
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("Scan: unreadable entry under %q: %v", folderName, err)
			return nil
		}
		if info.IsDir() {
			if path != root && skipEntry(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if skipEntry(info.Name()) || !imageExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		base := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
		_, season := splitSeasonSuffix(base)
		if season == nil {
			// Season can also come from the parent directory name.
			season = seasonFromDir(filepath.Base(filepath.Dir(path)))
		}
		files = append(files, models.AssetFile{Path: path, Season: season})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	asset := buildAsset(folderName, files)
	asset.Folder = sourceDir
	asset.MediaFolder = folderName
	return asset, nil
}

// ──────────────────── Flat Layout ────────────────────

// scanFlat groups loose files by their season-stripped base name, so
// "Show - Season 1.jpg" and "Show - Season 2.jpg" collapse into one group.
func scanFlat(sourceDir string, entries []os.DirEntry) []*models.Asset {
	type group struct {
		name  string
		files []models.AssetFile
	}
	groups := make(map[string]*group)
	var order []string

	for _, e := range entries {
		base := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		groupName, season := splitSeasonSuffix(base)
		groupName = strings.TrimRight(groupName, " -–._")
		if groupName == "" {
			log.Printf("Scan: skipping file with empty base name: %q", e.Name())
			continue
		}

		key := titles.Normalize(groupName)
		g, ok := groups[key]
		if !ok {
			g = &group{name: groupName}
			groups[key] = g
			order = append(order, key)
		}
		g.files = append(g.files, models.AssetFile{
			Path:   filepath.Join(sourceDir, e.Name()),
			Season: season,
		})
	}

	var assets []*models.Asset
	for _, key := range order {
		g := groups[key]
		asset := buildAsset(g.name, g.files)
		asset.Folder = sourceDir
		assets = append(assets, asset)
	}
	return assets
}

// ──────────────────── Classification ────────────────────

// buildAsset classifies a grouped file set and fills in titles, identifiers,
// and season structure. Classification rule: no year means collection; a
// year plus a season-marked file or a TVDB ID means series; otherwise movie.
func buildAsset(rawName string, files []models.AssetFile) *models.Asset {
	year := titles.ExtractYear(rawName)
	ids := titles.ExtractIDs(rawName)
	title := cleanGroupTitle(rawName, year != nil)

	seasonFiles := 0
	for _, f := range files {
		if f.Season != nil {
			seasonFiles++
		}
	}

	asset := &models.Asset{
		Title: title,
		Year:  year,
		Files: files,
		IDs:   ids,
	}

	switch {
	case year == nil:
		asset.Type = models.AssetTypeCollection
		v := titles.GenerateVariants(title)
		asset.AlternateTitles = v.AlternateTitles
		asset.NormalizedAlternateTitles = v.NormalizedAlternateTitles
		// Season tags are meaningless on a collection.
		for i := range asset.Files {
			asset.Files[i].Season = nil
		}
	case seasonFiles > 0 || ids.TVDBID != nil:
		asset.Type = models.AssetTypeSeries
		asset.ResortSeasons()
	default:
		asset.Type = models.AssetTypeMovie
		for i := range asset.Files {
			asset.Files[i].Season = nil
		}
	}

	asset.NormalizedTitle = titles.Normalize(asset.Title)
	return asset
}

// cleanGroupTitle strips inline ID markers and, for dated titles, the year
// marker, leaving the display title.
func cleanGroupTitle(rawName string, hasYear bool) string {
	name := idMarkerRx.ReplaceAllString(rawName, " ")
	if hasYear {
		name = trailingYearMarkerRx.ReplaceAllString(name, "")
	}
	name = strings.TrimRight(name, " -–._")
	name = strings.Join(strings.Fields(name), " ")
	return name
}

// SortAssets orders assets by type then title, for stable report output.
func SortAssets(assets []*models.Asset) {
	sort.SliceStable(assets, func(i, j int) bool {
		if assets[i].Type != assets[j].Type {
			return assets[i].Type < assets[j].Type
		}
		return assets[i].Title < assets[j].Title
	})
}
