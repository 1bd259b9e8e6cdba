package matcher

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/search"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

// MergeAssets combines per-directory scan results into one deduplicated
// asset set. Scans must be supplied in ascending priority order: when two
// directories hold a file that normalizes to the same filename for the same
// title, the file from the later directory survives. The supplied index is
// populated as assets are accepted and reused for duplicate lookup.
func MergeAssets(scans [][]*models.Asset, ix *search.Index) []*models.Asset {
	var merged []*models.Asset

	for _, assets := range scans {
		for _, incoming := range assets {
			existing := findExisting(ix, incoming)
			if existing == nil {
				merged = append(merged, incoming)
				ix.Add(incoming)
				continue
			}
			mergeInto(existing, incoming)
		}
	}
	return merged
}

// findExisting searches the index for an already-merged asset of the same
// type that the matching engine accepts as the same title.
func findExisting(ix *search.Index, incoming *models.Asset) *models.Asset {
	for _, candidate := range ix.Search(incoming.Title, incoming.Type) {
		if candidate == incoming {
			continue
		}
		if res := IsMatch(incoming, assetView(candidate)); res.Matched {
			return candidate
		}
	}
	return nil
}

// assetView projects an asset into the record shape IsMatch expects, so the
// same rule set decides cross-directory deduplication.
func assetView(a *models.Asset) *models.MediaRecord {
	return &models.MediaRecord{
		Type:            a.Type,
		Title:           a.Title,
		AlternateTitles: a.AlternateTitles,
		NormalizedTitle: a.NormalizedTitle,
		Year:            a.Year,
		IDs:             a.IDs,
	}
}

// mergeInto folds the incoming asset's files into the existing one. A new
// file replaces the existing file whose season tag and normalized filename
// both match (last-writer-wins at file granularity); otherwise it is
// appended. Season number sets are unioned for series, and identifier
// namespaces the existing asset lacks are filled from the incoming side.
func mergeInto(existing, incoming *models.Asset) {
	for _, nf := range incoming.Files {
		newNorm := normalizeFilename(nf.Path)
		replaced := false
		for i, of := range existing.Files {
			if !sameSeason(of.Season, nf.Season) {
				continue
			}
			if filenameMatches(existing, of.Path, newNorm) {
				existing.Files[i] = nf
				replaced = true
				break
			}
		}
		if !replaced {
			existing.Files = append(existing.Files, nf)
		}
	}

	if existing.Type == models.AssetTypeSeries {
		existing.ResortSeasons()
	}
	fillMissingIDs(&existing.IDs, incoming.IDs)

	log.Printf("Merge: %q (%s) absorbed %d file(s) from %s",
		existing.Title, existing.Type, len(incoming.Files), incoming.Folder)
}

// filenameMatches compares an existing file against the incoming normalized
// filename. For collections the existing filename's generated title variants
// count as matches too, so "Alien Collection.jpg" and "Alien.jpg" collide.
func filenameMatches(a *models.Asset, existingPath, newNorm string) bool {
	base := fileBase(existingPath)
	if titles.Normalize(base) == newNorm {
		return true
	}
	if a.Type != models.AssetTypeCollection {
		return false
	}
	for _, norm := range titles.GenerateVariants(base).NormalizedAlternateTitles {
		if norm == newNorm {
			return true
		}
	}
	return false
}

// sameSeason reports whether two season tags name the same slot. Nested
// layouts call every season image "poster.jpg", so the filename alone cannot
// tell Season 01 from Season 02.
func sameSeason(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fillMissingIDs(dst *models.ProviderIDs, src models.ProviderIDs) {
	if dst.TMDBID == nil {
		dst.TMDBID = src.TMDBID
	}
	if dst.TVDBID == nil {
		dst.TVDBID = src.TVDBID
	}
	if dst.IMDBID == nil {
		dst.IMDBID = src.IMDBID
	}
}

func normalizeFilename(path string) string {
	return titles.Normalize(fileBase(path))
}

func fileBase(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
