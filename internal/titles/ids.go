package titles

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/JustinTDCT/PosterVault/internal/models"
)

// ──────────────────── Compiled Regex (init once) ────────────────────

// Year markers: "(2020)" anywhere in the text.
var yearMarkerRx = regexp.MustCompile(`\(([12]\d{3})\)`)

// Inline provider IDs, Radarr/Sonarr/Kometa conventions:
// "tmdb-12345", "tvdb_12345", "imdb tt1234567" (case-insensitive).
var (
	tmdbIDRx = regexp.MustCompile(`(?i)tmdb[-_ ](\d+)`)
	tvdbIDRx = regexp.MustCompile(`(?i)tvdb[-_ ](\d+)`)
	imdbIDRx = regexp.MustCompile(`(?i)imdb[-_ ](tt\d+)`)
)

var collectionWordRx = regexp.MustCompile(`(?i)\bcollection\b`)

// ExtractYear returns the first "(YYYY)"-style year in the text, skipping a
// year that is later followed by the word "Collection": a collection named
// "Alien (1979) Collection" has no release year of its own. Returns nil when
// no year marker survives. Never fails.
func ExtractYear(text string) *int {
	for _, loc := range yearMarkerRx.FindAllStringSubmatchIndex(text, -1) {
		if collectionWordRx.MatchString(text[loc[1]:]) {
			continue
		}
		y, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || y < 1900 || y > 2100 {
			continue
		}
		return &y
	}
	return nil
}

// ExtractIDs scans text for the three provider ID conventions. Absent
// patterns leave the corresponding field nil. Never fails.
func ExtractIDs(text string) models.ProviderIDs {
	var ids models.ProviderIDs
	if m := tmdbIDRx.FindStringSubmatch(text); len(m) >= 2 {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			ids.TMDBID = &v
		}
	}
	if m := tvdbIDRx.FindStringSubmatch(text); len(m) >= 2 {
		if v, err := strconv.Atoi(m[1]); err == nil && v > 0 {
			ids.TVDBID = &v
		}
	}
	if m := imdbIDRx.FindStringSubmatch(text); len(m) >= 2 {
		id := strings.ToLower(m[1])
		ids.IMDBID = &id
	}
	return ids
}

// ParseFolderName extracts a clean title and year from a "Title (Year)"
// style folder basename. Returns an empty title when the name carries no
// year convention worth splitting on.
func ParseFolderName(folderName string) (title string, year *int) {
	if folderName == "" || folderName == "." || folderName == string(filepath.Separator) {
		return "", nil
	}

	name := folderName
	if m := yearMarkerRx.FindStringSubmatchIndex(folderName); m != nil {
		y, err := strconv.Atoi(folderName[m[2]:m[3]])
		if err == nil && y >= 1900 && y <= 2100 {
			year = &y
			if m[0] > 0 {
				name = folderName[:m[0]]
			}
		}
	}

	name = strings.TrimRight(name, " -–._")
	return collapseSpaces(name), year
}
