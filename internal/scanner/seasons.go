package scanner

import (
	"regexp"
	"strconv"
)

// ──────────────────── Season Conventions ────────────────────

// Filename suffixes: "Show - Season 1", "Show_Season01", "Show - Specials".
var (
	seasonSuffixRx   = regexp.MustCompile(`(?i)[\s._-]+Season[\s._]*(\d{1,3})\s*$`)
	specialsSuffixRx = regexp.MustCompile(`(?i)[\s._-]+Specials\s*$`)
)

// Directory names: "Season 1", "Season 01", "Specials".
var (
	seasonDirRx   = regexp.MustCompile(`(?i)^Season[\s._]*(\d{1,3})$`)
	specialsDirRx = regexp.MustCompile(`(?i)^Specials$`)
)

// splitSeasonSuffix strips a trailing season or specials marker from a file
// base name, returning the remaining base and the season number (0 for
// specials, nil when no marker is present).
func splitSeasonSuffix(base string) (string, *int) {
	if m := seasonSuffixRx.FindStringSubmatchIndex(base); m != nil {
		n, err := strconv.Atoi(base[m[2]:m[3]])
		if err == nil {
			return base[:m[0]], &n
		}
	}
	if m := specialsSuffixRx.FindStringIndex(base); m != nil {
		zero := 0
		return base[:m[0]], &zero
	}
	return base, nil
}

// seasonFromDir parses a "Season N" or "Specials" directory name.
func seasonFromDir(name string) *int {
	if m := seasonDirRx.FindStringSubmatch(name); len(m) >= 2 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n
		}
	}
	if specialsDirRx.MatchString(name) {
		zero := 0
		return &zero
	}
	return nil
}

