package matcher

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

// Result is the outcome of one match decision. Reason identifies the rule
// that fired, for logging only; callers must not depend on its exact text.
type Result struct {
	Matched bool
	Reason  string
}

// IsMatch decides whether an on-disk asset corresponds to a library record.
//
// When both sides expose at least one valid external identifier the decision
// is made exclusively by identifier equality (TMDB, then TVDB, then IMDB);
// title and year heuristics are never consulted in that case. Otherwise an
// ordered sequence of title comparisons runs, each additionally gated on
// year agreement, and the first rule that holds wins.
func IsMatch(a *models.Asset, m *models.MediaRecord) Result {
	folderTitle, folderYear := mediaFolderTitle(m)

	if a.IDs.HasAny() && m.IDs.HasAny() {
		return matchByIDs(a.IDs, m.IDs)
	}

	rule, reason := firstTitleRule(a, m, folderTitle)
	if rule < 0 {
		return Result{Matched: false, Reason: "no title rule matched"}
	}
	if !yearMatches(a, m, folderYear) {
		return Result{Matched: false, Reason: fmt.Sprintf("year mismatch (%s)", reason)}
	}
	return Result{Matched: true, Reason: reason}
}

// mediaFolderTitle parses a trailing "Title (YYYY)" convention out of the
// media record's folder basename. The result is only an extra candidate for
// title and year agreement, never authoritative.
func mediaFolderTitle(m *models.MediaRecord) (string, *int) {
	if m.Folder == "" {
		return "", nil
	}
	return titles.ParseFolderName(filepath.Base(m.Folder))
}

// matchByIDs compares the three namespaces in fixed priority order.
func matchByIDs(a, m models.ProviderIDs) Result {
	if a.TMDBID != nil && m.TMDBID != nil && *a.TMDBID > 0 && *a.TMDBID == *m.TMDBID {
		return Result{Matched: true, Reason: fmt.Sprintf("tmdb id %d", *a.TMDBID)}
	}
	if a.TVDBID != nil && m.TVDBID != nil && *a.TVDBID > 0 && *a.TVDBID == *m.TVDBID {
		return Result{Matched: true, Reason: fmt.Sprintf("tvdb id %d", *a.TVDBID)}
	}
	if a.IMDBID != nil && m.IMDBID != nil && strings.EqualFold(*a.IMDBID, *m.IMDBID) {
		return Result{Matched: true, Reason: fmt.Sprintf("imdb id %s", *a.IMDBID)}
	}
	return Result{Matched: false, Reason: "identifier mismatch"}
}

// firstTitleRule evaluates the ordered title rules and returns the index and
// reason of the first one that holds, or -1.
func firstTitleRule(a *models.Asset, m *models.MediaRecord, folderTitle string) (int, string) {
	an := a.NormalizedTitle
	if an == "" {
		an = titles.Normalize(a.Title)
	}
	mn := m.NormalizedTitle
	if mn == "" {
		mn = titles.Normalize(m.Title)
	}

	switch {
	case a.Title != "" && a.Title == m.Title:
		return 0, "title equality"
	case containsString(m.AlternateTitles, a.Title) || containsString(a.AlternateTitles, m.Title):
		return 1, "alternate title"
	case folderTitle != "" && a.Title == folderTitle:
		return 2, "folder title equality"
	case m.OriginalTitle != "" && a.Title == m.OriginalTitle:
		return 3, "original title equality"
	case normalizedEqual(a, an, mn, m, folderTitle):
		return 4, "normalized title equality"
	case looseEqual(a.Title, m.Title) || looseEqual(an, mn):
		return 5, "loose title comparison"
	}
	return -1, ""
}

func normalizedEqual(a *models.Asset, an, mn string, m *models.MediaRecord, folderTitle string) bool {
	if an == "" {
		return false
	}
	if an == mn {
		return true
	}
	if folderTitle != "" && an == titles.Normalize(folderTitle) {
		return true
	}
	for _, alt := range m.AlternateTitles {
		if an == titles.Normalize(alt) {
			return true
		}
	}
	return containsString(a.NormalizedAlternateTitles, mn)
}

// looseEqual strips all non-alphanumerics case-insensitively before comparing.
func looseEqual(x, y string) bool {
	sx, sy := titles.StripNonAlnum(x), titles.StripNonAlnum(y)
	return sx != "" && sx == sy
}

// yearMatches holds when the asset carries no year and none of the media's
// year fields do either, or when the asset year equals any non-nil media
// year (primary, secondary, or folder-derived).
func yearMatches(a *models.Asset, m *models.MediaRecord, folderYear *int) bool {
	if a.Year == nil {
		return m.Year == nil && m.SecondaryYear == nil && folderYear == nil
	}
	for _, y := range []*int{m.Year, m.SecondaryYear, folderYear} {
		if y != nil && *y == *a.Year {
			return true
		}
	}
	return false
}

// HandleSeriesMatch prunes asset files and season numbers not covered by the
// media record's currently monitored seasons, in place, so the asset's
// apparent season coverage stays aligned with what the library has. The main
// season-less poster is always kept.
func HandleSeriesMatch(a *models.Asset, m *models.MediaRecord) {
	if a.Type != models.AssetTypeSeries || m.Type != models.AssetTypeSeries {
		return
	}
	monitored := m.MonitoredSeasonSet()

	kept := a.Files[:0]
	for _, f := range a.Files {
		if f.Season == nil || monitored[*f.Season] {
			kept = append(kept, f)
		}
	}
	a.Files = kept
	a.ResortSeasons()
}

func containsString(list []string, s string) bool {
	if s == "" {
		return false
	}
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
