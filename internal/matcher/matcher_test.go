package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

func intp(v int) *int       { return &v }
func strp(v string) *string { return &v }

func movieAsset(title string, year *int) *models.Asset {
	return &models.Asset{
		Type:            models.AssetTypeMovie,
		Title:           title,
		Year:            year,
		NormalizedTitle: titles.Normalize(title),
		Files:           []models.AssetFile{{Path: title + ".jpg"}},
	}
}

func movieRecord(title string, year *int) *models.MediaRecord {
	return &models.MediaRecord{
		Type:            models.AssetTypeMovie,
		Title:           title,
		Year:            year,
		NormalizedTitle: titles.Normalize(title),
		InstanceName:    "radarr",
	}
}

func TestIDMatchOverridesYearMismatch(t *testing.T) {
	a := movieAsset("Inception", intp(2011))
	a.IDs.TMDBID = intp(27205)
	m := movieRecord("Inception", intp(2010))
	m.IDs.TMDBID = intp(27205)

	res := IsMatch(a, m)
	assert.True(t, res.Matched)
}

func TestIDGateIsExclusive(t *testing.T) {
	// Both sides carry identifiers that disagree; identical titles and
	// years must not rescue the match.
	a := movieAsset("Inception", intp(2010))
	a.IDs.TMDBID = intp(111)
	m := movieRecord("Inception", intp(2010))
	m.IDs.TMDBID = intp(222)

	res := IsMatch(a, m)
	assert.False(t, res.Matched)
}

func TestIDGateSkippedWhenOneSideBlank(t *testing.T) {
	// Only the record has an identifier, so title rules still apply.
	a := movieAsset("Inception", intp(2010))
	m := movieRecord("Inception", intp(2010))
	m.IDs.TMDBID = intp(27205)

	res := IsMatch(a, m)
	assert.True(t, res.Matched)
}

func TestIDPriorityOrder(t *testing.T) {
	a := movieAsset("Inception", intp(2010))
	a.IDs = models.ProviderIDs{TMDBID: intp(27205), IMDBID: strp("tt9999999")}
	m := movieRecord("Inception", intp(2010))
	m.IDs = models.ProviderIDs{TMDBID: intp(27205), IMDBID: strp("tt1375666")}

	// TMDB agreement wins before the IMDB disagreement is reached.
	res := IsMatch(a, m)
	assert.True(t, res.Matched)
}

func TestNonPositiveIDsDoNotMatch(t *testing.T) {
	a := movieAsset("Inception", intp(2010))
	a.IDs.TMDBID = intp(0)
	m := movieRecord("Inception", intp(2010))
	m.IDs.TMDBID = intp(27205)

	// A zero ID is not a usable identifier; title rules decide instead.
	res := IsMatch(a, m)
	assert.True(t, res.Matched)
}

func TestTitleMatchRequiresYearAgreement(t *testing.T) {
	res := IsMatch(movieAsset("Inception", intp(2011)), movieRecord("Inception", intp(2010)))
	assert.False(t, res.Matched)

	res = IsMatch(movieAsset("Inception", intp(2010)), movieRecord("Inception", intp(2010)))
	assert.True(t, res.Matched)
}

func TestSecondaryYearSatisfiesGate(t *testing.T) {
	m := movieRecord("Inception", intp(2010))
	m.SecondaryYear = intp(2011)

	res := IsMatch(movieAsset("Inception", intp(2011)), m)
	assert.True(t, res.Matched)
}

func TestNilYearsOnBothSidesMatch(t *testing.T) {
	res := IsMatch(movieAsset("Inception", nil), movieRecord("Inception", nil))
	assert.True(t, res.Matched)
}

func TestNilAssetYearRejectsYearedRecord(t *testing.T) {
	res := IsMatch(movieAsset("Inception", nil), movieRecord("Inception", intp(2010)))
	assert.False(t, res.Matched)
}

func TestAlternateTitleRule(t *testing.T) {
	a := movieAsset("Léon", intp(1994))
	m := movieRecord("Leon: The Professional", intp(1994))
	m.AlternateTitles = []string{"Léon"}

	res := IsMatch(a, m)
	assert.True(t, res.Matched)
}

func TestFolderTitleRule(t *testing.T) {
	a := movieAsset("The Professional", intp(1994))
	m := movieRecord("Leon", intp(1994))
	m.Folder = "/movies/The Professional (1994)"

	res := IsMatch(a, m)
	assert.True(t, res.Matched)
}

func TestLooseComparisonRule(t *testing.T) {
	res := IsMatch(movieAsset("Spider-Man: No Way Home", intp(2021)),
		movieRecord("Spider Man No Way Home", intp(2021)))
	assert.True(t, res.Matched)
}

func TestNoRuleMatches(t *testing.T) {
	res := IsMatch(movieAsset("Inception", intp(2010)), movieRecord("Interstellar", intp(2014)))
	assert.False(t, res.Matched)
}

func TestHandleSeriesMatchPrunesUnmonitoredSeasons(t *testing.T) {
	a := &models.Asset{
		Type:  models.AssetTypeSeries,
		Title: "Stranger Things",
		Files: []models.AssetFile{
			{Path: "Season01.jpg", Season: intp(1)},
			{Path: "Season02.jpg", Season: intp(2)},
			{Path: "Season03.jpg", Season: intp(3)},
			{Path: "Stranger Things.jpg"},
		},
		SeasonNumbers: []int{1, 2, 3},
	}
	m := &models.MediaRecord{
		Type:  models.AssetTypeSeries,
		Title: "Stranger Things",
		Seasons: []models.MediaSeason{
			{Number: 1, Monitored: true},
			{Number: 2, Monitored: false},
			{Number: 3, Monitored: true},
		},
	}

	HandleSeriesMatch(a, m)

	require.Len(t, a.Files, 3)
	assert.Equal(t, []int{1, 3}, a.SeasonNumbers)
	// Main poster stays and sorts last.
	assert.Nil(t, a.Files[2].Season)
}
