package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/search"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

func dirAsset(dir, title string, year *int, files ...string) *models.Asset {
	a := &models.Asset{
		Type:            models.AssetTypeMovie,
		Title:           title,
		Year:            year,
		NormalizedTitle: titles.Normalize(title),
		Folder:          dir,
	}
	for _, f := range files {
		a.Files = append(a.Files, models.AssetFile{Path: dir + "/" + f})
	}
	return a
}

func TestMergeLaterDirectoryWins(t *testing.T) {
	a1 := dirAsset("/dirA", "Inception", intp(2010), "Inception (2010).jpg")
	a2 := dirAsset("/dirB", "Inception", intp(2010), "Inception (2010).jpg")

	merged := MergeAssets([][]*models.Asset{{a1}, {a2}}, search.New())

	require.Len(t, merged, 1)
	require.Len(t, merged[0].Files, 1)
	assert.Equal(t, "/dirB/Inception (2010).jpg", merged[0].Files[0].Path)
}

func TestMergeDistinctFilesAccumulate(t *testing.T) {
	a1 := dirAsset("/dirA", "Inception", intp(2010), "Inception (2010).jpg")
	a2 := dirAsset("/dirB", "Inception", intp(2010), "Inception Logo.png")

	merged := MergeAssets([][]*models.Asset{{a1}, {a2}}, search.New())

	require.Len(t, merged, 1)
	assert.Len(t, merged[0].Files, 2)
}

func TestMergeKeepsDistinctTitlesApart(t *testing.T) {
	a1 := dirAsset("/dirA", "Inception", intp(2010), "Inception (2010).jpg")
	a2 := dirAsset("/dirB", "Interstellar", intp(2014), "Interstellar (2014).jpg")

	merged := MergeAssets([][]*models.Asset{{a1}, {a2}}, search.New())
	assert.Len(t, merged, 2)
}

func TestMergeSeriesUnionsSeasons(t *testing.T) {
	a1 := &models.Asset{
		Type:            models.AssetTypeSeries,
		Title:           "Stranger Things",
		NormalizedTitle: titles.Normalize("Stranger Things"),
		Folder:          "/dirA",
		Files: []models.AssetFile{
			{Path: "/dirA/Stranger Things - Season01.jpg", Season: intp(1)},
		},
		SeasonNumbers: []int{1},
	}
	a2 := &models.Asset{
		Type:            models.AssetTypeSeries,
		Title:           "Stranger Things",
		NormalizedTitle: titles.Normalize("Stranger Things"),
		Folder:          "/dirB",
		Files: []models.AssetFile{
			{Path: "/dirB/Stranger Things - Season02.jpg", Season: intp(2)},
			{Path: "/dirB/Stranger Things.jpg"},
		},
		SeasonNumbers: []int{2},
	}

	merged := MergeAssets([][]*models.Asset{{a1}, {a2}}, search.New())

	require.Len(t, merged, 1)
	assert.Equal(t, []int{1, 2}, merged[0].SeasonNumbers)
	// Season files ascend, main poster last.
	require.Len(t, merged[0].Files, 3)
	assert.Nil(t, merged[0].Files[2].Season)
}

func TestMergeNestedSeasonPostersStayDistinct(t *testing.T) {
	// Nested layouts name every season image "poster.jpg"; the season tag is
	// what separates the files.
	a1 := &models.Asset{
		Type:            models.AssetTypeSeries,
		Title:           "Stranger Things",
		Year:            intp(2016),
		NormalizedTitle: titles.Normalize("Stranger Things"),
		Folder:          "/dirA",
		Files: []models.AssetFile{
			{Path: "/dirA/Stranger Things (2016)/Season 01/poster.jpg", Season: intp(1)},
		},
		SeasonNumbers: []int{1},
	}
	a2 := &models.Asset{
		Type:            models.AssetTypeSeries,
		Title:           "Stranger Things",
		Year:            intp(2016),
		NormalizedTitle: titles.Normalize("Stranger Things"),
		Folder:          "/dirB",
		Files: []models.AssetFile{
			{Path: "/dirB/Stranger Things (2016)/Season 02/poster.jpg", Season: intp(2)},
		},
		SeasonNumbers: []int{2},
	}

	merged := MergeAssets([][]*models.Asset{{a1}, {a2}}, search.New())

	require.Len(t, merged, 1)
	assert.Equal(t, []int{1, 2}, merged[0].SeasonNumbers)
	require.Len(t, merged[0].Files, 2)
}

func TestMergeSameSeasonPosterReplaced(t *testing.T) {
	a1 := &models.Asset{
		Type:            models.AssetTypeSeries,
		Title:           "Stranger Things",
		Year:            intp(2016),
		NormalizedTitle: titles.Normalize("Stranger Things"),
		Folder:          "/dirA",
		Files: []models.AssetFile{
			{Path: "/dirA/Stranger Things (2016)/Season 01/poster.jpg", Season: intp(1)},
		},
		SeasonNumbers: []int{1},
	}
	a2 := &models.Asset{
		Type:            models.AssetTypeSeries,
		Title:           "Stranger Things",
		Year:            intp(2016),
		NormalizedTitle: titles.Normalize("Stranger Things"),
		Folder:          "/dirB",
		Files: []models.AssetFile{
			{Path: "/dirB/Stranger Things (2016)/Season 01/poster.jpg", Season: intp(1)},
		},
		SeasonNumbers: []int{1},
	}

	merged := MergeAssets([][]*models.Asset{{a1}, {a2}}, search.New())

	require.Len(t, merged, 1)
	require.Len(t, merged[0].Files, 1)
	assert.Equal(t, "/dirB/Stranger Things (2016)/Season 01/poster.jpg", merged[0].Files[0].Path)
	assert.Equal(t, []int{1}, merged[0].SeasonNumbers)
}

func TestMergeFillsMissingIDs(t *testing.T) {
	a1 := dirAsset("/dirA", "Inception", intp(2010), "Inception (2010).jpg")
	a2 := dirAsset("/dirB", "Inception", intp(2010), "Inception (2010).jpg")
	a2.IDs.TMDBID = intp(27205)

	merged := MergeAssets([][]*models.Asset{{a1}, {a2}}, search.New())

	require.Len(t, merged, 1)
	require.NotNil(t, merged[0].IDs.TMDBID)
	assert.Equal(t, 27205, *merged[0].IDs.TMDBID)
}

func TestMergeCollectionVariantFilenamesCollide(t *testing.T) {
	a1 := &models.Asset{
		Type:            models.AssetTypeCollection,
		Title:           "Alien Collection",
		NormalizedTitle: titles.Normalize("Alien Collection"),
		Folder:          "/dirA",
		Files:           []models.AssetFile{{Path: "/dirA/Alien Collection.jpg"}},
	}
	a2 := &models.Asset{
		Type:            models.AssetTypeCollection,
		Title:           "Alien Collection",
		NormalizedTitle: titles.Normalize("Alien Collection"),
		Folder:          "/dirB",
		Files:           []models.AssetFile{{Path: "/dirB/Alien.jpg"}},
	}

	merged := MergeAssets([][]*models.Asset{{a1}, {a2}}, search.New())

	require.Len(t, merged, 1)
	require.Len(t, merged[0].Files, 1)
	assert.Equal(t, "/dirB/Alien.jpg", merged[0].Files[0].Path)
}
