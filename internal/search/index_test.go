package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinTDCT/PosterVault/internal/models"
)

func asset(title string, t models.AssetType) *models.Asset {
	return &models.Asset{Type: t, Title: title}
}

func TestSearchRegionMarkerQuery(t *testing.T) {
	ix := New()
	a := asset("Hulu (US) Shows", models.AssetTypeSeries)
	ix.Add(a)

	// The region marker is stripped before indexing, so a query carrying
	// it still lands in the "hulu" bucket.
	hits := ix.Search("Hulu (US) Shows", models.AssetTypeSeries)
	require.Len(t, hits, 1)
	assert.Same(t, a, hits[0])

	hits = ix.Search("Hulu Shows", models.AssetTypeSeries)
	require.Len(t, hits, 1)
	assert.Same(t, a, hits[0])
}

func TestSearchFirstWordOnly(t *testing.T) {
	ix := New()
	ix.Add(asset("Blade Runner", models.AssetTypeMovie))

	// Only the first word is indexed; a second-word query finds nothing.
	assert.Empty(t, ix.Search("Runner", models.AssetTypeMovie))
	assert.NotEmpty(t, ix.Search("Blade Runner 2049", models.AssetTypeMovie))
}

func TestSearchPrefixBucket(t *testing.T) {
	ix := New()
	a := asset("Inception", models.AssetTypeMovie)
	ix.Add(a)

	// "Incredibles" shares the "inc" prefix, so prefix retrieval returns
	// the existing candidate even though the full words differ.
	hits := ix.Search("Incredibles", models.AssetTypeMovie)
	require.Len(t, hits, 1)
	assert.Same(t, a, hits[0])
}

func TestSearchTypePartition(t *testing.T) {
	ix := New()
	ix.Add(asset("Fargo", models.AssetTypeMovie))

	assert.Empty(t, ix.Search("Fargo", models.AssetTypeSeries))
	assert.NotEmpty(t, ix.Search("Fargo", models.AssetTypeMovie))
}

func TestSearchStopWordPrefix(t *testing.T) {
	ix := New()
	a := asset("The Matrix", models.AssetTypeMovie)
	ix.Add(a)

	// "The" is a stop word; both forms resolve to the "matrix" bucket.
	hits := ix.Search("Matrix", models.AssetTypeMovie)
	require.Len(t, hits, 1)
	assert.Same(t, a, hits[0])
}

func TestLen(t *testing.T) {
	ix := New()
	assert.Equal(t, 0, ix.Len())
	ix.Add(asset("Inception", models.AssetTypeMovie))
	ix.Add(asset("Interstellar", models.AssetTypeMovie))
	assert.Equal(t, 2, ix.Len())
}
