package titles

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Matrix", "thematrix"},
		{"Spider-Man: No Way Home (2021)", "spidermannowayhome"},
		{"Amélie", "amelie"},
		{"Fast & Furious", "fastandfurious"},
		{"Hulu (US) Shows", "hulushows"},
		{"M*A*S*H", "mash"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Normalize(c.in), "input %q", c.in)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"The Matrix", "Amélie (2001)", "Fast & Furious", "Hulu (US) Shows",
		"Spider-Man: No Way Home", "WALL·E",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalizeStripsTrailingYearOnly(t *testing.T) {
	// A mid-title year is part of the name; only a trailing marker is a
	// release year.
	assert.Equal(t, "2001aspaceodyssey", Normalize("2001: A Space Odyssey"))
	assert.Equal(t, "bladerunner", Normalize("Blade Runner (1982)"))
	assert.Equal(t, "bladerunner", Normalize("Blade Runner [1982]"))
}

func TestPreprocessDropsStopWords(t *testing.T) {
	assert.Equal(t, "matrix", Preprocess("The Matrix"))
	assert.Equal(t, "lord rings", Preprocess("The Lord of the Rings"))
	assert.Equal(t, "hulu shows", Preprocess("Hulu (US) Shows"))
}

func TestFirstWord(t *testing.T) {
	assert.Equal(t, "matrix", FirstWord("The Matrix"))
	assert.Equal(t, "hulu", FirstWord("Hulu (US) Shows"))
	assert.Equal(t, "inception", FirstWord("Inception"))
	assert.Equal(t, "", FirstWord(""))
	assert.Equal(t, "", FirstWord("The"))
}

func TestStripNonAlnum(t *testing.T) {
	assert.Equal(t, "spidermannowayhome", StripNonAlnum("Spider-Man: No Way Home"))
	assert.Equal(t, "mash", StripNonAlnum("M*A*S*H"))
}

func TestGenerateVariants(t *testing.T) {
	v := GenerateVariants("The Alien Collection")
	assert.Contains(t, v.AlternateTitles, "Alien Collection")
	assert.Contains(t, v.AlternateTitles, "The Alien")
	assert.Contains(t, v.AlternateTitles, "Alien")
	assert.NotContains(t, v.AlternateTitles, "The Alien Collection Collection")
	require.Equal(t, len(v.AlternateTitles), len(v.NormalizedAlternateTitles))
	for i, alt := range v.AlternateTitles {
		assert.Equal(t, Normalize(alt), v.NormalizedAlternateTitles[i])
	}
}

func TestGenerateVariantsAppendsCollection(t *testing.T) {
	v := GenerateVariants("Alien")
	assert.Contains(t, v.AlternateTitles, "Alien Collection")
}

func TestGenerateVariantsDedupes(t *testing.T) {
	v := GenerateVariants("Inception")
	seen := make(map[string]bool)
	for _, alt := range v.AlternateTitles {
		assert.False(t, seen[alt], "duplicate variant %q", alt)
		seen[alt] = true
	}
}
