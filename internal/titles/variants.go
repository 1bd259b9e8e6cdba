package titles

import "strings"

// Known prefixes and suffixes used to derive alternate collection titles.
var (
	variantPrefixes = []string{"The "}
	variantSuffixes = []string{" Collection", " Saga"}
)

// Variants holds the alternate titles generated for a collection asset,
// paired with their normalized forms at matching indexes.
type Variants struct {
	AlternateTitles           []string
	NormalizedAlternateTitles []string
}

// GenerateVariants produces alternate titles for collection matching: the
// title with a known prefix removed, with a known suffix removed, with both
// removed, and, unless the title already ends in "Collection", the title
// with " Collection" appended. When no prefix or suffix applies a
// variant degenerates to the original title; duplicates are dropped while
// preserving first-seen order.
func GenerateVariants(title string) Variants {
	noPrefix := stripAnyPrefix(title)
	noSuffix := stripAnySuffix(title)
	noBoth := stripAnySuffix(noPrefix)

	candidates := []string{noPrefix, noSuffix, noBoth}
	if !strings.HasSuffix(strings.ToLower(title), "collection") {
		candidates = append(candidates, title+" Collection")
	}

	var v Variants
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		v.AlternateTitles = append(v.AlternateTitles, c)
		v.NormalizedAlternateTitles = append(v.NormalizedAlternateTitles, Normalize(c))
	}
	return v
}

func stripAnyPrefix(title string) string {
	for _, p := range variantPrefixes {
		if len(title) > len(p) && strings.EqualFold(title[:len(p)], p) {
			return strings.TrimSpace(title[len(p):])
		}
	}
	return title
}

func stripAnySuffix(title string) string {
	for _, s := range variantSuffixes {
		if len(title) > len(s) && strings.EqualFold(title[len(title)-len(s):], s) {
			return strings.TrimSpace(title[:len(title)-len(s)])
		}
	}
	return title
}
