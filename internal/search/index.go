package search

import (
	"github.com/JustinTDCT/PosterVault/internal/models"
	"github.com/JustinTDCT/PosterVault/internal/titles"
)

// prefixLen is the length of the word-prefix buckets.
const prefixLen = 3

// Index is an in-memory inverted index over scanned assets, keyed by the
// first preprocessed word of each title and by that word's 3-character
// prefix, partitioned per asset type. One Index belongs to one scan session;
// it is not safe for concurrent mutation and is discarded after use.
//
// Only the first word is indexed. Titles whose first preprocessed word
// differs entirely are not retrievable here and can only match via
// identifier equality, which bypasses the index.
type Index struct {
	words    map[models.AssetType]map[string][]*models.Asset
	prefixes map[models.AssetType]map[string][]*models.Asset
}

// New returns an empty index.
func New() *Index {
	return &Index{
		words:    make(map[models.AssetType]map[string][]*models.Asset),
		prefixes: make(map[models.AssetType]map[string][]*models.Asset),
	}
}

// Add inserts an asset under the first word of its preprocessed title, plus
// the word's 3-character prefix when the word is longer than that.
func (ix *Index) Add(a *models.Asset) {
	word := titles.FirstWord(a.Title)
	if word == "" {
		return
	}
	insert(ix.words, a.Type, word, a)
	if len(word) > prefixLen {
		insert(ix.prefixes, a.Type, word[:prefixLen], a)
	}
}

// Search retrieves candidate assets for a query title within one type
// bucket. The prefix bucket is consulted first and returned as-is when it
// hits; otherwise the exact first-word bucket is used. Candidates still need
// to pass the matching engine; retrieval here is deliberately coarse.
func (ix *Index) Search(queryTitle string, t models.AssetType) []*models.Asset {
	word := titles.FirstWord(queryTitle)
	if word == "" {
		return nil
	}
	if len(word) > prefixLen {
		if hits := ix.prefixes[t][word[:prefixLen]]; len(hits) > 0 {
			return hits
		}
	}
	return ix.words[t][word]
}

// Len returns the number of indexed assets across all type buckets, counting
// each asset once per word bucket.
func (ix *Index) Len() int {
	n := 0
	for _, bucket := range ix.words {
		for _, assets := range bucket {
			n += len(assets)
		}
	}
	return n
}

func insert(m map[models.AssetType]map[string][]*models.Asset, t models.AssetType, key string, a *models.Asset) {
	bucket, ok := m[t]
	if !ok {
		bucket = make(map[string][]*models.Asset)
		m[t] = bucket
	}
	bucket[key] = append(bucket[key], a)
}
