package titles

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ──────────────────── Compiled Regex (init once) ────────────────────

// Region/edition markers stripped before any other normalization.
// These show up in streaming-library folder names like "Hulu (US) Shows".
var regionTokenRx = regexp.MustCompile(`(?i)\((?:US|UK|AU|CA|NZ|IE|DE|FR|JP)\)`)

// Trailing "(2020)" or "[2020]" year marker.
var trailingYearRx = regexp.MustCompile(`\s*[\(\[][12]\d{3}[\)\]]\s*$`)

// Characters not legal in filenames on common filesystems.
var illegalCharsRx = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// Everything that is not a letter, digit, or space.
var nonAlnumRx = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)

var spacesRx = regexp.MustCompile(`\s+`)

// stopWords are removed only when building index keys, never for the
// canonical comparison key.
var stopWords = map[string]bool{
	"a": true, "an": true, "the": true,
	"and": true, "or": true, "of": true,
}

// asciiFold decomposes to NFD, drops combining marks, and recomposes, so
// "Amélie" folds to "Amelie".
var asciiFold = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ──────────────────── Normalization ────────────────────

// Normalize canonicalizes a raw title or filename into the comparison key
// used throughout matching: region markers and a trailing year removed,
// transliterated to ASCII, "&" spelled out, everything but letters and
// digits dropped, lower-cased. Deterministic and idempotent.
func Normalize(title string) string {
	s := regionTokenRx.ReplaceAllString(title, " ")
	s = trailingYearRx.ReplaceAllString(s, "")
	s = illegalCharsRx.ReplaceAllString(s, "")
	s = foldASCII(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = nonAlnumRx.ReplaceAllString(s, "")
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	return s
}

// Preprocess canonicalizes a title for index keys. Unlike Normalize it keeps
// word boundaries and the year, and removes a small stop-word list so that
// "The Matrix" and "Matrix" land in the same bucket.
func Preprocess(title string) string {
	s := regionTokenRx.ReplaceAllString(title, " ")
	s = illegalCharsRx.ReplaceAllString(s, " ")
	s = foldASCII(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = nonAlnumRx.ReplaceAllString(s, " ")
	s = strings.ToLower(s)

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !stopWords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// FirstWord returns the first preprocessed word of a title, or "".
func FirstWord(title string) string {
	pre := Preprocess(title)
	if pre == "" {
		return ""
	}
	if idx := strings.IndexByte(pre, ' '); idx > 0 {
		return pre[:idx]
	}
	return pre
}

// StripNonAlnum lower-cases and removes every non-alphanumeric rune. Used by
// the matcher's loosened comparison rule.
func StripNonAlnum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func foldASCII(s string) string {
	out, _, err := transform.String(asciiFold, s)
	if err != nil {
		return s
	}
	// Drop any remaining non-ASCII runes the fold could not map.
	var b strings.Builder
	b.Grow(len(out))
	for _, r := range out {
		if r < 128 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spacesRx.ReplaceAllString(s, " "))
}
