// Package util provides common utility functions.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// Slugify converts a post title to its canonical URL slug.
// The slug is a pure function of the title: the same title always
// yields the same slug.
//
// Normalization rules:
//  1. Strip diacritics (é → e, ü → u)
//  2. Trim whitespace and lowercase
//  3. Replace spaces, underscores and slashes with dashes
//  4. Remove non-alphanumeric characters (except dashes)
//  5. Collapse multiple dashes
//  6. Trim leading/trailing dashes
//
// Examples:
//
//	"Hello World"    → "hello-world"
//	"Café au Lait"   → "cafe-au-lait"
//	"Go 1.26: What's New?" → "go-126-whats-new"
//	"  multi   word " → "multi-word"
func Slugify(input string) string {
	// 1. Decompose and drop combining marks. Transformer chains are
	// stateful, so build one per call.
	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripper, input); err == nil {
		input = stripped
	}

	// 2. Trim and lowercase
	s := strings.ToLower(strings.TrimSpace(input))

	// 3. Replace word separators with dashes
	s = wordSeparatorRe.ReplaceAllString(s, "-")

	// 4. Remove non-alphanumeric (except dashes)
	s = nonAlphanumericRe.ReplaceAllString(s, "")

	// 5. Collapse multiple dashes
	s = multipleDashRe.ReplaceAllString(s, "-")

	// 6. Trim leading/trailing dashes
	return strings.Trim(s, "-")
}
