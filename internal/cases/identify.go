package cases

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var identifierWordRe = regexp.MustCompile(`[^0-9a-z]+`)

// asciiFold strips diacritics: decompose to NFKD and drop the
// combining marks.
var asciiFold = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// toIdentifier derives a selection identifier from free-form text:
// lowercase ASCII words joined by single dashes.
func toIdentifier(text string) string {
	if folded, _, err := transform.String(asciiFold, text); err == nil {
		text = folded
	}
	text = identifierWordRe.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(text, "-")
}

// looksLikeFile reports whether a script field names a file rather
// than carrying inline source: a single line with a path-ish shape.
func looksLikeFile(s string) bool {
	if strings.ContainsAny(s, "\n;=") {
		return false
	}
	return strings.HasSuffix(s, ".star") || strings.HasSuffix(s, ".bzl") ||
		strings.Contains(s, "/")
}
