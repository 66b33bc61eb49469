// Package textnorm holds the text normalization shared by the document tree
// and the label catalog, so both sides of a label comparison agree.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Collapse trims s and replaces every run of whitespace (including
// non-breaking spaces) with a single ASCII space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold returns the matching key for s: NFC-composed, case-folded and
// whitespace-collapsed. "  10+   Läufe " and "10+ LÄUFE" fold to the same key.
func Fold(s string) string {
	if s == "" {
		return ""
	}
	// Caser carries state; a fresh one per call keeps Fold safe for concurrent use.
	return Collapse(cases.Fold().String(norm.NFC.String(s)))
}
