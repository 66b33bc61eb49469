package extract

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dgallion1/riostats/internal/doctree"
)

// matcher reports which label variant, if any, a folded text carries.
type matcher func(folded string) (variant string, ok bool)

// anyVariant matches the longest variant contained in the text.
func anyVariant(variants []string) matcher {
	return func(folded string) (string, bool) {
		best := ""
		for _, v := range variants {
			if len(v) > len(best) && indexLabel(folded, v) >= 0 {
				best = v
			}
		}
		return best, best != ""
	}
}

// withPhrase matches only texts that also contain one of the phrases.
func withPhrase(m matcher, phrases []string) matcher {
	return func(folded string) (string, bool) {
		v, ok := m(folded)
		if !ok {
			return "", false
		}
		for _, p := range phrases {
			if strings.Contains(folded, p) {
				return v, true
			}
		}
		return "", false
	}
}

// indexLabel finds label in s. A match glued to a preceding letter or digit
// does not count, so "5+ runs" is not found inside "15+ runs".
func indexLabel(s, label string) int {
	for off := 0; off <= len(s); {
		i := strings.Index(s[off:], label)
		if i < 0 {
			return -1
		}
		i += off
		if i == 0 {
			return 0
		}
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return i
		}
		off = i + 1
	}
	return -1
}

// afterLabel returns the part of s following the first occurrence of label.
func afterLabel(s, label string) string {
	i := indexLabel(s, label)
	if i < 0 {
		return ""
	}
	return s[i+len(label):]
}

// withoutLabel removes the first occurrence of label from s.
func withoutLabel(s, label string) string {
	i := indexLabel(s, label)
	if i < 0 {
		return s
	}
	return s[:i] + " " + s[i+len(label):]
}

// labelNodes yields, in document order, the innermost nodes matched by m
// together with the matched variant. A node is innermost when none of its
// children match; otherwise <body> would match every label on the page.
func labelNodes(t *doctree.Tree, m matcher) iter.Seq2[*doctree.Node, string] {
	return func(yield func(*doctree.Node, string) bool) {
		for n := range t.AllNodes() {
			v, ok := m(n.Folded())
			if !ok || childMatches(n, m) {
				continue
			}
			if !yield(n, v) {
				return
			}
		}
	}
}

func childMatches(n *doctree.Node, m matcher) bool {
	for _, c := range n.Children() {
		if _, ok := m(c.Folded()); ok {
			return true
		}
	}
	return false
}
