package extract

import (
	"log/slog"

	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/doctree"
)

// MaxPhrase reads composite phrases such as "40 10+ Keystone Timed Runs",
// where the bucket threshold and the count share one element. The label
// itself is cut out first, then the count is taken to be the largest
// remaining integer. The threshold is therefore never returned: "3 10+
// Keystone Timed Runs" reads as 3, and an element holding only the label
// yields no candidate so the fallbacks can look elsewhere.
//
// Picking the maximum breaks if a phrase ever carries two numbers besides the
// label and the count is the smaller one; the markup offers no better signal.
type MaxPhrase struct {
	log *slog.Logger
}

func (s *MaxPhrase) Extract(t *doctree.Tree, def catalog.LabelDefinition) (Candidate, bool) {
	match := withPhrase(anyVariant(def.Variants), def.Phrases)

	for n, variant := range labelNodes(t, match) {
		f := def.FormatFor(variant)
		re := integerPattern(f)
		text := withoutLabel(n.Folded(), variant)
		var (
			best  int64
			raw   string
			found bool
		)
		for _, m := range re.FindAllString(text, -1) {
			v, err := parseInteger(m, f)
			if err != nil {
				s.log.Debug("discarding number", "label", def.Key, "raw", m, "error", err)
				continue
			}
			if !found || v > best {
				best, raw, found = v, m, true
			}
		}
		if found {
			return Candidate{Raw: raw, Value: float64(best), Source: n}, true
		}
	}
	return Candidate{}, false
}

// FirstDecimal reads a continuous score: the first decimal-or-integer number
// after the label, or anywhere in the label element if none follows it.
type FirstDecimal struct {
	log *slog.Logger
}

func (s *FirstDecimal) Extract(t *doctree.Tree, def catalog.LabelDefinition) (Candidate, bool) {
	for n, variant := range labelNodes(t, anyVariant(def.Variants)) {
		f := def.FormatFor(variant)
		re := decimalPattern(f)
		for _, text := range []string{afterLabel(n.Folded(), variant), n.Folded()} {
			raw := re.FindString(text)
			if raw == "" {
				continue
			}
			v, err := parseDecimal(raw, f)
			if err != nil {
				s.log.Debug("discarding number", "label", def.Key, "raw", raw, "error", err)
				continue
			}
			return Candidate{Raw: raw, Value: v, Source: n}, true
		}
	}
	return Candidate{}, false
}
