package extract

import (
	"log/slog"
	"strconv"

	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/doctree"
)

// NearestNumber finds the first label node and climbs toward the page root
// looking for a number shown next to it.
//
// At each climb level the emphasis and text-run descendants of the scope are
// scanned in document order; the first one that yields digits wins. Elements
// that themselves carry the label are skipped so "10+ Runs" never reads as 10.
type NearestNumber struct {
	log *slog.Logger
}

func (s *NearestNumber) Extract(t *doctree.Tree, def catalog.LabelDefinition) (Candidate, bool) {
	match := anyVariant(def.Variants)

	for n, variant := range labelNodes(t, match) {
		// "Total Runs 55" inside a single element.
		if tail := afterLabel(n.Folded(), variant); tail != "" {
			f := def.FormatFor(variant)
			if raw := integerPattern(f).FindString(tail); raw != "" {
				if v, err := parseInteger(raw, f); err == nil {
					return Candidate{Raw: raw, Value: float64(v), Source: n}, true
				}
			}
		}

		for scope := range climbScopes(t, n, def.AncestorClimbLimit) {
			for d := range t.DescendantsMatchingRole(scope, doctree.ValueRoles...) {
				if _, labelled := match(d.Folded()); labelled {
					continue
				}
				digits := digitsOnly(d.Text())
				if digits == "" {
					continue
				}
				v, err := strconv.ParseInt(digits, 10, 64)
				if err != nil {
					s.log.Debug("discarding number", "label", def.Key, "raw", d.Text(), "error", err)
					continue
				}
				return Candidate{Raw: d.Text(), Value: float64(v), Source: d}, true
			}
		}
	}
	return Candidate{}, false
}
