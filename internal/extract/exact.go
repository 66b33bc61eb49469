package extract

import (
	"slices"

	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/doctree"
)

// valuePriority is the order in which roles are searched for a sibling value.
var valuePriority = []doctree.Role{doctree.RoleEmphasis, doctree.RoleTextRun, doctree.RoleContainer}

// ExactSibling finds an element whose whole text is a label variant and reads
// the value from its nearest container: the element itself if it is one,
// otherwise the closest container ancestor within the climb limit. Only that
// one container is searched, so a row without a value never borrows one from
// the next row. Score labels accept a decimal value; count labels accept
// integers only.
type ExactSibling struct{}

func (s *ExactSibling) Extract(t *doctree.Tree, def catalog.LabelDefinition) (Candidate, bool) {
	for n := range t.AllNodes() {
		if !slices.Contains(def.Variants, n.Folded()) {
			continue
		}
		scope := nearestContainer(t, n, def.AncestorClimbLimit)
		if scope == nil {
			continue
		}
		if c, ok := valueIn(t, scope, def, def.FormatFor(n.Folded())); ok {
			return c, true
		}
	}
	return Candidate{}, false
}

func nearestContainer(t *doctree.Tree, n *doctree.Node, limit int) *doctree.Node {
	for scope := range climbScopes(t, n, limit) {
		if scope.Role == doctree.RoleContainer {
			return scope
		}
	}
	return nil
}

func valueIn(t *doctree.Tree, scope *doctree.Node, def catalog.LabelDefinition, f catalog.NumberFormat) (Candidate, bool) {
	for _, role := range valuePriority {
		for d := range t.DescendantsMatchingRole(scope, role) {
			if d.Text() == "" {
				continue
			}
			if v, ok := parseValue(d.Text(), def.Kind, f); ok {
				return Candidate{Raw: d.Text(), Value: v, Source: d}, true
			}
		}
	}
	return Candidate{}, false
}

func parseValue(raw string, kind catalog.Kind, f catalog.NumberFormat) (float64, bool) {
	if kind == catalog.KindScore {
		v, err := parseDecimal(raw, f)
		return v, err == nil
	}
	v, err := parseInteger(raw, f)
	return float64(v), err == nil
}
