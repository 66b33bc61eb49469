package extract

import (
	"iter"
	"log/slog"

	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/doctree"
)

// Candidate is a tentative value produced by one strategy.
type Candidate struct {
	Raw    string        // text the value was parsed from
	Value  float64       // parsed value
	Source *doctree.Node // for diagnostics only
}

// Strategy locates a value for one label. Absence is reported with ok=false,
// never as an error.
type Strategy interface {
	Extract(t *doctree.Tree, def catalog.LabelDefinition) (c Candidate, ok bool)
}

// Strategies returns an implementation for every catalog strategy. Parse
// failures are logged at debug level through log.
func Strategies(log *slog.Logger) map[catalog.Strategy]Strategy {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return map[catalog.Strategy]Strategy{
		catalog.NearestNumber: &NearestNumber{log: log},
		catalog.ExactSibling:  &ExactSibling{},
		catalog.MaxPhrase:     &MaxPhrase{log: log},
		catalog.FirstDecimal:  &FirstDecimal{log: log},
	}
}

// climbScopes yields the label node followed by up to limit-1 of its
// ancestors, nearest first.
func climbScopes(t *doctree.Tree, n *doctree.Node, limit int) iter.Seq[*doctree.Node] {
	return func(yield func(*doctree.Node) bool) {
		if limit <= 0 || !yield(n) {
			return
		}
		for a := range t.AncestorsOf(n, limit-1) {
			if !yield(a) {
				return
			}
		}
	}
}
