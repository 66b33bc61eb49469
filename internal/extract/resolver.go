package extract

import (
	"log/slog"

	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/doctree"
)

// Resolver runs each label's strategies against a tree and assembles a
// Result. It performs no I/O and keeps no state between calls, so one
// Resolver may serve concurrent requests.
type Resolver struct {
	log        *slog.Logger
	strategies map[catalog.Strategy]Strategy
}

func NewResolver(log *slog.Logger) *Resolver {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Resolver{log: log, strategies: Strategies(log)}
}

// ExtractStats resolves every label in cat against tree without logging.
func ExtractStats(tree *doctree.Tree, cat *catalog.Catalog) Result {
	return NewResolver(nil).Resolve(tree, cat)
}

// Resolve tries each label's primary strategy, then its fallbacks in order.
// Labels that no strategy finds get their default: 0 for counts, absent for
// scores. Derived fields are applied last.
func (r *Resolver) Resolve(tree *doctree.Tree, cat *catalog.Catalog) Result {
	labels := cat.Labels()
	res := Result{
		keys:        make([]string, 0, len(labels)),
		values:      make(map[string]Value, len(labels)),
		resolutions: make(map[string]Resolution, len(labels)),
	}

	if tree != nil {
		res.title = tree.Title
	}

	for _, def := range labels {
		res.keys = append(res.keys, def.Key)
		res.values[def.Key] = defaultValue(def.Kind)
		res.resolutions[def.Key] = Resolution{Key: def.Key, Source: SourceDefault}

		for _, name := range def.Strategies() {
			c, ok := r.strategies[name].Extract(tree, def)
			if !ok {
				continue
			}
			res.values[def.Key] = Value{kind: def.Kind, n: c.Value, present: true}
			res.resolutions[def.Key] = Resolution{Key: def.Key, Source: string(name), Raw: c.Raw}
			r.log.Debug("label resolved", "label", def.Key, "strategy", name, "raw", c.Raw, "value", c.Value)
			break
		}
		if res.resolutions[def.Key].Source == SourceDefault {
			r.log.Debug("label not found", "label", def.Key)
		}
	}

	for _, df := range cat.Derived() {
		if res.resolutions[df.Key].Source != SourceDefault {
			continue
		}
		var sum float64
		found := false
		for _, in := range df.Sum {
			if res.resolutions[in].Source == SourceDefault {
				continue
			}
			sum += res.values[in].Float()
			found = true
		}
		if !found {
			continue
		}
		kind := res.values[df.Key].Kind()
		res.values[df.Key] = Value{kind: kind, n: sum, present: true}
		res.resolutions[df.Key] = Resolution{Key: df.Key, Source: SourceDerived}
		r.log.Debug("label derived", "label", df.Key, "inputs", df.Sum, "value", sum)
	}

	return res
}

func defaultValue(kind catalog.Kind) Value {
	if kind == catalog.KindScore {
		return Value{kind: kind}
	}
	return Value{kind: kind, present: true}
}
