package extract

import (
	"slices"

	"github.com/dgallion1/riostats/internal/catalog"
)

// Resolution sources that are not strategy names.
const (
	SourceDefault = "default"
	SourceDerived = "derived"
)

// Value is a resolved stat. Counts are always present; scores may be absent.
type Value struct {
	kind    catalog.Kind
	n       float64
	present bool
}

func (v Value) Kind() catalog.Kind { return v.kind }
func (v Value) Present() bool { return v.present }
func (v Value) Float() float64 { return v.n }
func (v Value) Int() int64 { return int64(v.n) }

// Any returns the wire form: int64 for counts, float64 for scores, nil when absent.
func (v Value) Any() any {
	if !v.present {
		return nil
	}
	if v.kind == catalog.KindCount {
		return v.Int()
	}
	return v.n
}

// Resolution records where a value came from.
type Resolution struct {
	Key    string `json:"key"`
	Source string `json:"source"` // strategy name, SourceDefault or SourceDerived
	Raw    string `json:"raw,omitempty"`
}

// Result maps label keys to resolved values. It is never modified after
// the resolver returns it.
type Result struct {
	title       string
	keys        []string
	values      map[string]Value
	resolutions map[string]Resolution
}

// Get returns the value for key.
func (r Result) Get(key string) (Value, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Title is the title of the page the result was read from.
func (r Result) Title() string { return r.title }

// Keys returns label keys in catalog order.
func (r Result) Keys() []string { return slices.Clone(r.keys) }

// Fields returns a fresh key -> wire value map.
func (r Result) Fields() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v.Any()
	}
	return out
}

// Resolutions returns the per-key provenance in catalog order.
func (r Result) Resolutions() []Resolution {
	out := make([]Resolution, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.resolutions[k])
	}
	return out
}

// Found reports how many labels were resolved from the document itself.
func (r Result) Found() int {
	n := 0
	for _, res := range r.resolutions {
		if res.Source != SourceDefault {
			n++
		}
	}
	return n
}

