package catalog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/dgallion1/riostats/internal/textnorm"
)

// Strategy names one extraction algorithm.
type Strategy string

const (
	NearestNumber Strategy = "nearest-number" // label substring, climb ancestors for a number
	ExactSibling  Strategy = "exact-sibling"  // exact label text, value in the same container
	MaxPhrase     Strategy = "max-phrase"     // label + qualifying phrase, largest integer wins
	FirstDecimal  Strategy = "first-decimal"  // label substring, first decimal after it
)

var knownStrategies = []Strategy{NearestNumber, ExactSibling, MaxPhrase, FirstDecimal}

// NumberFormat selects grouping and decimal separators.
type NumberFormat string

const (
	FormatUS NumberFormat = "us" // 2,897.6
	FormatEU NumberFormat = "eu" // 2.897,6
)

// Kind decides the default when nothing is found.
type Kind string

const (
	KindCount Kind = "count" // defaults to 0
	KindScore Kind = "score" // defaults to absent
)

// DefaultAncestorClimbLimit is the number of climb levels, the label node included.
const DefaultAncestorClimbLimit = 3

// LabelDefinition describes one stat to extract.
type LabelDefinition struct {
	Key                string
	Variants           []string // normalized by New
	Strategy           Strategy
	Fallbacks          []Strategy
	Phrases            []string // qualifying phrases for MaxPhrase, normalized by New
	AncestorClimbLimit int
	NumberFormat       NumberFormat
	VariantFormats     map[string]NumberFormat // per-variant override of NumberFormat, keyed by variant
	Kind               Kind
}

// FormatFor returns the number format used when variant is the matched label.
func (d LabelDefinition) FormatFor(variant string) NumberFormat {
	if f, ok := d.VariantFormats[variant]; ok {
		return f
	}
	return d.NumberFormat
}

// Strategies returns the primary strategy followed by the fallbacks.
func (d LabelDefinition) Strategies() []Strategy {
	return append([]Strategy{d.Strategy}, d.Fallbacks...)
}

// DerivedField fills Key with the sum of Sum when Key itself was not found.
type DerivedField struct {
	Key string
	Sum []string
}

// Catalog is a validated, read-only set of label definitions.
type Catalog struct {
	defs    []LabelDefinition
	derived []DerivedField
}

// ConfigurationError reports a malformed catalog.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return "catalog: " + e.Reason
	}
	return fmt.Sprintf("catalog: label %q: %s", e.Key, e.Reason)
}

// New validates defs and returns a catalog. Variants and phrases are folded,
// zero climb limits become DefaultAncestorClimbLimit, and empty formats and
// kinds default to FormatUS and KindCount.
func New(defs []LabelDefinition, derived ...DerivedField) (*Catalog, error) {
	if len(defs) == 0 {
		return nil, &ConfigurationError{Reason: "no labels defined"}
	}

	var err error
	c := &Catalog{}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Key == "" {
			return nil, &ConfigurationError{Reason: "label key is required"}
		}
		if seen[d.Key] {
			return nil, &ConfigurationError{Key: d.Key, Reason: "duplicate key"}
		}
		seen[d.Key] = true

		d.Variants = foldAll(d.Variants)
		if len(d.Variants) == 0 {
			return nil, &ConfigurationError{Key: d.Key, Reason: "variants must not be empty"}
		}
		d.Phrases = foldAll(d.Phrases)
		d.Fallbacks = slices.Clone(d.Fallbacks)

		for _, s := range d.Strategies() {
			if !slices.Contains(knownStrategies, s) {
				return nil, &ConfigurationError{Key: d.Key, Reason: fmt.Sprintf("unknown strategy %q", s)}
			}
			if s == MaxPhrase && len(d.Phrases) == 0 {
				return nil, &ConfigurationError{Key: d.Key, Reason: "max-phrase requires at least one phrase"}
			}
		}

		if d.AncestorClimbLimit < 0 {
			return nil, &ConfigurationError{Key: d.Key, Reason: "ancestor climb limit must not be negative"}
		}
		if d.AncestorClimbLimit == 0 {
			d.AncestorClimbLimit = DefaultAncestorClimbLimit
		}

		if d.NumberFormat == "" {
			d.NumberFormat = FormatUS
		}
		if !knownFormat(d.NumberFormat) {
			return nil, &ConfigurationError{Key: d.Key, Reason: fmt.Sprintf("unknown number format %q", d.NumberFormat)}
		}
		if d.VariantFormats, err = foldFormats(d.VariantFormats, d.Variants); err != nil {
			return nil, &ConfigurationError{Key: d.Key, Reason: err.Error()}
		}

		switch d.Kind {
		case "":
			d.Kind = KindCount
		case KindCount, KindScore:
		default:
			return nil, &ConfigurationError{Key: d.Key, Reason: fmt.Sprintf("unknown kind %q", d.Kind)}
		}

		c.defs = append(c.defs, d)
	}

	for _, df := range derived {
		if !seen[df.Key] {
			return nil, &ConfigurationError{Key: df.Key, Reason: "derived field targets an unknown label"}
		}
		if len(df.Sum) == 0 {
			return nil, &ConfigurationError{Key: df.Key, Reason: "derived field has no inputs"}
		}
		for _, in := range df.Sum {
			if !seen[in] {
				return nil, &ConfigurationError{Key: df.Key, Reason: fmt.Sprintf("derived input %q is not a label", in)}
			}
			if in == df.Key {
				return nil, &ConfigurationError{Key: df.Key, Reason: "derived field cannot sum itself"}
			}
		}
		c.derived = append(c.derived, DerivedField{Key: df.Key, Sum: slices.Clone(df.Sum)})
	}

	return c, nil
}

// Labels returns the definitions in declaration order.
func (c *Catalog) Labels() []LabelDefinition {
	out := make([]LabelDefinition, len(c.defs))
	for i, d := range c.defs {
		d.Variants = slices.Clone(d.Variants)
		d.Phrases = slices.Clone(d.Phrases)
		d.Fallbacks = slices.Clone(d.Fallbacks)
		d.VariantFormats = maps.Clone(d.VariantFormats)
		out[i] = d
	}
	return out
}

// Label looks up a definition by key.
func (c *Catalog) Label(key string) (LabelDefinition, bool) {
	for i, d := range c.defs {
		if d.Key == key {
			return c.Labels()[i], true
		}
	}
	return LabelDefinition{}, false
}

// Derived returns the derived-field rules in declaration order.
func (c *Catalog) Derived() []DerivedField {
	out := make([]DerivedField, len(c.derived))
	for i, d := range c.derived {
		out[i] = DerivedField{Key: d.Key, Sum: slices.Clone(d.Sum)}
	}
	return out
}

func foldAll(in []string) []string {
	var out []string
	for _, s := range in {
		if f := textnorm.Fold(s); f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func knownFormat(f NumberFormat) bool {
	return f == FormatUS || f == FormatEU
}

// foldFormats normalizes the keys of a variant format map. Every key must
// name one of the (already folded) variants.
func foldFormats(in map[string]NumberFormat, variants []string) (map[string]NumberFormat, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]NumberFormat, len(in))
	for v, f := range in {
		key := textnorm.Fold(v)
		if !slices.Contains(variants, key) {
			return nil, fmt.Errorf("number format given for unknown variant %q", v)
		}
		if !knownFormat(f) {
			return nil, fmt.Errorf("unknown number format %q for variant %q", f, v)
		}
		out[key] = f
	}
	return out, nil
}
