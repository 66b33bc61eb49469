package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	yaml "gopkg.in/yaml.v3"
)

// File is the YAML form of a catalog.
//
//	labels:
//	  - key: runs10plus
//	    variants: ["10+ keystone", "10+ schlüsselstein"]
//	    strategy: max-phrase
//	    fallbacks: [exact-sibling]
//	    phrases: ["timed runs"]
//	derived:
//	  - key: totalRuns
//	    sum: [runs10plus, runs5plus, runs2plus]
type File struct {
	Labels  []FileLabel   `yaml:"labels"`
	Derived []FileDerived `yaml:"derived"`
}

// FileLabel is one label entry. VariantFormats overrides numberFormat for
// single variants, e.g. {"gesamtwertung": eu} in a mostly English label.
type FileLabel struct {
	Key            string            `yaml:"key"`
	Variants       []string          `yaml:"variants"`
	Strategy       string            `yaml:"strategy"`
	Fallbacks      []string          `yaml:"fallbacks"`
	Phrases        []string          `yaml:"phrases"`
	ClimbLimit     int               `yaml:"ancestorClimbLimit"`
	NumberFormat   string            `yaml:"numberFormat"`
	VariantFormats map[string]string `yaml:"variantFormats"`
	Kind           string            `yaml:"kind"`
}

type FileDerived struct {
	Key string   `yaml:"key"`
	Sum []string `yaml:"sum"`
}

// Load reads and validates a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and validates a YAML catalog. Unknown fields are rejected so a
// typo fails at startup instead of silently dropping a setting.
func Parse(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file File
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ConfigurationError{Reason: "empty catalog file"}
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return file.Catalog()
}

// Catalog converts the file form into a validated catalog.
func (f File) Catalog() (*Catalog, error) {
	defs := make([]LabelDefinition, 0, len(f.Labels))
	for _, l := range f.Labels {
		d := LabelDefinition{
			Key:                l.Key,
			Variants:           l.Variants,
			Strategy:           Strategy(l.Strategy),
			Phrases:            l.Phrases,
			AncestorClimbLimit: l.ClimbLimit,
			NumberFormat:       NumberFormat(l.NumberFormat),
			Kind:               Kind(l.Kind),
		}
		for v, f := range l.VariantFormats {
			if d.VariantFormats == nil {
				d.VariantFormats = make(map[string]NumberFormat, len(l.VariantFormats))
			}
			d.VariantFormats[v] = NumberFormat(f)
		}
		for _, fb := range l.Fallbacks {
			d.Fallbacks = append(d.Fallbacks, Strategy(fb))
		}
		defs = append(defs, d)
	}

	derived := make([]DerivedField, 0, len(f.Derived))
	for _, d := range f.Derived {
		derived = append(derived, DerivedField{Key: d.Key, Sum: d.Sum})
	}
	return New(defs, derived...)
}
