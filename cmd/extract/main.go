// Command extract runs the label catalog against a saved profile page and
// prints the resolved stats as JSON.
//
//	extract -in page.html [-catalog catalog.yaml] [-scope "#profile"] [-label totalRuns] [-debug]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/riostats/internal/catalog"
	"github.com/dgallion1/riostats/internal/extract"
	"github.com/dgallion1/riostats/internal/parser"
)

type options struct {
	in      string
	catalog string
	scope   string
	label   string // print only this key
	debug   bool
}

func main() {
	var opts options
	flag.StringVar(&opts.in, "in", "", "saved page (.html, .md, .txt, .csv)")
	flag.StringVar(&opts.catalog, "catalog", "", "YAML label catalog (default: built-in)")
	flag.StringVar(&opts.scope, "scope", "", "CSS selector narrowing HTML input")
	flag.StringVar(&opts.label, "label", "", "print only this label key")
	flag.BoolVar(&opts.debug, "debug", false, "log strategy decisions to stderr and include resolutions")
	flag.Parse()

	if err := run(opts, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}
}

func run(opts options, stdout io.Writer) error {
	if opts.in == "" {
		return fmt.Errorf("-in is required")
	}
	if !parser.IsSupportedExtension(opts.in) {
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(opts.in))
	}

	cat := catalog.Default()
	if opts.catalog != "" {
		var err error
		if cat, err = catalog.Load(opts.catalog); err != nil {
			return err
		}
	}
	if opts.label != "" {
		if _, ok := cat.Label(opts.label); !ok {
			return fmt.Errorf("unknown label %q", opts.label)
		}
	}

	p, err := parser.ForFile(opts.in, opts.scope)
	if err != nil {
		return err
	}
	f, err := os.Open(opts.in)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	tree, err := p.Parse(f, filepath.Base(opts.in))
	if err != nil {
		return fmt.Errorf("parse %s: %w", opts.in, err)
	}

	var log *slog.Logger
	if opts.debug {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	res := extract.NewResolver(log).Resolve(tree, cat)

	out := res.Fields()
	resolutions := res.Resolutions()
	if opts.label != "" {
		v, _ := res.Get(opts.label)
		out = map[string]any{opts.label: v.Any()}
		for _, r := range resolutions {
			if r.Key == opts.label {
				resolutions = []extract.Resolution{r}
				break
			}
		}
	}
	if opts.debug {
		out["title"] = res.Title()
		out["resolutions"] = resolutions
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
