package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dgallion1/riostats/internal/doctree"
	"github.com/dgallion1/riostats/internal/parser"
)

// snapshotExtensions is the lookup order when several snapshots exist.
var snapshotExtensions = []string{".html", ".htm", ".md", ".markdown", ".txt", ".csv"}

// Snapshot reads saved pages from Dir/<region>/<realm>/<name>.<ext>.
type Snapshot struct {
	Dir   string
	Scope string
}

func (s *Snapshot) Render(ctx context.Context, req Request) (*doctree.Tree, error) {
	base := filepath.Join(s.Dir, clean(req.Region), clean(req.Realm), clean(req.Name))
	if err := ctx.Err(); err != nil {
		return nil, &Error{URL: base, Err: err}
	}

	for _, ext := range snapshotExtensions {
		path := base + ext
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &Error{URL: path, Err: fmt.Errorf("open snapshot: %w", err)}
		}
		tree, err := parseSnapshot(f, path, s.Scope)
		f.Close()
		if err != nil {
			return nil, &Error{URL: path, Err: err}
		}
		return tree, nil
	}
	return nil, &Error{URL: base, Err: fmt.Errorf("no snapshot found: %w", os.ErrNotExist)}
}

func parseSnapshot(f *os.File, path, scope string) (*doctree.Tree, error) {
	p, err := parser.ForFile(path, scope)
	if err != nil {
		return nil, err
	}
	tree, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return tree, nil
}

// clean keeps a request field from escaping the snapshot directory.
func clean(part string) string {
	part = filepath.Base(filepath.Clean("/" + part))
	if part == "/" || part == "." {
		return "_"
	}
	return part
}
