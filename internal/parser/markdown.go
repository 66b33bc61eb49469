package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/riostats/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownParser handles Markdown page snapshots. The source is rendered to
// HTML with goldmark and then read like any other page, so tables, lists and
// **bold** values get the same roles as their HTML equivalents.
type MarkdownParser struct {
	Scope string
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := goldmark.New(goldmark.WithExtensions(extension.GFM)).Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	title := strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown")
	h := &HTMLParser{Scope: p.Scope}
	return h.Parse(&buf, title)
}
