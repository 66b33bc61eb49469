package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/riostats/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser turns rendered HTML into a document tree.
type HTMLParser struct {
	// Scope is an optional CSS selector. When set, only the first matching
	// element and its subtree become the tree. A selector that matches nothing
	// falls back to the whole body.
	Scope string
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Tree, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	b := doctree.NewBuilder()
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSuffix(strings.TrimSuffix(filename, ".html"), ".htm")
	}
	b.SetTitle(title)

	root := doc.Find("body").First()
	if p.Scope != "" {
		if sel := doc.Find(p.Scope).First(); sel.Length() > 0 {
			root = sel
		}
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	for _, n := range root.Nodes {
		walk(b, n)
	}
	return b.Tree(), nil
}

func walk(b *doctree.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.Text(n.Data)
		return
	case html.ElementNode:
		if skipElement(n) {
			return
		}
		b.Open(n.Data, roleFor(n.Data))
		defer b.Close()
	case html.DocumentNode:
	default:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(b, c)
	}
}

// skipElement drops non-visible content.
func skipElement(n *html.Node) bool {
	switch n.Data {
	case "head", "script", "style", "noscript", "template", "svg", "iframe", "object":
		return true
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "style":
			s := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(s, "display:none") || strings.Contains(s, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func roleFor(tag string) doctree.Role {
	switch tag {
	case "strong", "b", "em", "i", "mark", "h1", "h2", "h3", "h4", "h5", "h6", "big", "output", "data":
		return doctree.RoleEmphasis
	case "span", "a", "p", "label", "small", "td", "th", "dt", "dd", "abbr", "time", "sup", "sub", "code", "font":
		return doctree.RoleTextRun
	case "html", "body", "div", "section", "article", "main", "aside", "header", "footer", "nav",
		"ul", "ol", "li", "dl", "table", "thead", "tbody", "tfoot", "tr", "form", "fieldset", "figure":
		return doctree.RoleContainer
	}
	return doctree.RoleOther
}
